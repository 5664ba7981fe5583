package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/domain/repository"
	"flight-extractor/pkg/agent"
	"flight-extractor/pkg/logger"
	"flight-extractor/pkg/metrics"
	"flight-extractor/pkg/workflowai"
)

// DefaultInstructions is the prompt of the flight info agent
const DefaultInstructions = "Extract flight information from an email containing booking details."

// FlightAgent runs the flight info extraction agent
type FlightAgent interface {
	Run(ctx context.Context, input entity.EmailInput) (*agent.Run[entity.FlightInfo], error)
}

// Extraction is a validated flight record plus whatever reference data
// could be resolved for it
type Extraction struct {
	Flight entity.FlightInfo
	Run    agent.RunInfo

	DepartureAirport *entity.Airport
	ArrivalAirport   *entity.Airport
	Airline          *entity.Airline

	// DepartureUTC and ArrivalUTC are set when the airport time zone is known
	DepartureUTC *time.Time
	ArrivalUTC   *time.Time
}

// ExtractorOption configures a FlightExtractor
type ExtractorOption func(*FlightExtractor)

// WithAirportRepository enables airport resolution
func WithAirportRepository(repo repository.AirportRepository) ExtractorOption {
	return func(fe *FlightExtractor) {
		fe.airportRepo = repo
	}
}

// WithAirlineRepository enables airline resolution
func WithAirlineRepository(repo repository.AirlineRepository) ExtractorOption {
	return func(fe *FlightExtractor) {
		fe.airlineRepo = repo
	}
}

// WithMetrics records extraction metrics
func WithMetrics(m *metrics.Metrics) ExtractorOption {
	return func(fe *FlightExtractor) {
		fe.metrics = m
	}
}

// WithStrictAirports rejects airport codes that are not three upper-case
// letters or, when an airport repository is set, not known to it
func WithStrictAirports(strict bool) ExtractorOption {
	return func(fe *FlightExtractor) {
		fe.strictAirports = strict
	}
}

// FlightExtractor extracts flight bookings from emails
type FlightExtractor struct {
	agent          FlightAgent
	airportRepo    repository.AirportRepository
	airlineRepo    repository.AirlineRepository
	metrics        *metrics.Metrics
	strictAirports bool
	logger         logger.Logger
}

// NewFlightExtractor creates a new flight extractor
func NewFlightExtractor(flightAgent FlightAgent, logger logger.Logger, opts ...ExtractorOption) *FlightExtractor {
	fe := &FlightExtractor{
		agent:  flightAgent,
		logger: logger,
	}
	for _, opt := range opts {
		opt(fe)
	}
	return fe
}

// ExtractEmail extracts the flight booking of a stored email
func (fe *FlightExtractor) ExtractEmail(ctx context.Context, email *entity.Email) (*Extraction, error) {
	input, err := email.Input()
	if err != nil {
		return nil, &agent.ValidationError{Stage: agent.StageInput, Field: "email_content", Reason: err.Error(), Err: err}
	}
	return fe.Extract(ctx, input)
}

// Extract runs the agent on input and resolves reference data
func (fe *FlightExtractor) Extract(ctx context.Context, input entity.EmailInput) (*Extraction, error) {
	started := time.Now()

	extraction, err := fe.extract(ctx, input)
	fe.observe(started, extraction, err)
	if err != nil {
		fe.logger.Error("Flight extraction failed", "error", err)
		return nil, err
	}

	fe.logger.Info("Flight extracted",
		"runId", extraction.Run.ID,
		"flightNumber", extraction.Flight.FlightNumber,
		"from", extraction.Flight.FromAirport,
		"to", extraction.Flight.ToAirport,
		"status", extraction.Flight.Status,
		"costUsd", extraction.Run.CostUSD,
		"latency", extraction.Run.Latency)
	return extraction, nil
}

func (fe *FlightExtractor) extract(ctx context.Context, input entity.EmailInput) (*Extraction, error) {
	run, err := fe.agent.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	extraction := &Extraction{
		Flight: run.Output,
		Run:    run.RunInfo,
	}

	if fe.strictAirports {
		for _, field := range []struct{ name, code string }{
			{"from_airport", run.Output.FromAirport},
			{"to_airport", run.Output.ToAirport},
		} {
			if err := entity.ValidateIATACode(field.code); err != nil {
				return nil, &agent.ValidationError{Stage: agent.StageOutput, Field: field.name, Reason: err.Error(), Err: err}
			}
		}
	}

	if fe.airportRepo != nil {
		departure, err := fe.resolveAirport(ctx, "from_airport", run.Output.FromAirport)
		if err != nil {
			return nil, err
		}
		arrival, err := fe.resolveAirport(ctx, "to_airport", run.Output.ToAirport)
		if err != nil {
			return nil, err
		}
		extraction.DepartureAirport = departure
		extraction.ArrivalAirport = arrival
		extraction.DepartureUTC = fe.toUTC(run.Output.Departure, departure)
		extraction.ArrivalUTC = fe.toUTC(run.Output.Arrival, arrival)
	}

	if fe.airlineRepo != nil {
		extraction.Airline = fe.resolveAirline(ctx, run.Output.FlightNumber)
	}

	return extraction, nil
}

// resolveAirport looks up code. Unknown codes are an error only in strict mode.
func (fe *FlightExtractor) resolveAirport(ctx context.Context, field, code string) (*entity.Airport, error) {
	airport, err := fe.airportRepo.GetByCode(ctx, code)
	if err == nil {
		return airport, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up airport %s: %w", code, err)
	}
	if fe.strictAirports {
		return nil, &agent.ValidationError{
			Stage:  agent.StageOutput,
			Field:  field,
			Reason: fmt.Sprintf("unknown airport %q", code),
			Err:    err,
		}
	}
	fe.logger.Warn("Airport not found in reference data", "field", field, "code", code)
	return nil, nil
}

// resolveAirline looks up the airline designator in front of a flight number
func (fe *FlightExtractor) resolveAirline(ctx context.Context, flightNumber string) *entity.Airline {
	code := AirlineDesignator(flightNumber)
	if code == "" {
		return nil
	}
	airline, err := fe.airlineRepo.GetByCode(ctx, code)
	if err != nil {
		fe.logger.Warn("Airline lookup failed", "code", code, "error", err)
		return nil
	}
	return airline
}

func (fe *FlightExtractor) toUTC(ts entity.Timestamp, airport *entity.Airport) *time.Time {
	if ts.IsZero() {
		return nil
	}
	if !ts.IsFloating() {
		utc := ts.UTC()
		return &utc
	}
	if airport == nil {
		return nil
	}
	loc, err := airport.Location()
	if err != nil {
		fe.logger.Warn("Cannot resolve airport time zone", "code", airport.Code, "error", err)
		return nil
	}
	utc := ts.Resolve(loc).UTC()
	return &utc
}

func (fe *FlightExtractor) observe(started time.Time, extraction *Extraction, err error) {
	if fe.metrics == nil {
		return
	}
	fe.metrics.ProcessingTime.Observe(time.Since(started).Seconds())
	if err != nil {
		fe.metrics.Extractions.WithLabelValues("failed").Inc()
		fe.metrics.ErrorsCount.WithLabelValues(ErrorKind(err)).Inc()
		return
	}
	fe.metrics.Extractions.WithLabelValues("success").Inc()
	fe.metrics.CostUSD.Add(extraction.Run.CostUSD)
}

// ErrorKind classifies err for metrics and HTTP responses
func ErrorKind(err error) string {
	var validationErr *agent.ValidationError
	var transportErr *workflowai.TransportError
	var configErr *workflowai.ConfigError
	switch {
	case errors.As(err, &validationErr):
		return metrics.KindValidation
	case errors.As(err, &transportErr):
		return metrics.KindTransport
	case errors.As(err, &configErr):
		return metrics.KindConfig
	default:
		return metrics.KindOther
	}
}

// AirlineDesignator returns the two-character airline code of a flight
// number such as "UA789" or "GA/404"
func AirlineDesignator(flightNumber string) string {
	code := strings.ToUpper(strings.TrimSpace(flightNumber))
	code = strings.ReplaceAll(code, "/", "")
	code = strings.ReplaceAll(code, " ", "")
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}
