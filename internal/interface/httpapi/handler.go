package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/usecase"
	"flight-extractor/pkg/agent"
	"flight-extractor/pkg/logger"
	"flight-extractor/pkg/metrics"
)

const maxBodyBytes = 1 << 20

// Extractor extracts a flight booking from email text
type Extractor interface {
	Extract(ctx context.Context, input entity.EmailInput) (*usecase.Extraction, error)
}

// Handler serves the flight info API
type Handler struct {
	extractor Extractor
	logger    logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(extractor Extractor, logger logger.Logger) *Handler {
	return &Handler{
		extractor: extractor,
		logger:    logger,
	}
}

// Routes registers the API routes on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.Handle("POST /v1/flight-info", RequestID(http.HandlerFunc(h.extractFlightInfo)))
}

// RunResponse is the run metadata returned with every extraction
type RunResponse struct {
	ID             string  `json:"id"`
	AgentID        string  `json:"agent_id"`
	SchemaID       int     `json:"schema_id"`
	Model          string  `json:"model"`
	CostUSD        float64 `json:"cost_usd"`
	LatencySeconds float64 `json:"latency_seconds"`
	URL            string  `json:"url"`
}

// ExtractionResponse is the body of a successful extraction
type ExtractionResponse struct {
	FlightInfo       entity.FlightInfo `json:"flight_info"`
	Run              RunResponse       `json:"run"`
	DepartureAirport *entity.Airport   `json:"departure_airport,omitempty"`
	ArrivalAirport   *entity.Airport   `json:"arrival_airport,omitempty"`
	DepartureUTC     *time.Time        `json:"departure_utc,omitempty"`
	ArrivalUTC       *time.Time        `json:"arrival_utc,omitempty"`
	AirlineRef       *entity.Airline   `json:"airline_ref,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (h *Handler) extractFlightInfo(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("requestId", r.Header.Get(RequestIDHeader))

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var input entity.EmailInput
	if err := dec.Decode(&input); err != nil {
		log.Warn("Malformed request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_request", Message: err.Error()}})
		return
	}

	extraction, err := h.extractor.Extract(r.Context(), input)
	if err != nil {
		status, body := errorResponse(err)
		log.Error("Extraction request failed", "status", status, "error", err)
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, ExtractionResponse{
		FlightInfo: extraction.Flight,
		Run: RunResponse{
			ID:             extraction.Run.ID,
			AgentID:        extraction.Run.AgentID,
			SchemaID:       extraction.Run.SchemaID,
			Model:          extraction.Run.Model,
			CostUSD:        extraction.Run.CostUSD,
			LatencySeconds: extraction.Run.Latency.Seconds(),
			URL:            extraction.Run.URL,
		},
		DepartureAirport: extraction.DepartureAirport,
		ArrivalAirport:   extraction.ArrivalAirport,
		DepartureUTC:     extraction.DepartureUTC,
		ArrivalUTC:       extraction.ArrivalUTC,
		AirlineRef:       extraction.Airline,
	})
}

// errorResponse maps an extraction error to a status code and body
func errorResponse(err error) (int, errorBody) {
	detail := errorDetail{Code: usecase.ErrorKind(err), Message: err.Error()}

	switch detail.Code {
	case metrics.KindValidation:
		var ve *agent.ValidationError
		errors.As(err, &ve)
		detail.Field = ve.Field
		if ve.Stage == agent.StageInput {
			return http.StatusBadRequest, errorBody{Error: detail}
		}
		return http.StatusBadGateway, errorBody{Error: detail}
	case metrics.KindTransport:
		return http.StatusBadGateway, errorBody{Error: detail}
	case metrics.KindConfig:
		return http.StatusInternalServerError, errorBody{Error: detail}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorBody{Error: errorDetail{Code: "timeout", Message: err.Error()}}
	}
	return http.StatusInternalServerError, errorBody{Error: errorDetail{Code: metrics.KindOther, Message: "internal error"}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RequestIDHeader carries the request id in requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a request id to requests that do not carry one
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
