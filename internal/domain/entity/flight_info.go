package entity

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

// FlightStatus is the status of a flight booking
type FlightStatus string

const (
	FlightStatusConfirmed FlightStatus = "Confirmed"
	FlightStatusPending   FlightStatus = "Pending"
	FlightStatusCancelled FlightStatus = "Cancelled"
	FlightStatusDelayed   FlightStatus = "Delayed"
	FlightStatusCompleted FlightStatus = "Completed"
)

// FlightStatuses lists every accepted FlightStatus
var FlightStatuses = []FlightStatus{
	FlightStatusConfirmed,
	FlightStatusPending,
	FlightStatusCancelled,
	FlightStatusDelayed,
	FlightStatusCompleted,
}

// ParseFlightStatus converts value to a FlightStatus. Matching is exact.
func ParseFlightStatus(value string) (FlightStatus, error) {
	status := FlightStatus(value)
	if !status.Valid() {
		return "", fmt.Errorf("unknown flight status %q", value)
	}
	return status, nil
}

// Valid reports whether s is one of FlightStatuses
func (s FlightStatus) Valid() bool {
	for _, known := range FlightStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// UnmarshalJSON rejects values outside FlightStatuses
func (s *FlightStatus) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("flight status must be a string: %w", err)
	}
	status, err := ParseFlightStatus(value)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// JSONSchema describes FlightStatus as a closed string enum
func (FlightStatus) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(FlightStatuses))
	for _, status := range FlightStatuses {
		enum = append(enum, string(status))
	}
	return &jsonschema.Schema{
		Type:        "string",
		Enum:        enum,
		Description: "Possible statuses for a flight booking.",
	}
}

// EmailInput is the input of the flight info agent
type EmailInput struct {
	EmailContent string `json:"email_content" validate:"required" jsonschema:"description=Raw content of the booking email"`
}

// FlightInfo is the flight booking extracted from an email
type FlightInfo struct {
	Passenger    string       `json:"passenger" validate:"required"`
	Airline      string       `json:"airline" validate:"required"`
	FlightNumber string       `json:"flight_number" validate:"required"`
	FromAirport  string       `json:"from_airport" validate:"required" jsonschema:"description=Three-letter IATA airport code for departure"`
	ToAirport    string       `json:"to_airport" validate:"required" jsonschema:"description=Three-letter IATA airport code for arrival"`
	Departure    Timestamp    `json:"departure"`
	Arrival      Timestamp    `json:"arrival"`
	Status       FlightStatus `json:"status" validate:"required,oneof=Confirmed Pending Cancelled Delayed Completed"`
}

var codeValidator = validator.New()

// ValidateIATACode checks that code is three upper-case letters
func ValidateIATACode(code string) error {
	if err := codeValidator.Var(code, "len=3,alpha,uppercase"); err != nil {
		return fmt.Errorf("%q is not a three-letter IATA code", code)
	}
	return nil
}
