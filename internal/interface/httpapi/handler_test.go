package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/usecase"
	"flight-extractor/pkg/agent"
	"flight-extractor/pkg/logger"
	"flight-extractor/pkg/workflowai"
)

type stubExtractor struct {
	extraction *usecase.Extraction
	err        error
	calls      int
}

func (s *stubExtractor) Extract(_ context.Context, _ entity.EmailInput) (*usecase.Extraction, error) {
	s.calls++
	return s.extraction, s.err
}

func newServer(t *testing.T, extractor Extractor) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(extractor, logger.Nop()).Routes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, server *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(server.URL+"/v1/flight-info", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestExtractFlightInfo(t *testing.T) {
	departureUTC := time.Date(2024, time.March, 25, 16, 0, 0, 0, time.UTC)
	stub := &stubExtractor{extraction: &usecase.Extraction{
		Flight: entity.FlightInfo{
			Passenger:    "Jane Smith",
			Airline:      "United Airlines",
			FlightNumber: "UA789",
			FromAirport:  "SFO",
			ToAirport:    "JFK",
			Departure:    entity.FloatingTimestamp(2024, time.March, 25, 9, 0, 0),
			Arrival:      entity.FloatingTimestamp(2024, time.March, 25, 17, 15, 0),
			Status:       entity.FlightStatusConfirmed,
		},
		Run: agent.RunInfo{
			ID:       "run-1",
			AgentID:  "flight-info-extractor",
			SchemaID: 1,
			Model:    "gemini-2.0-flash-latest",
			CostUSD:  0.00009,
			Latency:  1500 * time.Millisecond,
			URL:      "https://workflowai.com/_/agents/flight-info-extractor/runs/run-1",
		},
		DepartureAirport: &entity.Airport{Code: "SFO", Name: "San Francisco International"},
		DepartureUTC:     &departureUTC,
	}}
	server := newServer(t, stub)

	resp, body := post(t, server, `{"email_content":"Flight: UA789"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err := uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	flight := body["flight_info"].(map[string]any)
	assert.Equal(t, "UA789", flight["flight_number"])
	assert.Equal(t, "2024-03-25T09:00:00", flight["departure"])
	assert.Equal(t, "Confirmed", flight["status"])

	run := body["run"].(map[string]any)
	assert.Equal(t, "run-1", run["id"])
	assert.Equal(t, 1.5, run["latency_seconds"])

	assert.Equal(t, "San Francisco International", body["departure_airport"].(map[string]any)["name"])
	assert.Equal(t, "2024-03-25T16:00:00Z", body["departure_utc"])
	assert.NotContains(t, body, "arrival_airport")
	assert.NotContains(t, body, "airline_ref")
}

func TestExtractFlightInfoErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
		wantCalls  int
	}{
		{
			name:       "malformed json",
			body:       `{"email_content":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "unknown field",
			body:       `{"email":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "input validation",
			body:       `{"email_content":""}`,
			err:        &agent.ValidationError{Stage: agent.StageInput, Field: "email_content", Reason: "failed on the 'required' rule"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
			wantCalls:  1,
		},
		{
			name:       "output validation",
			body:       `{"email_content":"x"}`,
			err:        &agent.ValidationError{Stage: agent.StageOutput, Field: "status", Reason: "bad enum"},
			wantStatus: http.StatusBadGateway,
			wantCode:   "validation",
			wantCalls:  1,
		},
		{
			name:       "transport",
			body:       `{"email_content":"x"}`,
			err:        &workflowai.TransportError{Op: "run", StatusCode: 503, Message: "unavailable"},
			wantStatus: http.StatusBadGateway,
			wantCode:   "transport",
			wantCalls:  1,
		},
		{
			name:       "missing credential",
			body:       `{"email_content":"x"}`,
			err:        &workflowai.ConfigError{Key: workflowai.APIKeyEnv, Reason: "not set"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "config",
			wantCalls:  1,
		},
		{
			name:       "unexpected",
			body:       `{"email_content":"x"}`,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "other",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubExtractor{err: tt.err}
			server := newServer(t, stub)

			resp, body := post(t, server, tt.body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, body["error"].(map[string]any)["code"])
			assert.Equal(t, tt.wantCalls, stub.calls)
		})
	}
}

func TestRequestIDPreserved(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.Header.Get(RequestIDHeader))
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/flight-info", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestMethodNotAllowed(t *testing.T) {
	server := newServer(t, &stubExtractor{})

	resp, err := http.Get(server.URL + "/v1/flight-info")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
