package workflowai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/_/agents", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "flight-info-extractor", req.ID)
		assert.JSONEq(t, `{"type":"object"}`, string(req.InputSchema))

		w.Write([]byte(`{"id":"flight-info-extractor","schema_id":3,"variant_id":"v1"}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", WithAPIURL(server.URL))
	resp, err := client.RegisterAgent(context.Background(), &RegisterRequest{
		ID:           "flight-info-extractor",
		InputSchema:  json.RawMessage(`{"type":"object"}`),
		OutputSchema: json.RawMessage(`{"type":"object"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.SchemaID)
	assert.Equal(t, "v1", resp.VariantID)
}

func TestRegisterAgentWithoutSchemaID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"flight-info-extractor"}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", WithAPIURL(server.URL))
	_, err := client.RegisterAgent(context.Background(), &RegisterRequest{ID: "flight-info-extractor"})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "register", transportErr.Op)
}

func TestRunAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/_/agents/flight-info-extractor/schemas/2/run", r.URL.Path)

		var req RunRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemini-2.0-flash-latest", req.Version.Model)
		assert.False(t, req.Stream)
		assert.JSONEq(t, `{"email_content":"hello"}`, string(req.TaskInput))

		w.Write([]byte(`{
			"id": "run-1",
			"task_output": {"ok": true},
			"duration_seconds": 1.18,
			"cost_usd": 0.00009,
			"version": {"properties": {"model": "gemini-2.0-flash-001"}}
		}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", WithAPIURL(server.URL))
	resp, err := client.RunAgent(context.Background(), "flight-info-extractor", 2, &RunRequest{
		TaskInput: json.RawMessage(`{"email_content":"hello"}`),
		Version:   VersionProperties{Model: "gemini-2.0-flash-latest"},
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.ID)
	assert.JSONEq(t, `{"ok":true}`, string(resp.TaskOutput))
	assert.InDelta(t, 1.18, resp.DurationSeconds, 1e-9)
	assert.InDelta(t, 0.00009, resp.CostUSD, 1e-12)
	require.NotNil(t, resp.Version)
	assert.Equal(t, "gemini-2.0-flash-001", resp.Version.Properties.Model)
}

func TestRunAgentStatusErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCode     string
		wantMessage  string
		unauthorized bool
	}{
		{
			name:         "unauthorized envelope",
			status:       http.StatusUnauthorized,
			body:         `{"error":{"code":"invalid_api_key","message":"Invalid API key"}}`,
			wantCode:     "invalid_api_key",
			wantMessage:  "Invalid API key",
			unauthorized: true,
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        "upstream unavailable",
			wantMessage: "upstream unavailable",
		},
		{
			name:        "empty body",
			status:      http.StatusInternalServerError,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("sk-test", WithAPIURL(server.URL))
			_, err := client.RunAgent(context.Background(), "a", 1, &RunRequest{})

			var transportErr *TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, tt.status, transportErr.StatusCode)
			assert.Equal(t, tt.wantCode, transportErr.Code)
			assert.Equal(t, tt.wantMessage, transportErr.Message)
			assert.Equal(t, tt.unauthorized, transportErr.Unauthorized())
		})
	}
}

func TestRunAgentUndecodableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	client := NewClient("sk-test", WithAPIURL(server.URL))
	_, err := client.RunAgent(context.Background(), "a", 1, &RunRequest{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusOK, transportErr.StatusCode)
}

func TestMissingAPIKeyFailsBeforeRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := NewClient("", WithAPIURL(server.URL))

	_, err := client.RegisterAgent(context.Background(), &RegisterRequest{ID: "a"})
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, APIKeyEnv, configErr.Key)

	_, err = client.RunAgent(context.Background(), "a", 1, &RunRequest{})
	require.ErrorAs(t, err, &configErr)

	assert.Zero(t, hits.Load())
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := NewClient("sk-test", WithAPIURL(serverURL))
	_, err := client.RunAgent(context.Background(), "a", 1, &RunRequest{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Zero(t, transportErr.StatusCode)
	assert.Error(t, transportErr.Unwrap())
}

func TestRunAgentHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient("sk-test", WithAPIURL(server.URL), WithTimeout(50*time.Millisecond))
	_, err := client.RunAgent(context.Background(), "a", 1, &RunRequest{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestRunAgentContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("sk-test", WithAPIURL(server.URL))
	_, err := client.RunAgent(ctx, "a", 1, &RunRequest{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunURL(t *testing.T) {
	client := NewClient("sk-test")
	assert.Equal(t,
		"https://workflowai.com/_/agents/flight-info-extractor/runs/0195ee02",
		client.RunURL("flight-info-extractor", "0195ee02"))

	client = NewClient("sk-test", WithWebURL("http://localhost:3000/"))
	assert.Equal(t, "http://localhost:3000/_/agents/a/runs/r", client.RunURL("a", "r"))
}
