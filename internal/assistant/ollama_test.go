package assistant_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/assistant"
	"github.com/MrJamesThe3rd/balancea/internal/logger"
)

func newClient(url string) *assistant.OllamaClient {
	return assistant.NewOllamaClient(assistant.OllamaConfig{
		URL:           url + "/",
		Model:         "llama3.2:3b-instruct-fp16",
		Timeout:       time.Second,
		HealthTimeout: time.Second,
		Temperature:   0.7,
		MaxTokens:     300,
	}, logger.Nop())
}

func TestOllamaClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.2:3b-instruct-fp16", body["model"])
		assert.Equal(t, "hello", body["prompt"])
		assert.Equal(t, false, body["stream"])

		opts, ok := body["options"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 0.7, opts["temperature"], 1e-9)
		assert.InDelta(t, 300, opts["num_predict"], 1e-9)

		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"  Hi there!  ","done":true}`))
	}))
	defer srv.Close()

	got, err := newClient(srv.URL).Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", got)
}

func TestOllamaClient_Generate_Errors(t *testing.T) {
	type testCase struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name: "NonSuccessStatus",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				var statusErr *assistant.StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
				assert.Equal(t, "model not found", statusErr.Body)
			},
		},
		{
			name: "EmptyResponse",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"response":"   "}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, assistant.ErrEmptyResponse)
			},
		},
		{
			name: "BadJSON",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "decoding response")
			},
		},
		{
			name: "Timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(3 * time.Second):
				}
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, context.DeadlineExceeded)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newClient(srv.URL).Generate(context.Background(), "hi")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOllamaClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(url)

	_, err := c.Generate(context.Background(), "hi")
	assert.True(t, errors.Is(err, syscall.ECONNREFUSED), "got %v", err)

	assert.Error(t, c.Health(context.Background()))
}

func TestOllamaClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL)
	assert.NoError(t, c.Health(context.Background()))
	assert.Equal(t, "llama3.2:3b-instruct-fp16", c.Model())
}
