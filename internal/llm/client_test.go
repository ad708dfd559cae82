package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropedev/MeuAssistente/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:      "sk-test",
		BaseURL:     server.URL,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	require.NoError(t, err)
	return client
}

func TestClient_Generate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		assert.Equal(t, 500, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "sistema", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "pergunta", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"id":"1","choices":[{"message":{"role":"assistant","content":"  Olá!  \n"}}]}`))
	})

	got, err := client.Generate(context.Background(), "sistema", "pergunta")
	require.NoError(t, err)
	assert.Equal(t, "Olá!", got)
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.ErrorType
		detail string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, domain.ErrorTypeAuth, "Incorrect API key"},
		{"forbidden", http.StatusForbidden, `forbidden`, domain.ErrorTypeAuth, "forbidden"},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"overloaded"}}`, domain.ErrorTypeAPI, "overloaded"},
		{"no choices", http.StatusOK, `{"choices":[]}`, domain.ErrorTypeAPI, "no choices"},
		{"bad json", http.StatusOK, `{`, domain.ErrorTypeAPI, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Generate(context.Background(), "s", "p")
			require.Error(t, err)
			assert.True(t, domain.IsType(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestClient_NoRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Generate(context.Background(), "s", "p")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))

	c, err := NewClient(Config{APIKey: "k", BaseURL: "http://x/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "http://x/v1", c.baseURL)
	assert.Equal(t, "gpt-3.5-turbo", c.Model())
}
