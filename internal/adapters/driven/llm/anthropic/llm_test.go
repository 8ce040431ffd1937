package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)

	svc, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestChat_LiftsSystemMessages(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hello "},{"type":"text","text":"there"}]}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "yo"},
		{Role: "user", Content: "again"},
	}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, "rules", got.System)
	assert.Len(t, got.Messages, 3)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
}

func TestChat_JSONPrefill(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"\"response\":\"ok\"}"}]}`))
	})

	out, err := svc.Generate(context.Background(), "give json", driven.GenerateOptions{JSON: true, MaxTokens: 200})

	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"ok"}`, out)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "{", got.Messages[1].Content)
	assert.Equal(t, 200, got.MaxTokens)
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, `{"error":{"message":"nope"}}`, domain.ErrLLMUnavailable},
		{"overloaded", 529, `{}`, domain.ErrNetwork},
		{"empty content", http.StatusOK, `{"content":[]}`, domain.ErrValidation},
		{"api error body", http.StatusOK, `{"error":{"type":"x","message":"boom"}}`, domain.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	})
	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrLLMUnavailable)
}
