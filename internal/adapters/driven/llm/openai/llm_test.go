package openai

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
	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)

	svc, err := NewLLMService(LLMConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestChat_SendsMessagesAndJSONMode(t *testing.T) {
	var got chatCompletionRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{JSON: true, Temperature: 0.2})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
}

func TestGenerate_PassesStopWords(t *testing.T) {
	var got chatCompletionRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"done"}}]}`))
	})

	out, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{StopWords: []string{"```"}})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"```"}, got.Stop)
	assert.Nil(t, got.ResponseFormat)
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorised", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, domain.ErrLLMUnavailable},
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.ErrNetwork},
		{"garbage", http.StatusOK, `not json`, domain.ErrValidation},
		{"no choices", http.StatusOK, `{"choices":[]}`, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChat_Unreachable(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	require.NoError(t, svc.Ping(context.Background()))

	svc.apiKey = "wrong"
	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrLLMUnavailable)
	assert.NoError(t, svc.Close())
}
