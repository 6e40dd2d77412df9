package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("selects the provider implementation", func(t *testing.T) {
		for _, tc := range []struct {
			provider Provider
			want     string
		}{
			{ProviderOpenAI, "openai"},
			{ProviderAnthropic, "anthropic"},
			{ProviderGemini, "gemini"},
		} {
			client, err := New(Config{Provider: tc.provider, APIKey: "k"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, client.Name())
		}
	})

	t.Run("rejects unknown providers", func(t *testing.T) {
		_, err := New(Config{Provider: "ollama"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ollama")
	})
}

func TestProvider_Valid(t *testing.T) {
	for _, p := range Providers() {
		assert.True(t, p.Valid())
	}
	assert.False(t, Provider("mistral").Valid())
	assert.False(t, Provider("").Valid())
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req openaiRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-4o-mini", req.Model)
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "make cards", req.Messages[0].Content)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": "[]"}},
				},
			})
		}))
		defer server.Close()

		client := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
		got, err := client.Complete(context.Background(), "make cards")
		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer server.Close()

		client := NewOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty completion")
	})
}

func TestAnthropicClient_Complete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

			var req anthropicRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "user", req.Messages[0].Role)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"content": []map[string]any{
					{"type": "text", "text": "the reply"},
				},
			})
		}))
		defer server.Close()

		client := NewAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
		got, err := client.Complete(context.Background(), "make cards")
		require.NoError(t, err)
		assert.Equal(t, "the reply", got)
	})

	t.Run("API error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"content": []any{},
				"error":   map[string]any{"type": "overloaded_error", "message": "try later"},
			})
		}))
		defer server.Close()

		client := NewAnthropicClient(Config{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overloaded_error")
	})
}

func TestGeminiClient_Complete(t *testing.T) {
	t.Run("successful completion concatenates parts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

			var req geminiRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			require.Len(t, req.Contents[0].Parts, 1)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]any{
						{"text": "part one "},
						{"text": "part two"},
					}}},
				},
			})
		}))
		defer server.Close()

		client := NewGeminiClient(Config{APIKey: "test-key", BaseURL: server.URL})
		got, err := client.Complete(context.Background(), "make cards")
		require.NoError(t, err)
		assert.Equal(t, "part one part two", got)
	})

	t.Run("no candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
		}))
		defer server.Close()

		client := NewGeminiClient(Config{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty completion")
	})
}

func TestClientDefaults(t *testing.T) {
	t.Run("default models", func(t *testing.T) {
		assert.Equal(t, openaiDefaultModel, NewOpenAIClient(Config{}).Model())
		assert.Equal(t, anthropicDefaultModel, NewAnthropicClient(Config{}).Model())
		assert.Equal(t, geminiDefaultModel, NewGeminiClient(Config{}).Model())
	})

	t.Run("custom model wins", func(t *testing.T) {
		client := NewOpenAIClient(Config{Model: "gpt-4.1"})
		assert.Equal(t, "gpt-4.1", client.Model())
	})
}
