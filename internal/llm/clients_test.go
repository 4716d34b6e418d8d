package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudradar/fraud-radar/internal/model"
)

func TestNewClientProviderSelection(t *testing.T) {
	client, err := NewClient(Config{Provider: "gemini", APIKey: "key"})
	require.NoError(t, err)
	assert.IsType(t, &geminiClient{}, client)

	client, err = NewClient(Config{APIKey: "key"})
	require.NoError(t, err)
	assert.IsType(t, &geminiClient{}, client, "gemini is the default provider")

	client, err = NewClient(Config{Provider: "Anthropic", APIKey: "key"})
	require.NoError(t, err)
	assert.IsType(t, &anthropicClient{}, client)

	_, err = NewClient(Config{Provider: "openai", APIKey: "key"})
	assert.Error(t, err)

	_, err = NewClient(Config{Provider: "gemini"})
	assert.Error(t, err, "API key is required")
}

func TestGeminiChat(t *testing.T) {
	var captured geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []struct {
				Content geminiContent `json:"content"`
			}{
				{Content: geminiContent{Parts: []geminiPart{{Text: "  The payment is a round amount.  "}}}},
			},
		})
	}))
	defer srv.Close()

	raw, err := newGeminiClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	client := raw.(*geminiClient)
	client.baseURL = srv.URL

	history := []model.ChatMessage{
		{Role: model.ChatRoleUser, Text: "Why is TXN-N1 risky?"},
		{Role: model.ChatRoleModel, Text: "It matches the round-amount pattern."},
	}
	text, err := client.Chat(context.Background(), history, "Tell me more.")
	require.NoError(t, err)
	assert.Equal(t, "The payment is a round amount.", text)

	require.NotNil(t, captured.SystemInstruction)
	require.Len(t, captured.Contents, 3)
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "model", captured.Contents[1].Role)
	assert.Equal(t, "Tell me more.", captured.Contents[2].Parts[0].Text)
}

func TestGeminiChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	raw, err := newGeminiClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	client := raw.(*geminiClient)
	client.baseURL = srv.URL

	_, err = client.Chat(context.Background(), nil, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestGeminiChatEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer srv.Close()

	raw, err := newGeminiClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	client := raw.(*geminiClient)
	client.baseURL = srv.URL

	_, err = client.Chat(context.Background(), nil, "hello")
	assert.Error(t, err)
}

func TestAnthropicChat(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Content: []struct {
				Text string `json:"text"`
			}{{Text: "Looks like transaction splitting."}},
		})
	}))
	defer srv.Close()

	raw, err := newAnthropicClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	client := raw.(*anthropicClient)
	client.baseURL = srv.URL

	history := []model.ChatMessage{
		{Role: model.ChatRoleModel, Text: "Earlier reply."},
	}
	text, err := client.Chat(context.Background(), history, "What about TXN-S1?")
	require.NoError(t, err)
	assert.Equal(t, "Looks like transaction splitting.", text)

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "assistant", first["role"], "model role maps to assistant")
	assert.NotEmpty(t, captured["system"])
}
