package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fraudradar/fraud-radar/internal/common"
	"github.com/fraudradar/fraud-radar/internal/model"
)

// geminiClient implements the Client interface for the Google Gemini API.
type geminiClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	m := cfg.Model
	if m == "" {
		m = "gemini-2.0-flash"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &geminiClient{
		apiKey:      cfg.APIKey,
		model:       m,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConf  `json:"generationConfig,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConf struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Chat sends the conversation to Gemini and returns the reply text.
func (c *geminiClient) Chat(ctx context.Context, history []model.ChatMessage, message string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, h := range history {
		contents = append(contents, geminiContent{
			Role:  string(h.Role),
			Parts: []geminiPart{{Text: h.Text}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  string(model.ChatRoleUser),
		Parts: []geminiPart{{Text: message}},
	})

	reqBody := geminiRequest{
		Contents:          contents,
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
		GenerationConfig: &geminiGenConf{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: gemini API error (status %d)", common.ErrRateLimit, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text), nil
}
