package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// CompatProvider speaks the OpenAI-compatible chat completion wire format
// used by Novita and similar hosted endpoints.
type CompatProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewCompatProvider creates a provider for an OpenAI-compatible endpoint.
func NewCompatProvider(config Config) (*CompatProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("compat provider: API key is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		return nil, fmt.Errorf("compat provider: base URL is required")
	}

	return &CompatProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  config.APIKey,
		// Per-attempt deadlines come from the caller's context.
		httpClient: &http.Client{},
	}, nil
}

// Name returns the provider name.
func (p *CompatProvider) Name() string {
	return "compat"
}

// Complete sends one chat completion request.
func (p *CompatProvider) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("post chat completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody), 200),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
