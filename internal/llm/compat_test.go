package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func compatServer(t *testing.T, handler http.HandlerFunc) *CompatProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider, err := NewCompatProvider(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("NewCompatProvider: %v", err)
	}
	return provider
}

func TestCompatProvider_WireFormat(t *testing.T) {
	var captured chatRequest
	provider := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": `{"roles": []}`}},
			},
		})
	})

	got, err := provider.Complete(context.Background(), Request{
		Model:       "baidu/ernie-4.5-vl-28b-a3b",
		Prompt:      "classify these sections",
		System:      "you classify sections",
		Temperature: 0.3,
		MaxTokens:   4000,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != `{"roles": []}` {
		t.Errorf("Content = %q", got)
	}

	if captured.Model != "baidu/ernie-4.5-vl-28b-a3b" {
		t.Errorf("Model = %q", captured.Model)
	}
	if captured.MaxTokens != 4000 {
		t.Errorf("MaxTokens = %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("Expected system + user messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("Message roles = %q, %q", captured.Messages[0].Role, captured.Messages[1].Role)
	}
}

func TestCompatProvider_NoSystemMessage(t *testing.T) {
	var captured chatRequest
	provider := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	})

	if _, err := provider.Complete(context.Background(), Request{Model: "m", Prompt: "p"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Errorf("Expected a single user message, got %+v", captured.Messages)
	}
}

func TestCompatProvider_APIError(t *testing.T) {
	provider := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	})

	_, err := provider.Complete(context.Background(), Request{Model: "m", Prompt: "p"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if !IsRetryable(err) {
		t.Error("Expected 429 to be retryable")
	}
}

func TestCompatProvider_EmptyChoices(t *testing.T) {
	provider := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := provider.Complete(context.Background(), Request{Model: "m", Prompt: "p"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestCompatProvider_BlankContent(t *testing.T) {
	provider := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "   "}}]}`))
	})

	_, err := provider.Complete(context.Background(), Request{Model: "m", Prompt: "p"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewCompatProvider_RequiresKeyAndURL(t *testing.T) {
	if _, err := NewCompatProvider(Config{BaseURL: "http://x"}); err == nil {
		t.Error("Expected error without API key")
	}
	if _, err := NewCompatProvider(Config{APIKey: "k"}); err == nil {
		t.Error("Expected error without base URL")
	}
}
