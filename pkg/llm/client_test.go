package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

// scriptedProvider returns the queued errors in order, then succeeds with text.
type scriptedProvider struct {
	failures []error
	text     string
	calls    int
	last     ProviderRequest
}

func (p *scriptedProvider) Complete(_ context.Context, req ProviderRequest) (resp ProviderResponse, err error) {
	p.calls++
	p.last = req
	if p.calls <= len(p.failures) {
		err = p.failures[p.calls-1]
		return resp, err
	}
	resp.Text = p.text
	resp.Usage = Usage{PromptTokens: 10, CompletionTokens: 5}
	return resp, err
}

// recordingSleeper records delays without waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func rateLimited() error {
	return &ProviderError{Kind: KindRateLimited, Status: 429, Message: "slow down"}
}

func TestGenerateRetriesRateLimit(t *testing.T) {
	provider := &scriptedProvider{failures: []error{rateLimited(), rateLimited()}, text: "ok"}
	sleeper := &recordingSleeper{}
	client := NewClient(provider, WithSleeper(sleeper.sleep))

	resp, err := client.Generate(context.Background(), Request{Content: "hi"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != "ok" {
		t.Errorf("Expected text 'ok', got '%s'", resp.Text)
	}

	if provider.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", provider.calls)
	}

	// Exactly two delays, each at least base*3^attempt.
	if len(sleeper.delays) != 2 {
		t.Fatalf("Expected 2 delays, got %v", sleeper.delays)
	}

	minimums := []time.Duration{DefaultBaseDelay, 3 * DefaultBaseDelay}
	for i, d := range sleeper.delays {
		if d < minimums[i] {
			t.Errorf("Delay %d: expected at least %v, got %v", i, minimums[i], d)
		}
	}

	if len(resp.Retries) != 2 {
		t.Errorf("Expected 2 recorded retries, got %v", resp.Retries)
	}

	if resp.Usage.TotalTokens != 15 {
		t.Errorf("Expected total tokens 15, got %d", resp.Usage.TotalTokens)
	}
}

func TestGenerateRateLimitExhausted(t *testing.T) {
	provider := &scriptedProvider{failures: []error{rateLimited(), rateLimited(), rateLimited()}}
	sleeper := &recordingSleeper{}
	client := NewClient(provider, WithSleeper(sleeper.sleep))

	_, err := client.Generate(context.Background(), Request{Content: "hi"})

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected GenerationError, got %v", err)
	}

	if genErr.Kind != KindRateLimited {
		t.Errorf("Expected kind %s, got %s", KindRateLimited, genErr.Kind)
	}

	if genErr.UserMessage() != "Rate limit exceeded. Please wait a minute and try again." {
		t.Errorf("Unexpected user message: %s", genErr.UserMessage())
	}

	if provider.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", provider.calls)
	}
}

func TestGenerateTimeoutRetriesWithFixedDelay(t *testing.T) {
	timeout := errors.Wrap(context.DeadlineExceeded, "request")
	provider := &scriptedProvider{failures: []error{timeout, timeout, timeout}}
	sleeper := &recordingSleeper{}
	client := NewClient(provider, WithSleeper(sleeper.sleep), WithBaseDelay(time.Second))

	_, err := client.Generate(context.Background(), Request{Content: "hi"})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != KindTimeout {
		t.Fatalf("Expected timeout GenerationError, got %v", err)
	}

	for _, d := range sleeper.delays {
		if d != time.Second {
			t.Errorf("Expected fixed 1s delay, got %v", d)
		}
	}
}

func TestGenerateAPIErrorNotRetried(t *testing.T) {
	provider := &scriptedProvider{failures: []error{&ProviderError{Kind: KindAPI, Status: 400, Message: "bad model"}}}
	sleeper := &recordingSleeper{}
	client := NewClient(provider, WithSleeper(sleeper.sleep))

	_, err := client.Generate(context.Background(), Request{Content: "hi"})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != KindAPI {
		t.Fatalf("Expected API GenerationError, got %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("Expected 1 call, got %d", provider.calls)
	}

	if len(sleeper.delays) != 0 {
		t.Errorf("Expected no delays, got %v", sleeper.delays)
	}

	if !strings.Contains(genErr.UserMessage(), "bad model") {
		t.Errorf("Expected upstream message in user message, got %s", genErr.UserMessage())
	}
}

func TestGenerateAbortsWhenContextDone(t *testing.T) {
	provider := &scriptedProvider{failures: []error{rateLimited(), rateLimited()}}
	client := NewClient(provider, WithBaseDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, Request{Content: "hi"})
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}

	if provider.calls != 1 {
		t.Errorf("Expected 1 call before abort, got %d", provider.calls)
	}
}

func TestGenerateForceJSON(t *testing.T) {
	provider := &scriptedProvider{text: "Here you go:\n```json\n{\"score\": 80}\n```"}
	client := NewClient(provider)

	resp, err := client.Generate(context.Background(), Request{Content: "score it", ForceJSON: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	score, ok := resp.JSON["score"].(float64)
	if !ok || score != 80 {
		t.Errorf("Expected score 80, got %v", resp.JSON)
	}

	if !provider.last.ForceJSON {
		t.Error("Expected ForceJSON to reach the provider")
	}
}

func TestGroqProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Missing or incorrect authorization header")
		}

		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "llama-3.3-70b-versatile" {
			t.Errorf("Expected quality model id, got '%s'", req.Model)
		}

		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Error("Expected json_object response format")
		}

		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("Expected system and user messages, got %+v", req.Messages)
		}

		resp := chatResponse{
			ID:      "test-id",
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: `{"ok":true}`}}},
			Usage:   Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewGroqProvider("test-key")
	provider.endpoint = server.URL

	resp, err := provider.Complete(context.Background(), ProviderRequest{
		System:    "sys",
		Content:   "user",
		Model:     ModelQuality,
		ForceJSON: true,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != `{"ok":true}` {
		t.Errorf("Unexpected text: %s", resp.Text)
	}

	if resp.Usage.TotalTokens != 7 {
		t.Errorf("Expected 7 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestGroqProviderStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusGatewayTimeout, KindTimeout},
		{http.StatusBadRequest, KindAPI},
		{http.StatusInternalServerError, KindAPI},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"upstream says no"}}`))
			}))
			defer server.Close()

			provider := NewGroqProvider("test-key")
			provider.endpoint = server.URL

			_, err := provider.Complete(context.Background(), ProviderRequest{Content: "x"})

			var provErr *ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("Expected ProviderError, got %v", err)
			}

			if provErr.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, provErr.Kind)
			}

			if provErr.Message != "upstream says no" {
				t.Errorf("Expected upstream message, got '%s'", provErr.Message)
			}
		})
	}
}

func TestAnthropicProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "hello there"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 3}
		}`))
	}))
	defer server.Close()

	provider := NewAnthropicProvider("test-key", option.WithBaseURL(server.URL))

	resp, err := provider.Complete(context.Background(), ProviderRequest{System: "sys", Content: "hi", MaxTokens: 100})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != "hello there" {
		t.Errorf("Expected 'hello there', got '%s'", resp.Text)
	}

	if resp.Usage.TotalTokens != 15 {
		t.Errorf("Expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestAnthropicProviderRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	provider := NewAnthropicProvider("test-key", option.WithBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), ProviderRequest{Content: "hi", MaxTokens: 10})

	if classify(err) != KindRateLimited {
		t.Errorf("Expected rate limit classification, got %v", err)
	}
}

func TestResolveModel(t *testing.T) {
	if got := resolveModel(GroqModels, ModelBalanced); got != "mixtral-8x7b-32768" {
		t.Errorf("Expected mixtral, got %s", got)
	}

	if got := resolveModel(GroqModels, Model("unknown")); got != "llama-3.1-8b-instant" {
		t.Errorf("Expected fast fallback, got %s", got)
	}
}
