package llm

import (
	"context"
	"time"
)

// Model is a provider-neutral model preset.
type Model string

const (
	// ModelFast is the cheap, low-latency preset used for extraction and markup.
	ModelFast Model = "fast"
	// ModelQuality is the strongest preset, used for prose.
	ModelQuality Model = "quality"
	// ModelBalanced sits between the two.
	ModelBalanced Model = "balanced"
)

// GroqModels maps presets to Groq model identifiers.
//
//nolint:gochecknoglobals // lookup table
var GroqModels = map[Model]string{
	ModelFast:     "llama-3.1-8b-instant",
	ModelQuality:  "llama-3.3-70b-versatile",
	ModelBalanced: "mixtral-8x7b-32768",
}

// AnthropicModels maps presets to Anthropic model identifiers.
//
//nolint:gochecknoglobals // lookup table
var AnthropicModels = map[Model]string{
	ModelFast:     "claude-3-5-haiku-latest",
	ModelQuality:  "claude-sonnet-4-20250514",
	ModelBalanced: "claude-3-7-sonnet-latest",
}

// resolveModel looks up a preset, falling back to the fast model.
func resolveModel(table map[Model]string, m Model) (id string) {
	id, ok := table[m]
	if !ok {
		id = table[ModelFast]
	}
	return id
}

// Request is a single generation call.
type Request struct {
	System      string
	Content     string
	Model       Model
	Temperature float64
	MaxTokens   int
	ForceJSON   bool
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the result of a generation call. JSON is populated only when
// the request forced JSON and the text contained a parseable object.
type Response struct {
	Text    string
	JSON    map[string]interface{}
	Usage   Usage
	Retries []time.Duration
}

// ProviderRequest is what a Provider receives for one attempt.
type ProviderRequest struct {
	System      string
	Content     string
	Model       Model
	Temperature float64
	MaxTokens   int
	ForceJSON   bool
}

// ProviderResponse is a single successful completion.
type ProviderResponse struct {
	Text  string
	Usage Usage
}

// Provider performs one completion attempt against a hosted model.
type Provider interface {
	Complete(ctx context.Context, req ProviderRequest) (resp ProviderResponse, err error)
}

// Generator is implemented by Client. Consumers accept it so tests can fake
// generation.
type Generator interface {
	Generate(ctx context.Context, req Request) (resp Response, err error)
}

// chatMessage is an OpenAI-compatible chat message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is an OpenAI-compatible chat completion request.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Index   int         `json:"index"`
	Message chatMessage `json:"message"`
}

// chatResponse is an OpenAI-compatible chat completion response.
type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

type chatErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
