package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

const jsonOnlyInstruction = "\n\nRespond with a single valid JSON object only. No markdown, no commentary."

// AnthropicProvider calls the Anthropic Messages API through the official SDK.
// SDK retries are disabled because Client owns the retry policy.
type AnthropicProvider struct {
	client anthropic.Client
	models map[Model]string
}

// NewAnthropicProvider creates a new Anthropic provider. Extra options are
// passed to the SDK, e.g. option.WithBaseURL in tests.
func NewAnthropicProvider(apiKey string, opts ...option.RequestOption) (provider *AnthropicProvider) {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	reqOpts = append(reqOpts, opts...)

	provider = &AnthropicProvider{
		client: anthropic.NewClient(reqOpts...),
		models: AnthropicModels,
	}
	return provider
}

// Complete sends one Messages API request.
func (p *AnthropicProvider) Complete(ctx context.Context, req ProviderRequest) (resp ProviderResponse, err error) {
	system := req.System
	if req.ForceJSON {
		system += jsonOnlyInstruction
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(resolveModel(p.models, req.Model)),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Content)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, callErr := p.client.Messages.New(ctx, params)
	if callErr != nil {
		var apiErr *anthropic.Error
		if errors.As(callErr, &apiErr) {
			err = &ProviderError{Kind: statusKind(apiErr.StatusCode), Status: apiErr.StatusCode, Message: apiErr.Error()}
			return resp, err
		}
		err = errors.Wrap(callErr, "anthropic request failed")
		return resp, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		err = &ProviderError{Kind: KindAPI, Message: "no text content in response"}
		return resp, err
	}

	resp.Text = text.String()
	resp.Usage = Usage{
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
		TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}

	return resp, err
}
