package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// GroqAPIEndpoint is the OpenAI-compatible chat completions endpoint.
const GroqAPIEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// GroqProvider calls Groq's OpenAI-compatible API over plain HTTP.
type GroqProvider struct {
	apiKey     string
	endpoint   string
	models     map[Model]string
	httpClient *http.Client
}

// NewGroqProvider creates a new Groq provider.
func NewGroqProvider(apiKey string) (provider *GroqProvider) {
	provider = &GroqProvider{
		apiKey:   apiKey,
		endpoint: GroqAPIEndpoint,
		models:   GroqModels,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	return provider
}

// Complete sends one chat completion request.
func (p *GroqProvider) Complete(ctx context.Context, req ProviderRequest) (resp ProviderResponse, err error) {
	chatReq := chatRequest{
		Model: resolveModel(p.models, req.Model),
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Content},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.ForceJSON {
		chatReq.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var reqBody []byte
	reqBody, err = json.Marshal(chatReq)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return resp, err
	}

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return resp, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	var httpResp *http.Response
	httpResp, err = p.httpClient.Do(httpReq)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return resp, err
	}
	defer httpResp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(httpResp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return resp, err
	}

	if httpResp.StatusCode != http.StatusOK {
		message := string(respBody)
		var body chatErrorBody
		if json.Unmarshal(respBody, &body) == nil && body.Error.Message != "" {
			message = body.Error.Message
		}
		err = &ProviderError{Kind: statusKind(httpResp.StatusCode), Status: httpResp.StatusCode, Message: message}
		return resp, err
	}

	var chatResp chatResponse
	err = json.Unmarshal(respBody, &chatResp)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse chat response: %s", string(respBody))
		return resp, err
	}

	if len(chatResp.Choices) == 0 {
		err = &ProviderError{Kind: KindAPI, Message: "no choices in response"}
		return resp, err
	}

	resp.Text = chatResp.Choices[0].Message.Content
	resp.Usage = chatResp.Usage

	return resp, err
}
