package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gltch/gltch-cloud/internal/model"
)

// Default API endpoints for the OpenAI-compatible vendors.
const (
	openAIBaseURL = "https://api.openai.com/v1"
	xaiBaseURL    = "https://api.x.ai/v1"
)

// OpenAICompat calls a vendor exposing the OpenAI chat-completions wire
// format. OpenAI and xAI/Grok share this adapter; they differ only in
// name, base URL and managed credential.
type OpenAICompat struct {
	name       string
	baseURL    string
	managedKey string
	client     *http.Client
}

// NewOpenAI creates the adapter for api.openai.com.
func NewOpenAI(managedKey string) *OpenAICompat {
	return &OpenAICompat{
		name:       model.ProviderOpenAI,
		baseURL:    openAIBaseURL,
		managedKey: managedKey,
		client:     newHTTPClient(),
	}
}

// NewGrok creates the adapter for api.x.ai, which speaks the same wire
// format as OpenAI.
func NewGrok(managedKey string) *OpenAICompat {
	return &OpenAICompat{
		name:       model.ProviderGrok,
		baseURL:    xaiBaseURL,
		managedKey: managedKey,
		client:     newHTTPClient(),
	}
}

// WithBaseURL overrides the vendor endpoint. Used by tests.
func (a *OpenAICompat) WithBaseURL(baseURL string) *OpenAICompat {
	a.baseURL = baseURL
	return a
}

// Name returns the provider identifier.
func (a *OpenAICompat) Name() string {
	return a.name
}

type openAIRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat sends one chat-completions request. The system prompt is injected
// as the first message of the conversation.
func (a *OpenAICompat) Chat(ctx context.Context, req Request) (*Response, error) {
	key := req.APIKey
	if key == "" {
		key = a.managedKey
	}

	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(openAIRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: maxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", a.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", a.name, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+key)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", a.name, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", a.name, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: httpResp.StatusCode, Body: string(respBody)}
	}

	var decoded openAIResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", a.name, err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("%s response contained no choices", a.name)
	}

	return &Response{
		Content:      decoded.Choices[0].Message.Content,
		InputTokens:  decoded.Usage.PromptTokens,
		OutputTokens: decoded.Usage.CompletionTokens,
		Model:        req.Model,
	}, nil
}
