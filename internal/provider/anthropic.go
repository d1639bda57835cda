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

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// Anthropic calls the Messages API. Unlike the OpenAI-compatible vendors,
// the system prompt travels as a top-level field rather than a message.
type Anthropic struct {
	baseURL    string
	managedKey string
	client     *http.Client
}

// NewAnthropic creates the Anthropic adapter.
func NewAnthropic(managedKey string) *Anthropic {
	return &Anthropic{
		baseURL:    anthropicBaseURL,
		managedKey: managedKey,
		client:     newHTTPClient(),
	}
}

// WithBaseURL overrides the vendor endpoint. Used by tests.
func (a *Anthropic) WithBaseURL(baseURL string) *Anthropic {
	a.baseURL = baseURL
	return a
}

// Name returns the provider identifier.
func (a *Anthropic) Name() string {
	return model.ProviderAnthropic
}

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Chat sends one Messages API request.
func (a *Anthropic) Chat(ctx context.Context, req Request) (*Response, error) {
	key := req.APIKey
	if key == "" {
		key = a.managedKey
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     req.Model,
		MaxTokens: maxOutputTokens,
		System:    req.SystemPrompt,
		Messages:  req.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build anthropic request: %w", err)
	}
	httpReq.Header.Set("x-api-key", key)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read anthropic response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: httpResp.StatusCode, Body: string(respBody)}
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(decoded.Content) == 0 {
		return nil, fmt.Errorf("anthropic response contained no content blocks")
	}

	return &Response{
		Content:      decoded.Content[0].Text,
		InputTokens:  decoded.Usage.InputTokens,
		OutputTokens: decoded.Usage.OutputTokens,
		Model:        req.Model,
	}, nil
}
