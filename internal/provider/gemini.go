package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gltch/gltch-cloud/internal/model"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini calls the generateContent API. Chat roles are renamed on the
// wire ("user" stays "user", everything else becomes "model") and the
// system prompt travels as systemInstruction. Gemini does not report
// token usage, so both counts are estimated.
type Gemini struct {
	baseURL    string
	managedKey string
	client     *http.Client
}

// NewGemini creates the Gemini adapter.
func NewGemini(managedKey string) *Gemini {
	return &Gemini{
		baseURL:    geminiBaseURL,
		managedKey: managedKey,
		client:     newHTTPClient(),
	}
}

// WithBaseURL overrides the vendor endpoint. Used by tests.
func (g *Gemini) WithBaseURL(baseURL string) *Gemini {
	g.baseURL = baseURL
	return g
}

// Name returns the provider identifier.
func (g *Gemini) Name() string {
	return model.ProviderGemini
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction struct {
		Parts []geminiPart `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig struct {
		MaxOutputTokens int `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Chat sends one generateContent request.
func (g *Gemini) Chat(ctx context.Context, req Request) (*Response, error) {
	key := req.APIKey
	if key == "" {
		key = g.managedKey
	}

	var payload geminiRequest
	for _, msg := range req.Messages {
		role := "model"
		if msg.Role == model.RoleUser {
			role = "user"
		}
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	payload.SystemInstruction.Parts = []geminiPart{{Text: req.SystemPrompt}}
	payload.GenerationConfig.MaxOutputTokens = maxOutputTokens

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, req.Model, url.QueryEscape(key))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: httpResp.StatusCode, Body: string(respBody)}
	}

	var decoded geminiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini response contained no candidates")
	}

	content := decoded.Candidates[0].Content.Parts[0].Text

	// No usage block on this API; estimate both sides of the exchange so
	// downstream metering never special-cases missing counts.
	inputTokens := 0
	for _, msg := range req.Messages {
		inputTokens += estimateTokens(msg.Content)
	}

	return &Response{
		Content:      content,
		InputTokens:  inputTokens,
		OutputTokens: estimateTokens(content),
		Model:        req.Model,
	}, nil
}
