package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGemini_Chat(t *testing.T) {
	var captured geminiRequest
	var gotPath, gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "responding"}}}},
			},
		})
	}))
	defer srv.Close()

	adapter := NewGemini("google-key").WithBaseURL(srv.URL)

	resp, err := adapter.Chat(context.Background(), Request{
		Messages: []Message{
			{Role: "user", Content: "12345678"},
			{Role: "assistant", Content: "abcd"},
			{Role: "user", Content: "efgh"},
		},
		Model:        "gemini-1.5-pro",
		SystemPrompt: "persona",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(gotPath, "/v1beta/models/gemini-1.5-pro:generateContent") {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotKey != "google-key" {
		t.Errorf("expected key query param, got %q", gotKey)
	}

	// Roles map onto Gemini's two-role scheme.
	if captured.Contents[0].Role != "user" {
		t.Errorf("expected role user, got %q", captured.Contents[0].Role)
	}
	if captured.Contents[1].Role != "model" {
		t.Errorf("expected assistant mapped to model, got %q", captured.Contents[1].Role)
	}
	if captured.SystemInstruction.Parts[0].Text != "persona" {
		t.Errorf("system instruction not set: %+v", captured.SystemInstruction)
	}

	// No usage block on this API: both counts are estimated at len/4.
	wantInput := (8 + 4 + 4) / 4
	if resp.InputTokens != wantInput {
		t.Errorf("expected estimated input tokens %d, got %d", wantInput, resp.InputTokens)
	}
	if resp.OutputTokens != len("responding")/4 {
		t.Errorf("expected estimated output tokens %d, got %d", len("responding")/4, resp.OutputTokens)
	}
}

func TestGemini_Chat_VendorErrorSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	adapter := NewGemini("k").WithBaseURL(srv.URL)
	_, err := adapter.Chat(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Model:    "gemini-1.5-pro",
	})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", statusErr.Status)
	}
}

func TestGemini_Chat_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	adapter := NewGemini("k").WithBaseURL(srv.URL)
	_, err := adapter.Chat(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Model:    "gemini-1.5-pro",
	})
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens(""); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := estimateTokens("abc"); got != 0 {
		t.Errorf("expected floor division, got %d", got)
	}
	if got := estimateTokens("abcdefgh"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}
