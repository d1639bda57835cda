// Package provider normalizes heterogeneous LLM vendor protocols behind
// a single adapter contract. Each adapter issues exactly one outbound
// call with a fixed timeout and performs no retries; vendor failures are
// surfaced verbatim as a StatusError.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// requestTimeout bounds every outbound vendor call.
const requestTimeout = 60 * time.Second

// maxOutputTokens is sent to every vendor as the generation ceiling.
const maxOutputTokens = 4096

// Message is one chat turn in vendor-agnostic form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the normalized input to every adapter. APIKey may be empty;
// adapters fall back to their managed credential, and if that is also
// empty the vendor rejects the call.
type Request struct {
	Messages     []Message
	APIKey       string
	Model        string
	SystemPrompt string
}

// Response is the normalized result every adapter produces. Vendors that
// do not report token usage have counts estimated so callers never
// special-case missing counts.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Adapter translates a normalized request into one vendor call and
// normalizes the result.
type Adapter interface {
	// Chat issues a single chat completion request. A vendor-side
	// failure is returned as *StatusError with the raw status and body.
	Chat(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider identifier ("openai", "anthropic", ...).
	Name() string
}

// StatusError is a vendor non-success response. The body is kept verbatim
// to aid diagnosis; it is surfaced to the caller, never masked.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// newHTTPClient returns the client every adapter uses. The timeout covers
// the full request; there is no mid-flight cancellation beyond it.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// estimateTokens approximates a token count for vendors that do not
// report usage: character count divided by 4, rounded down.
func estimateTokens(s string) int {
	return len(s) / 4
}
