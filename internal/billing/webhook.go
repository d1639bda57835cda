package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrReplayWindowExceeded is returned when the timestamp is outside the replay window.
	ErrReplayWindowExceeded = errors.New("timestamp outside replay window")
	// ErrMalformedSignature is returned when the signature header cannot be parsed.
	ErrMalformedSignature = errors.New("malformed signature header")
)

// DefaultReplayWindow bounds how old a webhook timestamp may be.
const DefaultReplayWindow = 5 * time.Minute

// Subscription event types the tier-change notifier reacts to.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is a billing webhook event. Only the fields the tier-change
// notifier needs are decoded.
type Event struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Customer string `json:"customer"`
		} `json:"object"`
	} `json:"data"`
}

// Signature creates the HMAC-SHA256 signature for a webhook payload.
// The canonical string format is "{timestamp}.{payload}".
func Signature(secret string, timestamp int64, payload []byte) string {
	canonical := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader renders a signature header in "t=<ts>,v1=<hex>" form.
// Used by tests and local tooling to produce valid requests.
func SignatureHeader(secret string, timestamp int64, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, Signature(secret, timestamp, payload))
}

// VerifyAndParse validates the "t=<ts>,v1=<hex>" signature header against
// the payload with replay protection, then decodes the event.
func VerifyAndParse(payload []byte, sigHeader, secret string, now time.Time) (*Event, error) {
	timestamp, signature, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	age := now.Unix() - timestamp
	if age < 0 {
		age = -age
	}
	if age > int64(DefaultReplayWindow.Seconds()) {
		return nil, ErrReplayWindowExceeded
	}

	expected := Signature(secret, timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrInvalidSignature
	}

	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &evt, nil
}

func parseSignatureHeader(header string) (timestamp int64, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", ErrMalformedSignature
			}
		case "v1":
			signature = v
		}
	}
	if timestamp == 0 || signature == "" {
		return 0, "", ErrMalformedSignature
	}
	return timestamp, signature, nil
}
