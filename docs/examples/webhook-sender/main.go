// GLTCH Cloud Billing Webhook Sender Example
//
// This is a minimal example of how to sign and deliver a billing webhook
// the way the API expects it. Useful for exercising the webhook endpoint
// locally without a real billing provider.
//
// Usage:
//   export GLTCH_WEBHOOK_SECRET="whsec_your_secret_here"
//   go run main.go -event customer.subscription.created -customer cus_123

package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type event struct {
	Type string    `json:"type"`
	Data eventData `json:"data"`
}

type eventData struct {
	Object eventObject `json:"object"`
}

type eventObject struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
}

func main() {
	var (
		target    = flag.String("target", "http://localhost:8080/api/v1/webhooks/billing", "Webhook endpoint URL")
		eventType = flag.String("event", "customer.subscription.created", "Event type")
		customer  = flag.String("customer", "cus_123", "Billing customer ID")
		subID     = flag.String("subscription", "sub_456", "Subscription ID")
	)
	flag.Parse()

	secret := os.Getenv("GLTCH_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("GLTCH_WEBHOOK_SECRET environment variable is required")
	}

	payload, err := json.Marshal(event{
		Type: *eventType,
		Data: eventData{Object: eventObject{ID: *subID, Customer: *customer}},
	})
	if err != nil {
		log.Fatalf("marshal payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *target, strings.NewReader(string(payload)))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Billing-Signature", sign(string(payload), secret))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("deliver webhook: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.Printf("%s -> %d %s", *eventType, resp.StatusCode, strings.TrimSpace(string(body)))
}

// sign produces the signature header the API verifies.
//
// Header format: t=1705142400,v1=abc123def456...
// Signed payload: {timestamp}.{body}
func sign(body, secret string) string {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + body))
	return "t=" + timestamp + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
