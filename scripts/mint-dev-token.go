// Mints an HMAC-signed bearer token for local API testing and optionally
// provisions the matching user row.
//
// Usage:
//
//	go run scripts/mint-dev-token.go -secret dev-secret -sub u1 -email op@example.com
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/personality"
	"github.com/gltch/gltch-cloud/internal/repository"
)

type output struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
	Expiry string `json:"expiry"`
}

func main() {
	var (
		secret      = flag.String("secret", os.Getenv("AUTH_SECRET"), "Token signing secret")
		sub         = flag.String("sub", "dev-user", "Subject (user ID) claim")
		email       = flag.String("email", "dev@gltch.local", "Email claim")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "Provision the user row when set")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_SECRET is required")
		os.Exit(1)
	}

	expiry := time.Now().Add(*ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   *sub,
		"email": *email,
		"exp":   expiry.Unix(),
	}).SignedString([]byte(*secret))
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}

	if *databaseURL != "" {
		if err := ensureUser(*databaseURL, *sub, *email); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	out := output{UserID: *sub, Email: *email, Token: token, Expiry: expiry.UTC().Format(time.RFC3339)}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureUser(databaseURL, userID, email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	now := time.Now().UTC()
	_, err = repo.GetOrCreateUser(ctx, &model.User{
		ID:              userID,
		Email:           email,
		Callsign:        "Operator",
		Tier:            model.TierFree,
		Provider:        model.ProviderOpenAI,
		KeyMode:         model.KeyModeManaged,
		PersonalityMode: string(personality.DefaultMode),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return fmt.Errorf("provision user: %w", err)
	}
	return nil
}
