package repository

import (
	"context"
	"fmt"

	"github.com/gltch/gltch-cloud/internal/model"
)

// InsertUsageLog records the vendor spend of one chat turn.
func (r *Repository) InsertUsageLog(ctx context.Context, log *model.UsageLog) error {
	query := `
		INSERT INTO usage_logs (id, user_id, provider, model, input_tokens, output_tokens, cost_usd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.UserID,
		log.Provider,
		log.Model,
		log.InputTokens,
		log.OutputTokens,
		log.CostUSD,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}

	return nil
}
