package postgres

import (
	"context"
	"time"

	"findash/models"
	"findash/ports"

	"github.com/jmoiron/sqlx"
)

// ChatLogRepositoryImpl implements ChatLogRepository for PostgreSQL
type ChatLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewChatLogRepository creates a new PostgreSQL chat log repository
func NewChatLogRepository(db *sqlx.DB) ports.ChatLogRepository {
	return &ChatLogRepositoryImpl{db: db}
}

// Record stores one analysis request
func (r *ChatLogRepositoryImpl) Record(ctx context.Context, log *models.ChatLog) error {
	if err := log.Validate(); err != nil {
		return err
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO chat_log (
			id, request_id, source, option, address, row_count, column_count,
			provider, model, prompt_tokens, completion_tokens, total_tokens,
			status, error_message, latency_ms, created_at
		) VALUES (
			:id, :request_id, :source, :option, :address, :row_count, :column_count,
			:provider, :model, :prompt_tokens, :completion_tokens, :total_tokens,
			:status, :error_message, :latency_ms, :created_at
		)
	`, log)
	return err
}

// Recent retrieves the newest chat logs
func (r *ChatLogRepositoryImpl) Recent(ctx context.Context, limit int) ([]*models.ChatLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*models.ChatLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, request_id, source, option, address, row_count, column_count,
		       provider, model, prompt_tokens, completion_tokens, total_tokens,
		       status, error_message, latency_ms, created_at
		FROM chat_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return logs, err
}

// UsageByOption returns request and token counts grouped by option
func (r *ChatLogRepositoryImpl) UsageByOption(ctx context.Context, start, end time.Time) (map[string]*models.OptionUsage, error) {
	var rows []*models.OptionUsage
	err := r.db.SelectContext(ctx, &rows, `
		SELECT option,
		       COUNT(*) AS request_count,
		       COUNT(*) FILTER (WHERE status = 'error') AS error_count,
		       COALESCE(SUM(total_tokens), 0) AS total_tokens
		FROM chat_log
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY option
	`, start, end)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*models.OptionUsage, len(rows))
	for _, row := range rows {
		result[row.Option] = row
	}
	return result, nil
}
