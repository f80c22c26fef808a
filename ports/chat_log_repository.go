package ports

import (
	"context"
	"time"

	"findash/models"
)

// ChatLogRepository defines the interface for chat log persistence
type ChatLogRepository interface {
	// Record stores one analysis request
	Record(ctx context.Context, log *models.ChatLog) error

	// Recent returns the newest logs first
	Recent(ctx context.Context, limit int) ([]*models.ChatLog, error)

	// UsageByOption aggregates requests and tokens per option within a period
	UsageByOption(ctx context.Context, start, end time.Time) (map[string]*models.OptionUsage, error)
}
