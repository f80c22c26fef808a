package memory

import (
	"context"
	"sync"
	"time"

	"findash/models"
	"findash/ports"
)

// DefaultCapacity bounds the in-process chat history
const DefaultCapacity = 500

// ChatLogRepository keeps the most recent chat logs in memory. It stands in
// for the PostgreSQL repository when no database is configured.
type ChatLogRepository struct {
	mu       sync.RWMutex
	logs     []*models.ChatLog
	capacity int
}

var _ ports.ChatLogRepository = (*ChatLogRepository)(nil)

// NewChatLogRepository creates a repository holding at most capacity logs
func NewChatLogRepository(capacity int) *ChatLogRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ChatLogRepository{capacity: capacity}
}

// Record stores a copy of log, evicting the oldest entry when full
func (r *ChatLogRepository) Record(ctx context.Context, log *models.ChatLog) error {
	if err := log.Validate(); err != nil {
		return err
	}
	entry := *log

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.logs) == r.capacity {
		r.logs = r.logs[1:]
	}
	r.logs = append(r.logs, &entry)
	return nil
}

// Recent returns up to limit logs, newest first
func (r *ChatLogRepository) Recent(ctx context.Context, limit int) ([]*models.ChatLog, error) {
	if limit <= 0 {
		limit = 50
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.ChatLog, 0, min(limit, len(r.logs)))
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		entry := *r.logs[i]
		out = append(out, &entry)
	}
	return out, nil
}

// UsageByOption aggregates the logs created within [start, end]
func (r *ChatLogRepository) UsageByOption(ctx context.Context, start, end time.Time) (map[string]*models.OptionUsage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*models.OptionUsage)
	for _, log := range r.logs {
		if log.CreatedAt.Before(start) || log.CreatedAt.After(end) {
			continue
		}
		usage, ok := result[log.Option]
		if !ok {
			usage = &models.OptionUsage{Option: log.Option}
			result[log.Option] = usage
		}
		usage.RequestCount++
		if log.Status == models.StatusError {
			usage.ErrorCount++
		}
		usage.TotalTokens += log.TotalTokens
	}
	return result, nil
}
