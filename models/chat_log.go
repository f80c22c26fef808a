package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chat sources
const (
	SourceChat    = "chat"
	SourceAnalyze = "analyze"
)

// Chat statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ChatLog is one analysis request sent to the text-generation backend
type ChatLog struct {
	ID               uuid.UUID `json:"id" db:"id"`
	RequestID        string    `json:"request_id" db:"request_id"`
	Source           string    `json:"source" db:"source"` // 'chat' or 'analyze'
	Option           string    `json:"option" db:"option"` // prompt catalog key
	Address          *string   `json:"address,omitempty" db:"address"`
	RowCount         int       `json:"row_count" db:"row_count"`
	ColumnCount      int       `json:"column_count" db:"column_count"`
	Provider         string    `json:"provider" db:"provider"`
	Model            string    `json:"model" db:"model"`
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens" db:"total_tokens"`
	Status           string    `json:"status" db:"status"` // 'ok' or 'error'
	ErrorMessage     *string   `json:"error_message,omitempty" db:"error_message"`
	LatencyMs        int64     `json:"latency_ms" db:"latency_ms"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Validate checks the fields the chat_log table constrains
func (c *ChatLog) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("chat log id is required")
	}
	if c.Option == "" {
		return fmt.Errorf("chat log option is required")
	}
	switch c.Source {
	case SourceChat, SourceAnalyze:
	default:
		return fmt.Errorf("unknown chat source %q", c.Source)
	}
	switch c.Status {
	case StatusOK, StatusError:
	default:
		return fmt.Errorf("unknown chat status %q", c.Status)
	}
	if c.RowCount < 0 || c.ColumnCount < 0 {
		return fmt.Errorf("chat log table shape cannot be negative")
	}
	return nil
}

// OptionUsage aggregates chat volume and tokens per prompt option
type OptionUsage struct {
	Option       string `json:"option" db:"option"`
	RequestCount int    `json:"request_count" db:"request_count"`
	ErrorCount   int    `json:"error_count" db:"error_count"`
	TotalTokens  int    `json:"total_tokens" db:"total_tokens"`
}
