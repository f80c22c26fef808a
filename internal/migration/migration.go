package migration

import (
	"context"
	"fmt"

	"findash/internal"
	"findash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// step is one idempotent schema change
type step struct {
	name string
	sql  string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	steps   []step
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
		steps:   schemaSteps,
		logger:  internal.DefaultLogger.Named("Migration"),
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Steps lists the migration names in execution order
func (r *MigrationRunner) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.name
	}
	return names
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for i, s := range r.steps {
		r.logger.Info("Running migration %03d (%s)...", i+1, s.name)
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.WithCode(errors.CodeDatabaseError,
				errors.Wrapf(err, "failed to run migration %03d (%s)", i+1, s.name))
		}
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	r.logger.Info("Schema at version %s", r.version)
	return nil
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_chat_log_created_at ON chat_log(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_chat_log_option_created ON chat_log(option, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_chat_log_status ON chat_log(status)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			r.logger.Warn("failed to create index: %v", err)
		}
	}

	return nil
}

var schemaSteps = []step{
	{
		name: "create chat_log",
		sql: `
		CREATE TABLE IF NOT EXISTS chat_log (
			id UUID PRIMARY KEY,
			request_id VARCHAR(64) NOT NULL DEFAULT '',
			source VARCHAR(20) NOT NULL CHECK (source IN ('chat', 'analyze')),
			option VARCHAR(50) NOT NULL,
			address TEXT,
			row_count INTEGER NOT NULL DEFAULT 0,
			column_count INTEGER NOT NULL DEFAULT 0,
			provider VARCHAR(50) NOT NULL DEFAULT '',
			model VARCHAR(255) NOT NULL DEFAULT '',
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL CHECK (status IN ('ok', 'error')),
			error_message TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
	},
	{
		name: "add chat_log latency",
		sql: `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'chat_log' AND column_name = 'latency_ms'
			) THEN
				ALTER TABLE chat_log ADD COLUMN latency_ms BIGINT NOT NULL DEFAULT 0;
			END IF;
		END $$;`,
	},
}

// String describes the runner for logs
func (r *MigrationRunner) String() string {
	return fmt.Sprintf("migration runner v%s (%d steps)", r.version, len(r.steps))
}
