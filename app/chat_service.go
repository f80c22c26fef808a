package app

import (
	"context"
	"strings"
	"time"

	"findash/ai"
	"findash/domain/core"
	"findash/domain/table"
	"findash/internal"
	"findash/internal/dataset"
	"findash/internal/errors"
	"findash/internal/profiling"
	"findash/models"
	"findash/ports"
)

// ChatService runs one analysis exchange: normalize the table, render the
// option's prompt, ask the backend and record the outcome.
type ChatService struct {
	prompts    *ai.PromptManager
	normalizer *dataset.Normalizer
	profiler   *profiling.DataProfiler
	llm        ports.LLMClient
	logs       ports.ChatLogRepository
	config     ChatServiceConfig
	logger     *internal.Logger
}

// ChatServiceConfig holds the backend call settings
type ChatServiceConfig struct {
	Model          string
	Provider       string
	MaxTokens      int
	IncludeProfile bool // append the column summary to every prompt
}

// ChatRequest is one analysis request
type ChatRequest struct {
	RequestID core.RequestID
	Source    string // models.SourceChat or models.SourceAnalyze
	Option    string
	Data      table.RawTable
	Address   *string
}

// ChatResult is the backend reply plus what was sent
type ChatResult struct {
	ChatID    core.ChatID
	Reply     string
	Table     *table.NormalizedTable
	Usage     *ports.UsageData
	LatencyMs int64
}

// NewChatService creates a chat service; logs may be nil
func NewChatService(prompts *ai.PromptManager, normalizer *dataset.Normalizer, llmClient ports.LLMClient, logs ports.ChatLogRepository, config ChatServiceConfig) *ChatService {
	return &ChatService{
		prompts:    prompts,
		normalizer: normalizer,
		profiler:   profiling.NewDataProfiler(),
		llm:        llmClient,
		logs:       logs,
		config:     config,
		logger:     internal.DefaultLogger.Named("ChatService"),
	}
}

// Options lists the valid analysis keys
func (s *ChatService) Options() []string {
	return s.prompts.Options()
}

// HasOption reports whether option is a valid analysis key
func (s *ChatService) HasOption(option string) bool {
	return s.prompts.Has(option)
}

// Normalize runs the normalizer without calling the backend
func (s *ChatService) Normalize(raw table.RawTable) *table.NormalizedTable {
	return s.normalizer.Normalize(raw)
}

// Profile summarizes every column of a normalized table
func (s *ChatService) Profile(t *table.NormalizedTable) (*profiling.TableProfile, error) {
	return s.profiler.ProfileTable(t)
}

// Prompt renders the full user message for option and a normalized table
func (s *ChatService) Prompt(option string, t *table.NormalizedTable) (string, error) {
	if !s.prompts.Has(option) {
		return "", errors.InvalidInput("invalid option key")
	}

	var profile *profiling.TableProfile
	if s.config.IncludeProfile && t.NumRows() > 0 {
		p, err := s.profiler.ProfileTable(t)
		if err != nil {
			s.logger.Warn("column summary skipped: %v", err)
		} else {
			profile = p
		}
	}

	prompt, err := s.prompts.CompileTablePrompt(option, t, profile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to render prompt %s", option)
	}
	return prompt, nil
}

// Chat normalizes the request table, sends it to the backend under the
// option's template and returns the trimmed reply.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if !s.prompts.Has(req.Option) {
		return nil, errors.InvalidInput("invalid option key")
	}
	if req.Source == "" {
		req.Source = models.SourceChat
	}

	normalized := s.normalizer.Normalize(req.Data)
	prompt, err := s.Prompt(req.Option, normalized)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.llm.ChatCompletionWithUsage(ctx, s.config.Model, ai.SystemRole, prompt, s.config.MaxTokens)
	latency := time.Since(start).Milliseconds()

	chatID := core.NewChatID()
	entry := s.newLog(chatID, req, normalized, latency)
	if err != nil {
		entry.Status = models.StatusError
		msg := err.Error()
		entry.ErrorMessage = &msg
		s.record(ctx, entry)

		if !errors.IsAppError(err) {
			err = errors.ExternalServiceError(s.provider(), err).WithDetail(err.Error())
		}
		s.logger.Error("chat %s failed after %dms: %v", req.Option, latency, err)
		return nil, err
	}

	if resp.Usage != nil {
		entry.PromptTokens = resp.Usage.PromptTokens
		entry.CompletionTokens = resp.Usage.CompletionTokens
		entry.TotalTokens = resp.Usage.TotalTokens
		if resp.Usage.Model != "" {
			entry.Model = resp.Usage.Model
		}
	}
	s.record(ctx, entry)

	s.logger.Info("chat %s: %dx%d table, %d tokens, %dms",
		req.Option, normalized.NumRows(), normalized.NumColumns(), entry.TotalTokens, latency)

	return &ChatResult{
		ChatID:    chatID,
		Reply:     strings.TrimSpace(resp.Content),
		Table:     normalized,
		Usage:     resp.Usage,
		LatencyMs: latency,
	}, nil
}

// RecentChats returns the newest recorded exchanges
func (s *ChatService) RecentChats(ctx context.Context, limit int) ([]*models.ChatLog, error) {
	if s.logs == nil {
		return []*models.ChatLog{}, nil
	}
	logs, err := s.logs.Recent(ctx, limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to list chats"))
	}
	return logs, nil
}

// Usage aggregates recorded exchanges per option within [start, end]
func (s *ChatService) Usage(ctx context.Context, start, end time.Time) (map[string]*models.OptionUsage, error) {
	if s.logs == nil {
		return map[string]*models.OptionUsage{}, nil
	}
	usage, err := s.logs.UsageByOption(ctx, start, end)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to aggregate usage"))
	}
	return usage, nil
}

func (s *ChatService) newLog(id core.ChatID, req ChatRequest, t *table.NormalizedTable, latency int64) *models.ChatLog {
	entry := &models.ChatLog{
		RequestID:   req.RequestID.String(),
		Source:      req.Source,
		Option:      req.Option,
		Address:     req.Address,
		RowCount:    t.NumRows(),
		ColumnCount: t.NumColumns(),
		Provider:    s.provider(),
		Model:       s.config.Model,
		Status:      models.StatusOK,
		LatencyMs:   latency,
		CreatedAt:   time.Now().UTC(),
	}
	if parsed, err := core.ID(id).UUID(); err == nil {
		entry.ID = parsed
	}
	return entry
}

// record stores the log entry; a storage failure never fails the chat
func (s *ChatService) record(ctx context.Context, entry *models.ChatLog) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to record chat %s: %v", entry.ID, err)
	}
}

func (s *ChatService) provider() string {
	if s.config.Provider != "" {
		return s.config.Provider
	}
	return "openrouter"
}
