package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"findash/internal"
	"findash/internal/errors"
	"findash/ports"
)

// Config holds LLM adapter configuration
type Config struct {
	Model        string        // e.g., "mistralai/mistral-7b-instruct"
	APIKey       string        // OpenRouter (or any OpenAI-compatible) key
	BaseURL      string        // Optional override (default: https://openrouter.ai/api/v1)
	Provider     string        // Recorded in usage data
	Referer      string        // Sent as HTTP-Referer, as OpenRouter asks
	SystemPrompt string        // Used by ChatCompletion
	Temperature  float64       // 0.0-1.0, lower = more deterministic
	MaxTokens    int           // Max tokens in response, 0 lets the provider decide
	Timeout      time.Duration // Request timeout
}

// DefaultConfig returns the OpenRouter defaults
func DefaultConfig() Config {
	return Config{
		Model:    "mistralai/mistral-7b-instruct",
		BaseURL:  "https://openrouter.ai/api/v1",
		Provider: "openrouter",
		Referer:  "https://localhost",
		Timeout:  45 * time.Second,
	}
}

// NewClient creates an OpenAI-compatible chat completions client
func NewClient(config Config) (*OpenAIClient, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.ConfigInvalid("missing LLM API key")
	}

	defaults := DefaultConfig()
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Provider == "" {
		config.Provider = defaults.Provider
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &OpenAIClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     internal.DefaultLogger.Named("LLMClient"),
	}, nil
}

// OpenAIClient implements ports.LLMClient over the chat completions API
type OpenAIClient struct {
	config     Config
	httpClient *http.Client
	logger     *internal.Logger
}

var _ ports.LLMClient = (*OpenAIClient)(nil)

// Model returns the configured default model
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

func (c *OpenAIClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	resp, err := c.ChatCompletionWithUsage(ctx, model, c.config.SystemPrompt, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *OpenAIClient) ChatCompletionWithUsage(ctx context.Context, model string, system string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	if strings.TrimSpace(model) == "" {
		model = c.config.Model
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.ConfigInvalid("missing model")
	}
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}

	// Chat Completions API (kept minimal: one system + one user message)
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{Model: model, Temperature: c.config.Temperature, MaxTokens: maxTokens}
	if system != "" {
		body.Messages = append(body.Messages, msg{Role: "system", Content: system})
	}
	body.Messages = append(body.Messages, msg{Role: "user", Content: prompt})

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.config.Referer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("request to %s failed: %v", c.config.Provider, err)
		return nil, errors.ExternalServiceError(c.config.Provider, err).WithDetail(err.Error())
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(c.config.Provider, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("%s returned http %d", c.config.Provider, resp.StatusCode)
		return nil, errors.ExternalServiceError(c.config.Provider, fmt.Errorf("http %d", resp.StatusCode)).
			WithDetail(string(respRaw))
	}

	type choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	type respBody struct {
		Model   string          `json:"model"`
		Choices []choice        `json:"choices"`
		Usage   ports.UsageData `json:"usage"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, errors.ExternalServiceError(c.config.Provider, fmt.Errorf("unmarshal response: %w", err)).
			WithDetail(string(respRaw))
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.ExternalServiceError(c.config.Provider, fmt.Errorf("response missing choices")).
			WithDetail(string(respRaw))
	}

	usage := decoded.Usage
	usage.Provider = c.config.Provider
	usage.Model = decoded.Model
	if usage.Model == "" {
		usage.Model = model
	}
	c.logger.Debug("%s replied in %s (%d tokens)", c.config.Provider, time.Since(start).Round(time.Millisecond), usage.TotalTokens)

	return &ports.LLMResponse{
		Content: strings.TrimSpace(decoded.Choices[0].Message.Content),
		Usage:   &usage,
	}, nil
}

// MockLLMClient is a mock LLM client for testing
type MockLLMClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
	Usage    *ports.UsageData

	mu         sync.Mutex
	Calls      int
	LastModel  string
	LastSystem string
	LastPrompt string
}

var _ ports.LLMClient = (*MockLLMClient)(nil)

func (m *MockLLMClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	resp, err := m.ChatCompletionWithUsage(ctx, model, "", prompt, maxTokens)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (m *MockLLMClient) ChatCompletionWithUsage(ctx context.Context, model string, system string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	m.mu.Lock()
	m.Calls++
	m.LastModel, m.LastSystem, m.LastPrompt = model, system, prompt
	m.mu.Unlock()

	if m.Error != nil {
		return nil, m.Error
	}
	content := m.Response
	if content == "" {
		// Default mock response
		content = "## Summary\nThe portfolio is concentrated in a single asset class."
	}
	return &ports.LLMResponse{Content: content, Usage: m.Usage}, nil
}
