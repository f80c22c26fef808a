package ports

import "context"

// UsageData represents raw usage data from LLM provider APIs
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// LLMResponse represents an LLM reply with usage data
type LLMResponse struct {
	Content string
	Usage   *UsageData
}

// LLMClient is the text-generation backend the analysis flow talks to
type LLMClient interface {
	// ChatCompletion sends prompt with the client's default system role
	ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error)

	// ChatCompletionWithUsage sends one system and one user message and reports token usage
	ChatCompletionWithUsage(ctx context.Context, model string, system string, prompt string, maxTokens int) (*LLMResponse, error)
}
