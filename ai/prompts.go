package ai

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// SystemRole is sent as the system message of every analysis request
const SystemRole = "You are Findash - a financial assistant. Answer queries in simple, formal " +
	"English that a non-specialist can understand. Disclose you are not a " +
	"licensed agent. If you don't know the answer, reply: " +
	"\"I am unable to process your query at the moment. Please try rephrasing " +
	"or asking a different question.\""

// TablePlaceholder is replaced by the formatted table in every template
const TablePlaceholder = "table"

// builtinPrompts are the analysis templates offered by the task pane
var builtinPrompts = map[string]string{
	"summary": "Provide a concise portfolio summary, including:\n" +
		"• General overview\n• Asset allocation\n• Valuation estimate\n• " +
		"Benchmark comparison\n\nDataset:\n{table}",
	"allocation": "Analyze the asset allocation in the following data. Highlight any " +
		"over- or under-exposure:\n{table}",
	"valuation": "Estimate the portfolio's valuation based on this data. Explain your " +
		"method briefly:\n{table}",
	"benchmark": "Compare this portfolio against an appropriate benchmark. Point out " +
		"areas of over- or under-performance:\n{table}",
	"performance": "Create a performance breakdown for the period reflected below:\n{table}",
	"trend":       "Perform a trend analysis on the following dataset:\n{table}",
	"forecast": "Forecast portfolio performance for the next 12 months using the " +
		"historic data:\n{table}",
	"kpi": "Extract key performance indicators (KPIs) from this table and discuss " +
		"them:\n{table}",
	"risk": "Assess the portfolio's risk exposure, citing metrics such as " +
		"volatility and max drawdown, based on this data:\n{table}",
	"ratios": "Compute and interpret relevant financial ratios (e.g., Sharpe, " +
		"Sortino) using this dataset:\n{table}",
	"cashflow": "Perform a cash-flow analysis highlighting inflows, outflows, and net " +
		"position:\n{table}",
	"improvements": "Suggest actionable improvements or optimisations for the portfolio " +
		"below:\n{table}",
}

// Global map to track initialized prompt directories (to avoid duplicate logs)
var (
	initializedDirs   = make(map[string]bool)
	initializedDirsMu sync.RWMutex
)

// PromptManager serves the analysis templates. Files named <option>.txt in
// PromptsDir override the built-in text of an existing option.
type PromptManager struct {
	PromptsDir string
}

// NewPromptManager creates a prompt manager; promptsDir may be empty
func NewPromptManager(promptsDir string) *PromptManager {
	if promptsDir != "" {
		initializedDirsMu.Lock()
		if !initializedDirs[promptsDir] {
			initializedDirs[promptsDir] = true
			log.Printf("[PromptManager] Overrides enabled from directory: %s", promptsDir)
		}
		initializedDirsMu.Unlock()
	}

	return &PromptManager{PromptsDir: promptsDir}
}

// Options lists the valid option keys in sorted order
func (pm *PromptManager) Options() []string {
	keys := make([]string, 0, len(builtinPrompts))
	for k := range builtinPrompts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether option is a known analysis key
func (pm *PromptManager) Has(option string) bool {
	_, ok := builtinPrompts[option]
	return ok
}

// LoadPrompt loads a prompt template by option key
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	builtin, ok := builtinPrompts[name]
	if !ok {
		return "", fmt.Errorf("prompt template not found: %s", name)
	}
	if pm.PromptsDir == "" {
		return builtin, nil
	}

	path := filepath.Join(pm.PromptsDir, name+".txt")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return builtin, nil
		}
		return "", fmt.Errorf("failed to load prompt %s: %w", name, err)
	}

	return string(content), nil
}

// RenderPrompt replaces {PLACEHOLDER} with values
func (pm *PromptManager) RenderPrompt(name string, replacements map[string]string) (string, error) {
	template, err := pm.LoadPrompt(name)
	if err != nil {
		return "", err
	}

	result := template
	for placeholder, value := range replacements {
		placeholderKey := "{" + placeholder + "}"
		result = strings.ReplaceAll(result, placeholderKey, value)
	}

	return result, nil
}
