package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"findash/adapters/excel"
	"findash/adapters/llm"
	"findash/ai"
	"findash/app"
	"findash/domain/table"
	"findash/internal"
	"findash/internal/config"
	"findash/internal/dataset"
	"findash/internal/profiling"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadWithoutValidation()
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	rootCmd := &cobra.Command{
		Use:          "findash-cli",
		Short:        "Findash CLI for normalizing spreadsheets and previewing analysis prompts",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newNormalizeCmd(cfg),
		newDescribeCmd(cfg),
		newPromptCmd(cfg),
		newAskCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadedTable is one input file after normalization
type loadedTable struct {
	path  string
	table *table.NormalizedTable
}

// loadTables reads and normalizes every path concurrently, keeping input order
func loadTables(ctx context.Context, cfg *config.Config, paths []string, jobs int) ([]loadedTable, error) {
	readerConfig := excel.DefaultReaderConfig()
	readerConfig.Sheet = cfg.Normalize.Sheet
	reader := excel.NewDataReader(readerConfig)
	normalizer := dataset.NewNormalizer(dataset.OptionsFromConfig(cfg.Normalize))

	out := make([]loadedTable, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			raw, err := reader.ReadFile(gctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out[i] = loadedTable{path: path, table: normalizer.Normalize(raw)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func newNormalizeCmd(cfg *config.Config) *cobra.Command {
	var format string
	var jobs int

	cmd := &cobra.Command{
		Use:   "normalize [files...]",
		Short: "Normalize spreadsheets and print the typed tables",
		Long: `Load each workbook or delimited text file, run the normalization pipeline
and print the result.

Example: findash-cli normalize holdings.xlsx flows.csv --format markdown`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write, err := writerFor(format)
			if err != nil {
				return err
			}

			tables, err := loadTables(cmd.Context(), cfg, args, jobs)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i, lt := range tables {
				if len(tables) > 1 {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "# %s (%d rows x %d columns)\n", lt.path, lt.table.NumRows(), lt.table.NumColumns())
				}
				if err := write(w, lt.table); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json|csv|markdown")
	cmd.Flags().IntVar(&jobs, "jobs", 4, "Files normalized in parallel")
	return cmd
}

func newDescribeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [file]",
		Short: "Print the column summary of a normalized spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(cmd.Context(), cfg, args, 1)
			if err != nil {
				return err
			}

			profile, err := profiling.NewDataProfiler().ProfileTable(tables[0].table)
			if err != nil {
				return err
			}
			for _, line := range ai.CompileColumnSummary(profile) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newPromptCmd(cfg *config.Config) *cobra.Command {
	var option string
	var withProfile bool

	cmd := &cobra.Command{
		Use:   "prompt [file]",
		Short: "Print the prompt an analysis option would send for a spreadsheet",
		Long: `Render the analysis template for a spreadsheet without calling the backend.

Options: ` + strings.Join(ai.NewPromptManager("").Options(), ", ") + `

Example: findash-cli prompt --option risk holdings.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(cmd.Context(), cfg, args, 1)
			if err != nil {
				return err
			}

			svc := app.NewChatService(
				ai.NewPromptManager(cfg.AI.PromptsDir),
				dataset.NewNormalizer(dataset.OptionsFromConfig(cfg.Normalize)),
				nil, nil,
				app.ChatServiceConfig{IncludeProfile: withProfile},
			)
			prompt, err := svc.Prompt(option, tables[0].table)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		},
	}

	cmd.Flags().StringVar(&option, "option", "summary", "Analysis option key")
	cmd.Flags().BoolVar(&withProfile, "profile", cfg.Normalize.IncludeProfile, "Append the column summary")
	return cmd
}

func newAskCmd(cfg *config.Config) *cobra.Command {
	var option string

	cmd := &cobra.Command{
		Use:   "ask [file]",
		Short: "Send a spreadsheet to the text-generation backend and print the reply",
		Long: `Run one analysis against the configured backend.

Requires OPENROUTER_API_KEY; LLM_MODEL and LLM_BASE_URL are honored.

Example: OPENROUTER_API_KEY=... findash-cli ask --option trend prices.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := llm.NewClient(llm.Config{
				Model:       cfg.AI.Model,
				APIKey:      cfg.AI.APIKey,
				BaseURL:     cfg.AI.BaseURL,
				Referer:     cfg.AI.Referer,
				Temperature: cfg.AI.Temperature,
				MaxTokens:   cfg.AI.MaxTokens,
				Timeout:     cfg.AI.Timeout,
			})
			if err != nil {
				return err
			}

			readerConfig := excel.DefaultReaderConfig()
			readerConfig.Sheet = cfg.Normalize.Sheet
			raw, err := excel.NewDataReader(readerConfig).ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			svc := app.NewChatService(
				ai.NewPromptManager(cfg.AI.PromptsDir),
				dataset.NewNormalizer(dataset.OptionsFromConfig(cfg.Normalize)),
				client, nil,
				app.ChatServiceConfig{
					Model:          cfg.AI.Model,
					MaxTokens:      cfg.AI.MaxTokens,
					IncludeProfile: cfg.Normalize.IncludeProfile,
				},
			)
			result, err := svc.Chat(cmd.Context(), app.ChatRequest{Option: option, Data: raw})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&option, "option", "summary", "Analysis option key")
	return cmd
}

// tableWriter prints a normalized table in one output format
type tableWriter func(w io.Writer, t *table.NormalizedTable) error

func writerFor(format string) (tableWriter, error) {
	switch strings.ToLower(format) {
	case "json":
		return writeJSON, nil
	case "csv":
		return writeCSV, nil
	case "markdown", "md":
		return writeMarkdown, nil
	default:
		return nil, fmt.Errorf("unknown format %q (use json, csv or markdown)", format)
	}
}
