package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"findash/adapters/excel"
	"findash/adapters/llm"
	"findash/adapters/memory"
	"findash/adapters/postgres"
	"findash/ai"
	"findash/app"
	"findash/internal"
	"findash/internal/config"
	"findash/internal/dataset"
	"findash/internal/errors"
	"findash/internal/migration"
	"findash/ports"
	"findash/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and brings the chat_log schema up to date
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Chat log: PostgreSQL when configured, in memory otherwise
	var chatLogs ports.ChatLogRepository
	if appConfig.Database.Enabled() {
		initCtx, cancel := context.WithTimeout(ctx, time.Minute)
		db, err := initDatabase(initCtx, appConfig)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		chatLogs = postgres.NewChatLogRepository(db)
		log.Println("Chat log stored in PostgreSQL")
	} else {
		chatLogs = memory.NewChatLogRepository(memory.DefaultCapacity)
		log.Println("No DATABASE_URL set, chat log kept in memory")
	}

	llmClient, err := llm.NewClient(llm.Config{
		Model:       appConfig.AI.Model,
		APIKey:      appConfig.AI.APIKey,
		BaseURL:     appConfig.AI.BaseURL,
		Referer:     appConfig.AI.Referer,
		Temperature: appConfig.AI.Temperature,
		MaxTokens:   appConfig.AI.MaxTokens,
		Timeout:     appConfig.AI.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	chatService := app.NewChatService(
		ai.NewPromptManager(appConfig.AI.PromptsDir),
		dataset.NewNormalizer(dataset.OptionsFromConfig(appConfig.Normalize)),
		llmClient,
		chatLogs,
		app.ChatServiceConfig{
			Model:          appConfig.AI.Model,
			MaxTokens:      appConfig.AI.MaxTokens,
			IncludeProfile: appConfig.Normalize.IncludeProfile,
		},
	)

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.Sheet = appConfig.Normalize.Sheet
	reader := excel.NewDataReader(readerConfig)

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	server := ui.NewServer(appConfig.Server, chatService, reader)
	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
