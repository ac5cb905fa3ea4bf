package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/inkwell-labs/inkwell/internal/api/handlers"
	"github.com/inkwell-labs/inkwell/internal/config"
	"github.com/inkwell-labs/inkwell/internal/database"
	"github.com/inkwell-labs/inkwell/internal/extract"
	"github.com/inkwell-labs/inkwell/internal/jobs"
	"github.com/inkwell-labs/inkwell/internal/llm"
	"github.com/inkwell-labs/inkwell/internal/llm/gemini"
	"github.com/inkwell-labs/inkwell/internal/llm/openai"
	"github.com/inkwell-labs/inkwell/internal/repository"
	"github.com/inkwell-labs/inkwell/internal/server"
	"github.com/inkwell-labs/inkwell/internal/service"
	"github.com/inkwell-labs/inkwell/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the inkwell API server and the background ingestion worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if a DSN is configured
	if cfg.HasSentry() {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	embedder, generator, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}

	notebookRepo := repository.NewNotebookRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	embeddingRepo := repository.NewEmbeddingRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	jobRepo := repository.NewIngestionJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	chunkCfg := service.DefaultChunkConfig()
	chunkCfg.MaxChars = cfg.ChunkSize
	chunkCfg.Overlap = cfg.ChunkOverlap

	ingestionSvc := service.NewIngestionService(embedder, embeddingRepo, chunkCfg, cfg.IngestConcurrency)
	retriever := service.NewRetrieverService(embedder, embeddingRepo, service.RetrieverConfig{
		Threshold: cfg.MatchThreshold,
		TopK:      cfg.MatchCount,
	})
	assembler := service.NewContextAssembler(cfg.MaxContextChars)
	answerSvc := service.NewAnswerService(
		notebookRepo, documentRepo, chatRepo,
		retriever, assembler, generator,
		service.GenerationParams{MaxOutputTokens: cfg.MaxOutputTokens, Temperature: cfg.Temperature},
	)

	notebookSvc := service.NewNotebookService(notebookRepo)
	documentSvc := service.NewDocumentService(notebookRepo, documentRepo, txRunner, extract.NewExtractor())
	chatSvc := service.NewChatService(notebookRepo, chatRepo)
	noteSvc := service.NewNoteService(notebookRepo, noteRepo, chatRepo, cfg.NoteMaxChars)
	searchSvc := service.NewSearchService(notebookRepo, documentRepo, retriever)

	ingestProcessor := jobs.NewIngestWorker(jobRepo, documentRepo, ingestionSvc)
	ingestWorker := jobs.NewWorker(ingestProcessor, cfg.JobPollInterval)
	go ingestWorker.Start(ctx)
	log.Println("ingestion worker started")

	router := server.NewRouter(server.RouterConfig{
		NotebookHandler: handlers.NewNotebookHandler(notebookSvc),
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		ChatHandler:     handlers.NewChatHandler(answerSvc, chatSvc),
		NoteHandler:     handlers.NewNoteHandler(noteSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ingestWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildProvider selects the LLM backend and applies the standard decorator
// stack: per-call timeout, bounded retry, then an expiring embed cache.
func buildProvider(ctx context.Context, cfg *config.Config) (llm.Embedder, llm.Generator, error) {
	var embedder llm.Embedder
	var generator llm.Generator

	switch {
	case cfg.HasGemini():
		client, err := gemini.NewClientWithConfig(ctx, gemini.Config{
			APIKey:          cfg.GeminiAPIKey,
			EmbeddingModel:  cfg.EmbeddingModel,
			GenerationModel: cfg.GenerationModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gemini provider: %w", err)
		}
		embedder, generator = client, client
		log.Printf("using gemini provider (embedding: %s)", client.ModelName())
	case cfg.HasOpenAI():
		client := openai.NewClientWithConfig(openai.Config{
			APIKey:          cfg.OpenAIAPIKey,
			GenerationModel: cfg.GenerationModel,
		})
		embedder, generator = client, client
		log.Printf("using openai provider (embedding: %s)", client.ModelName())
	default:
		return nil, nil, llm.ErrNoProvider
	}

	embedder = llm.WithTimeout(embedder, cfg.ProviderTimeout)
	embedder = llm.WithRetry(embedder, 0, 0)
	embedder = llm.WithCache(embedder, cfg.EmbedCacheSize, cfg.EmbedCacheTTL)

	generator = llm.WithGenerateTimeout(generator, cfg.ProviderTimeout)
	generator = llm.WithGenerateRetry(generator, 0, 0)

	return embedder, generator, nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		log.Printf("migrations applied (version: %d, dirty: %v)", version, dirty)
	}
	return nil
}
