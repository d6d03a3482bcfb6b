package admin

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
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/lexgraph/lexgraph/internal/api/handlers"
	"github.com/lexgraph/lexgraph/internal/config"
	"github.com/lexgraph/lexgraph/internal/database"
	"github.com/lexgraph/lexgraph/internal/embedding"
	"github.com/lexgraph/lexgraph/internal/extract"
	"github.com/lexgraph/lexgraph/internal/jobs"
	"github.com/lexgraph/lexgraph/internal/repository"
	"github.com/lexgraph/lexgraph/internal/server"
	"github.com/lexgraph/lexgraph/internal/service"
	"github.com/lexgraph/lexgraph/internal/storage"
	"github.com/lexgraph/lexgraph/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the lexgraph API server on the specified port",
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

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: cfg.SentrySampleRate,
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

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	extractor := extract.NewPlainExtractor()
	embedder := embedding.NewClientWithConfig(embedding.Config{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      openai.EmbeddingModel(cfg.EmbeddingModel),
		Dimensions: cfg.EmbeddingDimensions,
	})
	chatClient := embedding.NewChatClient(cfg.OpenAIAPIKey, cfg.ChatModel)
	if !cfg.HasOpenAI() {
		log.Println("OPENAI_API_KEY not set: embeddings, search and answers will be degraded")
	}

	pipelineSvc := service.NewPipelineService(docRepo, chunkRepo, extractor, embedder, service.PipelineConfig{
		ChunkSize:   cfg.ChunkSize,
		OverlapSize: cfg.OverlapSize,
	})

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		pipelineSvc = pipelineSvc.WithObjectStore(s3Client)
	}

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	ragSvc := service.NewRAGService(pipelineSvc, chatClient)

	var backfillWorker *jobs.Worker
	if cfg.HasOpenAI() {
		processor := jobs.NewBackfillWorker(chunkRepo, embedder)
		backfillWorker = jobs.NewWorker(processor, cfg.BackfillInterval)
		go backfillWorker.Start(ctx)
		log.Println("embedding backfill worker started")
	}

	router := server.NewRouter(server.RouterConfig{
		TokenValidator:  authSvc,
		AuthHandler:     handlers.NewAuthHandler(authSvc),
		DocumentHandler: handlers.NewDocumentHandler(pipelineSvc),
		SearchHandler:   handlers.NewSearchHandler(pipelineSvc, ragSvc),
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

	if backfillWorker != nil {
		backfillWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL, migrationsPath string) error {
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
		"file://"+migrationsPath,
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
	if verr != nil && verr != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", verr)
	}

	if verr == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
