package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/knowledge-backend/internal/api"
	adminapi "github.com/futig/knowledge-backend/internal/api/admin"
	knowledgeapi "github.com/futig/knowledge-backend/internal/api/knowledge"
	"github.com/futig/knowledge-backend/internal/batch"
	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/integration/embedding"
	"github.com/futig/knowledge-backend/internal/integration/generation"
	"github.com/futig/knowledge-backend/internal/integration/vectorstore"
	"github.com/futig/knowledge-backend/internal/pkg/extractor"
	"github.com/futig/knowledge-backend/internal/pkg/validator"
	"github.com/futig/knowledge-backend/internal/registry"
	"github.com/futig/knowledge-backend/internal/repository"
	"github.com/futig/knowledge-backend/internal/usecase/answer"
	"github.com/futig/knowledge-backend/internal/usecase/ingestion"
	"github.com/futig/knowledge-backend/internal/usecase/retrieval"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const idleTimeout = 60 * time.Second

// vectorStore is what both ingestion and retrieval need from a backend
type vectorStore interface {
	ingestion.VectorIndexer
	retrieval.VectorSearcher
}

// components are shared by the HTTP server and the batch ingestion job
type components struct {
	cfg       *config.Config
	logger    *zap.Logger
	registry  *registry.Registry
	store     vectorStore
	db        *pgxpool.Pool
	embedder  embedding.Embedder
	generator answer.Generator
	validator *validator.Validator
	extractor *extractor.Extractor
	ingestion *ingestion.IngestionUsecase
}

func setupComponents(ctx context.Context, purpose string) (*components, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building "+purpose,
		zap.String("environment", cfg.Environment),
		zap.String("vector_store", cfg.VectorStoreCfg.Backend),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	// Metrics and admin settings
	reg, err := registry.New(entity.AdminSettings{
		DefaultTopK:     cfg.SettingsCfg.DefaultTopK,
		MaxTopK:         cfg.SettingsCfg.MaxTopK,
		EnableLogging:   cfg.SettingsCfg.EnableLogging,
		RagSystemPrompt: cfg.SettingsCfg.RagSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("init registry: %w", err)
	}

	// Vector store backend
	store, db, err := setupVectorStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup vector store: %w", err)
	}

	// Initialize external service connectors (with mock support)
	var embedder embedding.Embedder
	var generator answer.Generator

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(logger)
		generator = generation.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		embedder = embedding.NewConnector(cfg.EmbeddingCfg, logger)
		if cfg.GenerationCfg.Configured() {
			generator = generation.NewConnector(cfg.GenerationCfg, logger)
		} else {
			logger.Warn("Generation provider not configured, /rag-chat is disabled")
		}
	}

	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	textExtractor := extractor.New()

	ingestionUC := ingestion.NewUsecase(
		cfg.IngestCfg,
		fileValidator,
		textExtractor,
		embedder,
		store,
		reg,
		cfg.EmbeddingCfg.Retry,
		cfg.VectorStoreCfg.Retry,
	)

	return &components{
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		store:     store,
		db:        db,
		embedder:  embedder,
		generator: generator,
		validator: fileValidator,
		extractor: textExtractor,
		ingestion: ingestionUC,
	}, nil
}

func Build() (*App, error) {
	c, err := setupComponents(context.Background(), "application")
	if err != nil {
		return nil, err
	}
	cfg, logger := c.cfg, c.logger

	queryEmbedder := embedding.NewCachedEmbedder(c.embedder, cfg.EmbeddingCfg.CacheTTL)

	// Initialize use cases
	retrievalUC := retrieval.NewUsecase(
		queryEmbedder,
		c.store,
		c.registry,
		cfg.EmbeddingCfg.Retry,
		cfg.VectorStoreCfg.Retry,
	)

	answerUC := answer.NewUsecase(
		retrievalUC,
		answer.NewComposer(c.generator, cfg.GenerationCfg.Retry),
		c.registry,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	knowledgeHandler := knowledgeapi.NewHandler(retrievalUC, answerUC, c.ingestion, cfg.FileUploadCfg, c.validator)
	adminHandler := adminapi.NewHandler(c.registry)

	if cfg.AdminCfg.JWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET is not set, admin endpoints will reject every request")
	}

	// Setup router
	router := api.SetupRouter(api.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		AdminJWTSecret: cfg.AdminCfg.JWTSecret,
	}, knowledgeHandler, adminHandler, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	return &App{
		server: server,
		db:     c.db,
		logger: logger,
	}, nil
}

// BuildIngestJob wires the ingestion pipeline for the batch ingestion binary
func BuildIngestJob() (*IngestJob, error) {
	c, err := setupComponents(context.Background(), "ingestion job")
	if err != nil {
		return nil, err
	}

	job := batch.NewDirJob(c.ingestion, c.extractor, c.cfg.FileUploadCfg.MaxFileCount, c.cfg.FileUploadCfg.MaxFileSize)

	return &IngestJob{
		job:    job,
		db:     c.db,
		logger: c.logger,
	}, nil
}

// setupVectorStore returns the configured backend. The pool is nil unless the backend is pgvector.
func setupVectorStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (vectorStore, *pgxpool.Pool, error) {
	switch cfg.VectorStoreCfg.Backend {
	case config.VectorStoreAzure:
		return vectorstore.NewAzureSearchConnector(cfg.VectorStoreCfg, logger), nil, nil

	case config.VectorStorePgvector:
		db, err := setupDatabase(ctx, cfg.VectorStoreCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.VectorStoreCfg.DatabaseURL); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		return repository.NewRecordPostgres(db), db, nil

	case config.VectorStoreMemory:
		logger.Warn("Using in-memory vector store, records are lost on restart")
		return vectorstore.NewMemoryStore(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown vector store backend %q", cfg.VectorStoreCfg.Backend)
	}
}
