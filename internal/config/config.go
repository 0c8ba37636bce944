package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/knowledge-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	VectorStoreAzure    = "azure"
	VectorStorePgvector = "pgvector"
	VectorStoreMemory   = "memory"

	GranularityChunk    = "chunk"
	GranularityDocument = "document"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr     string        `env:"SERVER_ADDR" envDefault:":3000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"90s"`

	// External service configurations
	EmbeddingCfg   EmbeddingConfig   `envPrefix:"EMBEDDING_"`
	VectorStoreCfg VectorStoreConfig `envPrefix:"VECTOR_STORE_"`
	GenerationCfg  GenerationConfig  `envPrefix:"GENERATION_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Ingestion pipeline configuration
	IngestCfg IngestConfig `envPrefix:"INGEST_"`

	// Initial admin settings, mutable at runtime via /admin/settings
	SettingsCfg SettingsConfig `envPrefix:"SETTINGS_"`

	// Admin identity configuration
	AdminCfg AdminConfig `envPrefix:"ADMIN_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type EmbeddingConfig struct {
	HTTPClientConfig
	Deployment string               `env:"DEPLOYMENT"`
	APIVersion string               `env:"API_VERSION" envDefault:"2023-05-15"`
	CacheTTL   time.Duration        `env:"CACHE_TTL" envDefault:"10m"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type VectorStoreConfig struct {
	HTTPClientConfig
	Backend     string               `env:"BACKEND" envDefault:"azure"`
	Index       string               `env:"INDEX"`
	APIVersion  string               `env:"API_VERSION" envDefault:"2023-11-01"`
	DatabaseURL string               `env:"DATABASE_URL"`
	DB          DBConfig             `envPrefix:"DB_"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type DBConfig struct {
	MaxConns          int           `env:"MAX_CONNS" envDefault:"10"`
	MinConns          int           `env:"MIN_CONNS" envDefault:"1"`
	MaxConnLifetime   time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`
	HealthCheckPeriod time.Duration `env:"HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

type GenerationConfig struct {
	HTTPClientConfig
	Model string               `env:"MODEL"`
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// Configured reports whether enough is set to reach the generation provider
func (g GenerationConfig) Configured() bool {
	return g.Url != "" && g.Model != "" && g.APIKey != ""
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	TLSHandshakeTimeout   time.Duration `env:"TLS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
	Token                 string        `env:"TOKEN"`
	APIKey                string        `env:"API_KEY"`
	Url                   string        `env:"SERVICE_URL"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`  // 10 MiB
	MaxFileCount  int   `env:"MAX_FILE_COUNT" envDefault:"10"`       // Max 10 files
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB kept in memory
}

// MaxUpsertBatchSize is the most actions Azure AI Search accepts in one index request
const MaxUpsertBatchSize = 1000

type IngestConfig struct {
	ChunkSize       int    `env:"CHUNK_SIZE" envDefault:"800"`
	MaxEmbedChars   int    `env:"MAX_EMBED_CHARS" envDefault:"8000"`
	Workers         int    `env:"WORKERS" envDefault:"3"`
	Granularity     string `env:"GRANULARITY" envDefault:"chunk"`
	UpsertBatchSize int    `env:"UPSERT_BATCH_SIZE" envDefault:"500"`
}

type SettingsConfig struct {
	DefaultTopK     int    `env:"DEFAULT_TOP_K" envDefault:"5"`
	MaxTopK         int    `env:"MAX_TOP_K" envDefault:"20"`
	EnableLogging   bool   `env:"ENABLE_LOGGING" envDefault:"true"`
	RagSystemPrompt string `env:"RAG_SYSTEM_PROMPT" envDefault:"You are a helpful assistant that answers based only on the provided context."`
}

type AdminConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag
	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.VectorStoreCfg.Backend = strings.ToLower(cfg.VectorStoreCfg.Backend)
	cfg.IngestCfg.Granularity = strings.ToLower(cfg.IngestCfg.Granularity)
	if cfg.EnableMocks && cfg.VectorStoreCfg.Backend == VectorStoreAzure {
		cfg.VectorStoreCfg.Backend = VectorStoreMemory
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate ingestion configuration
	if cfg.IngestCfg.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_SIZE must be positive, got %d", cfg.IngestCfg.ChunkSize))
	}

	if cfg.IngestCfg.MaxEmbedChars < 1 {
		errors = append(errors, fmt.Sprintf("INGEST_MAX_EMBED_CHARS must be positive, got %d", cfg.IngestCfg.MaxEmbedChars))
	}

	if cfg.IngestCfg.Workers < 1 || cfg.IngestCfg.Workers > 16 {
		errors = append(errors, fmt.Sprintf("INGEST_WORKERS must be between 1 and 16, got %d", cfg.IngestCfg.Workers))
	}

	if cfg.IngestCfg.UpsertBatchSize < 1 || cfg.IngestCfg.UpsertBatchSize > MaxUpsertBatchSize {
		errors = append(errors, fmt.Sprintf("INGEST_UPSERT_BATCH_SIZE must be between 1 and %d, got %d", MaxUpsertBatchSize, cfg.IngestCfg.UpsertBatchSize))
	}

	if cfg.IngestCfg.Granularity != GranularityChunk && cfg.IngestCfg.Granularity != GranularityDocument {
		errors = append(errors, fmt.Sprintf("INGEST_GRANULARITY must be %q or %q, got %q", GranularityChunk, GranularityDocument, cfg.IngestCfg.Granularity))
	}

	// Validate admin settings
	if cfg.SettingsCfg.DefaultTopK < 1 {
		errors = append(errors, fmt.Sprintf("SETTINGS_DEFAULT_TOP_K must be at least 1, got %d", cfg.SettingsCfg.DefaultTopK))
	}

	if cfg.SettingsCfg.MaxTopK < cfg.SettingsCfg.DefaultTopK {
		errors = append(errors, fmt.Sprintf("SETTINGS_MAX_TOP_K must be at least SETTINGS_DEFAULT_TOP_K(%d), got %d", cfg.SettingsCfg.DefaultTopK, cfg.SettingsCfg.MaxTopK))
	}

	// Validate upload limits
	if cfg.FileUploadCfg.MaxFileSize < 1 {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_FILE_SIZE must be positive, got %d", cfg.FileUploadCfg.MaxFileSize))
	}

	if cfg.FileUploadCfg.MaxFileCount < 1 {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_FILE_COUNT must be positive, got %d", cfg.FileUploadCfg.MaxFileCount))
	}

	// Validate provider configuration
	switch cfg.VectorStoreCfg.Backend {
	case VectorStoreAzure:
		if cfg.VectorStoreCfg.Url == "" || cfg.VectorStoreCfg.Index == "" || cfg.VectorStoreCfg.APIKey == "" {
			errors = append(errors, "VECTOR_STORE_SERVICE_URL, VECTOR_STORE_INDEX and VECTOR_STORE_API_KEY are required for the azure backend")
		}
	case VectorStorePgvector:
		if cfg.VectorStoreCfg.DatabaseURL == "" {
			errors = append(errors, "VECTOR_STORE_DATABASE_URL is required for the pgvector backend")
		}
		if cfg.VectorStoreCfg.DB.MaxConns < 1 || cfg.VectorStoreCfg.DB.MaxConns > 200 {
			errors = append(errors, fmt.Sprintf("VECTOR_STORE_DB_MAX_CONNS must be between 1 and 200, got %d", cfg.VectorStoreCfg.DB.MaxConns))
		}
		if cfg.VectorStoreCfg.DB.MinConns < 0 || cfg.VectorStoreCfg.DB.MinConns > cfg.VectorStoreCfg.DB.MaxConns {
			errors = append(errors, fmt.Sprintf("VECTOR_STORE_DB_MIN_CONNS must be between 0 and VECTOR_STORE_DB_MAX_CONNS(%d), got %d", cfg.VectorStoreCfg.DB.MaxConns, cfg.VectorStoreCfg.DB.MinConns))
		}
	case VectorStoreMemory:
	default:
		errors = append(errors, fmt.Sprintf("VECTOR_STORE_BACKEND must be one of azure, pgvector, memory, got %q", cfg.VectorStoreCfg.Backend))
	}

	if !cfg.EnableMocks {
		if cfg.EmbeddingCfg.Url == "" || cfg.EmbeddingCfg.Deployment == "" || cfg.EmbeddingCfg.APIKey == "" {
			errors = append(errors, "EMBEDDING_SERVICE_URL, EMBEDDING_DEPLOYMENT and EMBEDDING_API_KEY are required unless ENABLE_MOCKS is set")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
