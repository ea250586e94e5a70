package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

// Config holds one section per service. All five services read the same file
// and pick their section, so a deployment keeps a single source of truth for
// ports and inter-service URLs.
type Config struct {
	LogConfig logger.LogConfig `json:"log_config"`
	Gateway   GatewayConfig    `json:"gateway"`
	Extractor ExtractorConfig  `json:"extractor"`
	Embedder  EmbedderConfig   `json:"embedder"`
	Store     StoreConfig      `json:"store"`
	LLM       LLMConfig        `json:"llm"`
}

type GatewayConfig struct {
	Port         int      `json:"port"`
	StoreURL     string   `json:"store_url"`
	LLMURL       string   `json:"llm_url"`
	ExtractorURL string   `json:"extractor_url"`
	S3           S3Config `json:"s3"`
	CORSOrigins  []string `json:"cors_origins"`
	// Minimum seconds between generation requests per client; 0 disables.
	RateLimitSeconds int `json:"rate_limit_seconds"`
}

type ExtractorConfig struct {
	Port          int         `json:"port"`
	S3            S3Config    `json:"s3"`
	TimedTextURL  string      `json:"timedtext_url"`
	Parallelism   int         `json:"parallelism"`
	Chunk         ChunkConfig `json:"chunk"`
	TranscriptLng string      `json:"transcript_lang"`
}

type ChunkConfig struct {
	MaxTokens     int `json:"max_tokens"`
	OverlapTokens int `json:"overlap_tokens"`
}

type EmbedderConfig struct {
	Port          int         `json:"port"`
	Provider      string      `json:"provider"`
	Model         string      `json:"model"`
	ProviderArgs  interface{} `json:"provider_args"`
	CacheSize     int         `json:"cache_size"`
	CacheTTLHours int         `json:"cache_ttl_hours"`
}

type StoreConfig struct {
	Port         int            `json:"port"`
	Database     DatabaseConfig `json:"database"`
	EmbedderURL  string         `json:"embedder_url"`
	EmbeddingDim int            `json:"embedding_dim"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type LLMConfig struct {
	Port         int         `json:"port"`
	Provider     string      `json:"provider"`
	Model        string      `json:"model"`
	ProviderArgs interface{} `json:"provider_args"`
}

type S3Config struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8000
	}
	if c.Gateway.StoreURL == "" {
		c.Gateway.StoreURL = "http://localhost:8003"
	}
	if c.Gateway.LLMURL == "" {
		c.Gateway.LLMURL = "http://localhost:8002"
	}
	if c.Gateway.ExtractorURL == "" {
		c.Gateway.ExtractorURL = "http://localhost:8001"
	}
	if c.Extractor.Port == 0 {
		c.Extractor.Port = 8001
	}
	if c.Extractor.Parallelism <= 0 {
		c.Extractor.Parallelism = 4
	}
	if c.Extractor.Chunk.MaxTokens == 0 {
		c.Extractor.Chunk.MaxTokens = 300
	}
	if c.Extractor.Chunk.OverlapTokens == 0 {
		c.Extractor.Chunk.OverlapTokens = 50
	}
	if c.Extractor.TranscriptLng == "" {
		c.Extractor.TranscriptLng = "en"
	}
	if c.LLM.Port == 0 {
		c.LLM.Port = 8002
	}
	if c.Store.Port == 0 {
		c.Store.Port = 8003
	}
	if c.Store.EmbedderURL == "" {
		c.Store.EmbedderURL = "http://localhost:8004"
	}
	if c.Store.EmbeddingDim == 0 {
		c.Store.EmbeddingDim = 384
	}
	if c.Embedder.Port == 0 {
		c.Embedder.Port = 8004
	}
	if c.Embedder.CacheSize == 0 {
		c.Embedder.CacheSize = 10000
	}
	if c.Embedder.CacheTTLHours == 0 {
		c.Embedder.CacheTTLHours = 2
	}
}

// ValidateGateway checks the fields the gateway cannot run without.
func (c *Config) ValidateGateway() error {
	if c.Gateway.S3.Bucket == "" {
		return fmt.Errorf("gateway.s3.bucket is required")
	}
	return nil
}

func (c *Config) ValidateExtractor() error {
	if c.Extractor.S3.Region == "" {
		return fmt.Errorf("extractor.s3.region is required")
	}
	return nil
}

func (c *Config) ValidateEmbedder() error {
	if c.Embedder.Provider == "" {
		return fmt.Errorf("embedder.provider is required")
	}
	if c.Embedder.Model == "" {
		return fmt.Errorf("embedder.model is required")
	}
	return nil
}

func (c *Config) ValidateStore() error {
	db := c.Store.Database
	if db.DSN == "" && (db.Host == "" || db.DBName == "") {
		return fmt.Errorf("store.database.dsn or host/db_name are required")
	}
	return nil
}

func (c *Config) ValidateLLM() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}
