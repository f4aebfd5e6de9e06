package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Minio    MinioConfig    `yaml:"minio"`
	Whisper  WhisperConfig  `yaml:"whisper"`
	LLM      LLMConfig      `yaml:"llm"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Download DownloadConfig `yaml:"download"`
	Worker   WorkerConfig   `yaml:"worker"`
	Tasks    TasksConfig    `yaml:"tasks"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"8000"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"5m"`
}

// MongoConfig holds document store configuration.
type MongoConfig struct {
	URI             string        `yaml:"uri" envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database        string        `yaml:"database" envconfig:"MONGO_DATABASE" default:"social_media_analyzer"`
	Collection      string        `yaml:"collection" envconfig:"MONGO_COLLECTION" default:"scraped_data"`
	PostsCollection string        `yaml:"posts_collection" envconfig:"MONGO_POSTS_COLLECTION" default:"posts"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" envconfig:"MONGO_CONNECT_TIMEOUT" default:"5s"`
}

// MinioConfig holds blob store configuration.
type MinioConfig struct {
	Endpoint      string        `yaml:"endpoint" envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey     string        `yaml:"access_key" envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey     string        `yaml:"secret_key" envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket        string        `yaml:"bucket" envconfig:"MINIO_BUCKET" default:"scraped-results"`
	Secure        bool          `yaml:"secure" envconfig:"MINIO_SECURE" default:"false"`
	PresignExpiry time.Duration `yaml:"presign_expiry" envconfig:"MINIO_PRESIGN_EXPIRY" default:"1h"`
}

// WhisperConfig holds transcription service configuration. The read timeout
// is deliberately long: transcription of long media on constrained hardware
// dominates pipeline latency.
type WhisperConfig struct {
	URL            string        `yaml:"url" envconfig:"WHISPER_API_URL" default:"http://localhost:8001/transcribe"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" envconfig:"WHISPER_CONNECT_TIMEOUT" default:"15s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" envconfig:"WHISPER_READ_TIMEOUT" default:"20m"`
	MaxRetries     int           `yaml:"max_retries" envconfig:"WHISPER_MAX_RETRIES" default:"2"`
	RetryDelay     time.Duration `yaml:"retry_delay" envconfig:"WHISPER_RETRY_DELAY" default:"1s"`
}

// LLMConfig holds summarization/sentiment backend configuration.
type LLMConfig struct {
	CompletionURL   string        `yaml:"completion_url" envconfig:"LLM_COMPLETION_URL" default:"http://localhost:8080/completion"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"LLM_TIMEOUT" default:"30s"`
	SummaryTokens   int           `yaml:"summary_tokens" envconfig:"LLM_SUMMARY_TOKENS" default:"256"`
	SentimentTokens int           `yaml:"sentiment_tokens" envconfig:"LLM_SENTIMENT_TOKENS" default:"10"`
}

// ScraperConfig holds remote scraping backend configuration.
type ScraperConfig struct {
	BaseURL      string        `yaml:"base_url" envconfig:"SCRAPER_BASE_URL" default:"https://api.apify.com/v2"`
	APIToken     string        `yaml:"api_token" envconfig:"SCRAPER_API_TOKEN"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"SCRAPER_POLL_INTERVAL" default:"3s"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"SCRAPER_TIMEOUT" default:"5m"`
}

// DownloadConfig holds media download configuration.
type DownloadConfig struct {
	Timeout       time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"10m"`
	MaxBytes      int64         `yaml:"max_bytes" envconfig:"DOWNLOAD_MAX_BYTES" default:"1073741824"` // 1GB
	RetryDelay    time.Duration `yaml:"retry_delay" envconfig:"DOWNLOAD_RETRY_DELAY" default:"5s"`
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" envconfig:"DOWNLOAD_MAX_RETRY_DELAY" default:"60s"`
	UserAgent     string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	Count        int           `yaml:"count" envconfig:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL" default:"1s"`
}

// TasksConfig bounds the in-memory task-status table.
type TasksConfig struct {
	TTL           time.Duration `yaml:"ttl" envconfig:"TASKS_TTL" default:"24h"`
	MaxEntries    int           `yaml:"max_entries" envconfig:"TASKS_MAX_ENTRIES" default:"10000"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"TASKS_SWEEP_INTERVAL" default:"10m"`
}

// CacheConfig controls the shortcode-keyed result cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"CACHE_TTL" default:"168h"` // 7 days
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Minio.Endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required")
	}
	if c.Whisper.URL == "" {
		return fmt.Errorf("WHISPER_API_URL is required")
	}
	if c.LLM.CompletionURL == "" {
		return fmt.Errorf("LLM_COMPLETION_URL is required")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
