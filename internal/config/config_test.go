package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Mongo:   MongoConfig{URI: "mongodb://localhost:27017"},
		Minio:   MinioConfig{Endpoint: "localhost:9000"},
		Whisper: WhisperConfig{URL: "http://localhost:8001/transcribe"},
		LLM:     LLMConfig{CompletionURL: "http://localhost:8080/completion"},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() should pass, got %v", err)
	}
}

func TestConfig_Validate_MissingMongoURI(t *testing.T) {
	cfg := validConfig()
	cfg.Mongo.URI = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing MONGO_URI")
	}
}

func TestConfig_Validate_MissingMinioEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Minio.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing MINIO_ENDPOINT")
	}
}

func TestConfig_Validate_MissingWhisperURL(t *testing.T) {
	cfg := validConfig()
	cfg.Whisper.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing WHISPER_API_URL")
	}
}

func TestConfig_Validate_MissingCompletionURL(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.CompletionURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing LLM_COMPLETION_URL")
	}
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{
			name: "default",
			cfg:  ServerConfig{Host: "0.0.0.0", Port: 8000},
			want: "0.0.0.0:8000",
		},
		{
			name: "localhost",
			cfg:  ServerConfig{Host: "localhost", Port: 8080},
			want: "localhost:8080",
		},
		{
			name: "specific IP",
			cfg:  ServerConfig{Host: "192.168.1.100", Port: 3000},
			want: "192.168.1.100:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Address(); got != tt.want {
				t.Errorf("Address() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Whisper.ConnectTimeout != 15*time.Second {
		t.Errorf("whisper connect timeout = %v, want 15s", cfg.Whisper.ConnectTimeout)
	}
	if cfg.Whisper.ReadTimeout != 20*time.Minute {
		t.Errorf("whisper read timeout = %v, want 20m", cfg.Whisper.ReadTimeout)
	}
	if cfg.Whisper.MaxRetries != 2 {
		t.Errorf("whisper max retries = %d, want 2", cfg.Whisper.MaxRetries)
	}
	if cfg.Cache.TTL != 168*time.Hour {
		t.Errorf("cache TTL = %v, want 168h", cfg.Cache.TTL)
	}
	if cfg.LLM.SentimentTokens != 10 {
		t.Errorf("sentiment tokens = %d, want 10", cfg.LLM.SentimentTokens)
	}
	if cfg.LLM.SummaryTokens != 256 {
		t.Errorf("summary tokens = %d, want 256", cfg.LLM.SummaryTokens)
	}
	if cfg.Minio.Bucket != "scraped-results" {
		t.Errorf("bucket = %q, want scraped-results", cfg.Minio.Bucket)
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
mongo:
  uri: "mongodb://db.internal:27017"
  database: "scraper_test"
minio:
  bucket: "yaml-bucket"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Mongo.URI != "mongodb://db.internal:27017" {
		t.Errorf("Mongo URI = %q, want YAML value", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != "scraper_test" {
		t.Errorf("Mongo database = %q, want scraper_test", cfg.Mongo.Database)
	}
	if cfg.Minio.Bucket != "yaml-bucket" {
		t.Errorf("bucket = %q, want yaml-bucket", cfg.Minio.Bucket)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
mongo:
  uri: "mongodb://yaml:27017"
minio:
  bucket: "yaml-bucket"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("MONGO_URI", "mongodb://env:27017")
	t.Setenv("MINIO_BUCKET", "env-bucket")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Mongo.URI != "mongodb://env:27017" {
		t.Errorf("Mongo URI should be from env, got %q", cfg.Mongo.URI)
	}
	if cfg.Minio.Bucket != "env-bucket" {
		t.Errorf("bucket should be from env, got %q", cfg.Minio.Bucket)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
server:
  host: "localhost
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load should fail for invalid YAML")
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail for nonexistent file")
	}
}
