package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Paperless PaperlessConfig
	Extractor ExtractorConfig
	RAG       RAGConfig
	Batch     BatchConfig
	Log       LogConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// PaperlessConfig holds settings for the Paperless-ngx document store.
type PaperlessConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExtractorConfig holds LLM field extraction settings.
type ExtractorConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// RAGConfig holds settings for the contract validation service.
type RAGConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BatchConfig holds batch validation limits.
type BatchConfig struct {
	MaxCompleteness       int `mapstructure:"max_completeness"`
	MaxBIR                int `mapstructure:"max_bir"`
	CompletenessChunkSize int `mapstructure:"completeness_chunk_size"`
	BIRChunkSize          int `mapstructure:"bir_chunk_size"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the BIRVALID_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BIRVALID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "birvalid")
	v.SetDefault("db.password", "birvalid_secret")
	v.SetDefault("db.name", "birvalid_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Paperless defaults
	v.SetDefault("paperless.base_url", "http://localhost:8000")
	v.SetDefault("paperless.token", "")
	v.SetDefault("paperless.timeout", "30s")

	// Extractor defaults
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.model", "gpt-4o")
	v.SetDefault("extractor.base_url", "")

	// RAG defaults
	v.SetDefault("rag.base_url", "http://localhost:8100")
	v.SetDefault("rag.api_key", "")
	v.SetDefault("rag.timeout", "60s")

	// Batch defaults
	v.SetDefault("batch.max_completeness", 50)
	v.SetDefault("batch.max_bir", 25)
	v.SetDefault("batch.completeness_chunk_size", 5)
	v.SetDefault("batch.bir_chunk_size", 3)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "BIRVALID_SERVER_PORT",
		"server.read_timeout":           "BIRVALID_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "BIRVALID_SERVER_WRITE_TIMEOUT",
		"server.environment":            "BIRVALID_SERVER_ENVIRONMENT",
		"db.host":                       "BIRVALID_DB_HOST",
		"db.port":                       "BIRVALID_DB_PORT",
		"db.user":                       "BIRVALID_DB_USER",
		"db.password":                   "BIRVALID_DB_PASSWORD",
		"db.name":                       "BIRVALID_DB_NAME",
		"db.sslmode":                    "BIRVALID_DB_SSLMODE",
		"db.max_open":                   "BIRVALID_DB_MAX_OPEN",
		"db.max_idle":                   "BIRVALID_DB_MAX_IDLE",
		"paperless.base_url":            "BIRVALID_PAPERLESS_BASE_URL",
		"paperless.token":               "BIRVALID_PAPERLESS_TOKEN",
		"paperless.timeout":             "BIRVALID_PAPERLESS_TIMEOUT",
		"extractor.api_key":             "BIRVALID_EXTRACTOR_API_KEY",
		"extractor.model":               "BIRVALID_EXTRACTOR_MODEL",
		"extractor.base_url":            "BIRVALID_EXTRACTOR_BASE_URL",
		"rag.base_url":                  "BIRVALID_RAG_BASE_URL",
		"rag.api_key":                   "BIRVALID_RAG_API_KEY",
		"rag.timeout":                   "BIRVALID_RAG_TIMEOUT",
		"batch.max_completeness":        "BIRVALID_BATCH_MAX_COMPLETENESS",
		"batch.max_bir":                 "BIRVALID_BATCH_MAX_BIR",
		"batch.completeness_chunk_size": "BIRVALID_BATCH_COMPLETENESS_CHUNK_SIZE",
		"batch.bir_chunk_size":          "BIRVALID_BATCH_BIR_CHUNK_SIZE",
		"log.level":                     "BIRVALID_LOG_LEVEL",
		"log.format":                    "BIRVALID_LOG_FORMAT",
		"cors.allowed_origins":          "BIRVALID_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BIRVALID_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BIRVALID_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Paperless = PaperlessConfig{
		BaseURL: strings.TrimRight(v.GetString("paperless.base_url"), "/"),
		Token:   v.GetString("paperless.token"),
		Timeout: v.GetDuration("paperless.timeout"),
	}
	cfg.Extractor = ExtractorConfig{
		APIKey:  v.GetString("extractor.api_key"),
		Model:   v.GetString("extractor.model"),
		BaseURL: v.GetString("extractor.base_url"),
	}
	cfg.RAG = RAGConfig{
		BaseURL: strings.TrimRight(v.GetString("rag.base_url"), "/"),
		APIKey:  v.GetString("rag.api_key"),
		Timeout: v.GetDuration("rag.timeout"),
	}
	cfg.Batch = BatchConfig{
		MaxCompleteness:       v.GetInt("batch.max_completeness"),
		MaxBIR:                v.GetInt("batch.max_bir"),
		CompletenessChunkSize: v.GetInt("batch.completeness_chunk_size"),
		BIRChunkSize:          v.GetInt("batch.bir_chunk_size"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	return cfg, nil
}
