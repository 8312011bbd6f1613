package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Pipeline    PipelineConfig
	Model       ModelConfig
	Deploy      DeployConfig
	SitesDir    string
	UploadDir   string
	StoragePath string
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PipelineConfig struct {
	Workers               int
	QueueSize             int
	TranscriptionAttempts int
	UseTranscriptionCache bool
}

type ModelConfig struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	ExtractionModel    string
	RenderingModel     string
	Timeout            time.Duration
}

type DeployConfig struct {
	AccessToken string
	APIBase     string
	Timeout     time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; missing keys fall back
// to defaults suitable for local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Address:      envString("SERVER_ADDRESS", ":8080"),
			ReadTimeout:  envDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: envDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			Workers:               envInt("PIPELINE_WORKERS", 4),
			QueueSize:             envInt("PIPELINE_QUEUE_SIZE", 100),
			TranscriptionAttempts: envInt("TRANSCRIPTION_ATTEMPTS", 3),
			UseTranscriptionCache: envBool("TRANSCRIPTION_CACHE", true),
		},
		Model: ModelConfig{
			APIKey:             os.Getenv("GEMINI_API_KEY"),
			BaseURL:            envString("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta"),
			TranscriptionModel: envString("TRANSCRIPTION_MODEL", "gemini-2.0-flash-lite"),
			ExtractionModel:    envString("EXTRACTION_MODEL", "gemini-2.0-flash-001"),
			RenderingModel:     envString("RENDERING_MODEL", "gemini-2.0-flash-001"),
			Timeout:            envDuration("MODEL_TIMEOUT", 2*time.Minute),
		},
		Deploy: DeployConfig{
			AccessToken: os.Getenv("NETLIFY_PERSONAL_ACCESS_TOKEN"),
			APIBase:     envString("NETLIFY_API_BASE", "https://api.netlify.com/api/v1"),
			Timeout:     envDuration("DEPLOY_TIMEOUT", 60*time.Second),
		},
		SitesDir:    envString("SITES_DIR", "./microsites"),
		UploadDir:   envString("UPLOAD_DIR", "./uploads"),
		StoragePath: envString("STORAGE_PATH", "./data"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
