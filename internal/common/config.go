package common

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Inbox   InboxConfig
	Cache   CacheConfig
	OCR     OCRConfig
	Judge   JudgeConfig
	Runner  RunnerConfig
	History HistoryConfig
}

// InboxConfig holds document source configuration
type InboxConfig struct {
	Dir      string
	Debounce time.Duration
}

// CacheConfig holds extraction cache configuration
type CacheConfig struct {
	Dir string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
	MaxPages      int
}

// JudgeConfig holds the external judge (LLM) configuration
type JudgeConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// RunnerConfig holds pipeline scheduling configuration
type RunnerConfig struct {
	Workers    int
	DocTimeout time.Duration
}

// HistoryConfig holds the optional run-history store configuration.
// An empty DSN disables persistence.
type HistoryConfig struct {
	Driver string
	DSN    string
}

// MaxWorkers caps run concurrency to bound simultaneous judge calls
// and rasterization memory pressure.
const MaxWorkers = 8

// DefaultWorkers derives the worker-pool size from available parallelism.
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	if n > MaxWorkers {
		n = MaxWorkers
	}
	return n
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Inbox: InboxConfig{
			Dir:      getEnv("CV_INBOX_DIR", "cvs"),
			Debounce: getEnvAsDuration("CV_INBOX_DEBOUNCE", 2*time.Second),
		},
		Cache: CacheConfig{
			Dir: getEnv("CV_CACHE_DIR", "cache"),
		},
		OCR: OCRConfig{
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 250),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Judge: JudgeConfig{
			BaseURL:     getEnv("JUDGE_BASE_URL", ""),
			APIKey:      getEnv("JUDGE_API_KEY", ""),
			Model:       getEnv("JUDGE_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("JUDGE_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("JUDGE_TIMEOUT", 45*time.Second),
		},
		Runner: RunnerConfig{
			Workers:    getEnvAsInt("PIPELINE_WORKERS", DefaultWorkers()),
			DocTimeout: getEnvAsDuration("PIPELINE_DOC_TIMEOUT", 3*time.Minute),
		},
		History: HistoryConfig{
			Driver: getEnv("HISTORY_DRIVER", "sqlite"),
			DSN:    getEnv("HISTORY_DSN", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Inbox.Dir == "" {
		return NewAppError("CONFIG_ERROR", "CV_INBOX_DIR is required", ErrInvalidInput)
	}
	if c.Cache.Dir == "" {
		return NewAppError("CONFIG_ERROR", "CV_CACHE_DIR is required", ErrInvalidInput)
	}
	if c.Runner.Workers < 1 || c.Runner.Workers > MaxWorkers {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be between 1 and 8", ErrInvalidInput)
	}
	return nil
}
