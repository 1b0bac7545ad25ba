package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Assessment AssessmentConfig
	Logging    LoggingConfig
	Scheduler  SchedulerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimitRPS    int
	RateLimitBurst  int
}

// StoreConfig holds snapshot store configuration
type StoreConfig struct {
	// Backend selects "file" or "sql".
	Backend string
	// Dir is the snapshot directory for the file backend.
	Dir string
	// Driver is "sqlite" or "postgres" for the sql backend.
	Driver string
	// DSN is the connection string for the sql backend.
	DSN string
}

// AssessmentConfig holds defaults for posture assessment runs
type AssessmentConfig struct {
	Org                  string
	SourceDir            string
	RequiredPlatforms    []string
	DefaultRTOMinutes    int
	StalenessDays        int
	PassRateBar          float64
	ExportDir            string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// SchedulerConfig holds the background assessment schedule
type SchedulerConfig struct {
	Enabled bool
	Cron    string
}

// Load reads configuration from environment variables, with an optional
// .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
			RateLimitRPS:    getEnvAsInt("SERVER_RATE_LIMIT_RPS", 20),
			RateLimitBurst:  getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "file"),
			Dir:     getEnv("STORE_DIR", "./snapshots"),
			Driver:  getEnv("STORE_DRIVER", "sqlite"),
			DSN:     getEnv("STORE_DSN", "file:restoreaudit.db?_pragma=busy_timeout(5000)"),
		},
		Assessment: AssessmentConfig{
			Org:               getEnv("ASSESSMENT_ORG", "default"),
			SourceDir:         getEnv("ASSESSMENT_SOURCE_DIR", "./results"),
			RequiredPlatforms: getEnvAsSlice("ASSESSMENT_REQUIRED_PLATFORMS", nil),
			DefaultRTOMinutes: getEnvAsInt("ASSESSMENT_DEFAULT_RTO_MINUTES", 0),
			StalenessDays:     getEnvAsInt("ASSESSMENT_STALENESS_DAYS", 30),
			PassRateBar:       getEnvAsFloat("ASSESSMENT_PASS_RATE_BAR", 95.0),
			ExportDir:         getEnv("ASSESSMENT_EXPORT_DIR", "./exports"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Scheduler: SchedulerConfig{
			Enabled: getEnvAsBool("SCHEDULER_ENABLED", false),
			Cron:    getEnv("SCHEDULER_CRON", "0 6 * * *"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
