package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client configuration shared by the CLI and the agent
type Config struct {
	Environment string
	LogLevel    string

	APIURL      string
	SocketURL   string
	HTTPTimeout time.Duration

	// Profile names the persisted session, so one machine can hold several logins
	Profile        string
	SessionBackend string
	SessionDir     string
	RedisURL       string

	JournalDSN string

	AdminPageLimit   int
	LandlordPageSize int

	ResyncSchedule     string
	RefreshMinInterval time.Duration

	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	BreakerTimeout          time.Duration

	AgentPort  int
	AgentToken string
}

// Load reads configuration from environment variables, after merging an
// optional .env file from the working directory
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %w", err)
	}

	adminLimit, err := strconv.Atoi(getEnv("ADMIN_PAGE_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_PAGE_LIMIT: %w", err)
	}

	landlordPageSize, err := strconv.Atoi(getEnv("LANDLORD_PAGE_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LANDLORD_PAGE_SIZE: %w", err)
	}

	refreshInterval, err := strconv.Atoi(getEnv("REFRESH_MIN_INTERVAL_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_MIN_INTERVAL_SECONDS: %w", err)
	}

	failureThreshold, err := strconv.Atoi(getEnv("BREAKER_FAILURE_THRESHOLD", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_FAILURE_THRESHOLD: %w", err)
	}

	successThreshold, err := strconv.Atoi(getEnv("BREAKER_SUCCESS_THRESHOLD", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_SUCCESS_THRESHOLD: %w", err)
	}

	breakerTimeout, err := strconv.Atoi(getEnv("BREAKER_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_TIMEOUT_SECONDS: %w", err)
	}

	agentPort, err := strconv.Atoi(getEnv("AGENT_PORT", "8090"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_PORT: %w", err)
	}

	if adminLimit <= 0 {
		return nil, fmt.Errorf("invalid ADMIN_PAGE_LIMIT: must be positive")
	}
	if landlordPageSize <= 0 {
		return nil, fmt.Errorf("invalid LANDLORD_PAGE_SIZE: must be positive")
	}

	apiURL := strings.TrimSuffix(getEnv("RENTDESK_API_URL", "http://localhost:5000"), "/")

	backend := strings.ToLower(getEnv("SESSION_BACKEND", "file"))
	if backend != "file" && backend != "redis" {
		return nil, fmt.Errorf("invalid SESSION_BACKEND: %q", backend)
	}

	return &Config{
		Environment:             getEnv("ENVIRONMENT", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		APIURL:                  apiURL,
		SocketURL:               getEnv("RENTDESK_SOCKET_URL", SocketURLFromAPI(apiURL)),
		HTTPTimeout:             time.Duration(timeout) * time.Second,
		Profile:                 getEnv("RENTDESK_PROFILE", "default"),
		SessionBackend:          backend,
		SessionDir:              getEnv("RENTDESK_HOME", defaultSessionDir()),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379"),
		JournalDSN:              os.Getenv("JOURNAL_DSN"),
		AdminPageLimit:          adminLimit,
		LandlordPageSize:        landlordPageSize,
		ResyncSchedule:          getEnv("RESYNC_SCHEDULE", "@every 5m"),
		RefreshMinInterval:      time.Duration(refreshInterval) * time.Second,
		BreakerFailureThreshold: failureThreshold,
		BreakerSuccessThreshold: successThreshold,
		BreakerTimeout:          time.Duration(breakerTimeout) * time.Second,
		AgentPort:               agentPort,
		AgentToken:              os.Getenv("AGENT_TOKEN"),
	}, nil
}

// SocketURLFromAPI derives the socket.io endpoint from the REST base URL
func SocketURLFromAPI(apiURL string) string {
	const path = "/socket.io/"
	switch {
	case strings.HasPrefix(apiURL, "https://"):
		return "wss://" + strings.TrimPrefix(apiURL, "https://") + path
	case strings.HasPrefix(apiURL, "http://"):
		return "ws://" + strings.TrimPrefix(apiURL, "http://") + path
	default:
		return apiURL + path
	}
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rentdesk"
	}
	return filepath.Join(home, ".rentdesk")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
