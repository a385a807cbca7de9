package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Transitions TransitionConfig
	Jira        JiraConfig
	GitHub      GitHubConfig
	GitLab      GitLabConfig
	Redis       RedisConfig
	OTel        OTelConfig
	Sentry      SentryConfig
	Env         string
	Port        string
	NodeID      int64
}

// TransitionConfig controls which Jira statuses pull request activity moves
// tickets to. Empty optional statuses disable the corresponding transition.
type TransitionConfig struct {
	StatusOnPROpened         string
	StatusOnPRMerged         string
	StatusOnPRDeclined       string
	StatusOnReviewApproved   string
	StatusOnChangesRequested string
	CommentOnPRSync          bool
	CommentOnTransition      bool
}

type JiraConfig struct {
	BaseURL   string
	UserEmail string
	APIToken  string
	Timeout   time.Duration
}

type GitHubConfig struct {
	Token   string
	BaseURL string // Optional: GitHub Enterprise API URL
}

type GitLabConfig struct {
	Token   string
	BaseURL string // Optional: self-hosted instance, without /api/v4
}

type RedisConfig struct {
	URL          string
	DeliveryTTL  time.Duration
	ResultStream string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type SentryConfig struct {
	DSN         string
	Environment string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	DefaultStatusOnPROpened = "In Review"
	DefaultStatusOnPRMerged = "Done"
)

// DefaultTransitions returns the transition policy used when no environment
// overrides are present.
func DefaultTransitions() TransitionConfig {
	return TransitionConfig{
		StatusOnPROpened:    DefaultStatusOnPROpened,
		StatusOnPRMerged:    DefaultStatusOnPRMerged,
		CommentOnTransition: true,
	}
}

// Load loads configuration from environment variables.
// In development, it loads from a service-specific .env file:
//   - .env.server for the webhook server
//   - .env.cli for the operator CLI
//
// Falls back to .env if the service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("TICKETSYNC_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	commentOnSync, err := getEnvBool("COMMENT_ON_PR_SYNC", false)
	if err != nil {
		return Config{}, err
	}
	commentOnTransition, err := getEnvBool("COMMENT_ON_TRANSITION", true)
	if err != nil {
		return Config{}, err
	}
	trackerTimeout, err := getEnvDuration("TRACKER_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	deliveryTTL, err := getEnvDuration("DELIVERY_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	env := getEnv("TICKETSYNC_ENV", "development")
	cfg := Config{
		Env:    env,
		Port:   getEnv("PORT", "8080"),
		NodeID: getEnvInt64("SNOWFLAKE_NODE_ID", 1),
		Transitions: TransitionConfig{
			StatusOnPROpened:         getEnv("STATUS_ON_PR_OPENED", DefaultStatusOnPROpened),
			StatusOnPRMerged:         getEnv("STATUS_ON_PR_MERGED", DefaultStatusOnPRMerged),
			StatusOnPRDeclined:       getEnv("STATUS_ON_PR_DECLINED", ""),
			StatusOnReviewApproved:   getEnv("STATUS_ON_REVIEW_APPROVED", ""),
			StatusOnChangesRequested: getEnv("STATUS_ON_CHANGES_REQUESTED", ""),
			CommentOnPRSync:          commentOnSync,
			CommentOnTransition:      commentOnTransition,
		},
		Jira: JiraConfig{
			BaseURL:   getEnv("JIRA_BASE_URL", ""),
			UserEmail: getEnv("JIRA_USER_EMAIL", ""),
			APIToken:  getEnv("JIRA_API_TOKEN", ""),
			Timeout:   trackerTimeout,
		},
		GitHub: GitHubConfig{
			Token:   getEnv("GITHUB_TOKEN", ""),
			BaseURL: getEnv("GITHUB_API_URL", ""),
		},
		GitLab: GitLabConfig{
			Token:   getEnv("GITLAB_TOKEN", ""),
			BaseURL: getEnv("GITLAB_BASE_URL", ""),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			DeliveryTTL:  deliveryTTL,
			ResultStream: getEnv("RESULT_STREAM", "ticketsync_results"),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "ticketsync"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Environment: env,
		},
	}

	if cfg.Transitions.StatusOnPROpened == "" || cfg.Transitions.StatusOnPRMerged == "" {
		return Config{}, fmt.Errorf("STATUS_ON_PR_OPENED and STATUS_ON_PR_MERGED must not be empty")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c JiraConfig) Enabled() bool {
	return c.BaseURL != "" && c.UserEmail != "" && c.APIToken != ""
}

func (c GitHubConfig) Enabled() bool {
	return c.Token != ""
}

func (c GitLabConfig) Enabled() bool {
	return c.Token != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}
