package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DatabaseURL string

	// Redis
	RedisURL string

	// Auth
	JWTSecret     string
	AdminEmail    string
	AdminPassword string
	AdminName     string
	SessionSecret string

	// Server
	Port           string
	Environment    string
	LogLevel       string
	TrustedProxies []string

	// CORS
	CORSOrigins []string

	// Email
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	EnableEmail  bool

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int
	RateLimitBurst    int

	// Submissions
	CommentCooldown      time.Duration
	ContactLimit         int
	ContactWindow        time.Duration
	OwnerEmail           string
	ContactAutoReply     bool
	ModerationDigestCron string

	// Background jobs
	SchedulerWorkers   int
	SchedulerQueueSize int

	// Features
	EnableCache   bool
	EnableMetrics bool

	// Site Meta
	SiteName        string
	SiteDescription string
	AppURL          string
	ContentFile     string
}

func New() *Config {
	c := &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "portfolio"),
		DBPassword: getEnv("DB_PASSWORD", "portfolio"),
		DBName:     getEnv("DB_NAME", "portfolio"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// Auth
		JWTSecret:     getEnv("JWT_SECRET", "change-this-jwt-secret-in-production"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Site Owner"),
		SessionSecret: getEnv("SESSION_SECRET", "change-this-session-secret-in-production"),

		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Empty means X-Forwarded-For is ignored and the socket address is the client IP.
		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),

		// CORS
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),

		// Email
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@localhost"),
		EnableEmail:  getEnvAsBool("ENABLE_EMAIL", false),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 0),

		// Submissions
		CommentCooldown:      getEnvAsDuration("COMMENT_COOLDOWN", 2*time.Minute),
		ContactLimit:         getEnvAsInt("CONTACT_RATE_LIMIT", 3),
		ContactWindow:        getEnvAsDuration("CONTACT_RATE_WINDOW", time.Hour),
		OwnerEmail:           getEnv("OWNER_EMAIL", ""),
		ContactAutoReply:     getEnvAsBool("CONTACT_AUTO_REPLY", true),
		ModerationDigestCron: getEnv("MODERATION_DIGEST_CRON", "0 8 * * *"),

		// Background jobs
		SchedulerWorkers:   getEnvAsInt("SCHEDULER_WORKERS", 2),
		SchedulerQueueSize: getEnvAsInt("SCHEDULER_QUEUE_SIZE", 64),

		// Features
		EnableCache:   getEnvAsBool("ENABLE_CACHE", true),
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),

		// Site Meta
		SiteName:        getEnv("SITE_NAME", "Portfolio"),
		SiteDescription: getEnv("SITE_DESCRIPTION", "Projects, services and writing."),
		AppURL:          strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		ContentFile:     getEnv("CONTENT_FILE", "./content.toml"),
	}

	// Build DSN
	c.DatabaseURL = getEnv("DATABASE_URL", fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	))

	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

// getEnvAsDuration accepts Go duration strings ("90s", "1h") or a plain number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil && d > 0 {
		return d
	}
	var seconds int
	if _, err := fmt.Sscanf(valueStr, "%d", &seconds); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
