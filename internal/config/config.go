package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For boolean parsing
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration. It is built once at startup and never mutated.
type Config struct {
	AppPort      string // Application port
	DBUser       string // Database user
	DBPassword   string // Database password
	DBHost       string // Database host
	DBPort       string // Database port
	DBName       string // Database name
	JWTSecret    string // JWT secret key
	RedisAddr    string // Redis server address
	RedisPass    string // Redis password
	RedisDB      int    // Redis database number
	IsProd       bool   // Is production environment
	FrontendURL  string // Base URL used in reset links and CORS
	BcryptCost   int    // Bcrypt cost factor
	StripeKey    string // Stripe secret key, empty selects the fake gateway
	SendGridKey  string // SendGrid API key used by the mail worker
	RabbitMQURL  string // AMQP URL of the mail queue broker, empty logs mail instead
	MailFrom     string // Sender address of outbound mail
	MailQueue    string // Queue carrying outbound mail
	CheckoutTTL  time.Duration
	CacheTTL     time.Duration
	RateLimit    RateLimitConfig
	LegacyDelete bool // Reproduce the inherited inverted delete-item gate
}

// RateLimitConfig configures the token bucket guarding the account endpoints
type RateLimitConfig struct {
	Enabled        bool          // Limiter on/off
	Capacity       int           // Bucket size
	RefillTokens   int           // Tokens added per interval
	RefillInterval time.Duration // Refill period
	TTL            time.Duration // Idle bucket expiry
	Prefix         string        // Redis key prefix
}

// DSN returns the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg := &Config{
		AppPort:      envStr("APP_PORT", "4444"),                       // Application port
		DBUser:       os.Getenv("DB_USER"),                             // Database user
		DBPassword:   os.Getenv("DB_PASSWORD"),                         // Database password
		DBHost:       envStr("DB_HOST", "127.0.0.1"),                   // Database host
		DBPort:       envStr("DB_PORT", "3306"),                        // Database port
		DBName:       os.Getenv("DB_NAME"),                             // Database name
		JWTSecret:    os.Getenv("JWT_SECRET"),                          // JWT secret key
		RedisAddr:    os.Getenv("REDIS_ADDR"),                          // Redis server address
		RedisPass:    os.Getenv("REDIS_PASS"),                          // Redis password
		RedisDB:      redisDB,                                          // Redis database number
		IsProd:       os.Getenv("IS_PROD") == "true",                   // Is production environment
		FrontendURL:  envStr("FRONTEND_URL", "http://localhost:7777"),  // Frontend base URL
		BcryptCost:   envInt("BCRYPT_COST", 10),                        // Bcrypt cost factor
		StripeKey:    os.Getenv("STRIPE_SECRET_KEY"),                   // Stripe secret key
		SendGridKey:  os.Getenv("SENDGRID_API_KEY"),                    // SendGrid API key
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),                        // AMQP broker URL
		MailFrom:     envStr("MAIL_FROM", "no-reply@storefront.local"), // Sender address
		MailQueue:    envStr("MAIL_QUEUE", "mail.outbound"),            // Mail queue name
		CheckoutTTL:  envDur("CHECKOUT_LOCK_TTL", 30*time.Second),      // Checkout lock lifetime
		CacheTTL:     envDur("CACHE_TTL", 60*time.Second),              // Item listing cache lifetime
		LegacyDelete: envBool("ITEM_DELETE_LEGACY_GATE", false),        // Inverted delete gate
		RateLimit: RateLimitConfig{
			Enabled:        envBool("RATE_LIMIT_ENABLED", true),
			Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
			RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
			TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		},
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		cfg.BcryptCost = 10 // Out of bcrypt's range, fall back to the default
	}
	if cfg.RateLimit.Capacity < 1 {
		cfg.RateLimit.Capacity = 1
	}
	if cfg.RateLimit.RefillTokens < 1 {
		cfg.RateLimit.RefillTokens = 1
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil && dur > 0 {
		return dur
	}
	return d
}
