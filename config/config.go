package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BasketStorePostgres = "postgres"
	BasketStoreRedis    = "redis"
)

type Config struct {
	DB       DBConfig
	HTTP     HTTPConfig
	Basket   BasketConfig
	Telegram TelegramConfig
	Log      LogConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
	CookieSecure   bool
	AuthRateLimit  int // requests per minute per IP on /api/login and /api/register
}

type BasketConfig struct {
	Store         string // "postgres" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration // redis only; 0 keeps baskets forever
}

type TelegramConfig struct {
	Token  string // bot token for order notifications; empty disables them
	ChatID int64  // chat that receives order notifications
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	authLimit, _ := strconv.Atoi(getEnv("AUTH_RATE_LIMIT", "20"))
	chatID, _ := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)
	ttl, err := time.ParseDuration(getEnv("BASKET_TTL", "168h"))
	if err != nil {
		ttl = 7 * 24 * time.Hour
	}

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "temp"),
			Password: getEnv("DB_PASSWORD", "temp"),
			Database: getEnv("DB_NAME", "advcompro"),
		},
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8000"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
			CookieSecure:   isTrue(getEnv("COOKIE_SECURE", "")),
			AuthRateLimit:  authLimit,
		},
		Basket: BasketConfig{
			Store:         strings.ToLower(getEnv("BASKET_STORE", BasketStorePostgres)),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			TTL:           ttl,
		},
		Telegram: TelegramConfig{
			Token:  getEnv("TELEGRAM_TOKEN", ""),
			ChatID: chatID,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// AutoMigrate reports whether AUTO_MIGRATE is set to 1 or true.
func AutoMigrate() bool {
	return isTrue(os.Getenv("AUTO_MIGRATE"))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func isTrue(v string) bool {
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
