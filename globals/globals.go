package globals

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"
const RequestIDKey ContextKey = "requestId"

// Config is read once at startup and passed to the packages that need it.
type Config struct {
	Port           string
	AppEnv         string
	MongoURI       string
	MongoDatabase  string
	JwtSecret      []byte
	FrontendURL    string
	BackendURL     string
	AllowedOrigins []string
	RedisAddr      string
	RedisPassword  string
	KafkaBrokers   string
	KafkaTopic     string

	StoreID       string
	StorePassword string
	GatewayLive   bool
	Currency      string
}

func (c Config) Development() bool { return c.AppEnv == "development" }

// LoadConfig loads .env when present and reads the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	live, _ := strconv.ParseBool(os.Getenv("SSLCOMMERZ_IS_LIVE"))
	cfg := Config{
		Port:           getenv("PORT", "4000"),
		AppEnv:         getenv("APP_ENV", "production"),
		MongoURI:       os.Getenv("MONGODB_URI"),
		MongoDatabase:  getenv("MONGODB_DATABASE", "bazaar"),
		JwtSecret:      []byte(os.Getenv("JWT_SECRET")),
		FrontendURL:    strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:5173"), "/"),
		BackendURL:     strings.TrimRight(getenv("BACKEND_URL", "http://localhost:4000"), "/"),
		AllowedOrigins: splitCSV(getenv("ALLOWED_ORIGINS", "http://localhost:5173")),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:     getenv("KAFKA_TOPIC", "bazaar.orders"),
		StoreID:        os.Getenv("SSLCOMMERZ_STORE_ID"),
		StorePassword:  os.Getenv("SSLCOMMERZ_STORE_PASSWORD"),
		GatewayLive:    live,
		Currency:       getenv("PAYMENT_CURRENCY", "BDT"),
	}
	if cfg.MongoURI == "" {
		return cfg, errors.New("MONGODB_URI is not set")
	}
	if len(cfg.JwtSecret) == 0 {
		return cfg, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
