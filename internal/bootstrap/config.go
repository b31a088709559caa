package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
)

// 存储后端
const (
	DriverMongo    = "mongo"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// MONGO_TRANSACTIONS 的取值
const (
	MongoTxAuto = "auto" // 启动时用 hello 命令检测，副本集或 mongos 才开启
	MongoTxOn   = "on"
	MongoTxOff  = "off"
)

// Config 结构体用于存储从环境变量或文件加载的配置
type Config struct {
	ServerPort string
	AppEnv     string // development/production
	LogLevel   string

	StoreDriver       string
	MongoURI          string
	MongoDB           string
	MongoTransactions string // auto/on/off
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DatabaseURL       string // postgres 连接串，设置后优先于 DB_*
	SQLitePath        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string // Redis Key 前缀

	EmailUser    string // 为空时只把邮件写入日志
	EmailPass    string
	SMTPHost     string
	SMTPPort     int
	MailFromName string

	OrderPricing    service.PricingMode
	Currency        string
	ProductCacheTTL time.Duration // 0 关闭商品列表缓存

	NotifyMaxRetry      int
	NotifyRelayInterval time.Duration
	NotifyRelayGrace    time.Duration

	RateLimitMax      int
	RateLimitWindow   time.Duration
	CORSAllowedOrigin string
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: envOr("SERVER_PORT", "5000"),
		AppEnv:     envOr("APP_ENV", "development"),
		LogLevel:   envOr("LOG_LEVEL", "info"),

		StoreDriver:       strings.ToLower(envOr("STORE_DRIVER", DriverMongo)),
		MongoURI:          envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           envOr("MONGO_DB", "supermarket"),
		MongoTransactions: envMongoTxMode("MONGO_TRANSACTIONS"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            envOr("DB_HOST", "127.0.0.1"),
		DBPort:            os.Getenv("DB_PORT"),
		DBName:            envOr("DB_NAME", "supermarket"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        envOr("SQLITE_PATH", "supermarket.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		KeyPrefix:     envOr("REDIS_KEY_PREFIX", "sm:"),

		EmailUser:    os.Getenv("EMAIL_USER"),
		EmailPass:    os.Getenv("EMAIL_PASS"),
		SMTPHost:     envOr("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     envInt("SMTP_PORT", 587),
		MailFromName: envOr("MAIL_FROM_NAME", "Supermarket"),

		Currency:        envOr("CURRENCY", "KES"),
		ProductCacheTTL: envDuration("PRODUCT_CACHE_TTL", 5*time.Second),

		NotifyMaxRetry:      envInt("NOTIFY_MAX_RETRY", 10),
		NotifyRelayInterval: envDuration("NOTIFY_RELAY_INTERVAL", time.Minute),
		NotifyRelayGrace:    envDuration("NOTIFY_RELAY_GRACE", time.Minute),

		RateLimitMax:      envInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", time.Second),
		CORSAllowedOrigin: envOr("CORS_ALLOWED_ORIGIN", "*"),
	}

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	switch cfg.StoreDriver {
	case DriverMongo, DriverSQLite:
	case DriverMySQL:
		if cfg.DBUser == "" {
			return nil, fmt.Errorf("environment variable DB_USER must be set when STORE_DRIVER=mysql")
		}
		if cfg.DBPort == "" {
			cfg.DBPort = "3306"
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" && cfg.DBUser == "" {
			return nil, fmt.Errorf("DATABASE_URL or DB_USER must be set when STORE_DRIVER=postgres")
		}
		if cfg.DBPort == "" {
			cfg.DBPort = "5432"
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want %s, %s, %s or %s)",
			cfg.StoreDriver, DriverMongo, DriverMySQL, DriverPostgres, DriverSQLite)
	}
	pricing, err := service.ParsePricingMode(os.Getenv("ORDER_PRICING"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORDER_PRICING: %w", err)
	}
	cfg.OrderPricing = pricing

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitMax <= 0 {
		logrus.Warnf("Invalid RATE_LIMIT_MAX %d, using default 100", cfg.RateLimitMax)
		cfg.RateLimitMax = 100
	}
	if cfg.NotifyMaxRetry < 0 {
		logrus.Warnf("Invalid NOTIFY_MAX_RETRY %d, using default 10", cfg.NotifyMaxRetry)
		cfg.NotifyMaxRetry = 10
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %d", key, raw, def)
		return def
	}
	return v
}

// envMongoTxMode 接受 auto 以及 strconv.ParseBool 认识的布尔值
func envMongoTxMode(key string) string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "", MongoTxAuto:
		return MongoTxAuto
	case MongoTxOn:
		return MongoTxOn
	case MongoTxOff:
		return MongoTxOff
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %s", key, raw, MongoTxAuto)
		return MongoTxAuto
	}
	if v {
		return MongoTxOn
	}
	return MongoTxOff
}

// zeroAllowed 列出可以用 0 关闭功能的时长配置
var zeroAllowed = map[string]bool{"PRODUCT_CACHE_TTL": true}

func envDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 || (v == 0 && !zeroAllowed[key]) {
		logrus.Warnf("Invalid %s '%s', using default %s", key, raw, def)
		return def
	}
	return v
}
