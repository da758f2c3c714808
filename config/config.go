package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config 从环境变量读取
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DB    DBConfig
	Redis RedisConfig
	Blob  BlobConfig

	WebOrigin        string   // 前端地址，决定 cookie 是否 Secure
	CORSOrigins      []string // WEB_ORIGIN 可用逗号分隔多个
	SessionTTL       time.Duration
	LastSeenThrottle time.Duration
	PresignTTL       time.Duration
	DocumentTimeout  time.Duration
	StrictAllocation bool

	AdminUsername string
	AdminPassword string
	AdminEmail    string
	OrgName       string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the key/value form understood by the pgx driver.
func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
}

type BlobConfig struct {
	Backend   string // "s3" or "memory"
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LoadEnv reads .env into the process environment. A missing file is fine.
func LoadEnv() {
	_ = godotenv.Load()
}

func Load() Config {
	LoadEnv()

	get := func(k, def string) string {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			return def
		}
		return v
	}
	seconds := func(k string, def int) time.Duration {
		n, err := strconv.Atoi(get(k, ""))
		if err != nil || n <= 0 {
			n = def
		}
		return time.Duration(n) * time.Second
	}
	flag := func(k string) bool {
		b, _ := strconv.ParseBool(get(k, "false"))
		return b
	}

	origins := splitList(get("WEB_ORIGIN", "http://localhost:3000"))
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return Config{
		Port:     get("PORT", "3001"),
		Env:      get("APP_ENV", "development"),
		LogLevel: get("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:     get("DB_HOST", "127.0.0.1"),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     get("DB_NAME", "invensys"),
			SSLMode:  get("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     get("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Blob: BlobConfig{
			Backend:   strings.ToLower(get("BLOB_BACKEND", "s3")),
			Endpoint:  get("BLOB_ENDPOINT", "http://127.0.0.1:9000"),
			Region:    get("BLOB_REGION", "us-east-1"),
			AccessKey: os.Getenv("BLOB_ACCESS_KEY"),
			SecretKey: os.Getenv("BLOB_SECRET_KEY"),
			Bucket:    get("BLOB_BUCKET", "invensys"),
			UseSSL:    flag("BLOB_USE_SSL"),
		},
		WebOrigin:        origins[0],
		CORSOrigins:      origins,
		SessionTTL:       seconds("SESSION_TTL_SECONDS", 86400),
		LastSeenThrottle: seconds("LAST_SEEN_THROTTLE_SECONDS", 300),
		PresignTTL:       seconds("PRESIGN_TTL_SECONDS", 3600),
		DocumentTimeout:  seconds("DOCUMENT_TIMEOUT_SECONDS", 60),
		StrictAllocation: flag("STRICT_ALLOCATION"),
		AdminUsername:    strings.ToLower(get("ADMIN_USERNAME", "admin")),
		AdminPassword:    get("ADMIN_PASSWORD", "Password@1"),
		AdminEmail:       get("ADMIN_EMAIL", "admin@invensys.local"),
		OrgName:          get("ORG_NAME", "Invensys"),
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Production() bool { return c.Env == "production" }

// Log writes the effective configuration with secrets left out.
func (c Config) Log(logger *zap.Logger) {
	logger.Info("configuration",
		zap.String("port", c.Port),
		zap.String("env", c.Env),
		zap.String("database_host", c.DB.Host),
		zap.String("database_name", c.DB.Name),
		zap.Strings("cors_origins", c.CORSOrigins),
		zap.String("redis_addr", c.Redis.Addr),
		zap.String("blob_backend", c.Blob.Backend),
		zap.String("blob_endpoint", c.Blob.Endpoint),
		zap.String("blob_bucket", c.Blob.Bucket),
		zap.Duration("session_ttl", c.SessionTTL),
		zap.Duration("last_seen_throttle", c.LastSeenThrottle),
		zap.Duration("presign_ttl", c.PresignTTL),
		zap.Duration("document_timeout", c.DocumentTimeout),
		zap.Bool("strict_allocation", c.StrictAllocation),
	)
}
