package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	AppPort       string
	AppVersion    string
	StorageDriver string
	DatabaseURL   string
	JWTSecret     string
	JWTTTL        time.Duration

	// Redis list cache, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	AllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment. Missing required values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from a lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	driver := strings.ToLower(getenv("STORAGE_DRIVER"))
	if driver == "" {
		driver = StorageDriverPostgres
	}
	if driver != StorageDriverPostgres && driver != StorageDriverMemory {
		return nil, errors.New("STORAGE_DRIVER must be postgres or memory")
	}

	dbURL := getenv("DATABASE_URL")
	if dbURL == "" && driver == StorageDriverPostgres {
		return nil, errors.New("DATABASE_URL is not set")
	}

	jwtSecret := getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	port := getenv("APP_PORT")
	if port == "" {
		port = "5000"
	}

	version := getenv("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	jwtTTL := 24 * time.Hour
	if v := getenv("JWT_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			jwtTTL = time.Duration(n) * time.Hour
		}
	}

	redisDB := 0
	if v := getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	cacheTTL := 60 * time.Second
	if v := getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cacheTTL = time.Duration(n) * time.Second
		}
	}

	// comma separated, "*" allows any origin
	origins := []string{"*"}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	logLevel := getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}

	return &Config{
		AppPort:        port,
		AppVersion:     version,
		StorageDriver:  driver,
		DatabaseURL:    dbURL,
		JWTSecret:      jwtSecret,
		JWTTTL:         jwtTTL,
		RedisAddr:      getenv("REDIS_ADDR"),
		RedisPassword:  getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		CacheTTL:       cacheTTL,
		AllowedOrigins: origins,
		LogLevel:       logLevel,
		LogFormat:      logFormat,
	}, nil
}
