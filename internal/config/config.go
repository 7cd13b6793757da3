package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port              string
	AllowedOrigin     string
	DatabaseURL       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	InsightTTLSeconds int
	LogLevel          string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := strconv.Atoi(getEnv("INSIGHT_TTL_SECONDS", "60"))
	if err != nil || ttl < 1 {
		ttl = 60
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		InsightTTLSeconds: ttl,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
