package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	APIBaseURL   string
	LoginTimeout time.Duration
	LogLevel     string

	StorageDriver string
	StoragePrefix string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DBUrl         string

	RateLimit   float64
	RateBurst   int
	CORSOrigins []string

	DevAPI       bool
	DevJWTSecret string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using defaults")
	}

	port := getEnv("PORT", "8080")

	return Config{
		Port:         port,
		APIBaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:"+port), "/"),
		LoginTimeout: getDuration("LOGIN_TIMEOUT", 15*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		StorageDriver: getEnv("STORAGE_DRIVER", "memory"),
		StoragePrefix: os.Getenv("STORAGE_PREFIX"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		DBUrl:         os.Getenv("DB_URL"),

		RateLimit:   getFloat("RATE_LIMIT", 5),
		RateBurst:   getInt("RATE_BURST", 10),
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),

		DevAPI:       getBool("DEV_API", false),
		DevJWTSecret: getEnv("DEV_JWT_SECRET", "dev-secret-change-me"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
