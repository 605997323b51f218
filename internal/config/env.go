package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultTimezone = "Asia/Kolkata"

type Env struct {
	AppAddr string
	GinMode string

	DBDSN      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	DBPingTimeout time.Duration
	SchemaTimeout time.Duration

	// Location travel dates are normalised in (local midnight).
	Location *time.Location

	JWTSecret string

	RedisURL             string
	AvailabilityCacheTTL time.Duration

	CORSAllowedOrigins []string
	SeatClaimAttempts  int
}

// LoadEnv reads .env when present, then the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: failed to load .env: %v", err)
	}

	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	tz := getEnv("APP_TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("warning: unknown APP_TIMEZONE %q, using UTC: %v", tz, err)
		loc = time.UTC
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "change-me-shuttle-secret"
		log.Println("warning: JWT_SECRET not set, using development secret")
	}

	return Env{
		AppAddr:              appAddr,
		GinMode:              strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:                strings.TrimSpace(os.Getenv("DB_DSN")),
		DBHost:               getEnv("DB_HOST", "127.0.0.1"),
		DBPort:               getEnv("DB_PORT", "3306"),
		DBUser:               getEnv("DB_USER", "root"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               getEnv("DB_NAME", "shuttle"),
		DBPingTimeout:        time.Duration(getEnvInt("DB_PING_TIMEOUT", 3)) * time.Second,
		SchemaTimeout:        time.Duration(getEnvInt("DB_SCHEMA_TIMEOUT", 60)) * time.Second,
		Location:             loc,
		JWTSecret:            secret,
		RedisURL:             strings.TrimSpace(os.Getenv("REDIS_URL")),
		AvailabilityCacheTTL: time.Duration(getEnvInt("AVAILABILITY_CACHE_TTL", 30)) * time.Second,
		CORSAllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SeatClaimAttempts:    getEnvInt("SEAT_CLAIM_ATTEMPTS", 5),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
