package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr     string
	LogLevel string

	WMSURL          string
	UpstreamTimeout time.Duration

	DBPath string

	JWTSecret string
	TokenTTL  time.Duration
	AuthUser  string
	AuthPass  string

	CacheTTL           time.Duration
	CacheMaxSize       int
	CacheSweepInterval time.Duration
	CapabilitiesTTL    time.Duration

	SimplifyToleranceDeg float64
}

func FromEnv() Config {
	return Config{
		Addr:     getenv("ADDR", ":8090"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		WMSURL:          getenv("WMS_URL", "http://localhost:8080/geoserver/wms"),
		UpstreamTimeout: getduration("UPSTREAM_TIMEOUT", 10*time.Second),

		DBPath: getenv("DB_PATH", "aoiview.db"),

		JWTSecret: getenv("JWT_SECRET", "development-insecure-secret-change-me"),
		TokenTTL:  getduration("TOKEN_TTL", 24*time.Hour),
		AuthUser:  getenv("AUTH_USER", "demo"),
		AuthPass:  getenv("AUTH_PASS", "demo"),

		CacheTTL:           getduration("CACHE_TTL", 5*time.Minute),
		CacheMaxSize:       getint("CACHE_MAX_SIZE", 1000),
		CacheSweepInterval: getduration("CACHE_SWEEP_INTERVAL", time.Minute),
		CapabilitiesTTL:    getduration("CAPABILITIES_TTL", 10*time.Minute),

		SimplifyToleranceDeg: getfloat("SIMPLIFY_TOLERANCE_DEG", 1e-4),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
