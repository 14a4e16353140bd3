// Package config loads service configuration from the environment, with
// defaults matching the live demo setup.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob for the service.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// InferenceURL is the hosted classifier base URL.
	InferenceURL string
	// InferenceAPIKey authenticates classifier requests.
	InferenceAPIKey string
	// InferenceTimeout bounds one classifier round trip.
	InferenceTimeout time.Duration

	// OpenAIKey enables the AI insight features when set. Empty selects
	// the rule-based fallbacks.
	OpenAIKey string

	// DatabasePath is the SQLite database file.
	DatabasePath string
	// RulesPath optionally points to a YAML geometry rules file.
	RulesPath string

	// MinConfidence is the classifier acceptance threshold.
	MinConfidence float64
	// MaxHands caps the hands tracked per frame.
	MaxHands int
	// MinHandConfidence is the landmark model's presence threshold.
	MinHandConfidence float64

	// CacheTTL and CacheCapacity bound the fast-path result cache.
	CacheTTL      time.Duration
	CacheCapacity int
	// RateInterval is the minimum spacing between fast-path requests.
	RateInterval time.Duration

	// AvatarVideoPath locates the pre-rendered BIM avatar clip served to
	// the frontend. Empty disables the route.
	AvatarVideoPath string

	// DemoFallback serves a labeled substitute profile on unknown IC
	// lookups instead of a 404. Demo behavior, off for real deployments.
	DemoFallback bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:        getEnv("SMARTSIGN_ADDR", ":8000"),
		InferenceURL:      getEnv("ROBOFLOW_API_URL", "https://detect.roboflow.com"),
		InferenceAPIKey:   os.Getenv("ROBOFLOW_API_KEY"),
		InferenceTimeout:  getDuration("INFERENCE_TIMEOUT", 10*time.Second),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		DatabasePath:      getEnv("SMARTSIGN_DB", "smartsign.db"),
		RulesPath:         os.Getenv("GEOMETRY_RULES_PATH"),
		MinConfidence:     getFloat("MIN_CONFIDENCE", 0.15),
		MaxHands:          getInt("MAX_HANDS", 2),
		MinHandConfidence: getFloat("MIN_HAND_CONFIDENCE", 0.6),
		CacheTTL:          getDuration("CACHE_TTL", 2*time.Second),
		CacheCapacity:     getInt("CACHE_CAPACITY", 50),
		RateInterval:      getDuration("RATE_INTERVAL", 100*time.Millisecond),
		AvatarVideoPath:   getEnv("AVATAR_VIDEO_PATH", "BIM_Sign_Language_Avatar_Generated.mp4"),
		DemoFallback:      getBool("DEMO_FALLBACK", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
