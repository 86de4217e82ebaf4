package utils

import (
	"log"
	"os"
	"strings"
	"time"
)

// SafeEnv returns the trimmed value of key, or fallback if it is unset or blank.
func SafeEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// EnvDuration parses key as a time.Duration ("15s", "2m"). Unset, invalid or
// non-positive values yield fallback; invalid ones are logged.
func EnvDuration(key string, fallback time.Duration) time.Duration {
	v := SafeEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("config: ignoring %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
