package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// GetEnv returns the value of the environment variable key or defaultVal if unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")

	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsDuration parses durations like "30s" or "2m".
// Plain integers are interpreted as seconds.
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	strVal := GetEnv(key, "")
	if strVal == "" {
		return defaultVal
	}

	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}

	if val, err := strconv.Atoi(strVal); err == nil {
		return time.Duration(val) * time.Second
	}

	log.Warn().Str("key", key).Str("value", strVal).Msg("Ignoring invalid duration in environment")

	return defaultVal
}

// GetEnvAsStringArr splits the variable by separator, dropping empty entries.
func GetEnvAsStringArr(key string, defaultVal []string, separator ...string) []string {
	strVal := GetEnv(key, "")
	if len(strVal) == 0 {
		return defaultVal
	}

	sep := ","
	if len(separator) >= 1 {
		sep = separator[0]
	}

	return SplitNonEmpty(strVal, sep)
}

// SplitNonEmpty splits s by sep, trims every part and drops empty ones.
func SplitNonEmpty(s string, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}

	return result
}
