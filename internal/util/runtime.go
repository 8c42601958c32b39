package util

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunningInTest reports whether the current binary is a "go test" binary.
func RunningInTest() bool {
	return strings.HasSuffix(os.Args[0], ".test")
}

// GetProjectRootDir returns PROJECT_ROOT_DIR or the current working directory.
func GetProjectRootDir() string {
	if val, ok := os.LookupEnv("PROJECT_ROOT_DIR"); ok && val != "" {
		return val
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get working directory, using '.'")
		return "."
	}

	return wd
}

// LogLevelFromString parses a zerolog level, falling back to info.
func LogLevelFromString(s string) zerolog.Level {
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		log.Error().Err(err).Str("level", s).Msg("Failed to parse log level, defaulting to info")
		return zerolog.InfoLevel
	}

	return l
}
