package platform

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// InitLogger configures the process logger. Console output for interactive
// use, JSON when PRICEPROOF_LOG_JSON is set.
func InitLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if GetEnvBool("PRICEPROOF_LOG_JSON", false) {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
