package shared

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// SetupLogger builds the stderr logger at the named level.
func SetupLogger(level string) *log.Logger {
	return SetupLoggerTo(os.Stderr, level)
}

// SetupLoggerTo builds a logger writing to w. Unknown levels fall back to info.
func SetupLoggerTo(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	parsed, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = log.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
