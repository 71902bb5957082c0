// Package logging configures the process-wide jwalterweatherman loggers.
package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// ParseLevel maps a level name to a jww threshold. An empty name is info.
func ParseLevel(level string) (jww.Threshold, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return jww.LevelTrace, nil
	case "debug":
		return jww.LevelDebug, nil
	case "", "info":
		return jww.LevelInfo, nil
	case "warn", "warning":
		return jww.LevelWarn, nil
	case "error":
		return jww.LevelError, nil
	}
	return jww.LevelInfo, errors.Errorf("unknown log level %q", level)
}

// Init sets both thresholds to level. When logPath is set, output goes to
// that file instead of stdout.
func Init(level, logPath string) error {
	threshold, err := ParseLevel(level)
	if err != nil {
		return err
	}

	if logPath != "" && logPath != "-" {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		jww.SetStdoutOutput(io.Discard)
		jww.SetLogOutput(f)
	}

	jww.SetStdoutThreshold(threshold)
	jww.SetLogThreshold(threshold)
	if threshold <= jww.LevelDebug {
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}
	jww.INFO.Printf("log level set to: %s", threshold)
	return nil
}
