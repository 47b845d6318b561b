package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the rotating log file inside the log directory.
const FileName = "team-insights.log"

// Init installs the global logger. Records go to stderr, never stdout since stdout
// carries the MCP protocol, and to a rotating file under LOGS_FOLDER.
// LOG_LEVEL overrides the level; verbose forces debug.
func Init(verbose bool) {
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
		// Init runs before config.Load, so pick up LOGS_FOLDER from the binary-relative .env.
		_ = godotenv.Load(filepath.Join(exeDir, ".env"))
	}

	zerolog.SetGlobalLevel(Level(os.Getenv("LOG_LEVEL"), verbose))

	stderr := os.Stderr.Fd()
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !(isatty.IsTerminal(stderr) || isatty.IsCygwinTerminal(stderr)),
	}

	file, err := NewFileWriter(Dir(os.Getenv("LOGS_FOLDER"), exeDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(io.Writer(console), file)).
		With().
		Timestamp().
		Str("service", "team-insights").
		Logger()
}

// Level resolves the global level. Unknown names fall back to info.
func Level(name string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	if lvl, err := zerolog.ParseLevel(strings.ToLower(name)); err == nil && name != "" {
		return lvl
	}
	return zerolog.InfoLevel
}

// Dir picks the log directory: configured, else logs/ next to the binary, else ./logs.
func Dir(configured, exeDir string) string {
	switch {
	case configured != "":
		return configured
	case exeDir != "":
		return filepath.Join(exeDir, "logs")
	default:
		return "logs"
	}
}

// NewFileWriter prepares logDir and returns a rotating writer for FileName in it.
func NewFileWriter(logDir string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}

	// MkdirAll succeeds on existing read-only directories.
	probe := filepath.Join(logDir, ".write-test")
	if err := os.WriteFile(probe, []byte("test"), 0644); err != nil {
		return nil, fmt.Errorf("log directory %q is not writable: %w", logDir, err)
	}
	_ = os.Remove(probe)

	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}, nil
}
