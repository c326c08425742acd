package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"iisctl/pkg/colors"
	"iisctl/pkg/security"

	"github.com/fatih/color"
)

var (
	fileLogger    *log.Logger
	logFile       *os.File
	consoleOutput io.Writer = color.Output
	loggerMutex   sync.RWMutex
)

// getDefaultLogDir returns platform-appropriate default log directory
func getDefaultLogDir(homeDir string) string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "iisctl", "logs")
		}
		return filepath.Join(homeDir, "AppData", "Local", "iisctl", "logs")
	case "darwin":
		return filepath.Join(homeDir, "Library", "Logs", "iisctl")
	default:
		// XDG Base Directory
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, "iisctl", "logs")
		}
		return filepath.Join(homeDir, ".local", "share", "iisctl", "logs")
	}
}

func getFilePermissions() os.FileMode {
	if runtime.GOOS == "windows" {
		return 0666
	}
	return 0600
}

func getDirPermissions() os.FileMode {
	if runtime.GOOS == "windows" {
		return 0777
	}
	return 0755
}

// resolveLogDir picks the log directory: explicit value, then IISCTL_LOG_DIR, then the platform default
func resolveLogDir(dir string) (string, error) {
	if dir == "" {
		dir = os.Getenv("IISCTL_LOG_DIR")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil && dir == "" {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	if dir == "" {
		return getDefaultLogDir(homeDir), nil
	}

	if security.ContainsUnsafePath(dir) {
		fmt.Fprintf(os.Stderr, "Warning: Invalid log directory path %s, using default location\n", dir)
		if homeDir == "" {
			return "", fmt.Errorf("could not determine home directory for default log location")
		}
		return getDefaultLogDir(homeDir), nil
	}

	return dir, nil
}

// SetupFileLogger opens (or reopens) the dated log file in dir.
// An empty dir falls back to IISCTL_LOG_DIR and then the platform default.
func SetupFileLogger(dir string) error {
	logDirPath, err := resolveLogDir(dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(logDirPath, getDirPermissions()); err != nil {
		return fmt.Errorf("could not create log directory %s: %w", logDirPath, err)
	}

	logFilePath := filepath.Join(logDirPath, fmt.Sprintf("iisctl-%s.log", time.Now().Format("2006-01-02")))
	// #nosec G304 - directory is validated above and the file name is generated here
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, getFilePermissions())
	if err != nil {
		return fmt.Errorf("could not open log file %s: %w", logFilePath, err)
	}

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error closing previous log file: %v\n", err)
		}
	}
	logFile = file
	fileLogger = log.New(file, "", 0)

	return nil
}

// CloseLogger closes the log file; call it during shutdown
func CloseLogger() {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error closing log file: %v\n", err)
		}
		logFile = nil
		fileLogger = nil
	}
}

// SetConsoleOutput redirects console log lines and returns the previous writer
func SetConsoleOutput(w io.Writer) io.Writer {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	prev := consoleOutput
	consoleOutput = w
	return prev
}

func getTimestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func logToFile(level string, message string) {
	loggerMutex.RLock()
	logger := fileLogger
	loggerMutex.RUnlock()

	if logger != nil {
		logger.Printf("%s [%s] %s", getTimestamp(), level, message)
	}
}

func logToConsole(c *color.Color, level string, message string) {
	loggerMutex.RLock()
	out := consoleOutput
	loggerMutex.RUnlock()

	_, _ = c.Fprintf(out, "[%s] %s\n", level, message)
}

// LogInfo logs an info message - colored to console, timestamped to file
func LogInfo(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logToConsole(colors.Success, "INFO", message)
	logToFile("INFO", message)
}

// LogWarn logs a warning message - colored to console, timestamped to file
func LogWarn(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logToConsole(colors.Warning, "WARN", message)
	logToFile("WARN", message)
}

// LogError logs an error message - colored to console, timestamped to file
func LogError(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logToConsole(colors.Error, "ERROR", message)
	logToFile("ERROR", message)
}

// LogDebug logs a debug message - colored to console, timestamped to file
func LogDebug(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logToConsole(colors.Data, "DEBUG", message)
	logToFile("DEBUG", message)
}

// LogSuccess logs a success message - colored to console, timestamped to file
func LogSuccess(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logToConsole(colors.Success, "SUCCESS", message)
	logToFile("SUCCESS", message)
}

// Level represents logging levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a config string (debug, info, warn, error) to a Level; unknown values mean info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger is the structured front end passed to services: a message plus key/value fields
type Logger struct {
	mu    sync.RWMutex
	level Level
	noOp  bool
}

// NewLogger creates a new logger; debug enables debug-level output
func NewLogger(debug bool) *Logger {
	level := InfoLevel
	if debug {
		level = DebugLevel
	}
	return &Logger{level: level}
}

// NewNoOpLogger creates a logger that discards all output
func NewNoOpLogger() *Logger {
	return &Logger{level: ErrorLevel, noOp: true}
}

// SetLevel changes the minimum level that is emitted
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) enabled(level Level) bool {
	if l == nil || l.noOp {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

// formatFields converts key-value pairs to a formatted string
func formatFields(fields ...interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, 0, (len(fields)+1)/2)
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			parts = append(parts, fmt.Sprintf("%v=%v", fields[i], fields[i+1]))
		} else {
			parts = append(parts, fmt.Sprintf("%v=<no_value>", fields[i]))
		}
	}

	return " | " + strings.Join(parts, " ")
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	if !l.enabled(DebugLevel) {
		return
	}
	LogDebug("%s%s", msg, formatFields(fields...))
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	if !l.enabled(InfoLevel) {
		return
	}
	LogInfo("%s%s", msg, formatFields(fields...))
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	if !l.enabled(WarnLevel) {
		return
	}
	LogWarn("%s%s", msg, formatFields(fields...))
}

// Error always passes the level gate; only a no-op logger drops it
func (l *Logger) Error(msg string, fields ...interface{}) {
	if l == nil || l.noOp {
		return
	}
	LogError("%s%s", msg, formatFields(fields...))
}
