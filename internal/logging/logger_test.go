package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	// Save original logger to restore later
	originalLogger := defaultLogger

	defer func() {
		defaultLogger = originalLogger
	}()

	testCases := []struct {
		name          string
		level         LogLevel
		expectedLevel slog.Level
	}{
		{
			name:          "Debug level",
			level:         LevelDebug,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "Info level",
			level:         LevelInfo,
			expectedLevel: slog.LevelInfo,
		},
		{
			name:          "Warn level",
			level:         LevelWarn,
			expectedLevel: slog.LevelWarn,
		},
		{
			name:          "Error level",
			level:         LevelError,
			expectedLevel: slog.LevelError,
		},
		{
			name:          "Invalid level defaults to Info",
			level:         LogLevel("invalid"),
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupLogger(&buf, tc.level, FormatText)

			if defaultLogger == nil {
				t.Fatal("defaultLogger is nil after setup")
			}

			Info("test message")

			output := buf.String()
			if tc.expectedLevel <= slog.LevelInfo && !strings.Contains(output, "INFO") && !strings.Contains(output, "info") {
				t.Errorf("Expected INFO level in output, got: %s", output)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelInfo, FormatJSON)

	Info("structured message", "key", "value")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Output is not valid JSON: %v (output: %s)", err, buf.String())
	}
	if record["msg"] != "structured message" {
		t.Errorf("Expected msg field, got: %v", record["msg"])
	}
	if record["key"] != "value" {
		t.Errorf("Expected key=value attribute, got: %v", record["key"])
	}
}

func TestMaskSensitive(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Empty string",
			input:    "",
			expected: "<not set>",
		},
		{
			name:     "Short string",
			input:    "abc",
			expected: "<set>",
		},
		{
			name:     "Exactly 4 characters",
			input:    "abcd",
			expected: "<set>",
		},
		{
			name:     "Long string",
			input:    "abcdefghijklm",
			expected: "abcd...***",
		},
		{
			name:     "Token-like string",
			input:    "2Dn5j8fk39Dkf0s",
			expected: "2Dn5...***",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := MaskSensitive(tc.input)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelDebug, FormatText) // Set to debug to capture all levels

	tests := []struct {
		name    string
		logFunc func(string, ...any)
		level   string
		message string
	}{
		{
			name:    "Debug logging",
			logFunc: Debug,
			level:   "DEBUG",
			message: "debug message",
		},
		{
			name:    "Info logging",
			logFunc: Info,
			level:   "INFO",
			message: "info message",
		},
		{
			name:    "Warn logging",
			logFunc: Warn,
			level:   "WARN",
			message: "warn message",
		},
		{
			name:    "Error logging",
			logFunc: Error,
			level:   "ERROR",
			message: "error message",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()

			tc.logFunc(tc.message, "key", "value")

			output := buf.String()
			if !strings.Contains(strings.ToUpper(output), tc.level) {
				t.Errorf("Expected log level %s in output, got: %s", tc.level, output)
			}
			if !strings.Contains(output, tc.message) {
				t.Errorf("Expected message %q in output, got: %s", tc.message, output)
			}
			if !strings.Contains(output, "key") || !strings.Contains(output, "value") {
				t.Errorf("Expected key-value pair in output, got: %s", output)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger()
	if logger == nil {
		t.Fatal("GetLogger() returned nil")
	}
}

func TestLevelFiltering(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	testCases := []struct {
		name      string
		level     LogLevel
		shouldLog map[slog.Level]bool
	}{
		{
			name:  "Debug passes everything",
			level: LevelDebug,
			shouldLog: map[slog.Level]bool{
				slog.LevelDebug: true,
				slog.LevelInfo:  true,
				slog.LevelWarn:  true,
				slog.LevelError: true,
			},
		},
		{
			name:  "Info drops debug",
			level: LevelInfo,
			shouldLog: map[slog.Level]bool{
				slog.LevelDebug: false,
				slog.LevelInfo:  true,
				slog.LevelWarn:  true,
				slog.LevelError: true,
			},
		},
		{
			name:  "Warn drops info",
			level: LevelWarn,
			shouldLog: map[slog.Level]bool{
				slog.LevelDebug: false,
				slog.LevelInfo:  false,
				slog.LevelWarn:  true,
				slog.LevelError: true,
			},
		},
		{
			name:  "Error drops warn",
			level: LevelError,
			shouldLog: map[slog.Level]bool{
				slog.LevelDebug: false,
				slog.LevelInfo:  false,
				slog.LevelWarn:  false,
				slog.LevelError: true,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupLogger(&buf, tc.level, FormatText)

			levels := map[slog.Level]func(string, ...any){
				slog.LevelDebug: Debug,
				slog.LevelInfo:  Info,
				slog.LevelWarn:  Warn,
				slog.LevelError: Error,
			}

			for level, logFunc := range levels {
				buf.Reset()
				logFunc("test message for level")
				output := buf.String()

				shouldLog := tc.shouldLog[level]
				didLog := strings.Contains(output, "test message for level")

				if shouldLog != didLog {
					t.Errorf("Level %v: shouldLog=%v but didLog=%v (configured level %s)",
						level, shouldLog, didLog, tc.level)
				}
			}
		})
	}
}
