package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}

	if cfg.Pretty != false {
		t.Error("Expected default pretty to be false")
	}
}

func TestSetup_WritesToConfiguredOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	logger.Info().Str("key", "2024-03-05-abc.zip").Msg("Archive uploaded")

	output := buf.String()
	if !strings.Contains(output, "Archive uploaded") {
		t.Errorf("Expected output to contain message, got %q", output)
	}
	if !strings.Contains(output, "2024-03-05-abc.zip") {
		t.Errorf("Expected output to contain structured field, got %q", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewLogger_TagsComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("bundle-service")
	logger.Info().Msg("Bundle request started")

	output := buf.String()
	if !strings.Contains(output, "bundle-service") {
		t.Errorf("Expected output to contain component name, got %q", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelWarn,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("shop-client")

	// Below warn level, filtered out.
	logger.Debug().Msg("Product cache hit")
	logger.Info().Msg("Fetched order page")

	// Warn level and above, kept.
	logger.Warn().Msg("Image download failed, skipping entry")
	logger.Error().Msg("Order fetch aborted")

	output := buf.String()

	if strings.Contains(output, "Product cache hit") {
		t.Error("Debug message should be filtered out at Warn level")
	}
	if strings.Contains(output, "Fetched order page") {
		t.Error("Info message should be filtered out at Warn level")
	}
	if !strings.Contains(output, "skipping entry") {
		t.Error("Warn message should be included at Warn level")
	}
	if !strings.Contains(output, "Order fetch aborted") {
		t.Error("Error message should be included at Warn level")
	}
}
