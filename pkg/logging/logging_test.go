package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithWriter(Config{Level: "warn", Format: FormatJSON}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info().Msg("hidden")
	logger.Warn().Str("file", "resume.pdf").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]interface{}
	err = json.Unmarshal([]byte(lines[0]), &entry)
	if err != nil {
		t.Fatalf("Failed to parse log line: %v", err)
	}

	if entry["message"] != "shown" || entry["file"] != "resume.pdf" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithWriter(Config{}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info().Msg("hello")

	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("Expected console output, got '%s'", buf.String())
	}
}

func TestInvalidConfig(t *testing.T) {
	var buf bytes.Buffer

	_, err := NewWithWriter(Config{Level: "loud"}, &buf)
	if err == nil {
		t.Error("Expected error for invalid level")
	}

	_, err = NewWithWriter(Config{Format: "xml"}, &buf)
	if err == nil {
		t.Error("Expected error for invalid format")
	}
}
