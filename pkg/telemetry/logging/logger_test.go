package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"portico-gw/portico/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetupJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupWithWriter() error = %v", err)
	}

	logger.Info("hello", "component", "test")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["msg"] != "hello" || record["component"] != "test" {
		t.Errorf("record = %v", record)
	}
}

func TestSetupTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("SetupWithWriter() error = %v", err)
	}

	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSetupHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupWithWriter(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupWithWriter() error = %v", err)
	}

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record should pass")
	}
}

func TestSetupRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	if _, err := SetupWithWriter(config.LoggingConfig{Level: "loud"}, &buf); err == nil {
		t.Error("unknown level should fail")
	}
	if _, err := SetupWithWriter(config.LoggingConfig{Format: "xml"}, &buf); err == nil {
		t.Error("unknown format should fail")
	}
}
