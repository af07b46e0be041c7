package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/onurcolak/messaging-gateway/environments"
)

func TestInit_JSONOutputWithFields(t *testing.T) {
	Init(environments.LogConfig{Level: "debug", Format: "json"})

	var buf bytes.Buffer
	SetOutput(&buf)

	Info().Str("messageId", "m-1").Msg("message sent")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}

	if entry["message"] != "message sent" {
		t.Errorf("expected message field, got %v", entry["message"])
	}
	if entry["messageId"] != "m-1" {
		t.Errorf("expected messageId field, got %v", entry["messageId"])
	}
	if entry["level"] != "info" {
		t.Errorf("expected level info, got %v", entry["level"])
	}
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	Init(environments.LogConfig{Level: "loud"})

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", zerolog.GlobalLevel())
	}

	var buf bytes.Buffer
	SetOutput(&buf)

	Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}

	Warnf("shown %d", 2)
	if !bytes.Contains(buf.Bytes(), []byte("shown 2")) {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestWith_AddsFieldsToEveryEvent(t *testing.T) {
	Init(environments.LogConfig{Level: "info"})

	var buf bytes.Buffer
	SetOutput(&buf)

	l := With(map[string]any{"correlationId": "req_1", "channel": "SMS"})
	l.Warn().Msg("first")
	l.Info().Msg("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("expected JSON log line, got %q: %v", line, err)
		}
		if entry["correlationId"] != "req_1" || entry["channel"] != "SMS" {
			t.Errorf("expected fields on every line, got %v", entry)
		}
	}
}
