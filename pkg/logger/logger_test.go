package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New("payees", Config{Level: "debug", Output: &buf})

	log.WithField("payee_id", "p-1").Info("payee created")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["component"] != "payees" {
		t.Fatalf("expected component field, got %v", entry)
	}
	if entry["payee_id"] != "p-1" {
		t.Fatalf("expected payee_id field, got %v", entry)
	}
}

func TestLoggerInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("x", Config{Level: "chatty", Output: &buf})

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug entry should be filtered at info level")
	}
}

func TestNamedSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	parent := New("app", Config{Output: &buf})
	child := parent.Named("manager")

	child.Info("session opened")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["component"] != "manager" {
		t.Fatalf("expected child component, got %v", entry["component"])
	}
	if child.Component() != "manager" {
		t.Fatalf("unexpected component %q", child.Component())
	}
}
