package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("canteen-api", &buf)

	log.Error("order_place_failed", "Failed to place order", "req-1", errors.New("boom"), map[string]interface{}{
		"user_id": 7,
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}

	checks := map[string]string{
		"service":    "canteen-api",
		"action":     "order_place_failed",
		"request_id": "req-1",
		"msg":        "Failed to place order",
		"level":      "ERROR",
	}
	for key, want := range checks {
		if got, _ := entry[key].(string); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}

	errGroup, ok := entry["error"].(map[string]interface{})
	if !ok || errGroup["msg"] != "boom" {
		t.Errorf("expected error group with msg boom, got %v", entry["error"])
	}
	details, ok := entry["details"].(map[string]interface{})
	if !ok || details["user_id"] != float64(7) {
		t.Errorf("expected details.user_id = 7, got %v", entry["details"])
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == "" || a == b {
		t.Fatalf("request ids should be non-empty and unique: %q %q", a, b)
	}
}
