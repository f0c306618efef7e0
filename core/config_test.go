package core

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestProductionLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := &ProductionLogger{
		level:       "info",
		serviceName: "registry",
		format:      "json",
		output:      &buf,
	}

	logger.Info("service registered", map[string]interface{}{"name": "llmgateway"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "registry" {
		t.Errorf("expected service=registry, got %v", entry["service"])
	}
	if entry["name"] != "llmgateway" {
		t.Errorf("expected name field to round-trip, got %v", entry["name"])
	}
}

func TestProductionLoggerDebugGatedByConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := &ProductionLogger{serviceName: "x", format: "text", output: &buf, debug: false}
	logger.Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Errorf("expected debug log suppressed, got %q", buf.String())
	}

	logger.debug = true
	logger.Debug("visible", nil)
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected debug log emitted once enabled, got %q", buf.String())
	}
}

func TestProductionLoggerRequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := &ProductionLogger{serviceName: "x", format: "json", output: &buf}
	ctx := WithRequestID(context.Background(), "req-123")

	logger.InfoWithContext(ctx, "handled", nil)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id propagated, got %v", entry["request_id"])
	}
}

func TestEnvHelpersFallback(t *testing.T) {
	if got := EnvInt("NONEXISTENT_KEY_XYZ", 42); got != 42 {
		t.Errorf("expected fallback 42, got %d", got)
	}
	if got := EnvDuration("NONEXISTENT_KEY_XYZ", 0); got != 0 {
		t.Errorf("expected fallback 0, got %v", got)
	}
	if got := EnvBool("NONEXISTENT_KEY_XYZ", true); got != true {
		t.Errorf("expected fallback true, got %v", got)
	}
}

func TestParseBool(t *testing.T) {
	cases := map[string]bool{"1": true, "true": true, "yes": true, "on": true,
		"0": false, "false": false, "no": false, "off": false}
	for in, want := range cases {
		if got := parseBool(in, !want); got != want {
			t.Errorf("parseBool(%q) = %v, want %v", in, got, want)
		}
	}
	if got := parseBool("garbage", true); got != true {
		t.Errorf("expected fallback for unparsable value, got %v", got)
	}
}
