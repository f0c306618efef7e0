package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig controls the shared ProductionLogger. Each cmd/* entrypoint
// builds one with DefaultLoggingConfig and passes it to NewProductionLogger;
// the service-level Config types do not carry logging fields.
type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `json:"format" env:"LOG_FORMAT" default:"json"`
	Output string `json:"output" env:"LOG_OUTPUT" default:"stdout"`
}

// DevelopmentConfig toggles local-development ergonomics (human-readable
// logs, verbose debug output). Never implied by a missing env var in a
// Kubernetes environment.
type DevelopmentConfig struct {
	Enabled      bool `json:"enabled" env:"DEV_MODE" default:"false"`
	DebugLogging bool `json:"debug_logging" env:"DEBUG" default:"false"`
}

func (l *LoggingConfig) loadEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		l.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		l.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		l.Output = v
	}
}

func (d *DevelopmentConfig) loadEnv() {
	if v := os.Getenv("DEV_MODE"); v != "" {
		d.Enabled = parseBool(v, d.Enabled)
	}
	if v := os.Getenv("DEBUG"); v != "" {
		d.DebugLogging = parseBool(v, d.DebugLogging)
	}
}

// DefaultLoggingConfig returns sensible defaults, then applies env overrides.
func DefaultLoggingConfig() LoggingConfig {
	c := LoggingConfig{Level: "info", Format: "json", Output: "stdout"}
	c.loadEnv()
	return c
}

// DefaultDevelopmentConfig returns sensible defaults, then applies env overrides.
func DefaultDevelopmentConfig() DevelopmentConfig {
	d := DevelopmentConfig{}
	d.loadEnv()
	if d.Enabled {
		d.DebugLogging = true
	}
	return d
}

// parseBool is a permissive boolean parser for env values ("1", "true",
// "yes" all count as true); anything unparsable keeps the fallback.
func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// EnvInt parses an integer env var, falling back to def on error or absence.
func EnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvFloat parses a float env var, falling back to def on error or absence.
func EnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// EnvDuration parses a duration env var (e.g. "30s"), falling back to def.
func EnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// EnvString returns the env var or def if unset/empty.
func EnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvBool parses a boolean env var, falling back to def.
func EnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return parseBool(v, def)
}

// EnvStringList parses a comma-separated env var into a trimmed slice.
func EnvStringList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// ============================================================================
// ProductionLogger — shared structured logger for every service
// ============================================================================

// ProductionLogger writes structured (JSON) or human-readable log lines.
// It never logs request content beyond what callers explicitly pass in
// fields, and callers are responsible for redacting secrets before calling.
type ProductionLogger struct {
	level       string
	debug       bool
	serviceName string
	component   string
	format      string
	output      io.Writer
}

// NewProductionLogger builds a Logger from LoggingConfig/DevelopmentConfig.
func NewProductionLogger(logging LoggingConfig, dev DevelopmentConfig, serviceName string) Logger {
	var output io.Writer = os.Stdout
	if logging.Output == "stderr" {
		output = os.Stderr
	}
	return &ProductionLogger{
		level:       strings.ToLower(logging.Level),
		debug:       dev.DebugLogging || strings.ToLower(logging.Level) == "debug",
		serviceName: serviceName,
		format:      logging.Format,
		output:      output,
	}
}

// WithComponent returns a logger that tags every entry with component.
func (p *ProductionLogger) WithComponent(component string) Logger {
	clone := *p
	clone.component = component
	return &clone
}

func (p *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	p.logEvent("INFO", msg, fields, nil)
}
func (p *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	p.logEvent("ERROR", msg, fields, nil)
}
func (p *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	p.logEvent("WARN", msg, fields, nil)
}
func (p *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	if p.debug {
		p.logEvent("DEBUG", msg, fields, nil)
	}
}

func (p *ProductionLogger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent("INFO", msg, fields, requestIDFromContext(ctx))
}
func (p *ProductionLogger) ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent("ERROR", msg, fields, requestIDFromContext(ctx))
}
func (p *ProductionLogger) WarnWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent("WARN", msg, fields, requestIDFromContext(ctx))
}
func (p *ProductionLogger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.debug {
		p.logEvent("DEBUG", msg, fields, requestIDFromContext(ctx))
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request id so every *WithContext log line
// carries it automatically.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) *string {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
		return &v
	}
	return nil
}

func (p *ProductionLogger) logEvent(level, msg string, fields map[string]interface{}, requestID *string) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if p.format == "json" {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level,
			"service":   p.serviceName,
			"message":   msg,
		}
		if p.component != "" {
			entry["component"] = p.component
		}
		if requestID != nil {
			entry["request_id"] = *requestID
		}
		for k, v := range fields {
			entry[k] = v
		}
		if data, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(p.output, string(data))
		}
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s", timestamp, level, p.serviceName)
	if p.component != "" {
		fmt.Fprintf(&b, "/%s", p.component)
	}
	b.WriteString("] ")
	b.WriteString(msg)
	for k, v := range fields {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	fmt.Fprintln(p.output, b.String())
}
