package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

func hostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return u.Hostname(), port
}

func TestProberMarksHealthyOnSuccessfulProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c := NewCatalog(3, nil)
	host, port := hostPort(t, srv.URL)
	_, _ = c.Register("svc", host, port, "v1", nil)

	p := NewProber(c, time.Hour, time.Second, nil)
	p.probeOnce(context.Background())

	rec, err := c.Get("svc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != StatusHealthy {
		t.Errorf("expected healthy after probe, got %s", rec.Status)
	}
}

func TestProberMarksUnhealthyOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewCatalog(3, nil)
	host, port := hostPort(t, srv.URL)
	_, _ = c.Register("svc", host, port, "v1", nil)

	p := NewProber(c, time.Hour, time.Second, nil)
	p.probeOnce(context.Background())

	rec, _ := c.Get("svc")
	if rec.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", rec.Status)
	}
}

func TestProberEvictsAfterRepeatedUnreachable(t *testing.T) {
	c := NewCatalog(2, nil)
	_, _ = c.Register("ghost", "127.0.0.1", 1, "v1", nil)

	p := NewProber(c, time.Hour, 50*time.Millisecond, nil)
	p.probeOnce(context.Background())
	p.probeOnce(context.Background())

	if _, err := c.Get("ghost"); err == nil {
		t.Error("expected ghost service to be evicted after repeated unreachable probes")
	}
}
