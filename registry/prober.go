package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/reai-platform/core/core"
)

// Prober runs the parallel health-probe loop described in spec §4.1: every
// Interval, issue GET <url>/health to each registered service in parallel
// with Timeout; evict after the catalog's configured consecutive-failure
// threshold.
type Prober struct {
	catalog  *Catalog
	client   *http.Client
	interval time.Duration
	timeout  time.Duration
	logger   core.Logger

	stop chan struct{}
	done chan struct{}
}

// NewProber wires a Prober over catalog. interval/timeout default to 30s/5s
// (spec §4.1) when zero.
func NewProber(catalog *Catalog, interval, timeout time.Duration, logger core.Logger) *Prober {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Prober{
		catalog:  catalog,
		client:   &http.Client{Timeout: timeout},
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run blocks, probing every interval, until ctx is cancelled or Stop is
// called. Intended to be launched with `go prober.Run(ctx)` from Start().
func (p *Prober) Run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.probeOnce(ctx)
		}
	}
}

// Stop signals Run to return and waits for it to finish.
func (p *Prober) Stop() {
	close(p.stop)
	<-p.done
}

func (p *Prober) probeOnce(ctx context.Context) {
	names := p.catalog.snapshotNames()
	var wg sync.WaitGroup
	wg.Add(len(names))
	for _, name := range names {
		name := name
		go func() {
			defer wg.Done()
			p.probeOne(ctx, name)
		}()
	}
	wg.Wait()
}

type healthBody struct {
	Status string `json:"status"`
}

func (p *Prober) probeOne(ctx context.Context, name string) {
	url, ok := p.catalog.url(name)
	if !ok {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url+"/health", nil)
	if err != nil {
		p.catalog.markProbeResult(name, false)
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if p.catalog.markProbeResult(name, false) {
			p.logger.Warn("probe evicted unreachable service", map[string]interface{}{"name": name, "url": url})
		}
		return
	}
	defer resp.Body.Close()

	healthy := resp.StatusCode >= 200 && resp.StatusCode < 300
	if healthy {
		var body healthBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status != "healthy" {
			healthy = false
		}
	}

	if evicted := p.catalog.markProbeResult(name, healthy); evicted {
		p.logger.Warn("probe evicted failing service", map[string]interface{}{"name": name, "url": url})
	}
}
