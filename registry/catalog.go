// Package registry implements the Service Registry (C1): an in-memory
// catalog of service instances with capability-indexed lookup and a
// background health-probe loop. Mirrors the teacher's RedisRegistry in
// naming and method set but drops the Redis dependency in favor of a
// process-local map, since spec §6 states registry state is purely
// in-memory.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/reai-platform/core/core"
)

// Status enumerates the lifecycle states of a ServiceRecord (spec §3).
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ServiceRecord is the catalog entry for one registered service (spec §3).
type ServiceRecord struct {
	Name             string    `json:"name"`
	Host             string    `json:"host"`
	Port             int       `json:"port"`
	URL              string    `json:"url"`
	Version          string    `json:"version"`
	Capabilities     []string  `json:"capabilities"`
	Status           Status    `json:"status"`
	RegisteredAt     time.Time `json:"registered_at"`
	LastHeartbeat    time.Time `json:"last_heartbeat"`
	consecutiveFails int
}

func newRecord(name, host string, port int, version string, capabilities []string) *ServiceRecord {
	now := time.Now()
	return &ServiceRecord{
		Name:          name,
		Host:          host,
		Port:          port,
		URL:           fmt.Sprintf("http://%s:%d", host, port),
		Version:       version,
		Capabilities:  append([]string(nil), capabilities...),
		Status:        StatusUnknown,
		RegisteredAt:  now,
		LastHeartbeat: now,
	}
}

func (r *ServiceRecord) hasCapability(cap string) bool {
	for _, c := range r.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

func (r *ServiceRecord) clone() ServiceRecord {
	out := *r
	out.Capabilities = append([]string(nil), r.Capabilities...)
	return out
}

// Catalog is the concurrency-safe in-memory registry. Writers take a
// brief exclusive lock; List takes a read-lock snapshot, matching spec
// §4.1's "readers take a snapshot" concurrency policy.
type Catalog struct {
	mu       sync.RWMutex
	services map[string]*ServiceRecord

	evictionThreshold int
	logger            core.Logger
}

// NewCatalog builds an empty Catalog. evictionThreshold is the number of
// consecutive failed probes (default 3, spec §4.1) before a record is
// dropped.
func NewCatalog(evictionThreshold int, logger core.Logger) *Catalog {
	if evictionThreshold <= 0 {
		evictionThreshold = 3
	}
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	if cal, ok := logger.(core.ComponentAwareLogger); ok {
		logger = cal.WithComponent("registry")
	}
	return &Catalog{
		services:          make(map[string]*ServiceRecord),
		evictionThreshold: evictionThreshold,
		logger:            logger,
	}
}

// Register creates or replaces an entry. If the name already exists it is
// overwritten and its status resets to unknown until the next probe
// (spec §4.1 register()).
func (c *Catalog) Register(name, host string, port int, version string, capabilities []string) (ServiceRecord, error) {
	if name == "" || host == "" || port <= 0 {
		return ServiceRecord{}, fmt.Errorf("registry: invalid registration for %q: %w", name, core.ErrInputInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.services[name]; ok {
		c.logger.Info("overwriting existing registration", map[string]interface{}{"name": name, "previous_url": existing.URL})
	}

	rec := newRecord(name, host, port, version, capabilities)
	c.services[name] = rec
	c.logger.Info("service registered", map[string]interface{}{"name": name, "url": rec.URL, "capabilities": capabilities})
	return rec.clone(), nil
}

// Deregister removes an entry if present; idempotent per spec §4.1.
func (c *Catalog) Deregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.services[name]; ok {
		delete(c.services, name)
		c.logger.Info("service deregistered", map[string]interface{}{"name": name})
	}
}

// Get returns the record for name, or ErrServiceNotFound.
func (c *Catalog) Get(name string) (ServiceRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.services[name]
	if !ok {
		return ServiceRecord{}, fmt.Errorf("registry: %q: %w", name, core.ErrServiceNotFound)
	}
	return rec.clone(), nil
}

// List returns a filtered, stable-within-call snapshot (spec §4.1 list()).
// Empty capability/status filters match everything.
func (c *Catalog) List(capability string, status Status) []ServiceRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ServiceRecord, 0, len(c.services))
	for _, rec := range c.services {
		if capability != "" && !rec.hasCapability(capability) {
			continue
		}
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, rec.clone())
	}
	return out
}

// Heartbeat updates last-heartbeat without itself marking the service
// healthy (spec §4.1 heartbeat()).
func (c *Catalog) Heartbeat(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.services[name]
	if !ok {
		return fmt.Errorf("registry: %q: %w", name, core.ErrServiceNotFound)
	}
	rec.LastHeartbeat = time.Now()
	return nil
}

// Stats aggregates counts by status (spec §4.1 stats()).
type Stats struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
	Unknown   int `json:"unknown"`
}

func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Total: len(c.services)}
	for _, rec := range c.services {
		switch rec.Status {
		case StatusHealthy:
			s.Healthy++
		case StatusUnhealthy:
			s.Unhealthy++
		default:
			s.Unknown++
		}
	}
	return s
}

// markProbeResult applies one probe outcome, returning true if the record
// should be evicted (consecutive failures reached evictionThreshold).
func (c *Catalog) markProbeResult(name string, healthy bool) (evict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.services[name]
	if !ok {
		return false
	}

	if healthy {
		rec.Status = StatusHealthy
		rec.consecutiveFails = 0
		return false
	}

	rec.Status = StatusUnhealthy
	rec.consecutiveFails++
	if rec.consecutiveFails >= c.evictionThreshold {
		delete(c.services, name)
		c.logger.Warn("service evicted after repeated probe failures", map[string]interface{}{
			"name":              name,
			"consecutive_fails": rec.consecutiveFails,
		})
		return true
	}
	return false
}

// snapshotNames returns the names currently registered, for the probe loop
// to iterate without holding the lock during network calls.
func (c *Catalog) snapshotNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	return names
}

func (c *Catalog) url(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.services[name]
	if !ok {
		return "", false
	}
	return rec.URL, true
}
