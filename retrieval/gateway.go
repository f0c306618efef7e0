package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/reai-platform/core/core"
)

// Gateway is the hybrid search façade: it runs the vector and keyword
// engines, fuses their output with RRF, and protects both calls with a
// gobreaker circuit breaker (spec §4.3 "protected by its own circuit
// breaker, identical semantics to §4.2").
type Gateway struct {
	corpus   *Corpus
	vector   VectorSearcher
	keyword  KeywordSearcher
	fusion   FusionConfig
	breaker  *gobreaker.CircuitBreaker[[]string]
	logger   core.Logger
}

// NewGateway wires a Gateway over corpus, with a gobreaker tuned to the
// same thresholds §4.2 specifies (5 consecutive failures to open, 60s
// reset, one half-open probe).
func NewGateway(corpus *Corpus, failThreshold uint32, resetTimeout time.Duration, logger core.Logger) *Gateway {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	settings := gobreaker.Settings{
		Name:        "retrieval-engine",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("retrieval circuit breaker state change", map[string]interface{}{
				"name": name, "from": from.String(), "to": to.String(),
			})
		},
	}
	return &Gateway{
		corpus:  corpus,
		vector:  corpus,
		keyword: corpus,
		fusion:  DefaultFusionConfig(),
		breaker: gobreaker.NewCircuitBreaker[[]string](settings),
		logger:  logger,
	}
}

// Search implements spec §4.3's operation: filter, run both engines
// (through the circuit breaker), fuse with RRF, truncate to limit.
func (g *Gateway) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	start := time.Now()
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	candidates := g.corpus.filtered(req.Filters)
	if len(candidates) == 0 {
		return SearchResponse{Results: nil, Total: 0, ExecutionTimeMs: time.Since(start).Milliseconds()}, nil
	}

	vectorIDs, err := g.breaker.Execute(func() ([]string, error) {
		return g.vector.SearchVector(req.Query, candidates, limit*2), nil
	})
	if err != nil {
		return SearchResponse{}, fmt.Errorf("%w: vector search: %v", core.ErrProviderUnavailable, err)
	}

	keywordIDs, err := g.breaker.Execute(func() ([]string, error) {
		return g.keyword.SearchKeyword(req.Query, candidates, limit*2), nil
	})
	if err != nil {
		return SearchResponse{}, fmt.Errorf("%w: keyword search: %v", core.ErrProviderUnavailable, err)
	}

	fused := Fuse([]RankedList{
		{Source: "vector", Weight: 0.6, IDs: vectorIDs},
		{Source: "keyword", Weight: 0.4, IDs: keywordIDs},
	}, g.fusion)

	if len(fused) > limit {
		fused = fused[:limit]
	}

	results := make([]RetrievedDocument, 0, len(fused))
	for _, sid := range fused {
		doc, ok := g.corpus.Get(sid.ID)
		if !ok {
			continue
		}
		results = append(results, RetrievedDocument{
			ID:     doc.ID,
			Title:  doc.Title,
			Score:  sid.Score,
			Source: "fused",
			Attributes: map[string]interface{}{
				"listing_type":  doc.ListingType,
				"property_type": doc.PropertyType,
				"city":          doc.City,
				"price":         doc.Price,
			},
		})
	}

	return SearchResponse{
		Results:         results,
		Total:           len(results),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// GetProperty returns the full property document backing GET
// /properties/{id}.
func (g *Gateway) GetProperty(id string) (PropertyDocument, error) {
	doc, ok := g.corpus.Get(id)
	if !ok {
		return PropertyDocument{}, core.ErrServiceNotFound
	}
	return doc, nil
}
