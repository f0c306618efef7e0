package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/reai-platform/core/core"
)

// Pipeline runs the operator chain described in spec §4.4. It is stateless
// between requests; Run is safe for concurrent use.
type Pipeline struct {
	llm       LLMClient
	retrieval RetrievalClient
	cfg       Config
	logger    core.Logger
}

func NewPipeline(llm LLMClient, retrieval RetrievalClient, cfg Config, logger core.Logger) *Pipeline {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Pipeline{llm: llm, retrieval: retrieval, cfg: cfg, logger: logger}
}

// Run executes the full chain for req. The minimal chain {Retrieval,
// Generation} always runs regardless of config (spec §4.4 chain policy).
func (p *Pipeline) Run(ctx context.Context, req Request) (Response, error) {
	var chain ReasoningChain
	st := &runState{originalQuery: req.Query, query: req.Query}

	if err := opQueryRewrite(ctx, p, st, &chain); err != nil {
		return Response{}, err
	}

	if p.cfg.EnableHyDE && shouldUseHyDE(st.query) {
		_ = opHyDE(ctx, p, st, &chain)
	}

	limit := p.cfg.RetrievalLimit
	if req.Limit > 0 && req.Limit < limit {
		limit = req.Limit
	}

	if p.cfg.EnableDecomposition {
		_ = opQueryDecomposition(ctx, p, st, &chain)
	}

	if len(st.subQueries) > 1 {
		return p.runDecomposed(ctx, req, st, &chain, limit)
	}

	return p.runSingle(ctx, req, st, &chain, limit)
}

func (p *Pipeline) runSingle(ctx context.Context, req Request, st *runState, chain *ReasoningChain, limit int) (Response, error) {
	if err := opHybridRetrieval(ctx, p, st, chain, req.Filters, limit); err != nil {
		return Response{}, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}

	_ = opDocumentGrader(ctx, p, st, chain, p.cfg.GraderThreshold)

	if len(st.graded) > 0 {
		_ = opRerank(ctx, p, st, chain)
	}

	if err := opGeneration(ctx, p, st, chain, p.cfg.TopKForGeneration, ""); err != nil {
		return Response{}, err
	}

	_ = opReflection(ctx, p, st, chain)
	if st.reflection.overall() < p.cfg.ReflectionThreshold && !st.regenerated && p.cfg.RegenerationBudget > 0 {
		st.regenerated = true
		critique := fmt.Sprintf("coverage=%.2f grounding=%.2f clarity=%.2f", st.reflection.Coverage, st.reflection.Grounding, st.reflection.Clarity)
		_ = opGeneration(ctx, p, st, chain, p.cfg.TopKForGeneration, critique)
	}

	return Response{
		Answer:         st.answer,
		Sources:        st.graded,
		Confidence:     finalConfidence(st),
		ReasoningChain: *chain,
	}, nil
}

// runDecomposed runs each sub-query in turn through retrieval+grading,
// then merges candidate sets by max score before a single generation pass (spec
// §4.4 op 3: "union of property_ids; merged score = max").
func (p *Pipeline) runDecomposed(ctx context.Context, req Request, st *runState, chain *ReasoningChain, limit int) (Response, error) {
	merged := make(map[string]Document)
	for _, sub := range st.subQueries {
		subState := &runState{originalQuery: sub, query: sub}
		if err := opHybridRetrieval(ctx, p, subState, chain, req.Filters, limit); err != nil {
			continue
		}
		_ = opDocumentGrader(ctx, p, subState, chain, p.cfg.GraderThreshold)
		for _, d := range subState.graded {
			if existing, ok := merged[d.ID]; !ok || d.Score > existing.Score {
				merged[d.ID] = d
			}
		}
	}

	st.graded = make([]Document, 0, len(merged))
	for _, d := range merged {
		st.graded = append(st.graded, d)
	}
	sort.Slice(st.graded, func(i, j int) bool {
		if st.graded[i].Score != st.graded[j].Score {
			return st.graded[i].Score > st.graded[j].Score
		}
		return st.graded[i].ID < st.graded[j].ID
	})
	if len(st.graded) > limit {
		st.graded = st.graded[:limit]
	}

	if len(st.graded) > 0 {
		_ = opRerank(ctx, p, st, chain)
	}

	if err := opGeneration(ctx, p, st, chain, p.cfg.TopKForGeneration, ""); err != nil {
		return Response{}, err
	}
	_ = opReflection(ctx, p, st, chain)

	return Response{
		Answer:         st.answer,
		Sources:        st.graded,
		Confidence:     finalConfidence(st),
		ReasoningChain: *chain,
	}, nil
}

// shouldUseHyDE enables HyDE for short queries (under 40 runes); the
// query's ambiguity is not considered.
func shouldUseHyDE(query string) bool {
	return len([]rune(query)) < 40
}

func finalConfidence(st *runState) float64 {
	if len(st.graded) == 0 {
		return 0.3
	}
	return st.reflection.overall()
}
