package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// runState threads data between operators within a single pipeline run.
type runState struct {
	originalQuery string
	query         string
	hydeText      string
	subQueries    []string
	candidates    []Document
	graded        []Document
	answer        string
	reflection    reflectionScore
	regenerated   bool
}

type reflectionScore struct {
	Coverage  float64
	Grounding float64
	Clarity   float64
}

func (s reflectionScore) overall() float64 {
	return (s.Coverage + s.Grounding + s.Clarity) / 3
}

// opQueryRewrite normalizes the raw query via C2: fix typos, expand
// abbreviations, preserve domain terms (spec §4.4 op 1).
func opQueryRewrite(ctx context.Context, p *Pipeline, st *runState, chain *ReasoningChain) error {
	start := time.Now()
	cleaned, err := p.llm.Complete(ctx,
		"Rewrite the user's real-estate search query: fix typos, expand abbreviations, keep domain terms. Reply with only the rewritten query.",
		st.query)
	latency := time.Since(start)
	if err != nil {
		chain.append("QueryRewrite", summarize(st.query), "operator failed, query unchanged", latency, 0)
		return nil // degrade: keep original query, do not fail the chain
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned != "" {
		st.query = cleaned
	}
	chain.append("QueryRewrite", summarize(st.originalQuery), summarize(st.query), latency, 0.8)
	return nil
}

// opHyDE drafts a short hypothetical ideal property description used as
// additional retrieval text (spec §4.4 op 2).
func opHyDE(ctx context.Context, p *Pipeline, st *runState, chain *ReasoningChain) error {
	start := time.Now()
	text, err := p.llm.Complete(ctx,
		"Write a brief hypothetical property listing description (2-3 sentences) that would perfectly match this search query.",
		st.query)
	latency := time.Since(start)
	if err != nil {
		chain.append("HyDE", summarize(st.query), "operator failed, skipped", latency, 0)
		return nil
	}
	st.hydeText = strings.TrimSpace(text)
	chain.append("HyDE", summarize(st.query), summarize(st.hydeText), latency, 0.6)
	return nil
}

// opQueryDecomposition splits a multi-intent query into sub-queries (spec
// §4.4 op 3). Pipeline.runDecomposed runs the sub-queries one after
// another (they are not run concurrently) and merges their results; this
// operator only produces the split.
func opQueryDecomposition(ctx context.Context, p *Pipeline, st *runState, chain *ReasoningChain) error {
	start := time.Now()
	raw, err := p.llm.Complete(ctx,
		"If this query expresses more than one distinct search intent, split it into separate sub-queries, one per line. Otherwise reply with the query unchanged on a single line.",
		st.query)
	latency := time.Since(start)
	if err != nil {
		chain.append("QueryDecomposition", summarize(st.query), "operator failed, treated as single query", latency, 0)
		return nil
	}
	lines := splitNonEmptyLines(raw)
	if len(lines) <= 1 {
		chain.append("QueryDecomposition", summarize(st.query), "single intent", latency, 0.7)
		return nil
	}
	st.subQueries = lines
	chain.append("QueryDecomposition", summarize(st.query), fmt.Sprintf("%d sub-queries", len(lines)), latency, 0.7)
	return nil
}

// opHybridRetrieval calls C3 with the query (and HyDE text if present)
// and caps results at the given limit (spec §4.4 op 4). The Retrieval
// Gateway fuses its own vector and keyword results by RRF; when HyDE text
// is present this operator issues a second search and merges the two
// lists client-side by keeping each document's higher score. The query
// and HyDE lists are not rank-fused.
func opHybridRetrieval(ctx context.Context, p *Pipeline, st *runState, chain *ReasoningChain, filters map[string]interface{}, limit int) error {
	start := time.Now()
	primary, err := p.retrieval.Search(ctx, st.query, filters, limit)
	if err != nil {
		chain.append("HybridRetrieval", summarize(st.query), "retrieval failed", time.Since(start), 0)
		return fmt.Errorf("hybrid retrieval: %w", err)
	}

	docs := primary
	if st.hydeText != "" {
		hydeDocs, err := p.retrieval.Search(ctx, st.hydeText, filters, limit)
		if err == nil {
			docs = mergeByMaxScore(primary, hydeDocs)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}
	st.candidates = docs

	chain.append("HybridRetrieval", summarize(st.query), fmt.Sprintf("%d candidates", len(docs)), time.Since(start), 0.75)
	return nil
}

// opDocumentGrader scores each candidate's relevance in [0,1] via C2 and
// drops documents below cfg.GraderThreshold (spec §4.4 op 5).
func opDocumentGrader(ctx context.Context, p *Pipeline, st *runState, chain *ReasoningChain, threshold float64) error {
	start := time.Now()
	if len(st.candidates) == 0 {
		chain.append("DocumentGrader", "0 candidates", "0 survivors", time.Since(start), 0)
		st.graded = nil
		return nil
	}

	var prompt strings.Builder
	prompt.WriteString("Score each document's relevance to the query on a 0.0-1.0 scale, one line per document as \"id:score\".\nQuery: ")
	prompt.WriteString(st.query)
	prompt.WriteString("\nDocuments:\n")
	for _, d := range st.candidates {
		prompt.WriteString(fmt.Sprintf("%s: %s\n", d.ID, d.Title))
	}

	raw, err := p.llm.Complete(ctx, "You grade property search result relevance.", prompt.String())
	latency := time.Since(start)
	if err != nil {
		// degrade: skip grading, keep all candidates (spec §7 propagation policy)
		st.graded = st.candidates
		chain.append("DocumentGrader", fmt.Sprintf("%d candidates", len(st.candidates)), "grading failed, all retained", latency, 0)
		return nil
	}

	scores := parseIDScoreLines(raw)
	survivors := make([]Document, 0, len(st.candidates))
	for _, d := range st.candidates {
		score, ok := scores[d.ID]
		if !ok || score >= threshold {
			if ok {
				d.Score = score
			}
			survivors = append(survivors, d)
		}
	}
	st.graded = survivors
	chain.append("DocumentGrader", fmt.Sprintf("%d candidates", len(st.candidates)), fmt.Sprintf("%d survivors", len(survivors)), latency, 0.7)
	return nil
}

// opRerank produces a single ordering over surviving documents using the
// full query intent, preserving the set but reordering it (spec §4.4 op 6).
func opRerank(ctx context.Context, p *Pipeline, st *runState, chain *ReasoningChain) error {
	start := time.Now()
	if len(st.graded) <= 1 {
		chain.append("Rerank", fmt.Sprintf("%d documents", len(st.graded)), "no reorder needed", time.Since(start), 1)
		return nil
	}

	var prompt strings.Builder
	prompt.WriteString("Reorder these document ids best-match-first for the query, one id per line.\nQuery: ")
	prompt.WriteString(st.query)
	prompt.WriteString("\n")
	for _, d := range st.graded {
		prompt.WriteString(fmt.Sprintf("%s: %s\n", d.ID, d.Title))
	}

	raw, err := p.llm.Complete(ctx, "You rerank property search results by relevance to a query.", prompt.String())
	latency := time.Since(start)
	if err != nil {
		chain.append("Rerank", fmt.Sprintf("%d documents", len(st.graded)), "rerank failed, retrieval order kept", latency, 0)
		return nil
	}

	order := splitNonEmptyLines(raw)
	st.graded = reorderByIDs(st.graded, order)
	chain.append("Rerank", fmt.Sprintf("%d documents", len(st.graded)), "reordered", latency, 0.7)
	return nil
}

// opGeneration produces the user-facing, source-grounded answer from the
// top-K surviving documents (spec §4.4 op 7).
func opGeneration(ctx context.Context, p *Pipeline, st *runState, chain *ReasoningChain, topK int, critique string) error {
	start := time.Now()
	if len(st.graded) == 0 {
		st.answer = noMatchesMessage()
		chain.append("Generation", "0 documents", "no-matches message", time.Since(start), 0.9)
		return nil
	}

	docs := st.graded
	if len(docs) > topK {
		docs = docs[:topK]
	}

	var prompt strings.Builder
	prompt.WriteString("Answer the query using only the documents below. Reference document ids for every factual claim. If the documents cannot answer the query, say so plainly.\nQuery: ")
	prompt.WriteString(st.query)
	prompt.WriteString("\nDocuments:\n")
	for _, d := range docs {
		prompt.WriteString(fmt.Sprintf("[%s] %s\n", d.ID, d.Title))
	}
	if critique != "" {
		prompt.WriteString("\nPrevious answer was rejected for this reason, address it: ")
		prompt.WriteString(critique)
	}

	answer, err := p.llm.Complete(ctx, "You are a grounded real-estate assistant.", prompt.String())
	latency := time.Since(start)
	if err != nil {
		st.answer = noMatchesMessage()
		chain.append("Generation", fmt.Sprintf("%d documents", len(docs)), "generation failed", latency, 0)
		return nil
	}
	st.answer = strings.TrimSpace(answer)
	chain.append("Generation", fmt.Sprintf("%d documents", len(docs)), summarize(st.answer), latency, 0.75)
	return nil
}

// opReflection scores the generated answer on coverage, grounding and
// clarity via C2 (spec §4.4 op 8).
func opReflection(ctx context.Context, p *Pipeline, st *runState, chain *ReasoningChain) error {
	start := time.Now()
	prompt := fmt.Sprintf("Score this answer on coverage, grounding and clarity, each 0.0-1.0, as three lines \"coverage:X\" \"grounding:X\" \"clarity:X\".\nQuery: %s\nAnswer: %s", st.query, st.answer)
	raw, err := p.llm.Complete(ctx, "You are a strict answer-quality critic.", prompt)
	latency := time.Since(start)
	if err != nil {
		st.reflection = reflectionScore{Coverage: 1, Grounding: 1, Clarity: 1}
		chain.append("Reflection", summarize(st.answer), "reflection failed, accepted by default", latency, 0)
		return nil
	}
	st.reflection = parseReflectionScore(raw)
	chain.append("Reflection", summarize(st.answer), fmt.Sprintf("overall=%.2f", st.reflection.overall()), latency, st.reflection.overall())
	return nil
}

func summarize(s string) string {
	const max = 80
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func parseIDScoreLines(raw string) map[string]float64 {
	out := make(map[string]float64)
	for _, line := range splitNonEmptyLines(raw) {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		id := strings.TrimSpace(parts[0])
		var score float64
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[1]), "%f", &score); err == nil {
			out[id] = score
		}
	}
	return out
}

func parseReflectionScore(raw string) reflectionScore {
	values := parseIDScoreLines(raw)
	return reflectionScore{
		Coverage:  values["coverage"],
		Grounding: values["grounding"],
		Clarity:   values["clarity"],
	}
}

func reorderByIDs(docs []Document, order []string) []Document {
	byID := make(map[string]Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]Document, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, id := range order {
		if d, ok := byID[id]; ok && !seen[id] {
			out = append(out, d)
			seen[id] = true
		}
	}
	for _, d := range docs {
		if !seen[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

func mergeByMaxScore(a, b []Document) []Document {
	byID := make(map[string]Document, len(a)+len(b))
	for _, d := range a {
		byID[d.ID] = d
	}
	for _, d := range b {
		if existing, ok := byID[d.ID]; !ok || d.Score > existing.Score {
			byID[d.ID] = d
		}
	}
	out := make([]Document, 0, len(byID))
	for _, d := range byID {
		out = append(out, d)
	}
	return out
}

func noMatchesMessage() string {
	return "I couldn't find any properties matching your request. Could you try broadening your criteria?"
}
