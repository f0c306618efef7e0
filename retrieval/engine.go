package retrieval

import (
	"math"
	"sort"
	"strings"
)

// VectorSearcher and KeywordSearcher are the two engines RRF fuses (spec
// §4.3). Implementing a production-grade vector index or BM25 ranker is
// explicitly out of scope; Corpus below is a minimal in-memory
// implementation of both interfaces sufficient to exercise the façade,
// filtering and fusion contract this gateway is actually responsible for.
type VectorSearcher interface {
	SearchVector(query string, candidates []PropertyDocument, limit int) []string // ranked IDs
}

type KeywordSearcher interface {
	SearchKeyword(query string, candidates []PropertyDocument, limit int) []string // ranked IDs
}

// Corpus is an in-memory property store doubling as both search engines.
type Corpus struct {
	documents map[string]PropertyDocument
}

func NewCorpus(docs []PropertyDocument) *Corpus {
	c := &Corpus{documents: make(map[string]PropertyDocument, len(docs))}
	for _, d := range docs {
		c.documents[d.ID] = d
	}
	return c
}

func (c *Corpus) Get(id string) (PropertyDocument, bool) {
	d, ok := c.documents[id]
	return d, ok
}

func (c *Corpus) filtered(f Filters) []PropertyDocument {
	out := make([]PropertyDocument, 0, len(c.documents))
	for _, d := range c.documents {
		if f.matches(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SearchVector ranks by a crude bag-of-words cosine similarity over
// the title, city, district and features text. It stands in for a real
// embedding index.
func (c *Corpus) SearchVector(query string, candidates []PropertyDocument, limit int) []string {
	qv := termVector(query)
	type scored struct {
		id    string
		score float64
	}
	out := make([]scored, 0, len(candidates))
	for _, d := range candidates {
		dv := termVector(documentText(d))
		out = append(out, scored{id: d.ID, score: cosine(qv, dv)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return topIDs(out, limit, func(s scored) string { return s.id })
}

// SearchKeyword ranks by raw term-overlap count, a simplified stand-in
// for BM25.
func (c *Corpus) SearchKeyword(query string, candidates []PropertyDocument, limit int) []string {
	terms := tokenize(query)
	type scored struct {
		id    string
		score int
	}
	out := make([]scored, 0, len(candidates))
	for _, d := range candidates {
		docTerms := tokenize(documentText(d))
		docSet := make(map[string]int, len(docTerms))
		for _, t := range docTerms {
			docSet[t]++
		}
		count := 0
		for _, t := range terms {
			count += docSet[t]
		}
		out = append(out, scored{id: d.ID, score: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return topIDs(out, limit, func(s scored) string { return s.id })
}

func topIDs[T any](in []T, limit int, id func(T) string) []string {
	if limit <= 0 || limit > len(in) {
		limit = len(in)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = id(in[i])
	}
	return out
}

func documentText(d PropertyDocument) string {
	var sb strings.Builder
	sb.WriteString(d.Title)
	sb.WriteString(" ")
	sb.WriteString(d.City)
	sb.WriteString(" ")
	sb.WriteString(d.District)
	sb.WriteString(" ")
	sb.WriteString(strings.Join(d.Features, " "))
	return sb.String()
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r >= 0x80)
	})
	return fields
}

func termVector(s string) map[string]float64 {
	v := make(map[string]float64)
	for _, t := range tokenize(s) {
		v[t]++
	}
	return v
}

func cosine(a, b map[string]float64) float64 {
	var dot, na, nb float64
	for t, av := range a {
		dot += av * b[t]
		na += av * av
	}
	for _, bv := range b {
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
