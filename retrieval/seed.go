package retrieval

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadCorpus reads a JSON array of PropertyDocument from path and builds a
// Corpus. This is startup-only file I/O (spec §5), mirroring the
// knowledge package's YAML-at-startup loader.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("retrieval: read corpus %s: %w", path, err)
	}
	var docs []PropertyDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("retrieval: parse corpus %s: %w", path, err)
	}
	return NewCorpus(docs), nil
}
