package match

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/state"
)

// Entry is one saved sketch.
type Entry struct {
	Name     string    `json:"name"`
	Features []Feature `json:"features"`
}

// Result is a ranked library entry.
type Result struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Request asks for the k best matches of a drawing.
type Request struct {
	Strokes []state.EndpointPair `json:"strokes"`
	K       int                  `json:"k"`
}

// Response carries ranked matches, best first.
type Response struct {
	Results []Result `json:"results"`
}

// Library is a set of saved sketches kept in name order. It is safe for
// concurrent use.
type Library struct {
	matcher Matcher
	mu      sync.RWMutex
	entries []Entry
}

// NewLibrary returns an empty library scored with m.
func NewLibrary(m Matcher) *Library {
	return &Library{matcher: m}
}

// LoadLibrary reads every "*.json" feature list in dir. A missing
// directory yields an empty library.
func LoadLibrary(dir string, m Matcher) (*Library, error) {
	l := NewLibrary(m)
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("match: list %s: %w", dir, err)
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("match: read %s: %w", p, err)
		}
		var fts []Feature
		if err := json.Unmarshal(data, &fts); err != nil {
			return nil, fmt.Errorf("match: parse %s: %w", p, err)
		}
		l.Add(EntryName(p), fts)
	}
	log.Info().Str("dir", dir).Int("entries", l.Len()).Msg("[MATCH] library loaded")
	return l, nil
}

// EntryName strips the directory and the last extension of a path.
func EntryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Add inserts or replaces the entry called name.
func (l *Library) Add(name string, fts []Feature) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := sort.Search(len(l.entries), func(i int) bool { return l.entries[i].Name >= name })
	if i < len(l.entries) && l.entries[i].Name == name {
		l.entries[i].Features = fts
		return
	}
	l.entries = append(l.entries, Entry{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = Entry{Name: name, Features: fts}
}

// Len returns the number of entries.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Search ranks every entry against the strokes and returns the k best.
// Ties keep name order.
func (l *Library) Search(strokes []state.EndpointPair, k int) []Result {
	query := Features(strokes)

	l.mu.RLock()
	results := make([]Result, len(l.entries))
	for i, e := range l.entries {
		results[i] = Result{Name: e.Name, Score: l.matcher.Score(query, e.Features)}
	}
	l.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if k >= 0 && k < len(results) {
		results = results[:k]
	}
	return results
}
