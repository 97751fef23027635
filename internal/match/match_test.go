package match

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"MySketchBoard/internal/state"
)

func pair(x1, y1, x2, y2 float64) state.EndpointPair {
	return state.EndpointPair{{x1, y1}, {x2, y2}}
}

func TestStrokeFeature(t *testing.T) {
	tests := []struct {
		name   string
		stroke state.EndpointPair
		kind   string
	}{
		{"hold", pair(3, 4, 3, 4), Hold},
		{"right", pair(0, 0, 10, 0), Right},
		{"positive y", pair(0, 0, 0, 10), Up},
		{"negative y", pair(0, 0, 0, -10), Down},
		{"diagonal", pair(0, 0, 10, 10), Down},
		{"anti-diagonal", pair(0, 0, 10, -10), Up},
		{"leftwards", pair(0, 0, -10, 0), Up},
		{"shallow", pair(0, 0, 10, 3), Right},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := StrokeFeature(tt.stroke)
			require.Equal(t, tt.kind, f.Kind)
			require.Equal(t, tt.stroke[0][0], f.X)
			require.Equal(t, tt.stroke[0][1], f.Y)
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Feature{{Right, 10, 20}, {Up, 30, 40}})
	require.Equal(t, Feature{Right, 0, 0}, got[0])
	require.InDelta(t, 20.0/21, got[1].X, 1e-12)
	require.InDelta(t, 20.0/21, got[1].Y, 1e-12)
	require.Nil(t, Normalize(nil))
}

func TestScore(t *testing.T) {
	m := DefaultMatcher
	same := []Feature{{Right, 0, 0}, {Up, 5, 9}}
	require.Zero(t, m.Score(same, same))

	require.InDelta(t, 0.5, m.Score([]Feature{{Right, 0, 0}}, []Feature{{Up, 0, 0}}), 1e-12)

	// One feature left over on the longer side costs the missing penalty.
	one := []Feature{{Right, 0, 0}}
	two := []Feature{{Right, 0, 0}, {Right, 0, 10}}
	require.InDelta(t, 1.0, m.Score(one, two), 1e-12)
	require.Equal(t, m.Score(one, two), m.Score(two, one))

	require.Zero(t, m.Score(nil, nil))
	require.InDelta(t, 2.0, m.Score(nil, two), 1e-12)
}

func TestScoreResolvesConflicts(t *testing.T) {
	a := []Feature{{Right, 0, 0}, {Right, 0, 1}}
	b := []Feature{{Right, 0, 0}, {Down, 0, 100}}
	// Both features of a pick b[0]; the first is dropped, so the score is
	// one missing penalty for it, 0.5 for the second, and one for b[1].
	require.InDelta(t, 2.5, DefaultMatcher.Score(a, b), 1e-12)
}

func TestFeatureJSON(t *testing.T) {
	var fts []Feature
	require.NoError(t, json.Unmarshal([]byte(`[["r", 1, 2.5], ["h", 0, 0]]`), &fts))
	require.Equal(t, []Feature{{Right, 1, 2.5}, {Hold, 0, 0}}, fts)

	data, err := json.Marshal(fts[0])
	require.NoError(t, err)
	require.JSONEq(t, `["r", 1, 2.5]`, string(data))

	require.Error(t, json.Unmarshal([]byte(`[["r", 1]]`), &fts))
	require.Error(t, json.Unmarshal([]byte(`[[1, 1, 1]]`), &fts))
}

func TestLibrarySearch(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("one.json", `[["r", 0, 0]]`)
	write("cross.json", `[["r", 0, 5], ["u", 5, 0]]`)
	write("dot.json", `[["h", 0, 0]]`)
	write("notes.txt", `ignored`)

	lib, err := LoadLibrary(dir, DefaultMatcher)
	require.NoError(t, err)
	require.Equal(t, 3, lib.Len())

	results := lib.Search([]state.EndpointPair{pair(10, 10, 50, 10)}, 2)
	require.Len(t, results, 2)
	require.Equal(t, "one", results[0].Name)
	require.Zero(t, results[0].Score)
	// "dot" and "cross" differ: dot costs the kind penalty only.
	require.Equal(t, "dot", results[1].Name)

	all := lib.Search(nil, -1)
	require.Len(t, all, 3)
	// An empty query costs one missing penalty per feature; ties keep name order.
	require.Equal(t, []string{"dot", "one", "cross"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestLibraryAddReplaces(t *testing.T) {
	lib := NewLibrary(DefaultMatcher)
	lib.Add("b", []Feature{{Right, 0, 0}})
	lib.Add("a", []Feature{{Up, 0, 0}})
	lib.Add("b", []Feature{{Up, 0, 0}})
	require.Equal(t, 2, lib.Len())
	results := lib.Search([]state.EndpointPair{pair(0, 0, 0, 9)}, 5)
	require.Equal(t, "a", results[0].Name)
	require.Equal(t, "b", results[1].Name)
	require.Zero(t, results[1].Score)
}

func TestLoadLibraryRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0o644))
	_, err := LoadLibrary(dir, DefaultMatcher)
	require.Error(t, err)
}

func TestEntryName(t *testing.T) {
	require.Equal(t, "sk.etch", EntryName("/pics/sk.etch.json"))
}
