package match

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Matcher scores two feature lists; lower is closer.
type Matcher struct {
	// WrongKindPenalty is added to the distance of features of different
	// kinds.
	WrongKindPenalty float64
	// MissingPenalty is charged for every feature left without a partner.
	MissingPenalty float64
	// Neighbors is how many nearest candidates each feature may match.
	Neighbors int
}

// DefaultMatcher is the tuning saved sketches are ranked with.
var DefaultMatcher = Matcher{WrongKindPenalty: 0.5, MissingPenalty: 1.0, Neighbors: 1}

// Distance is the euclidean distance of two features plus the kind penalty.
func (m Matcher) Distance(a, b Feature) float64 {
	d := r2.Norm(r2.Sub(a.vec(), b.vec()))
	if a.Kind != b.Kind {
		d += m.WrongKindPenalty
	}
	return d
}

// Score returns the cost of the cheapest assignment of the shorter list's
// features to the longer list's. Each feature may only pick among its
// nearest neighbours; when two pick the same partner the earlier one is
// left unmatched.
func (m Matcher) Score(a, b []Feature) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	a, b = Normalize(a), Normalize(b)

	dists := make([][]float64, len(a))
	neighbors := make([][]int, len(a))
	for i := range a {
		dists[i] = make([]float64, len(b))
		for j := range b {
			dists[i][j] = m.Distance(a[i], b[j])
		}
		order := make([]int, len(b))
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(x, y int) bool { return dists[i][order[x]] < dists[i][order[y]] })
		n := max(m.Neighbors, 1)
		if n > len(order) {
			n = len(order)
		}
		neighbors[i] = order[:n]
	}

	score := func(match []int) float64 {
		total := 0.0
		matched := 0
		for i, j := range match {
			if j < 0 {
				total += m.MissingPenalty
				continue
			}
			total += dists[i][j]
			matched++
		}
		return total + float64(len(b)-matched)*m.MissingPenalty
	}

	best := math.Inf(1)
	var walk func(prefix []int)
	walk = func(prefix []int) {
		if c := conflict(prefix); c >= 0 {
			resolved := append([]int(nil), prefix...)
			resolved[c] = -1
			walk(resolved)
			return
		}
		if len(prefix) == len(a) {
			best = math.Min(best, score(prefix))
			return
		}
		for _, n := range neighbors[len(prefix)] {
			walk(append(prefix[:len(prefix):len(prefix)], n))
		}
	}
	walk(make([]int, 0, len(a)))
	return best
}

// conflict returns the index of an earlier entry holding the same partner
// as the last one, or -1.
func conflict(match []int) int {
	if len(match) == 0 || match[len(match)-1] < 0 {
		return -1
	}
	last := match[len(match)-1]
	for i, j := range match[:len(match)-1] {
		if j == last {
			return i
		}
	}
	return -1
}
