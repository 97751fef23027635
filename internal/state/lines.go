package state

// EndpointPair is the [[x1,y1],[x2,y2]] form of one stroke sent along with an
// uploaded image.
type EndpointPair [2][2]float64

// Start returns the first point of the pair.
func (p EndpointPair) Start() (float64, float64) { return p[0][0], p[0][1] }

// End returns the last point of the pair.
func (p EndpointPair) End() (float64, float64) { return p[1][0], p[1][1] }

// EndpointPairs collects the first and last point of every action that has
// at least one point.
func EndpointPairs(actions []Action) []EndpointPair {
	pairs := make([]EndpointPair, 0, len(actions))
	for _, a := range actions {
		first, ok := a.First()
		if !ok {
			continue
		}
		last, _ := a.Last()
		pairs = append(pairs, EndpointPair{{first.X, first.Y}, {last.X, last.Y}})
	}
	return pairs
}
