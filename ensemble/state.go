package ensemble

import "math/rand"

// Mixing-weight clamp bounds for trained learners in boosting mode.
const (
	RhoMin = 0.05
	RhoMax = 1.0
)

// State holds the mixing-weight vector and the active-learner cursor. The
// owning controller is the only mutator: the weight-fitting loop in boosting
// mode, nobody after construction in bagging mode.
type State struct {
	// Rho is the per-learner mixing weight. Entries past the cursor hold
	// the uniform placeholder default until their learner is trained.
	Rho []float64

	// Cursor counts learners fully trained so far and doubles as the index
	// of the learner currently training. Monotonically non-decreasing,
	// advancing exactly once per completed stage.
	Cursor int
}

// NewState initializes rho uniformly at 1/L with the cursor at zero.
func NewState(learners int) *State {
	rho := make([]float64, learners)
	for j := range rho {
		rho[j] = 1 / float64(learners)
	}
	return &State{Rho: rho}
}

// Renormalize divides the weights by their own sum so they can be used as a
// sampling distribution over learners. Stored weights need not sum to one.
// A zero sum collapses to a point mass on learner 0.
func Renormalize(w []float64) []float64 {
	out := make([]float64, len(w))
	var sum float64
	for _, v := range w {
		sum += v
	}
	if sum == 0 {
		if len(out) > 0 {
			out[0] = 1
		}
		return out
	}
	for i, v := range w {
		out[i] = v / sum
	}
	return out
}

// SampleFixed draws one learner index from the renormalized weights of the
// trained prefix. Before any learner has finished training there is no
// mixture to draw from, so it falls back to learner 0.
func (s *State) SampleFixed(rng *rand.Rand) int {
	if s.Cursor == 0 {
		return 0
	}
	probs := Renormalize(s.Rho[:s.Cursor])
	x := rng.Float64()
	var acc float64
	for j, p := range probs {
		acc += p
		if x < acc {
			return j
		}
	}
	return s.Cursor - 1
}

func clampRho(v float64) float64 {
	if v < RhoMin {
		return RhoMin
	}
	if v > RhoMax {
		return RhoMax
	}
	return v
}
