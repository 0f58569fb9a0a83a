package ensemble

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateUniform(t *testing.T) {
	for _, learners := range []int{1, 2, 5, 16} {
		s := NewState(learners)
		require.Len(t, s.Rho, learners)
		for _, v := range s.Rho {
			assert.InDelta(t, 1/float64(learners), v, 1e-15)
		}
		assert.Equal(t, 0, s.Cursor)
	}
}

func TestRenormalize(t *testing.T) {
	assert.Equal(t, []float64{0.2, 0.8}, Renormalize([]float64{0.2, 0.8}))

	got := Renormalize([]float64{0.3, 0.9})
	assert.InDelta(t, 0.25, got[0], 1e-12)
	assert.InDelta(t, 0.75, got[1], 1e-12)

	// zero denominator collapses to a point mass on learner 0
	assert.Equal(t, []float64{1, 0, 0}, Renormalize([]float64{0, 0, 0}))
}

func TestSampleFixedFallsBackBeforeFirstStage(t *testing.T) {
	s := NewState(4)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		assert.Equal(t, 0, s.SampleFixed(rng))
	}
}

func TestSampleFixedSingleTrainedLearner(t *testing.T) {
	s := NewState(3)
	s.Cursor = 1
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, s.SampleFixed(rng))
	}
}

func TestSampleFixedStaysInTrainedPrefix(t *testing.T) {
	s := NewState(5)
	s.Cursor = 2
	s.Rho[0] = 0.3
	s.Rho[1] = 0.9
	rng := rand.New(rand.NewSource(7))
	counts := make([]int, 5)
	for i := 0; i < 10000; i++ {
		counts[s.SampleFixed(rng)]++
	}
	assert.Zero(t, counts[2]+counts[3]+counts[4])
	// renormalized [0.25, 0.75]
	assert.InDelta(t, 0.25, float64(counts[0])/10000, 0.03)
	assert.InDelta(t, 0.75, float64(counts[1])/10000, 0.03)
}

func FuzzRenormalize(f *testing.F) {
	f.Add(0.3, 0.9, 0.0)
	f.Add(1.0, 0.0, 2.5)
	f.Fuzz(func(t *testing.T, a, b, c float64) {
		w := []float64{math.Abs(a), math.Abs(b), math.Abs(c)}
		for _, v := range w {
			if math.IsInf(v, 0) || math.IsNaN(v) || v > 1e100 {
				return
			}
		}
		got := Renormalize(w)
		var sum float64
		for _, v := range got {
			if v < 0 {
				t.Errorf("negative probability %v", v)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("probabilities sum to %v", sum)
		}
	})
}
