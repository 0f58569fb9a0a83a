package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoostingInitialWeightsUniform(t *testing.T) {
	for _, learners := range []int{1, 3, 7} {
		src := stubSource{learners: learners, steps: 1, ldj: make([]float64, learners), shift: make([]float64, learners)}
		b := NewBoosting(src, identityCoder{}, logDetScorer{}, 1)
		for _, v := range b.State.Rho {
			assert.InDelta(t, 1/float64(learners), v, 1e-15)
		}
	}
}

func TestBoostingSampleNewRoutesThroughCursor(t *testing.T) {
	src := stubSource{learners: 3, steps: 2, ldj: []float64{1, 2, 3}, shift: []float64{0, 0, 0}}
	b := NewBoosting(src, identityCoder{}, logDetScorer{}, 1)
	b.State.Cursor = 1

	res, err := b.Forward([][]float64{{0.5}}, SampleNew)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Learner)
	// single-learner path: logdet is the plain per-step sum
	assert.InDelta(t, 4.0, res.Passes[0].LogDet, 1e-12)
}

func TestBoostingSampleFixedSingleTrainedLearner(t *testing.T) {
	src := stubSource{learners: 3, steps: 1, ldj: []float64{1, 2, 3}, shift: []float64{0, 0, 0}}
	b := NewBoosting(src, identityCoder{}, logDetScorer{}, 1)
	b.State.Cursor = 1
	for i := 0; i < 50; i++ {
		res, err := b.Forward([][]float64{{0.5}}, SampleFixed)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Learner)
	}
}

func TestBoostingForwardPassShape(t *testing.T) {
	src := stubSource{learners: 2, steps: 1, ldj: []float64{0, 0}, shift: []float64{0.5, 0.5}}
	b := NewBoosting(src, identityCoder{}, logDetScorer{}, 1)

	batch := [][]float64{{0.1, 0.9}, {0.4, 0.6}, {0.8, 0.2}}
	res, err := b.Forward(batch, SampleNew)
	require.NoError(t, err)
	require.Len(t, res.Passes, 3)
	for i, p := range res.Passes {
		assert.Equal(t, batch[i], p.Mu)
		assert.Equal(t, batch[i], p.Z0)
		assert.Len(t, p.ZK, 2)
		assert.Len(t, p.Recon, 2)
	}
}

func TestBoostingStageLifecycle(t *testing.T) {
	src := stubSource{learners: 2, steps: 1, ldj: []float64{0, 0}, shift: []float64{0, 0}}
	b := NewBoosting(src, identityCoder{}, logDetScorer{}, 1)

	assert.False(t, b.Done())
	b.AdvanceStage()
	assert.False(t, b.Done())
	b.AdvanceStage()
	assert.True(t, b.Done())
	// cursor never moves past L
	b.AdvanceStage()
	assert.Equal(t, 2, b.State.Cursor)

	_, err := b.Forward([][]float64{{0.5}}, SampleNew)
	assert.Error(t, err)
}
