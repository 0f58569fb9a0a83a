package ensemble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaggingUniformWeightsFixed(t *testing.T) {
	src := stubSource{learners: 4, steps: 1, ldj: make([]float64, 4), shift: make([]float64, 4)}
	b := NewBagging(src, identityCoder{}, 1)
	for _, v := range b.State.Rho {
		assert.InDelta(t, 0.25, v, 1e-15)
	}
}

func TestBaggingEvalAggregatesDensitiesNotLogDets(t *testing.T) {
	// three learners, one step, ldj = [0, log 2, log 0.5]
	src := stubSource{
		learners: 3,
		steps:    1,
		ldj:      []float64{0, math.Log(2), math.Log(0.5)},
		shift:    []float64{0, 0, 0},
	}
	b := NewBagging(src, identityCoder{}, 1)
	res, err := b.Forward([][]float64{{0.2, 0.8}}, ModeEval)
	require.NoError(t, err)
	require.Len(t, res.Passes, 1)

	// log((1 + 2 + 0.5)/3) = log(1.1667), NOT (0 + log2 + log0.5)/3
	want := math.Log((1 + 2 + 0.5) / 3)
	assert.InDelta(t, 0.1542, want, 1e-4)
	assert.InDelta(t, want, res.Passes[0].LogDet, 1e-12)

	wrong := (0 + math.Log(2) + math.Log(0.5)) / 3
	assert.Greater(t, math.Abs(res.Passes[0].LogDet-wrong), 0.1)
}

func TestBaggingEvalMultiStepAggregation(t *testing.T) {
	src := stubSource{
		learners: 2,
		steps:    3,
		ldj:      []float64{0.1, -0.4},
		shift:    []float64{0, 0},
	}
	b := NewBagging(src, identityCoder{}, 1)
	res, err := b.Forward([][]float64{{0.5}}, ModeEval)
	require.NoError(t, err)

	perStep := math.Log(0.5*math.Exp(0.1) + 0.5*math.Exp(-0.4))
	assert.InDelta(t, 3*perStep, res.Passes[0].LogDet, 1e-12)
}

func TestBaggingEvalAveragesFinalLatents(t *testing.T) {
	// learners diverge by their shift; two steps double the shift
	src := stubSource{
		learners: 2,
		steps:    2,
		ldj:      []float64{0, 0},
		shift:    []float64{1, 3},
	}
	b := NewBagging(src, identityCoder{}, 1)
	res, err := b.Forward([][]float64{{0, 0}}, ModeEval)
	require.NoError(t, err)

	// z_out = 0.5*(z0 + 2) + 0.5*(z0 + 6) = z0 + 4
	for _, v := range res.Passes[0].ZK {
		assert.InDelta(t, 4.0, v, 1e-12)
	}
	assert.Equal(t, -1, res.Learner)
}

func TestBaggingEvalFloorsUnderflowedDensities(t *testing.T) {
	src := stubSource{
		learners: 2,
		steps:    1,
		ldj:      []float64{-5000, -5000}, // exp underflows to zero
		shift:    []float64{0, 0},
	}
	b := NewBagging(src, identityCoder{}, 1)
	res, err := b.Forward([][]float64{{0.5}}, ModeEval)
	require.NoError(t, err)
	assert.False(t, math.IsInf(res.Passes[0].LogDet, -1))
	assert.False(t, math.IsNaN(res.Passes[0].LogDet))
}

func TestBaggingTrainDrawsOneLearnerPerBatch(t *testing.T) {
	src := stubSource{
		learners: 3,
		steps:    2,
		ldj:      []float64{1, 2, 3},
		shift:    []float64{0, 0, 0},
	}
	b := NewBagging(src, identityCoder{}, 42)
	assert.Equal(t, -1, b.LastTrained())

	seen := make(map[int]int)
	for i := 0; i < 300; i++ {
		res, err := b.Forward([][]float64{{0.1}, {0.9}}, ModeTrain)
		require.NoError(t, err)
		j := b.LastTrained()
		assert.Equal(t, j, res.Learner)
		seen[j]++
		// whole batch went through the drawn learner: plain summed logdet
		for _, p := range res.Passes {
			assert.InDelta(t, 2*src.ldj[j], p.LogDet, 1e-12)
		}
	}
	assert.Len(t, seen, 3)
}

func TestBaggingEvalSequentialMatchesParallel(t *testing.T) {
	src := stubSource{
		learners: 8,
		steps:    2,
		ldj:      []float64{0.1, 0.2, 0.3, 0.4, -0.1, -0.2, -0.3, -0.4},
		shift:    []float64{1, 2, 3, 4, 5, 6, 7, 8},
	}
	batch := [][]float64{{0.3, 0.7}}

	seq := NewBagging(src, identityCoder{}, 1)
	seq.Threads = 1
	par := NewBagging(src, identityCoder{}, 1)
	par.Threads = 8

	a, err := seq.Forward(batch, ModeEval)
	require.NoError(t, err)
	b, err := par.Forward(batch, ModeEval)
	require.NoError(t, err)

	assert.InDelta(t, a.Passes[0].LogDet, b.Passes[0].LogDet, 1e-12)
	assert.Equal(t, a.Passes[0].ZK, b.Passes[0].ZK)
}
