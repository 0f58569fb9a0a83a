package ensemble

import (
	"github.com/StatMixedML/gradient-boosted-flows/flow"
)

// shiftTransform adds the step's Alpha field to every coordinate and reports
// the step's B field as its log-determinant. Deterministic by construction,
// so aggregation arithmetic can be checked exactly.
type shiftTransform struct{}

func (shiftTransform) Forward(z []float64, p flow.StepParams) ([]float64, float64, error) {
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = v + p.Alpha
	}
	return out, p.B, nil
}

// stubSource is a ParamSource with a fixed per-learner log-determinant and
// coordinate shift, identical across steps.
type stubSource struct {
	learners int
	steps    int
	ldj      []float64
	shift    []float64
}

func (s stubSource) Learners() int             { return s.learners }
func (s stubSource) Steps() int                { return s.steps }
func (s stubSource) Transform() flow.Transform { return shiftTransform{} }

func (s stubSource) Params(j int, h []float64) ([]flow.StepParams, error) {
	params := make([]flow.StepParams, s.steps)
	for k := range params {
		params[k] = flow.StepParams{B: s.ldj[j], Alpha: s.shift[j]}
	}
	return params, nil
}

// identityCoder passes the input through unchanged with unit variance and a
// deterministic reparameterization, keeping controller tests exact.
type identityCoder struct{}

func (identityCoder) Encode(x []float64) (h, mu, va []float64) {
	h = append([]float64(nil), x...)
	mu = append([]float64(nil), x...)
	va = make([]float64, len(x))
	for i := range va {
		va[i] = 1
	}
	return h, mu, va
}

func (identityCoder) Reparameterize(mu, va []float64) []float64 {
	return append([]float64(nil), mu...)
}

func (identityCoder) Decode(z []float64) []float64 {
	return append([]float64(nil), z...)
}

// logDetScorer scores a pass by its accumulated log-determinant.
type logDetScorer struct{}

func (logDetScorer) Score(x []float64, p Pass) float64 { return p.LogDet }

// countingLoader cycles over one fixed batch, counting Next calls.
type countingLoader struct {
	batch [][]float64
	calls int
}

func (l *countingLoader) Next() [][]float64 {
	l.calls++
	return l.batch
}

func (l *countingLoader) Reset() {}
