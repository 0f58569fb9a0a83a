package ensemble

import (
	"errors"
	"log"
	"math"
	"os"
)

// BatchLoader yields mini-batches of input samples. Next returns nil once
// exhausted; Reset rewinds to the first batch.
type BatchLoader interface {
	Next() [][]float64
	Reset()
}

// WeightFitHyper configures the Monte-Carlo weight fit for one learner.
type WeightFitHyper struct {
	StepSize  float64 // base step size of the projected-gradient rule
	Tolerance float64 // stop when consecutive weight estimates move less than this
	MaxIters  int     // iteration bound; non-convergence within it is accepted

	l *log.Logger
}

// SetLogger directs per-iteration diagnostic records to an append-only
// text file.
func (h *WeightFitHyper) SetLogger(filename string) {
	outfile, _ := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	h.l = log.New(outfile, "", 0)
}

// Logger returns the configured diagnostic sink, or nil.
func (h *WeightFitHyper) Logger() *log.Logger { return h.l }

// SetOutput swaps the diagnostic sink directly.
func (h *WeightFitHyper) SetOutput(l *log.Logger) { h.l = l }

// UpdateRho fits the mixing weight of the learner under the cursor against
// the frozen mixture of its predecessors. For each mini-batch it draws one
// Monte-Carlo score from the new-learner path and one from the fixed-mixture
// path, forms the gradient estimate as the mean score difference, and applies
// the diminishing-step projected-gradient rule
//
//	rho <- clamp(rho - step/(t*0.5+1) * grad, RhoMin, RhoMax)
//
// stopping on the tolerance or the iteration bound. Exceeding the bound is
// not an error: the last estimate stands. The final weight is persisted in
// the state and returned.
func (b *Boosting) UpdateRho(loader BatchLoader, hyper *WeightFitHyper) (float64, error) {
	c := b.State.Cursor
	if c >= b.Bank.Learners() {
		return 0, errors.New("ensemble: weight fit requested after the last learner")
	}
	if hyper.StepSize <= 0 {
		return 0, errors.New("ensemble: weight fit needs a positive step size")
	}

	rho := b.State.Rho[c]
	loader.Reset()
	for t := 0; t <= hyper.MaxIters; t++ {
		batch := loader.Next()
		if batch == nil {
			loader.Reset()
			batch = loader.Next()
			if batch == nil {
				break
			}
		}

		newRes, err := b.Forward(batch, SampleNew)
		if err != nil {
			return 0, err
		}
		fixRes, err := b.Forward(batch, SampleFixed)
		if err != nil {
			return 0, err
		}

		var newGamma, fixGamma float64
		for i, x := range batch {
			newGamma += b.Score.Score(x, newRes.Passes[i])
			fixGamma += b.Score.Score(x, fixRes.Passes[i])
		}
		n := float64(len(batch))
		newGamma /= n
		fixGamma /= n

		grad := newGamma - fixGamma
		prev := rho
		rho = clampRho(prev - hyper.StepSize/(float64(t)*0.5+1)*grad)
		if hyper.l != nil {
			hyper.l.Printf("%d\t%g\t%g\t%g\t%g", t, grad, rho, newGamma, fixGamma)
		}
		if math.Abs(rho-prev) < hyper.Tolerance {
			break
		}
	}

	b.State.Rho[c] = rho
	return rho, nil
}
