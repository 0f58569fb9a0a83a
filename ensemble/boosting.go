package ensemble

import (
	"errors"
	"math/rand"

	"github.com/StatMixedML/gradient-boosted-flows/flow"
)

// Coder is the encoder/decoder collaborator. Its parameters and their
// updates live outside this package; the ensemble only calls the maps.
type Coder interface {
	// Encode maps an input to the amortizer hidden state and the base
	// distribution mean and variance.
	Encode(x []float64) (h, mu, va []float64)

	// Reparameterize draws one stochastic base-distribution sample.
	Reparameterize(mu, va []float64) []float64

	// Decode maps a latent sample back to data space.
	Decode(z []float64) []float64
}

// Pass bundles one sample's forward-pass outputs.
type Pass struct {
	Recon  []float64
	Mu     []float64
	Va     []float64
	LogDet float64
	Z0     []float64
	ZK     []float64
}

// Result is one batch forward pass plus the learner that produced it.
// In bagging evaluation mode Learner is -1: every learner contributed.
type Result struct {
	Passes  []Pass
	Learner int
}

// Scorer turns one forward pass into the scalar surrogate ("gamma") used as
// the Monte-Carlo scoring quantity during weight fitting.
type Scorer interface {
	Score(x []float64, p Pass) float64
}

// SampleFrom selects the boosting routing policy for one forward call.
type SampleFrom int

const (
	// SampleNew routes every sample through the learner under the cursor.
	SampleNew SampleFrom = iota

	// SampleFixed draws one learner per batch from the frozen mixture of
	// already-trained learners and routes the whole batch through it.
	SampleFixed
)

// Boosting is the sequential ensemble controller. Exactly one learner is
// active at a time; finished learners keep their fitted mixing weight.
type Boosting struct {
	Bank  ParamSource
	Coder Coder
	Score Scorer
	State *State

	rng *rand.Rand
}

// NewBoosting creates a boosting controller with uniform initial weights.
func NewBoosting(bank ParamSource, coder Coder, scorer Scorer, seed int64) *Boosting {
	return &Boosting{
		Bank:  bank,
		Coder: coder,
		Score: scorer,
		State: NewState(bank.Learners()),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Forward runs the batch through one learner selected by the routing policy.
// The learner index is drawn once per batch, not per example. The returned
// log-determinant is the plain sum of that learner's per-step contributions:
// no cross-learner aggregation happens in boosting mode.
func (b *Boosting) Forward(batch [][]float64, from SampleFrom) (*Result, error) {
	j := b.State.Cursor
	switch from {
	case SampleNew:
		if j >= b.Bank.Learners() {
			return nil, errors.New("ensemble: no learner left to train")
		}
	case SampleFixed:
		j = b.State.SampleFixed(b.rng)
	default:
		return nil, errors.New("ensemble: unknown sample_from policy")
	}
	return b.forwardLearner(batch, j)
}

func (b *Boosting) forwardLearner(batch [][]float64, j int) (*Result, error) {
	comp := flow.Composer{Transform: b.Bank.Transform()}
	res := &Result{Learner: j, Passes: make([]Pass, len(batch))}
	for i, x := range batch {
		h, mu, va := b.Coder.Encode(x)
		z0 := b.Coder.Reparameterize(mu, va)
		params, err := b.Bank.Params(j, h)
		if err != nil {
			return nil, err
		}
		zk, ldj, err := comp.Compose(z0, params)
		if err != nil {
			return nil, err
		}
		res.Passes[i] = Pass{
			Recon:  b.Coder.Decode(zk),
			Mu:     mu,
			Va:     va,
			LogDet: ldj,
			Z0:     z0,
			ZK:     zk,
		}
	}
	return res, nil
}

// AdvanceStage freezes the active learner's weight and moves the cursor to
// the next learner. Called by the training driver once a stage (parameter
// training followed by weight fitting) completes.
func (b *Boosting) AdvanceStage() {
	if b.State.Cursor < b.Bank.Learners() {
		b.State.Cursor++
	}
}

// Done reports whether every learner has been trained and weighted.
func (b *Boosting) Done() bool {
	return b.State.Cursor >= b.Bank.Learners()
}
