package ensemble

import (
	"errors"
	"math"
	"math/rand"

	"github.com/klauspost/cpuid/v2"

	"github.com/StatMixedML/gradient-boosted-flows/flow"
	"github.com/StatMixedML/gradient-boosted-flows/parallel"
)

// densityFloor keeps the aggregated Jacobian density away from log(0) when
// every learner's per-step density underflows.
const densityFloor = 1e-12

// Mode selects the bagging forward policy.
type Mode int

const (
	// ModeTrain draws one learner uniformly at random per batch.
	ModeTrain Mode = iota

	// ModeEval evaluates every learner and aggregates their densities.
	ModeEval
)

// Bagging is the uniform-mixture ensemble controller. Weights are fixed at
// 1/L for the ensemble's lifetime; learners train independently one batch at
// a time and are aggregated only at evaluation.
type Bagging struct {
	Bank  ParamSource
	Coder Coder
	State *State

	// Threads bounds the per-learner fan-out in evaluation mode. Defaults
	// to the logical core count.
	Threads int

	rng         *rand.Rand
	lastTrained int
}

// NewBagging creates a bagging controller with fixed uniform weights.
func NewBagging(bank ParamSource, coder Coder, seed int64) *Bagging {
	threads := cpuid.CPU.LogicalCores
	if threads < 1 {
		threads = 1
	}
	return &Bagging{
		Bank:        bank,
		Coder:       coder,
		State:       NewState(bank.Learners()),
		Threads:     threads,
		rng:         rand.New(rand.NewSource(seed)),
		lastTrained: -1,
	}
}

// LastTrained reports the learner index drawn by the most recent training
// forward pass. Diagnostic only; -1 before the first training batch.
func (b *Bagging) LastTrained() int { return b.lastTrained }

// Forward runs the batch under the given mode. Training mode mirrors the
// boosting single-learner path with a uniform draw; evaluation mode threads
// every sample through all L learners and mixes their densities.
func (b *Bagging) Forward(batch [][]float64, mode Mode) (*Result, error) {
	switch mode {
	case ModeTrain:
		j := b.rng.Intn(b.Bank.Learners())
		b.lastTrained = j
		return b.ForwardLearner(batch, j)
	case ModeEval:
		return b.forwardAll(batch)
	}
	return nil, errors.New("ensemble: unknown bagging mode")
}

// ForwardLearner is the training-mode pass with an externally fixed learner.
// The update search uses it to re-test a proposal on the learner the
// controller drew.
func (b *Bagging) ForwardLearner(batch [][]float64, j int) (*Result, error) {
	boost := Boosting{Bank: b.Bank, Coder: b.Coder, State: b.State}
	return boost.forwardLearner(batch, j)
}

// forwardAll is the evaluation-mode pass. Each learner keeps its own latent
// trajectory, since trajectories diverge after the first step. At every flow
// step the per-learner Jacobian densities (not their logs) are mixed under
// the uniform weights before the logarithm is taken; the decoded latent is
// the weighted average of the learners' final states, an approximation
// applied deliberately so the decoder runs once per sample.
func (b *Bagging) forwardAll(batch [][]float64) (*Result, error) {
	learners := b.Bank.Learners()
	steps := b.Bank.Steps()
	comp := flow.Composer{Transform: b.Bank.Transform()}
	res := &Result{Learner: -1, Passes: make([]Pass, len(batch))}

	for i, x := range batch {
		h, mu, va := b.Coder.Encode(x)
		z0 := b.Coder.Reparameterize(mu, va)

		trajs := make([][][]float64, learners)
		ldjs := make([][]float64, learners)
		errs := make([]error, learners)
		parallel.ForEach(learners, b.Threads, func(c int) {
			params, err := b.Bank.Params(c, h)
			if err != nil {
				errs[c] = err
				return
			}
			trajs[c], ldjs[c], errs[c] = comp.ComposeTrajectory(z0, params)
		})
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}

		var logDet float64
		for k := 0; k < steps; k++ {
			var jacobian float64
			for c := 0; c < learners; c++ {
				jacobian += b.State.Rho[c] * math.Exp(ldjs[c][k])
			}
			if jacobian < densityFloor {
				jacobian = densityFloor
			}
			logDet += math.Log(jacobian)
		}

		zOut := make([]float64, len(z0))
		for c := 0; c < learners; c++ {
			final := trajs[c][steps]
			for d := range zOut {
				zOut[d] += b.State.Rho[c] * final[d]
			}
		}

		res.Passes[i] = Pass{
			Recon:  b.Coder.Decode(zOut),
			Mu:     mu,
			Va:     va,
			LogDet: logDet,
			Z0:     z0,
			ZK:     zOut,
		}
	}
	return res, nil
}
