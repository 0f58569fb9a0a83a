package trainer

import (
	"math"

	"github.com/StatMixedML/gradient-boosted-flows/ensemble"
	"github.com/StatMixedML/gradient-boosted-flows/net/vae"
)

// NewPerturbStepFunc returns a TrainStepFunc doing one propose-and-test
// update for the boosting controller: perturb the coder and the active
// learner's amortizer, keep the move when the batch free energy improves,
// undo it otherwise.
func NewPerturbStepFunc(b *ensemble.Boosting, net *vae.Net, bank *ensemble.Bank,
	score vae.FreeEnergy, scale float64) TrainStepFunc {

	return func(batch [][]float64) float64 {
		res, err := b.Forward(batch, ensemble.SampleNew)
		if err != nil {
			println(err.Error())
			return math.Inf(1)
		}
		before := score.BatchScore(batch, res)

		netSnap := net.Snapshot()
		bankSnap := bank.SnapshotLearner(b.State.Cursor)
		net.Perturb(scale)
		bank.PerturbLearner(b.State.Cursor, scale)

		after := math.Inf(1)
		if res, err = b.Forward(batch, ensemble.SampleNew); err == nil {
			after = score.BatchScore(batch, res)
		}
		if after >= before {
			net.Restore(netSnap)
			bank.RestoreLearner(bankSnap)
			return before
		}
		return after
	}
}

// NewBaggedStepFunc is the bagging counterpart: the controller draws the
// learner uniformly, then the proposal is tested on that same learner.
func NewBaggedStepFunc(b *ensemble.Bagging, net *vae.Net, bank *ensemble.Bank,
	score vae.FreeEnergy, scale float64) TrainStepFunc {

	return func(batch [][]float64) float64 {
		res, err := b.Forward(batch, ensemble.ModeTrain)
		if err != nil {
			println(err.Error())
			return math.Inf(1)
		}
		j := b.LastTrained()
		before := score.BatchScore(batch, res)

		netSnap := net.Snapshot()
		bankSnap := bank.SnapshotLearner(j)
		net.Perturb(scale)
		bank.PerturbLearner(j, scale)

		after := math.Inf(1)
		if res, err = b.ForwardLearner(batch, j); err == nil {
			after = score.BatchScore(batch, res)
		}
		if after >= before {
			net.Restore(netSnap)
			bank.RestoreLearner(bankSnap)
			return before
		}
		return after
	}
}
