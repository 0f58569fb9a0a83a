package trainer

import (
	"fmt"

	"github.com/StatMixedML/gradient-boosted-flows/ensemble"
)

// TrainStepFunc performs one parameter-update attempt on a mini-batch and
// reports the batch loss after the attempt. Parameter updates live outside
// the ensemble core.
type TrainStepFunc func(batch [][]float64) float64

// NewStageFunc returns a closure running one complete boosting stage: the
// given number of update epochs on the learner under the cursor, then the
// Monte-Carlo weight fit, then the stage advance. It reports the fitted
// mixing weight and whether the ensemble is done.
func NewStageFunc(b *ensemble.Boosting, loader ensemble.BatchLoader, epochs int,
	step TrainStepFunc, hyper *ensemble.WeightFitHyper) func() (float64, bool) {

	return func() (float64, bool) {
		if b.Done() {
			return 0, true
		}
		c := b.State.Cursor
		for e := 0; e < epochs; e++ {
			loader.Reset()
			var sum float64
			var n int
			for batch := loader.Next(); batch != nil; batch = loader.Next() {
				sum += step(batch)
				n++
			}
			if n > 0 {
				fmt.Printf("[learner %d] epoch %d free energy %.4f\n", c, e, sum/float64(n))
			}
		}
		rho, err := b.UpdateRho(loader, hyper)
		if err != nil {
			println(err.Error())
		}
		b.AdvanceStage()
		return rho, b.Done()
	}
}

// NewEvaluateFunc returns a closure computing the average score over the
// loader, checkpointing the model whenever it improves on *best.
func NewEvaluateFunc(model Checkpointer, loader ensemble.BatchLoader,
	score func(batch [][]float64) float64, best *float64, dstmodel *string) func() float64 {

	return func() float64 {
		loader.Reset()
		var sum float64
		var n int
		for batch := loader.Next(); batch != nil; batch = loader.Next() {
			sum += score(batch)
			n++
		}
		if n == 0 {
			return 0
		}
		avg := sum / float64(n)
		if dstmodel != nil && *dstmodel != "" && (best == nil || avg < *best) {
			if err := model.WriteZlibWeightsToFile(*dstmodel); err != nil {
				println(err.Error())
			}
			if best != nil {
				*best = avg
			}
		}
		return avg
	}
}
