package flow

import "fmt"

// Composer applies an ordered sequence of transform steps to a latent sample,
// accumulating the total log-determinant. It only orchestrates: transform
// internals stay inside the family packages, so any family plugs in unchanged.
// A Composer is stateless across calls.
type Composer struct {
	Transform Transform
}

// Compose threads z0 through one transform step per element of params and
// returns the final latent state plus the summed log-determinant.
func (c Composer) Compose(z0 []float64, params []StepParams) ([]float64, float64, error) {
	z := z0
	var logDet float64
	for k := range params {
		next, ldj, err := c.Transform.Forward(z, params[k])
		if err != nil {
			return nil, 0, fmt.Errorf("flow: step %d: %w", k, err)
		}
		z = next
		logDet += ldj
	}
	return z, logDet, nil
}

// ComposeTrajectory is Compose keeping every intermediate latent state and
// the per-step log-determinant contributions. The trajectory has length
// len(params)+1 and starts with z0 itself.
func (c Composer) ComposeTrajectory(z0 []float64, params []StepParams) ([][]float64, []float64, error) {
	traj := make([][]float64, 1, len(params)+1)
	traj[0] = z0
	ldjs := make([]float64, len(params))
	z := z0
	for k := range params {
		next, ldj, err := c.Transform.Forward(z, params[k])
		if err != nil {
			return nil, nil, fmt.Errorf("flow: step %d: %w", k, err)
		}
		z = next
		traj = append(traj, z)
		ldjs[k] = ldj
	}
	return traj, ldjs, nil
}
