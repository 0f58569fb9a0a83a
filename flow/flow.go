// Package flow defines the invertible transform interface shared by all
// weak-learner families, and the composer which threads a latent sample
// through an ordered sequence of transform steps.
package flow

// StepParams holds one learner's parameters for a single transform step.
// The planar family reads U, W and B; the radial family reads Alpha, Beta
// and Ref. Parameter sets are produced fresh per batch by the amortizers
// and are never persisted across forward passes.
type StepParams struct {
	U     []float64
	W     []float64
	B     float64
	Alpha float64
	Beta  float64
	Ref   []float64
}

// Transform is one invertible map over a latent vector with an analytically
// computable log-absolute-determinant of its Jacobian.
type Transform interface {

	// Forward applies the transform to z under p, returning the new latent
	// state and the step's log-determinant contribution.
	Forward(z []float64, p StepParams) (out []float64, logDet float64, err error)
}

// Inverter is a transform family which also defines an analytic inverse.
type Inverter interface {
	Transform

	// Inverse undoes Forward. The returned log-determinant is the inverse
	// map's own contribution, so forward plus inverse sums to zero.
	Inverse(z []float64, p StepParams) (out []float64, logDet float64, err error)
}
