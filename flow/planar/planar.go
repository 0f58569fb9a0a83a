// Package planar implements the planar transform family
package planar

import (
	"errors"
	"math"

	"github.com/viterin/vek"

	"github.com/StatMixedML/gradient-boosted-flows/flow"
)

// detEps keeps the log-determinant finite when the Jacobian approaches zero.
const detEps = 1e-8

// Planar maps z to z + u*tanh(w·z + b). The direction vector u is corrected
// so that w·u >= -1 holds, which keeps the map invertible for any
// amortized parameter draw.
type Planar struct{}

// New creates the planar family transform.
func New() Planar { return Planar{} }

func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

// Forward applies one planar step. The log-determinant is
// log|1 + psi·u| with psi = (1 - tanh²(w·z+b)) w.
func (Planar) Forward(z []float64, p flow.StepParams) ([]float64, float64, error) {
	if len(p.U) != len(z) || len(p.W) != len(z) {
		return nil, 0, errors.New("planar: parameter length does not match latent dimension")
	}
	ww := vek.Dot(p.W, p.W)
	if ww == 0 {
		return nil, 0, errors.New("planar: zero normal vector")
	}

	// uhat = u + (m(w·u) - w·u) w/||w||², m(x) = -1 + softplus(x)
	wu := vek.Dot(p.W, p.U)
	scale := (-1 + softplus(wu) - wu) / ww
	uhat := make([]float64, len(z))
	copy(uhat, p.W)
	vek.MulNumber_Inplace(uhat, scale)
	vek.Add_Inplace(uhat, p.U)

	tanh := math.Tanh(vek.Dot(p.W, z) + p.B)
	out := make([]float64, len(z))
	copy(out, uhat)
	vek.MulNumber_Inplace(out, tanh)
	vek.Add_Inplace(out, z)

	// psi·uhat collapses to (1 - tanh²)(w·uhat)
	det := 1 + (1-tanh*tanh)*vek.Dot(p.W, uhat)
	return out, math.Log(math.Abs(det) + detEps), nil
}
