// Package radial implements the radial transform family
package radial

import (
	"errors"
	"math"

	"github.com/viterin/vek"

	"github.com/StatMixedML/gradient-boosted-flows/flow"
)

// Width clamp bounds. A width below widthMin would zero out the Jacobian,
// a width above widthMax makes the step numerically unstable.
const (
	widthMin = 0.01
	widthMax = 7.0
)

const detEps = 1e-8

// Radial maps z to z + beta*h(alpha, r)*(z - ref) with h = 1/(alpha + r)
// and r = ||z - ref||. The raw width passes through softplus and a hard
// clamp to [widthMin, widthMax]; the raw offset is squashed so that
// beta >= -alpha, which keeps the map invertible.
type Radial struct{}

// New creates the radial family transform.
func New() Radial { return Radial{} }

func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

// width squashes the raw amortizer output into the safe clamp range.
func width(raw float64) float64 {
	a := softplus(raw)
	if a < widthMin {
		return widthMin
	}
	if a > widthMax {
		return widthMax
	}
	return a
}

// offset constrains beta to [-alpha, inf) given the raw amortizer output.
func offset(raw, alpha float64) float64 {
	return -alpha + softplus(raw)
}

// Forward applies one radial step. The log-determinant is
// (d-1)·log|1 + beta·h| + log|1 + beta·h - beta·r/(alpha+r)²|.
func (Radial) Forward(z []float64, p flow.StepParams) ([]float64, float64, error) {
	if len(p.Ref) != len(z) {
		return nil, 0, errors.New("radial: reference point length does not match latent dimension")
	}
	alpha := width(p.Alpha)
	beta := offset(p.Beta, alpha)

	diff := make([]float64, len(z))
	copy(diff, z)
	vek.Sub_Inplace(diff, p.Ref)
	r := math.Sqrt(vek.Dot(diff, diff))
	h := 1 / (alpha + r)

	out := make([]float64, len(z))
	copy(out, diff)
	vek.MulNumber_Inplace(out, beta*h)
	vek.Add_Inplace(out, z)

	d := float64(len(z))
	bh := beta * h
	logDet := (d-1)*math.Log(math.Abs(1+bh)+detEps) +
		math.Log(math.Abs(1+bh-beta*r*h*h)+detEps)
	return out, logDet, nil
}

// Inverse undoes Forward by solving the scalar radius equation
// s = r + beta·r/(alpha+r), a quadratic in r, then rescaling along the
// preserved direction from the reference point.
func (t Radial) Inverse(y []float64, p flow.StepParams) ([]float64, float64, error) {
	if len(p.Ref) != len(y) {
		return nil, 0, errors.New("radial: reference point length does not match latent dimension")
	}
	alpha := width(p.Alpha)
	beta := offset(p.Beta, alpha)

	diff := make([]float64, len(y))
	copy(diff, y)
	vek.Sub_Inplace(diff, p.Ref)
	s := math.Sqrt(vek.Dot(diff, diff))

	z := make([]float64, len(y))
	copy(z, p.Ref)
	if s > 0 {
		// r² + r(alpha + beta - s) - alpha·s = 0, positive root
		b := alpha + beta - s
		r := (-b + math.Sqrt(b*b+4*alpha*s)) / 2
		if r < 0 {
			r = 0
		}
		factor := 1 + beta/(alpha+r)
		for i := range z {
			z[i] = p.Ref[i] + diff[i]/factor
		}
	}

	_, fwd, err := t.Forward(z, p)
	if err != nil {
		return nil, 0, err
	}
	return z, -fwd, nil
}
