package vae

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/StatMixedML/gradient-boosted-flows/ensemble"
)

// probEps floors the Bernoulli likelihood away from log(0).
const probEps = 1e-7

// FreeEnergy scores one forward pass: cross-entropy reconstruction plus the
// beta-weighted variational term log q(z0) - log p(zK) - logDet. It serves
// both as the training objective and as the unnormalized log-density
// surrogate ("gamma") during mixing-weight fitting.
type FreeEnergy struct {
	Beta float64
}

// Score implements ensemble.Scorer. Lower is better.
func (f FreeEnergy) Score(x []float64, p ensemble.Pass) float64 {
	var recon float64
	for i := range x {
		r := p.Recon[i]
		recon -= x[i]*math.Log(r+probEps) + (1-x[i])*math.Log(1-r+probEps)
	}
	kl := logNormal(p.Z0, p.Mu, p.Va) - logStdNormal(p.ZK) - p.LogDet
	return recon + f.Beta*kl
}

// BatchScore averages Score over a batch forward pass.
func (f FreeEnergy) BatchScore(batch [][]float64, res *ensemble.Result) float64 {
	var sum float64
	for i, x := range batch {
		sum += f.Score(x, res.Passes[i])
	}
	return sum / float64(len(batch))
}

const log2Pi = 1.8378770664093453

func logNormal(z, mu, va []float64) float64 {
	s := -0.5 * float64(len(z)) * log2Pi
	for i := range z {
		d := z[i] - mu[i]
		s -= 0.5 * (math.Log(va[i]) + d*d/va[i])
	}
	return s
}

func logStdNormal(z []float64) float64 {
	return -0.5*float64(len(z))*log2Pi - 0.5*floats.Dot(z, z)
}
