// Package toy provides seeded samplers for small two-dimensional densities
// used in the flow experiments, shifted into the unit square so Bernoulli
// decoders can model them.
package toy

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Dim is the dimension of every toy sample.
const Dim = 2

// Moons samples n points from the two interleaving half circles, with
// Gaussian noise of the given scale.
func Moons(n int, noise float64, seed uint64) [][]float64 {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	gauss := distuv.Normal{Mu: 0, Sigma: noise, Src: src}

	out := make([][]float64, n)
	for i := range out {
		t := rng.Float64() * math.Pi
		var x, y float64
		if i%2 == 0 {
			x, y = math.Cos(t), math.Sin(t)
		} else {
			x, y = 1-math.Cos(t), 0.5-math.Sin(t)
		}
		out[i] = []float64{
			(x + gauss.Rand() + 1.5) / 4,
			(y + gauss.Rand() + 1.5) / 4,
		}
	}
	return out
}

// Ring samples n points from a ring of equally spaced Gaussian modes.
func Ring(n, modes int, radius, sigma float64, seed uint64) [][]float64 {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	gauss := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}

	span := 2 * (radius + 3*sigma)
	out := make([][]float64, n)
	for i := range out {
		angle := 2 * math.Pi * float64(rng.IntN(modes)) / float64(modes)
		out[i] = []float64{
			(radius*math.Cos(angle) + gauss.Rand() + span/2) / span,
			(radius*math.Sin(angle) + gauss.Rand() + span/2) / span,
		}
	}
	return out
}
