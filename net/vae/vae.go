// Package vae implements the feed-forward encoder/decoder pair whose latents
// the flow ensemble transforms, the Gaussian reparameterization sampler, and
// the free-energy loss used as the weight-fitting score.
package vae

import (
	"math"
	"math/rand"
)

// Net is the encoder/decoder collaborator consumed by the ensemble
// controllers through the Coder interface.
type Net struct {
	enc *encoder
	dec *decoder
	rng *rand.Rand

	xDim, hDim, zDim int
}

// encoder maps an input to the amortizer hidden state plus the base
// distribution mean and variance.
type encoder struct {
	hidden *linear
	mu     *linear
	va     *linear
}

// decoder maps a latent sample back to data space.
type decoder struct {
	hidden *linear
	out    *linear
}

// New creates a VAE with one tanh hidden layer on each side.
func New(xDim, hDim, zDim int, seed int64) *Net {
	rng := rand.New(rand.NewSource(seed))
	return &Net{
		enc: &encoder{
			hidden: newLinear(hDim, xDim, rng),
			mu:     newLinear(zDim, hDim, rng),
			va:     newLinear(zDim, hDim, rng),
		},
		dec: &decoder{
			hidden: newLinear(hDim, zDim, rng),
			out:    newLinear(xDim, hDim, rng),
		},
		rng:  rng,
		xDim: xDim,
		hDim: hDim,
		zDim: zDim,
	}
}

// LatentDim returns the dimension of the latent space.
func (n *Net) LatentDim() int { return n.zDim }

// HiddenDim returns the dimension of the amortizer hidden state.
func (n *Net) HiddenDim() int { return n.hDim }

// Encode maps x to the hidden state and the base-distribution mean and
// variance. Deterministic given the network parameters.
func (n *Net) Encode(x []float64) (h, mu, va []float64) {
	h = n.enc.hidden.apply(x)
	for i, v := range h {
		h[i] = math.Tanh(v)
	}
	mu = n.enc.mu.apply(h)
	va = n.enc.va.apply(h)
	// softplus keeps the variance strictly positive
	for i, v := range va {
		va[i] = softplus(v) + 1e-6
	}
	return h, mu, va
}

// Reparameterize draws one sample z0 = mu + sqrt(va)*eps with eps standard
// normal.
func (n *Net) Reparameterize(mu, va []float64) []float64 {
	z := make([]float64, len(mu))
	for i := range z {
		z[i] = mu[i] + math.Sqrt(va[i])*n.rng.NormFloat64()
	}
	return z
}

// Decode maps a latent sample to a reconstruction with sigmoid outputs.
func (n *Net) Decode(z []float64) []float64 {
	h := n.dec.hidden.apply(z)
	for i, v := range h {
		h[i] = math.Tanh(v)
	}
	out := n.dec.out.apply(h)
	for i, v := range out {
		out[i] = 1 / (1 + math.Exp(-v))
	}
	return out
}

// Perturb adds zero-mean Gaussian noise of the given scale to every weight.
// The training driver uses it for its derivative-free update search.
func (n *Net) Perturb(scale float64) {
	for _, l := range n.linears() {
		l.perturb(scale, n.rng)
	}
}

// Weights is an opaque deep copy of the network parameters.
type Weights struct {
	layers []*linear
}

// Snapshot returns a deep copy of all weights, usable with Restore to undo
// a rejected perturbation.
func (n *Net) Snapshot() Weights {
	ls := n.linears()
	out := Weights{layers: make([]*linear, len(ls))}
	for i, l := range ls {
		out.layers[i] = l.snapshot()
	}
	return out
}

// Restore rewinds the weights to a snapshot taken on the same network.
func (n *Net) Restore(w Weights) {
	for i, l := range n.linears() {
		l.restore(w.layers[i])
	}
}

func (n *Net) linears() []*linear {
	return []*linear{n.enc.hidden, n.enc.mu, n.enc.va, n.dec.hidden, n.dec.out}
}

func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}
