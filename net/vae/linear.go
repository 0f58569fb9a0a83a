package vae

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// linear is one affine layer y = Wx + b.
type linear struct {
	w *mat.Dense
	b []float64
}

func newLinear(out, in int, rng *rand.Rand) *linear {
	data := make([]float64, out*in)
	sd := 1 / math.Sqrt(float64(in))
	for i := range data {
		data[i] = rng.NormFloat64() * sd
	}
	return &linear{w: mat.NewDense(out, in, data), b: make([]float64, out)}
}

func (l *linear) apply(x []float64) []float64 {
	out := make([]float64, len(l.b))
	y := mat.NewVecDense(len(out), out)
	y.MulVec(l.w, mat.NewVecDense(len(x), x))
	for i := range out {
		out[i] += l.b[i]
	}
	return out
}

func (l *linear) perturb(scale float64, rng *rand.Rand) {
	raw := l.w.RawMatrix()
	for i := range raw.Data {
		raw.Data[i] += rng.NormFloat64() * scale
	}
	for i := range l.b {
		l.b[i] += rng.NormFloat64() * scale
	}
}

// snapshot returns a deep copy of the layer weights.
func (l *linear) snapshot() *linear {
	w := mat.DenseCopyOf(l.w)
	b := make([]float64, len(l.b))
	copy(b, l.b)
	return &linear{w: w, b: b}
}

func (l *linear) restore(from *linear) {
	l.w.Copy(from.w)
	copy(l.b, from.b)
}
