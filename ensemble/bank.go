// Package ensemble implements the boosting and bagging controllers over a
// bank of weak invertible-transform learners, including mixing-weight
// estimation and the log-domain density aggregation used at evaluation.
package ensemble

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/StatMixedML/gradient-boosted-flows/flow"
	"github.com/StatMixedML/gradient-boosted-flows/flow/planar"
	"github.com/StatMixedML/gradient-boosted-flows/flow/radial"
)

// Supported transform family names.
const (
	FamilyPlanar = "planar"
	FamilyRadial = "radial"
)

// ParamSource yields per-learner transform parameters for all flow steps.
// Learners are addressed by integer index, stable for the source's lifetime.
type ParamSource interface {
	Learners() int
	Steps() int
	Params(j int, h []float64) ([]flow.StepParams, error)
	Transform() flow.Transform
}

// Bank owns L independently parametrized amortizers plus the shared transform
// family. No parameters are shared across learners.
type Bank struct {
	family     string
	transform  flow.Transform
	steps      int
	zDim       int
	amortizers []amortizer
	rng        *rand.Rand
}

// head is a single linear map from the encoder hidden state to one
// parameter block.
type head struct {
	w *mat.Dense
	b []float64
}

func newHead(out, in int, rng *rand.Rand) head {
	data := make([]float64, out*in)
	sd := 1 / math.Sqrt(float64(in))
	for i := range data {
		data[i] = rng.NormFloat64() * sd
	}
	return head{w: mat.NewDense(out, in, data), b: make([]float64, out)}
}

func (h head) apply(x []float64) []float64 {
	out := make([]float64, len(h.b))
	y := mat.NewVecDense(len(out), out)
	y.MulVec(h.w, mat.NewVecDense(len(x), x))
	for i := range out {
		out[i] += h.b[i]
	}
	return out
}

// stepHeads holds one learner's parameter heads for a single flow step.
// Only the active family's heads are populated.
type stepHeads struct {
	u, w, b          head
	alpha, beta, ref head
}

// amortizer is one learner's parameter producer for all K flow steps.
type amortizer struct {
	steps []stepHeads
}

// NewBank constructs a bank of L learners for the named transform family,
// each amortizing K flow steps from an hDim-sized encoder hidden state into
// a zDim-sized latent space. An unsupported family name is a fatal
// configuration error.
func NewBank(family string, learners, steps, zDim, hDim int, seed int64) (*Bank, error) {
	if learners < 1 {
		return nil, fmt.Errorf("ensemble: need at least one learner, got %d", learners)
	}
	if steps < 1 {
		return nil, fmt.Errorf("ensemble: need at least one flow step, got %d", steps)
	}
	var transform flow.Transform
	switch family {
	case FamilyPlanar:
		transform = planar.New()
	case FamilyRadial:
		transform = radial.New()
	default:
		return nil, fmt.Errorf("ensemble: unsupported transform family %q", family)
	}

	rng := rand.New(rand.NewSource(seed))
	bank := &Bank{
		family:     family,
		transform:  transform,
		steps:      steps,
		zDim:       zDim,
		amortizers: make([]amortizer, learners),
		rng:        rng,
	}
	for j := range bank.amortizers {
		heads := make([]stepHeads, steps)
		for k := range heads {
			switch family {
			case FamilyPlanar:
				heads[k].u = newHead(zDim, hDim, rng)
				heads[k].w = newHead(zDim, hDim, rng)
				heads[k].b = newHead(1, hDim, rng)
			case FamilyRadial:
				heads[k].alpha = newHead(1, hDim, rng)
				heads[k].beta = newHead(1, hDim, rng)
				heads[k].ref = newHead(zDim, hDim, rng)
			}
		}
		bank.amortizers[j] = amortizer{steps: heads}
	}
	return bank, nil
}

// Learners returns the number of weak learners L.
func (b *Bank) Learners() int { return len(b.amortizers) }

// Steps returns the number of flow steps K per learner.
func (b *Bank) Steps() int { return b.steps }

// Family returns the transform family name the bank was constructed with.
func (b *Bank) Family() string { return b.family }

// Transform returns the shared family transform.
func (b *Bank) Transform() flow.Transform { return b.transform }

// heads lists the populated parameter heads of one learner in a stable order.
func (b *Bank) heads(j int) []*head {
	var out []*head
	for k := range b.amortizers[j].steps {
		s := &b.amortizers[j].steps[k]
		switch b.family {
		case FamilyPlanar:
			out = append(out, &s.u, &s.w, &s.b)
		case FamilyRadial:
			out = append(out, &s.alpha, &s.beta, &s.ref)
		}
	}
	return out
}

// PerturbLearner adds zero-mean Gaussian noise of the given scale to learner
// j's amortizer weights only. In boosting mode the active learner is the only
// one whose parameters may move.
func (b *Bank) PerturbLearner(j int, scale float64) {
	if j < 0 || j >= len(b.amortizers) {
		return
	}
	for _, h := range b.heads(j) {
		raw := h.w.RawMatrix()
		for i := range raw.Data {
			raw.Data[i] += b.rng.NormFloat64() * scale
		}
		for i := range h.b {
			h.b[i] += b.rng.NormFloat64() * scale
		}
	}
}

// BankWeights is an opaque deep copy of one learner's amortizer parameters.
type BankWeights struct {
	learner int
	heads   []head
}

// SnapshotLearner deep-copies learner j's amortizer weights.
func (b *Bank) SnapshotLearner(j int) BankWeights {
	hs := b.heads(j)
	out := BankWeights{learner: j, heads: make([]head, len(hs))}
	for i, h := range hs {
		bias := make([]float64, len(h.b))
		copy(bias, h.b)
		out.heads[i] = head{w: mat.DenseCopyOf(h.w), b: bias}
	}
	return out
}

// RestoreLearner rewinds learner j's amortizer weights to a snapshot taken
// on the same bank.
func (b *Bank) RestoreLearner(w BankWeights) {
	for i, h := range b.heads(w.learner) {
		h.w.Copy(w.heads[i].w)
		copy(h.b, w.heads[i].b)
	}
}

// Params produces learner j's transform parameters for all K steps from the
// encoder hidden state h. The result is owned by the caller and scoped to
// one forward pass.
func (b *Bank) Params(j int, h []float64) ([]flow.StepParams, error) {
	if j < 0 || j >= len(b.amortizers) {
		return nil, fmt.Errorf("ensemble: learner index %d out of range [0,%d)", j, len(b.amortizers))
	}
	params := make([]flow.StepParams, b.steps)
	for k, heads := range b.amortizers[j].steps {
		switch b.family {
		case FamilyPlanar:
			params[k] = flow.StepParams{
				U: heads.u.apply(h),
				W: heads.w.apply(h),
				B: heads.b.apply(h)[0],
			}
		case FamilyRadial:
			params[k] = flow.StepParams{
				Alpha: heads.alpha.apply(h)[0],
				Beta:  heads.beta.apply(h)[0],
				Ref:   heads.ref.apply(h),
			}
		}
	}
	return params, nil
}
