package toy

import "math/rand/v2"

// Loader yields fixed-size mini-batches over a dataset. It satisfies the
// ensemble.BatchLoader contract: Next returns nil once exhausted, Reset
// rewinds to the first batch.
type Loader struct {
	data  [][]float64
	batch int
	pos   int
}

// NewLoader wraps data into a loader with the given batch size. The final
// short batch is dropped so every batch has the same size.
func NewLoader(data [][]float64, batch int) *Loader {
	if batch < 1 {
		batch = 1
	}
	return &Loader{data: data, batch: batch}
}

// Next returns the next mini-batch, or nil when the epoch is exhausted.
func (l *Loader) Next() [][]float64 {
	if l.pos+l.batch > len(l.data) {
		return nil
	}
	out := l.data[l.pos : l.pos+l.batch]
	l.pos += l.batch
	return out
}

// Reset rewinds the loader to the first batch.
func (l *Loader) Reset() {
	l.pos = 0
}

// Batches returns the number of full batches per epoch.
func (l *Loader) Batches() int {
	return len(l.data) / l.batch
}

// Shuffle permutes the dataset in place. Call between epochs.
func (l *Loader) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(l.data), func(i, j int) {
		l.data[i], l.data[j] = l.data[j], l.data[i]
	})
}
