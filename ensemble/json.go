package ensemble

import (
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

type headJSON struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	W    []float64 `json:"w"`
	B    []float64 `json:"b"`
}

type bankJSON struct {
	Family   string       `json:"family"`
	Steps    int          `json:"steps"`
	Learners [][]headJSON `json:"learners"`
}

// WriteZlibWeightsToFile writes amortizer weights to a zlib-compressed json file
func (b *Bank) WriteZlibWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = b.WriteZlibWeights(file)
	file.Close()
	return err
}

// WriteZlibWeights writes amortizer weights to a writer
func (b *Bank) WriteZlibWeights(w io.Writer) error {
	zw := zlib.NewWriter(w)
	out := bankJSON{Family: b.family, Steps: b.steps}
	for j := range b.amortizers {
		var hs []headJSON
		for _, h := range b.heads(j) {
			raw := h.w.RawMatrix()
			wd := make([]float64, len(raw.Data))
			copy(wd, raw.Data)
			bd := make([]float64, len(h.b))
			copy(bd, h.b)
			hs = append(hs, headJSON{Rows: raw.Rows, Cols: raw.Cols, W: wd, B: bd})
		}
		out.Learners = append(out.Learners, hs)
	}
	if err := json.NewEncoder(zw).Encode(out); err != nil {
		return err
	}
	return zw.Close()
}

// ReadZlibWeightsFromFile reads amortizer weights from a zlib-compressed json file
func (b *Bank) ReadZlibWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	err = b.ReadZlibWeights(file)
	file.Close()
	return err
}

// ReadZlibWeights reads amortizer weights from a reader
func (b *Bank) ReadZlibWeights(r io.Reader) error {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return err
	}
	var in bankJSON
	if err := json.NewDecoder(zr).Decode(&in); err != nil {
		return err
	}
	if in.Family != b.family || in.Steps != b.steps || len(in.Learners) != len(b.amortizers) {
		return fmt.Errorf("ensemble: checkpoint shape (%s, %d steps, %d learners) does not match bank (%s, %d, %d)",
			in.Family, in.Steps, len(in.Learners), b.family, b.steps, len(b.amortizers))
	}
	for j := range b.amortizers {
		hs := b.heads(j)
		if len(in.Learners[j]) != len(hs) {
			return fmt.Errorf("ensemble: checkpoint learner %d has %d heads, bank has %d", j, len(in.Learners[j]), len(hs))
		}
		for i, h := range hs {
			jh := in.Learners[j][i]
			rows, cols := h.w.Dims()
			if jh.Rows != rows || jh.Cols != cols || len(jh.B) != len(h.b) {
				return fmt.Errorf("ensemble: checkpoint head shape %dx%d does not match %dx%d", jh.Rows, jh.Cols, rows, cols)
			}
			h.w = mat.NewDense(jh.Rows, jh.Cols, jh.W)
			copy(h.b, jh.B)
		}
	}
	return zr.Close()
}
