package vae

import (
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

type layerJSON struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	W    []float64 `json:"w"`
	B    []float64 `json:"b"`
}

func (l *linear) toJSON() layerJSON {
	raw := l.w.RawMatrix()
	w := make([]float64, len(raw.Data))
	copy(w, raw.Data)
	b := make([]float64, len(l.b))
	copy(b, l.b)
	return layerJSON{Rows: raw.Rows, Cols: raw.Cols, W: w, B: b}
}

func (l *linear) fromJSON(j layerJSON) error {
	r, c := l.w.Dims()
	if j.Rows != r || j.Cols != c || len(j.B) != len(l.b) {
		return fmt.Errorf("vae: checkpoint layer shape %dx%d does not match %dx%d", j.Rows, j.Cols, r, c)
	}
	l.w = mat.NewDense(j.Rows, j.Cols, j.W)
	copy(l.b, j.B)
	return nil
}

// WriteZlibWeightsToFile writes model weights to a zlib-compressed json file
func (n *Net) WriteZlibWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = n.WriteZlibWeights(file)
	file.Close()
	return err
}

// WriteZlibWeights writes model weights to a writer
func (n *Net) WriteZlibWeights(w io.Writer) error {
	zw := zlib.NewWriter(w)
	layers := n.linears()
	out := make([]layerJSON, len(layers))
	for i, l := range layers {
		out[i] = l.toJSON()
	}
	if err := json.NewEncoder(zw).Encode(out); err != nil {
		return err
	}
	return zw.Close()
}

// ReadZlibWeightsFromFile reads model weights from a zlib-compressed json file
func (n *Net) ReadZlibWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	err = n.ReadZlibWeights(file)
	file.Close()
	return err
}

// ReadZlibWeights reads model weights from a reader
func (n *Net) ReadZlibWeights(r io.Reader) error {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return err
	}
	var in []layerJSON
	if err := json.NewDecoder(zr).Decode(&in); err != nil {
		return err
	}
	layers := n.linears()
	if len(in) != len(layers) {
		return fmt.Errorf("vae: checkpoint has %d layers, model has %d", len(in), len(layers))
	}
	for i, l := range layers {
		if err := l.fromJSON(in[i]); err != nil {
			return err
		}
	}
	return zr.Close()
}
