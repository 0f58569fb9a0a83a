package trainer

import "strconv"

// Checkpointer persists model weights to and from compressed json files.
// Both the VAE and the amortizer bank implement it.
type Checkpointer interface {
	WriteZlibWeightsToFile(name string) error
	ReadZlibWeightsFromFile(name string) error
}

// Group checkpoints several weight holders under numbered suffixes of one
// base name.
type Group []Checkpointer

// WriteZlibWeightsToFile writes every member under name.<index>.
func (g Group) WriteZlibWeightsToFile(name string) error {
	for i, c := range g {
		if err := c.WriteZlibWeightsToFile(name + "." + strconv.Itoa(i)); err != nil {
			return err
		}
	}
	return nil
}

// ReadZlibWeightsFromFile reads every member from name.<index>.
func (g Group) ReadZlibWeightsFromFile(name string) error {
	for i, c := range g {
		if err := c.ReadZlibWeightsFromFile(name + "." + strconv.Itoa(i)); err != nil {
			return err
		}
	}
	return nil
}

// Resume reloads a checkpoint when the resume flag is set.
func Resume(model Checkpointer, resume *bool, dstmodel *string) {
	if resume != nil && *resume && dstmodel != nil {
		err := model.ReadZlibWeightsFromFile(*dstmodel)
		if err != nil {
			println(err.Error())
		}
	}
}
