// Binary train_bagged trains a bagged ensemble of invertible transforms on a
// toy density and reports the aggregated evaluation free energy.
package main
