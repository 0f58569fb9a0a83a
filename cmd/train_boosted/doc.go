// Binary train_boosted fits a boosted ensemble of invertible transforms on a
// toy density, one learner stage at a time.
package main
