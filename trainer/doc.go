// Package trainer provides high-level orchestration of ensemble training:
// per-learner boosting stages, derivative-free parameter updates, weight
// fitting, evaluation and checkpoint resume.
package trainer
