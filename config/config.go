// Package config loads experiment configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Experiment holds one training run's knobs. Zero values fall back to
// Default at load time.
type Experiment struct {
	Dataset string  `yaml:"dataset"` // moons or ring
	Samples int     `yaml:"samples"`
	Noise   float64 `yaml:"noise"`
	Seed    int64   `yaml:"seed"`

	Family   string `yaml:"family"` // planar or radial
	Learners int    `yaml:"learners"`
	Steps    int    `yaml:"steps"`
	Hidden   int    `yaml:"hidden"`
	Latent   int    `yaml:"latent"`

	Batch  int     `yaml:"batch"`
	Epochs int     `yaml:"epochs"`
	Beta   float64 `yaml:"beta"`
	Scale  float64 `yaml:"scale"` // perturbation scale of the update search

	RhoStep      float64 `yaml:"rho_step"`
	RhoTolerance float64 `yaml:"rho_tolerance"`
	RhoMaxIters  int     `yaml:"rho_max_iters"`
}

// Default returns the moons/planar baseline configuration.
func Default() Experiment {
	return Experiment{
		Dataset:      "moons",
		Samples:      2048,
		Noise:        0.05,
		Seed:         1,
		Family:       "planar",
		Learners:     4,
		Steps:        2,
		Hidden:       32,
		Latent:       2,
		Batch:        64,
		Epochs:       10,
		Beta:         1.0,
		Scale:        0.02,
		RhoStep:      0.005,
		RhoTolerance: 1e-4,
		RhoMaxIters:  250,
	}
}

// Load reads an experiment file, filling unset fields from Default. An empty
// path returns Default unchanged.
func Load(path string) (Experiment, error) {
	exp := Default()
	if path == "" {
		return exp, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return exp, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return exp, fmt.Errorf("config: %s: %w", path, err)
	}
	return exp, nil
}
