package main

import "flag"
import "fmt"
import "math"

import "github.com/google/uuid"

import "github.com/StatMixedML/gradient-boosted-flows/config"
import "github.com/StatMixedML/gradient-boosted-flows/datasets/toy"
import "github.com/StatMixedML/gradient-boosted-flows/ensemble"
import "github.com/StatMixedML/gradient-boosted-flows/net/vae"
import "github.com/StatMixedML/gradient-boosted-flows/trainer"

func main() {

	cfgfile := flag.String("config", "", "experiment .yaml file")
	dstmodel := flag.String("dstmodel", "", "checkpoint destination base name")
	resume := flag.Bool("resume", false, "resume training")
	rholog := flag.String("rholog", "rho.txt", "weight-fitting diagnostic log file")
	flag.Parse()

	cfg, err := config.Load(*cfgfile)
	if err != nil {
		println(err.Error())
		return
	}

	var data [][]float64
	switch cfg.Dataset {
	case "ring":
		data = toy.Ring(cfg.Samples, 8, 1.5, cfg.Noise, uint64(cfg.Seed))
	default:
		data = toy.Moons(cfg.Samples, cfg.Noise, uint64(cfg.Seed))
	}
	loader := toy.NewLoader(data, cfg.Batch)

	net := vae.New(toy.Dim, cfg.Hidden, cfg.Latent, cfg.Seed)
	bank, err := ensemble.NewBank(cfg.Family, cfg.Learners, cfg.Steps, cfg.Latent, cfg.Hidden, cfg.Seed+1)
	if err != nil {
		println(err.Error())
		return
	}
	score := vae.FreeEnergy{Beta: cfg.Beta}
	boost := ensemble.NewBoosting(bank, net, score, cfg.Seed+2)

	model := trainer.Group{net, bank}
	trainer.Resume(model, resume, dstmodel)

	hyper := &ensemble.WeightFitHyper{
		StepSize:  cfg.RhoStep,
		Tolerance: cfg.RhoTolerance,
		MaxIters:  cfg.RhoMaxIters,
	}
	hyper.SetLogger(*rholog)
	if l := hyper.Logger(); l != nil {
		l.Printf("# run %s family %s learners %d", uuid.NewString(), cfg.Family, cfg.Learners)
	}

	step := trainer.NewPerturbStepFunc(boost, net, bank, score, cfg.Scale)
	stage := trainer.NewStageFunc(boost, loader, cfg.Epochs, step, hyper)
	best := math.Inf(1)
	evaluate := trainer.NewEvaluateFunc(model, loader, func(batch [][]float64) float64 {
		res, err := boost.Forward(batch, ensemble.SampleFixed)
		if err != nil {
			return math.Inf(1)
		}
		return score.BatchScore(batch, res)
	}, &best, dstmodel)

	for {
		rho, done := stage()
		fmt.Printf("[stage] fitted weight %.4f, eval free energy %.4f\n", rho, evaluate())
		if done {
			break
		}
	}
	fmt.Printf("final mixing weights %v\n", boost.State.Rho)
}
