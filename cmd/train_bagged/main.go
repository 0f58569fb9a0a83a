package main

import "flag"
import "fmt"
import "math"

import "github.com/StatMixedML/gradient-boosted-flows/config"
import "github.com/StatMixedML/gradient-boosted-flows/datasets/toy"
import "github.com/StatMixedML/gradient-boosted-flows/ensemble"
import "github.com/StatMixedML/gradient-boosted-flows/net/vae"
import "github.com/StatMixedML/gradient-boosted-flows/trainer"

func main() {

	cfgfile := flag.String("config", "", "experiment .yaml file")
	dstmodel := flag.String("dstmodel", "", "checkpoint destination base name")
	resume := flag.Bool("resume", false, "resume training")
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
	bagged := ensemble.NewBagging(bank, net, cfg.Seed+2)

	model := trainer.Group{net, bank}
	trainer.Resume(model, resume, dstmodel)

	step := trainer.NewBaggedStepFunc(bagged, net, bank, score, cfg.Scale)
	best := math.Inf(1)
	evaluate := trainer.NewEvaluateFunc(model, loader, func(batch [][]float64) float64 {
		res, err := bagged.Forward(batch, ensemble.ModeEval)
		if err != nil {
			return math.Inf(1)
		}
		return score.BatchScore(batch, res)
	}, &best, dstmodel)

	for e := 0; e < cfg.Epochs; e++ {
		loader.Reset()
		var sum float64
		var n int
		for batch := loader.Next(); batch != nil; batch = loader.Next() {
			sum += step(batch)
			n++
		}
		if n > 0 {
			fmt.Printf("epoch %d free energy %.4f (last learner %d)\n", e, sum/float64(n), bagged.LastTrained())
		}
	}
	fmt.Printf("aggregated eval free energy %.4f\n", evaluate())
}
