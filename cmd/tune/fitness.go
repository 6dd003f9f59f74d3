package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/eyeball/config"
	"github.com/pthm-cable/eyeball/sampling"
)

// Weights of the fitness terms.
const (
	countWeight   = 1.0
	overlapWeight = 1.0
	spreadWeight  = 0.5
)

// FitnessEvaluator samples layouts and scores them against a target eye
// count.
type FitnessEvaluator struct {
	params     *ParamVector
	target     int
	seeds      []int64
	baseConfig *config.Config

	mu        sync.Mutex
	lastScore LayoutScore
}

// LayoutScore holds the terms of one evaluation, averaged over seeds.
type LayoutScore struct {
	Count         float64
	CountError    float64 // Relative, squared
	OverlapPerEye float64
	Spread        float64 // StdNN / MeanNN
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, target int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		target:     target,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastScore returns the breakdown of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() LayoutScore {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	opts, err := sampling.OptionsFromConfig(cfg)
	if err != nil {
		return math.Inf(1)
	}

	// Run all seeds in parallel
	scores := make([]LayoutScore, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			scores[idx] = fe.scoreLayout(opts, s)
		}(i, seed)
	}
	wg.Wait()

	var avg LayoutScore
	for _, s := range scores {
		avg.Count += s.Count
		avg.CountError += s.CountError
		avg.OverlapPerEye += s.OverlapPerEye
		avg.Spread += s.Spread
	}
	n := float64(len(scores))
	avg.Count /= n
	avg.CountError /= n
	avg.OverlapPerEye /= n
	avg.Spread /= n

	fe.mu.Lock()
	fe.lastScore = avg
	fe.mu.Unlock()

	return fitness(avg)
}

func fitness(s LayoutScore) float64 {
	return countWeight*s.CountError + overlapWeight*s.OverlapPerEye + spreadWeight*s.Spread
}

// scoreLayout samples and relaxes one layout.
func (fe *FitnessEvaluator) scoreLayout(opts sampling.Options, seed int64) LayoutScore {
	rng := rand.New(rand.NewSource(seed))
	particles, res, err := sampling.SampleAndRelax(opts, rng)
	if err != nil || len(particles) == 0 {
		return LayoutScore{CountError: 1, OverlapPerEye: math.Inf(1)}
	}

	points := make([]mgl64.Vec3, len(particles))
	radii := make([]float64, len(particles))
	for i, p := range particles {
		points[i] = p.Position
		radii[i] = p.Radius
	}

	n := float64(len(particles))
	rel := (n - float64(fe.target)) / float64(fe.target)

	var spread float64
	if res.After.MeanNN > 0 {
		spread = res.After.StdNN / res.After.MeanNN
	}

	return LayoutScore{
		Count:         n,
		CountError:    rel * rel,
		OverlapPerEye: sampling.OverlapEnergy(points, radii) / n,
		Spread:        spread,
	}
}

// copyConfig creates a copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
