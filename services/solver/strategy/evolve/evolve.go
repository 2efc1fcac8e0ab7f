// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package evolve searches for programs with a small genetic algorithm.
package evolve

import (
	"context"
	"math/rand/v2"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianARC/services/solver/dsl"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/AleutianAI/AleutianARC/services/solver/mdl"
	"github.com/AleutianAI/AleutianARC/services/solver/strategy"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/verify"
)

// Method is reported by every candidate from this strategy.
const Method = "evolution"

// Fitness weights.
const (
	accuracyWeight = 0.95
	sizeWeight     = 0.05
	sizeDecay      = 0.01
)

// Config configures evolution.
type Config struct {
	// Population is the number of individuals per generation.
	Population int `yaml:"population" json:"population" validate:"gte=4"`

	// Generations is the number of breeding rounds.
	Generations int `yaml:"generations" json:"generations" validate:"gte=1"`

	// MaxProgramSize caps a mutated child. Larger children are replaced
	// by the mutation primitive alone.
	MaxProgramSize int `yaml:"max_program_size" json:"max_program_size" validate:"gte=3"`

	// Seed seeds the mutation generator.
	Seed uint64 `yaml:"seed" json:"seed"`

	// Workers bounds concurrent fitness evaluation.
	Workers int `yaml:"workers" json:"workers" validate:"gte=1"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Population:     30,
		Generations:    50,
		MaxProgramSize: 15,
		Seed:           0x5eed,
		Workers:        4,
	}
}

// Individual is one member of the population.
type Individual struct {
	Program  *dsl.Program
	Accuracy float64
	Fitness  float64
}

// Fitness scores a program as 0.95 times its mean cell match plus 0.05
// times 1/(1 + 0.01*size).
func Fitness(accuracy float64, size int) float64 {
	return accuracyWeight*accuracy + sizeWeight/(1+sizeDecay*float64(size))
}

// Evolver is the genetic strategy.
//
// Description:
//
//	The population starts from the best single primitives by mean cell
//	match, padded round-robin from the catalog. Each generation is
//	sorted by fitness; a leader that matches every cell of every pair
//	ends the run. Otherwise the top quarter survive and the rest are
//	bred from consecutive elite pairs: the child runs one parent then the
//	other, then mutates by replacing its last step, appending a step, or
//	becoming a single step. Mutation draws from a PCG generator seeded
//	from Config.Seed, so a run is reproducible. Fitness is evaluated in
//	parallel, writing each score to its own slot.
//
// Thread Safety: Safe for concurrent use. Each Solve owns its generator.
type Evolver struct {
	config *Config
	prims  []*dsl.Program
}

// New creates the strategy over dsl.Catalog().
//
// Inputs:
//   - config: Configuration. If nil, uses DefaultConfig().
func New(config *Config) *Evolver {
	if config == nil {
		config = DefaultConfig()
	}
	return &Evolver{config: config, prims: dsl.Catalog()}
}

// Name returns the strategy name.
func (e *Evolver) Name() string {
	return "evolution"
}

// Solve evolves a population against pairs.
//
// Outputs:
//
//	*strategy.Candidate - The best individual found. It is not guaranteed
//	                      to match; callers verify it. Checked is the
//	                      number of fitness evaluations.
//	bool                - False when pairs is empty or ctx ended.
func (e *Evolver) Solve(ctx context.Context, pairs []task.Pair) (*strategy.Candidate, bool) {
	if len(pairs) == 0 {
		return nil, false
	}
	rng := rand.New(rand.NewPCG(e.config.Seed, uint64(len(pairs))))
	checked := 0

	pop, err := e.evaluate(ctx, pairs, e.seed(pairs))
	if err != nil {
		return strategy.Exhausted(checked)
	}
	checked += len(pop)

	elites := max(1, e.config.Population/4)
	for gen := 0; gen < e.config.Generations; gen++ {
		sortByFitness(pop)
		if pop[0].Accuracy == 1 {
			break
		}
		children := make([]*dsl.Program, 0, e.config.Population-elites)
		for n := elites; n < e.config.Population; n++ {
			a := pop[n%elites].Program
			b := pop[(n+1)%elites].Program
			children = append(children, e.mutate(rng, dsl.Seq(a, b)))
		}
		bred, err := e.evaluate(ctx, pairs, children)
		if err != nil {
			return strategy.Exhausted(checked)
		}
		checked += len(bred)
		pop = append(pop[:elites:elites], bred...)
	}
	sortByFitness(pop)

	return &strategy.Candidate{Program: best(pop, pairs), Method: Method, Checked: checked}, true
}

// best returns the cheapest program by description length among those
// matching every pair, or the fittest individual when none does. pop
// must be sorted by fitness.
func best(pop []Individual, pairs []task.Pair) *dsl.Program {
	var exact []*dsl.Program
	for _, ind := range pop {
		if ind.Accuracy == 1 {
			exact = append(exact, ind.Program)
		}
	}
	if len(exact) == 0 {
		return pop[0].Program
	}
	return mdl.Rank(exact, pairs)[0].Program
}

// seed returns the initial programs: the best half of the population by
// partial score, then catalog primitives round-robin. Of the scored
// primitives that produce the same grid from the first input only the
// first is kept.
func (e *Evolver) seed(pairs []task.Pair) []*dsl.Program {
	type scored struct {
		p     *dsl.Program
		score float64
	}
	var ranked []scored
	seen := grid.NewFingerprintSet(len(e.prims))
	for _, p := range e.prims {
		s := verify.PartialScore(p, pairs)
		if s <= 0 || !seen.InsertGrid(dsl.Apply(p, pairs[0].Input)) {
			continue
		}
		ranked = append(ranked, scored{p, s})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	out := make([]*dsl.Program, 0, e.config.Population)
	for _, s := range ranked[:min(len(ranked), e.config.Population/2)] {
		out = append(out, s.p)
	}
	for len(out) < e.config.Population {
		out = append(out, e.prims[len(out)%len(e.prims)])
	}
	return out
}

func (e *Evolver) mutate(rng *rand.Rand, p *dsl.Program) *dsl.Program {
	step := e.prims[rng.IntN(len(e.prims))]
	var out *dsl.Program
	switch {
	case p.Kind() == dsl.KindSequence:
		out = dsl.Seq(p.Children()[0], step)
	case p.Size() < 3:
		out = dsl.Seq(p, step)
	default:
		out = step
	}
	if out.Size() > e.config.MaxProgramSize {
		return step
	}
	return out
}

// evaluate scores programs concurrently. Results are in input order.
func (e *Evolver) evaluate(ctx context.Context, pairs []task.Pair, progs []*dsl.Program) ([]Individual, error) {
	out := make([]Individual, len(progs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for i, p := range progs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			acc := verify.PartialScore(p, pairs)
			out[i] = Individual{Program: p, Accuracy: acc, Fitness: Fitness(acc, p.Size())}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func sortByFitness(pop []Individual) {
	slices.SortStableFunc(pop, func(a, b Individual) int {
		switch {
		case a.Fitness > b.Fitness:
			return -1
		case a.Fitness < b.Fitness:
			return 1
		}
		return 0
	})
}
