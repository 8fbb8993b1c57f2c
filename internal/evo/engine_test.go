package evo

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"genos/internal/gene"
)

func binaryGenerate(length int) GenerateFunc[int] {
	return func(rng *rand.Rand) (gene.Chromosome[int], error) {
		c := make(gene.Chromosome[int], length)
		for i := range c {
			c[i] = rng.Intn(2)
		}
		return c, nil
	}
}

func binaryAllele(rng *rand.Rand) int {
	return rng.Intn(2)
}

func onesFitness(c gene.Chromosome[int]) (float64, error) {
	total := 0.0
	for _, v := range c {
		total += float64(v)
	}
	return total, nil
}

func baseConfig(t *testing.T) Config[int] {
	t.Helper()
	mutator, err := NewPointMutator(0.02, binaryAllele)
	if err != nil {
		t.Fatalf("new point mutator: %v", err)
	}
	return Config[int]{
		PopulationSize: 20,
		EliteCount:     1,
		MaxGenerations: 50,
		Direction:      gene.Maximize,
		Seed:           1,
		Selector:       TournamentSelector[int]{Size: 3},
		Crossover:      SinglePointCrossover[int]{},
		Mutator:        mutator,
		Generate:       binaryGenerate(16),
		Fitness:        onesFitness,
	}
}

func TestNewEngineValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config[int])
	}{
		{"zero population", func(c *Config[int]) { c.PopulationSize = 0 }},
		{"negative elites", func(c *Config[int]) { c.EliteCount = -1 }},
		{"elites fill population", func(c *Config[int]) { c.EliteCount = c.PopulationSize }},
		{"zero max generations", func(c *Config[int]) { c.MaxGenerations = 0 }},
		{"crossover rate above 1", func(c *Config[int]) { c.CrossoverRate = 1.5 }},
		{"negative stagnation window", func(c *Config[int]) { c.StagnationWindow = -1 }},
		{"nil selector", func(c *Config[int]) { c.Selector = nil }},
		{"nil crossover", func(c *Config[int]) { c.Crossover = nil }},
		{"nil mutator", func(c *Config[int]) { c.Mutator = nil }},
		{"nil generator", func(c *Config[int]) { c.Generate = nil }},
		{"nil fitness", func(c *Config[int]) { c.Fitness = nil }},
	}
	for _, tc := range cases {
		cfg := baseConfig(t)
		tc.mutate(&cfg)
		if _, err := NewEngine(cfg); err == nil {
			t.Fatalf("%s: expected config error", tc.name)
		}
	}
}

func TestEngineStartsInitialized(t *testing.T) {
	engine, err := NewEngine(baseConfig(t))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if engine.State() != Initialized {
		t.Fatalf("state %v, want initialized", engine.State())
	}
}

func TestEngineSingleGenerationKeepsSizeAndElite(t *testing.T) {
	cfg := baseConfig(t)
	cfg.PopulationSize = 10
	cfg.MaxGenerations = 1
	cfg.Generate = binaryGenerate(8)
	mutator, err := NewPointMutator(0, binaryAllele)
	if err != nil {
		t.Fatalf("new point mutator: %v", err)
	}
	cfg.Mutator = mutator

	var firstGenBest float64
	cfg.Observer = ObserverFunc(func(s GenerationSummary) {
		if s.Generation == 0 {
			firstGenBest = s.BestFitness
		}
	})

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.State != Terminated || result.Reason != ReasonMaxGenerations {
		t.Fatalf("got %v/%s, want terminated/max_generations", result.State, result.Reason)
	}
	if result.Generations != 1 {
		t.Fatalf("ran %d generations, want 1", result.Generations)
	}
	if len(result.Final) != 10 {
		t.Fatalf("final population size %d, want 10", len(result.Final))
	}

	elites := 0
	for _, ind := range result.Final {
		if ind.Born == 0 {
			elites++
			if ind.Fitness != firstGenBest {
				t.Fatalf("elite fitness %v, want the generation-0 best %v", ind.Fitness, firstGenBest)
			}
		}
	}
	if elites != 1 {
		t.Fatalf("found %d generation-0 survivors, want exactly 1", elites)
	}
}

func TestEngineConvergesOnTargetFitness(t *testing.T) {
	cfg := baseConfig(t)
	cfg.PopulationSize = 40
	cfg.MaxGenerations = 500
	cfg.Workers = 4
	cfg.Generate = binaryGenerate(8)
	target := 8.0
	cfg.TargetFitness = &target

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.State != Converged || result.Reason != ReasonTargetFitness {
		t.Fatalf("got %v/%s, want converged/target_fitness", result.State, result.Reason)
	}
	if result.Best.Fitness != 8 {
		t.Fatalf("best fitness %v, want 8", result.Best.Fitness)
	}
	if engine.State() != Converged {
		t.Fatalf("engine state %v, want converged", engine.State())
	}
	if len(result.BestByGeneration) != result.Generations+1 {
		t.Fatalf("history length %d, want %d", len(result.BestByGeneration), result.Generations+1)
	}
}

func TestEngineConvergesOnStagnation(t *testing.T) {
	cfg := baseConfig(t)
	cfg.StagnationWindow = 3
	cfg.Fitness = func(gene.Chromosome[int]) (float64, error) { return 0, nil }

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.State != Converged || result.Reason != ReasonStagnation {
		t.Fatalf("got %v/%s, want converged/stagnation", result.State, result.Reason)
	}
	if result.Generations != 3 {
		t.Fatalf("stagnated after %d generations, want 3", result.Generations)
	}
}

func TestEngineMinimizeHonorsTarget(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Direction = gene.Minimize
	cfg.PopulationSize = 40
	cfg.MaxGenerations = 500
	cfg.Generate = binaryGenerate(8)
	target := 0.0
	cfg.TargetFitness = &target

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.State != Converged || result.Reason != ReasonTargetFitness {
		t.Fatalf("got %v/%s, want converged/target_fitness", result.State, result.Reason)
	}
	if result.Best.Fitness != 0 {
		t.Fatalf("best fitness %v, want 0", result.Best.Fitness)
	}
}

func TestEngineCancelledContextTerminatesCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine, err := NewEngine(baseConfig(t))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("cancellation must not surface as an error, got %v", err)
	}
	if result.State != Terminated || result.Reason != ReasonCancelled {
		t.Fatalf("got %v/%s, want terminated/cancelled", result.State, result.Reason)
	}
}

func TestEngineCancellationMidEvaluationFinishesTheGeneration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := baseConfig(t)
	cfg.Workers = 1

	calls := 0
	cfg.Fitness = func(c gene.Chromosome[int]) (float64, error) {
		calls++
		if calls == 1 {
			cancel()
		}
		return onesFitness(c)
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("cancellation during evaluation must not surface as an error, got %v", err)
	}
	if result.State != Terminated || result.Reason != ReasonCancelled {
		t.Fatalf("got %v/%s, want terminated/cancelled", result.State, result.Reason)
	}

	// Cancellation is observed between generations only: the in-flight
	// generation evaluates to completion before the run stops.
	if result.Evaluations != cfg.PopulationSize {
		t.Fatalf("evaluated %d individuals, want the full generation of %d", result.Evaluations, cfg.PopulationSize)
	}
	if result.Generations != 1 {
		t.Fatalf("stopped after %d generations, want 1", result.Generations)
	}
}

func TestEngineEvaluationErrorAbortsRun(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Fitness = func(gene.Chromosome[int]) (float64, error) {
		return 0, fmt.Errorf("scoring backend unavailable")
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.Run(context.Background()); err == nil {
		t.Fatal("expected the evaluation error to abort the run")
	}
}

func TestEngineRunsAreReproducible(t *testing.T) {
	run := func() Result[int] {
		cfg := baseConfig(t)
		cfg.Workers = 4
		cfg.Seed = 42
		engine, err := NewEngine(cfg)
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		result, err := engine.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	first, second := run(), run()
	if first.Best.Fitness != second.Best.Fitness {
		t.Fatalf("best fitness diverged: %v vs %v", first.Best.Fitness, second.Best.Fitness)
	}
	if len(first.BestByGeneration) != len(second.BestByGeneration) {
		t.Fatalf("history length diverged: %d vs %d", len(first.BestByGeneration), len(second.BestByGeneration))
	}
	for i := range first.BestByGeneration {
		if first.BestByGeneration[i] != second.BestByGeneration[i] {
			t.Fatalf("generation %d best diverged: %v vs %v", i, first.BestByGeneration[i], second.BestByGeneration[i])
		}
	}
}

func TestEngineCountsEvaluations(t *testing.T) {
	cfg := baseConfig(t)
	cfg.PopulationSize = 10
	cfg.EliteCount = 2
	cfg.MaxGenerations = 3

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Generation 0 evaluates all 10; each later generation re-evaluates only
	// the 8 fresh children, elites keep their cached fitness.
	want := 10 + 3*8
	if result.Evaluations != want {
		t.Fatalf("counted %d evaluations, want %d", result.Evaluations, want)
	}
}
