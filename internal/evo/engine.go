package evo

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"genos/internal/gene"
	"genos/internal/stats"
)

// State tracks the engine lifecycle: Initialized -> Running -> Converged or
// Terminated. Converged means a fitness or stagnation condition was met;
// Terminated covers the generation limit and external cancellation.
type State int

const (
	Initialized State = iota
	Running
	Converged
	Terminated
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stop reasons reported in Result.Reason.
const (
	ReasonTargetFitness  = "target_fitness"
	ReasonStagnation     = "stagnation"
	ReasonMaxGenerations = "max_generations"
	ReasonCancelled      = "cancelled"
)

// FitnessFunc scores a chromosome. It must be pure and total: a failure
// aborts the run immediately, because a partially scored population would
// corrupt selection pressure undetectably.
type FitnessFunc[A any] func(c gene.Chromosome[A]) (float64, error)

// GenerateFunc creates a random chromosome for population initialization.
type GenerateFunc[A any] func(rng *rand.Rand) (gene.Chromosome[A], error)

// Config assembles the collaborators and parameters of one evolution run.
type Config[A any] struct {
	PopulationSize   int
	EliteCount       int
	MaxGenerations   int
	CrossoverRate    float64 // probability a parent pair recombines; 0 means the default 1.0
	TargetFitness    *float64
	StagnationWindow int // generations without best-ever improvement before converging; 0 disables
	Direction        gene.Direction
	Seed             int64
	Workers          int // concurrent fitness evaluations; 0 means 1

	Selector  Selector[A]
	Crossover Crossover[A]
	Mutator   Mutator[A]
	Generate  GenerateFunc[A]
	Fitness   FitnessFunc[A]
	Observer  Observer
}

// Result reports the outcome of a completed run.
type Result[A any] struct {
	State            State
	Reason           string
	Generations      int
	Evaluations      int
	Best             gene.Individual[A]
	BestByGeneration []float64
	Final            gene.Population[A]
}

// Engine owns the population and drives the generational loop: evaluate,
// select, recombine, mutate, merge elites, replace. All stochastic
// operators draw from the single seeded random source on the loop
// goroutine, so runs are reproducible; only fitness evaluation, which
// takes no randomness, runs concurrently.
type Engine[A any] struct {
	cfg Config[A]
	rng *rand.Rand

	state       State
	generation  int
	evaluations int
	best        gene.Individual[A]
	bestFound   bool
	sinceImprov int
}

func NewEngine[A any](cfg Config[A]) (*Engine[A], error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.EliteCount < 0 || cfg.EliteCount >= cfg.PopulationSize {
		return nil, fmt.Errorf("elite count must be in [0, population size): %d", cfg.EliteCount)
	}
	if cfg.MaxGenerations <= 0 {
		return nil, fmt.Errorf("max generations must be > 0")
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, fmt.Errorf("crossover rate must be in [0, 1]: %v", cfg.CrossoverRate)
	}
	if cfg.StagnationWindow < 0 {
		return nil, fmt.Errorf("stagnation window must be >= 0")
	}
	if cfg.Selector == nil {
		return nil, fmt.Errorf("selector is required")
	}
	if cfg.Crossover == nil {
		return nil, fmt.Errorf("crossover operator is required")
	}
	if cfg.Mutator == nil {
		return nil, fmt.Errorf("mutation operator is required")
	}
	if cfg.Generate == nil {
		return nil, fmt.Errorf("chromosome generator is required")
	}
	if cfg.Fitness == nil {
		return nil, fmt.Errorf("fitness function is required")
	}
	if cfg.CrossoverRate == 0 {
		cfg.CrossoverRate = 1.0
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}

	return &Engine[A]{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		state: Initialized,
	}, nil
}

func (e *Engine[A]) State() State {
	return e.state
}

func (e *Engine[A]) Generation() int {
	return e.generation
}

// Run executes the evolution loop until a termination condition fires.
// Cancellation is cooperative: the context is checked between generations,
// never mid-operator, and reports a Terminated state rather than an error.
func (e *Engine[A]) Run(ctx context.Context) (Result[A], error) {
	population, err := e.initialize()
	if err != nil {
		return Result[A]{}, err
	}
	e.state = Running

	bestByGeneration := make([]float64, 0, e.cfg.MaxGenerations+1)
	for {
		if err := ctx.Err(); err != nil {
			return e.finish(Terminated, ReasonCancelled, population, bestByGeneration), nil
		}

		if err := e.evaluate(population); err != nil {
			return Result[A]{}, err
		}
		e.trackBest(population)

		summary := e.summarize(population)
		bestByGeneration = append(bestByGeneration, summary.BestFitness)
		e.cfg.Observer.OnGeneration(summary)

		if state, reason, done := e.checkTermination(); done {
			return e.finish(state, reason, population, bestByGeneration), nil
		}

		next, err := e.breed(population)
		if err != nil {
			return Result[A]{}, err
		}
		if len(next) != e.cfg.PopulationSize {
			// Internal defect, not a recoverable runtime condition.
			return Result[A]{}, fmt.Errorf("population size drifted: got %d, want %d", len(next), e.cfg.PopulationSize)
		}
		population = next
		e.generation++
	}
}

func (e *Engine[A]) initialize() (gene.Population[A], error) {
	population := make(gene.Population[A], 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		c, err := e.cfg.Generate(e.rng)
		if err != nil {
			return nil, fmt.Errorf("generate chromosome %d: %w", i, err)
		}
		population = append(population, gene.Individual[A]{Chromosome: c, Born: 0})
	}
	return population, nil
}

// evaluate scores every individual lacking a cached fitness on a worker
// pool. Results are written back by index before selection begins; any
// evaluation error aborts the run. The pool runs a generation to
// completion even under cancellation, which Run observes at the next
// generation boundary.
func (e *Engine[A]) evaluate(population gene.Population[A]) error {
	pending := make([]int, 0, len(population))
	for i, ind := range population {
		if !ind.Evaluated {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	type result struct {
		idx     int
		fitness float64
		err     error
	}

	jobs := make(chan int)
	results := make(chan result, len(pending))

	workerCount := e.cfg.Workers
	if workerCount > len(pending) {
		workerCount = len(pending)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fitness, err := e.cfg.Fitness(population[idx].Chromosome)
				results <- result{idx: idx, fitness: fitness, err: err}
			}
		}()
	}

	for _, idx := range pending {
		jobs <- idx
	}
	close(jobs)

	wg.Wait()
	close(results)

	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("evaluate chromosome %d in generation %d: %w", res.idx, e.generation, res.err)
			}
			continue
		}
		population[res.idx].Fitness = res.fitness
		population[res.idx].Evaluated = true
	}
	if firstErr != nil {
		return firstErr
	}
	e.evaluations += len(pending)
	return nil
}

func (e *Engine[A]) trackBest(population gene.Population[A]) {
	improved := false
	for _, ind := range population {
		if !e.bestFound || e.cfg.Direction.Better(ind.Fitness, e.best.Fitness) {
			e.best = ind.Clone()
			e.bestFound = true
			improved = true
		}
	}

	if improved {
		e.sinceImprov = 0
	} else {
		e.sinceImprov++
	}
}

func (e *Engine[A]) summarize(population gene.Population[A]) GenerationSummary {
	fitness := make([]float64, len(population))
	for i, ind := range population {
		fitness[i] = ind.Fitness
	}
	s := stats.Summarize(fitness, e.cfg.Direction)
	return GenerationSummary{
		Generation:   e.generation,
		BestFitness:  s.Best,
		MeanFitness:  s.Mean,
		WorstFitness: s.Worst,
		StdDev:       s.StdDev,
		BestEver:     e.best.Fitness,
	}
}

func (e *Engine[A]) checkTermination() (State, string, bool) {
	if e.cfg.TargetFitness != nil && e.bestFound && e.cfg.Direction.Reached(e.best.Fitness, *e.cfg.TargetFitness) {
		return Converged, ReasonTargetFitness, true
	}
	if e.cfg.StagnationWindow > 0 && e.sinceImprov >= e.cfg.StagnationWindow {
		return Converged, ReasonStagnation, true
	}
	if e.generation >= e.cfg.MaxGenerations {
		return Terminated, ReasonMaxGenerations, true
	}
	return Running, "", false
}

// breed produces the next generation: select parent pairs, recombine with
// probability CrossoverRate, mutate every child, then merge the previous
// generation's elites.
func (e *Engine[A]) breed(population gene.Population[A]) (gene.Population[A], error) {
	needed := e.cfg.PopulationSize - e.cfg.EliteCount
	children := make(gene.Population[A], 0, needed+1)

	for len(children) < needed {
		parents, err := e.cfg.Selector.Select(e.rng, population, 2, e.cfg.Direction)
		if err != nil {
			return nil, err
		}

		var offspring []gene.Chromosome[A]
		if e.rng.Float64() < e.cfg.CrossoverRate {
			offspring, err = e.cfg.Crossover.Recombine(e.rng, parents[0].Chromosome, parents[1].Chromosome)
			if err != nil {
				return nil, err
			}
		} else {
			offspring = []gene.Chromosome[A]{
				parents[0].Chromosome.Clone(),
				parents[1].Chromosome.Clone(),
			}
		}

		for _, c := range offspring {
			mutated, err := e.cfg.Mutator.Mutate(e.rng, c)
			if err != nil {
				return nil, err
			}
			children = append(children, gene.Individual[A]{Chromosome: mutated, Born: e.generation + 1})
		}
	}
	children = children[:needed]

	return MergeElites(population, children, e.cfg.PopulationSize, e.cfg.EliteCount, e.cfg.Direction)
}

func (e *Engine[A]) finish(state State, reason string, population gene.Population[A], bestByGeneration []float64) Result[A] {
	e.state = state
	return Result[A]{
		State:            state,
		Reason:           reason,
		Generations:      e.generation,
		Evaluations:      e.evaluations,
		Best:             e.best,
		BestByGeneration: bestByGeneration,
		Final:            population,
	}
}
