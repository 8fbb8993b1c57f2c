// Package genos is the public facade over the evolution engine and the run
// archive: it wires built-in problems, resolves operators from
// configuration, runs the engine, and records results in a store.
package genos

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"genos/internal/encoding"
	"genos/internal/evo"
	"genos/internal/gene"
	"genos/internal/model"
	"genos/internal/problem"
	"genos/internal/storage"
)

const defaultDBPath = "genos.db"

type Options struct {
	StoreKind string // memory|sqlite
	DBPath    string
}

type Client struct {
	store storage.Store
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		return nil, err
	}

	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunRequest is the configuration surface for one run of a built-in
// problem. Zero values take the documented defaults.
type RunRequest struct {
	Problem          string // onemax|knapsack|tsp
	ChromosomeLength int
	PopulationSize   int
	EliteCount       int
	MaxGenerations   int
	MutationRate     float64
	CrossoverRate    float64
	Crossover        string // single_point|n_point|uniform|cut_splice|ordered|partially_matched|edge_recombination
	CrossoverPoints  int
	SwapProb         float64
	Selection        string // tournament|proportionate
	TournamentSize   int
	PBest            float64
	Mutation         string // point|variable_length|swap
	InsertProb       float64
	DeleteProb       float64
	MinLength        int
	StagnationWindow int
	TargetFitness    *float64
	Direction        string // maximize|minimize
	Seed             int64
	Workers          int

	// Knapsack only.
	KnapsackItems    int
	KnapsackCapacity float64

	// TSP only.
	Cities int

	// Observer receives generation summaries in addition to the archive.
	Observer evo.Observer
}

type RunSummary struct {
	RunID            string
	State            string
	Reason           string
	Generations      int
	Evaluations      int
	BestFitness      float64
	BestChromosome   []byte
	BestByGeneration []float64
	Elapsed          time.Duration
}

// archiveObserver appends generation summaries to the store as the run
// progresses. Store failures are remembered and surfaced after the run;
// they never interrupt the evolution loop.
type archiveObserver struct {
	ctx   context.Context
	store storage.Store
	runID string

	mu  sync.Mutex
	err error
}

func (a *archiveObserver) OnGeneration(summary evo.GenerationSummary) {
	err := a.store.AppendGeneration(a.ctx, a.runID, model.GenerationRecord{
		Generation:   summary.Generation,
		BestFitness:  summary.BestFitness,
		MeanFitness:  summary.MeanFitness,
		WorstFitness: summary.WorstFitness,
		StdDev:       summary.StdDev,
		BestEver:     summary.BestEver,
	})
	if err != nil {
		a.mu.Lock()
		if a.err == nil {
			a.err = err
		}
		a.mu.Unlock()
	}
}

func (a *archiveObserver) firstError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Run executes a built-in problem and archives the outcome.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Problem == "" {
		req.Problem = "onemax"
	}
	if req.Problem == "tsp" {
		// Tours are permutations: recombination and mutation must preserve
		// the city set, and shorter tours are better.
		if req.Direction == "" {
			req.Direction = "minimize"
		}
		if req.Crossover == "" {
			req.Crossover = "ordered"
		}
		if req.Mutation == "" {
			req.Mutation = "swap"
		}
		if req.Cities <= 0 {
			req.Cities = 12
		}
	}
	if req.ChromosomeLength <= 0 {
		req.ChromosomeLength = 32
	}
	if req.PopulationSize <= 0 {
		req.PopulationSize = 50
	}
	if req.EliteCount == 0 {
		req.EliteCount = 1
	}
	if req.EliteCount < 0 {
		// Negative disables elitism; zero means the default of one elite.
		req.EliteCount = 0
	}
	if req.MaxGenerations <= 0 {
		req.MaxGenerations = 100
	}
	if req.MutationRate == 0 {
		req.MutationRate = 0.02
	}
	if req.MutationRate < 0 {
		req.MutationRate = 0
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	if req.KnapsackItems <= 0 {
		req.KnapsackItems = req.ChromosomeLength
	}
	if req.KnapsackCapacity <= 0 {
		req.KnapsackCapacity = float64(req.KnapsackItems) * 2.5
	}

	direction, err := gene.ParseDirection(req.Direction)
	if err != nil {
		return RunSummary{}, err
	}

	var (
		fitness evo.FitnessFunc[byte]
		spec    encoding.Spec[byte]
	)
	length := req.ChromosomeLength
	switch req.Problem {
	case "onemax":
		fitness = problem.OneMax()
		spec, err = encoding.Binary(length)
		if err != nil {
			return RunSummary{}, err
		}
	case "knapsack":
		// Items come from a dedicated random stream so the engine's seeded
		// stream is not perturbed by problem setup.
		items := problem.GenerateKnapsackItems(rand.New(rand.NewSource(req.Seed)), req.KnapsackItems)
		fitness, err = problem.Knapsack(items, req.KnapsackCapacity)
		if err != nil {
			return RunSummary{}, err
		}
		length = req.KnapsackItems
		spec, err = encoding.Binary(length)
		if err != nil {
			return RunSummary{}, err
		}
	case "tsp":
		if req.Cities > 256 {
			return RunSummary{}, fmt.Errorf("tsp supports at most 256 cities: %d", req.Cities)
		}
		cities := problem.GenerateCities(rand.New(rand.NewSource(req.Seed)), req.Cities)
		fitness, err = problem.TourLength(cities)
		if err != nil {
			return RunSummary{}, err
		}
		length = req.Cities
		indices := make([]byte, req.Cities)
		for i := range indices {
			indices[i] = byte(i)
		}
		spec, err = encoding.Permutation(indices)
		if err != nil {
			return RunSummary{}, err
		}
	default:
		return RunSummary{}, fmt.Errorf("unknown problem: %s", req.Problem)
	}

	selector, err := evo.ResolveSelector[byte](req.Selection, evo.SelectorConfig{
		TournamentSize: req.TournamentSize,
		PBest:          req.PBest,
	})
	if err != nil {
		return RunSummary{}, err
	}
	crossover, err := evo.ResolvePermutationCrossover[byte](req.Crossover, evo.CrossoverConfig{
		Points:   req.CrossoverPoints,
		SwapProb: req.SwapProb,
	})
	if err != nil {
		return RunSummary{}, err
	}
	mutator, err := evo.ResolveMutator(req.Mutation, evo.MutatorConfig{
		Rate:       req.MutationRate,
		InsertProb: req.InsertProb,
		DeleteProb: req.DeleteProb,
		MinLength:  req.MinLength,
	}, spec.Allele)
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	archive := &archiveObserver{ctx: ctx, store: c.store, runID: runID}
	var observer evo.Observer = archive
	if req.Observer != nil {
		observer = evo.MultiObserver{archive, req.Observer}
	}

	engine, err := evo.NewEngine(evo.Config[byte]{
		PopulationSize:   req.PopulationSize,
		EliteCount:       req.EliteCount,
		MaxGenerations:   req.MaxGenerations,
		CrossoverRate:    req.CrossoverRate,
		TargetFitness:    req.TargetFitness,
		StagnationWindow: req.StagnationWindow,
		Direction:        direction,
		Seed:             req.Seed,
		Workers:          req.Workers,
		Selector:         selector,
		Crossover:        crossover,
		Mutator:          mutator,
		Generate:         spec.Generate,
		Fitness:          fitness,
		Observer:         observer,
	})
	if err != nil {
		return RunSummary{}, err
	}

	started := time.Now().UTC()
	result, err := engine.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	finished := time.Now().UTC()
	if err := archive.firstError(); err != nil {
		return RunSummary{}, fmt.Errorf("archive generation summaries: %w", err)
	}

	run := model.RunRecord{
		VersionedRecord:  storage.Stamp(),
		ID:               runID,
		Problem:          req.Problem,
		Direction:        direction.String(),
		Seed:             req.Seed,
		PopulationSize:   req.PopulationSize,
		ChromosomeLength: length,
		EliteCount:       req.EliteCount,
		MaxGenerations:   req.MaxGenerations,
		MutationRate:     req.MutationRate,
		CrossoverRate:    req.CrossoverRate,
		Crossover:        crossover.Name(),
		Selection:        selector.Name(),
		Mutation:         mutator.Name(),
		State:            result.State.String(),
		Reason:           result.Reason,
		Generations:      result.Generations,
		Evaluations:      result.Evaluations,
		BestFitness:      result.Best.Fitness,
		StartedAt:        started,
		FinishedAt:       finished,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}

	payload, err := json.Marshal(chromosomeAlleles(result.Best.Chromosome))
	if err != nil {
		return RunSummary{}, err
	}
	best := model.BestRecord{
		VersionedRecord: storage.Stamp(),
		RunID:           runID,
		Fitness:         result.Best.Fitness,
		Born:            result.Best.Born,
		Chromosome:      payload,
	}
	if err := c.store.SaveBest(ctx, best); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		State:            result.State.String(),
		Reason:           result.Reason,
		Generations:      result.Generations,
		Evaluations:      result.Evaluations,
		BestFitness:      result.Best.Fitness,
		BestChromosome:   []byte(result.Best.Chromosome),
		BestByGeneration: result.BestByGeneration,
		Elapsed:          finished.Sub(started),
	}, nil
}

// chromosomeAlleles widens byte alleles so the archived chromosome is a
// readable JSON integer array rather than base64.
func chromosomeAlleles(c gene.Chromosome[byte]) []int {
	out := make([]int, len(c))
	for i, b := range c {
		out[i] = int(b)
	}
	return out
}

func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	return c.store.ListRuns(ctx)
}

func (c *Client) GetRun(ctx context.Context, id string) (model.RunRecord, bool, error) {
	return c.store.GetRun(ctx, id)
}

func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]model.GenerationRecord, error) {
	records, ok, err := c.store.GetGenerations(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no generations recorded for run %s", runID)
	}
	return records, nil
}

func (c *Client) Best(ctx context.Context, runID string) (model.BestRecord, error) {
	best, ok, err := c.store.GetBest(ctx, runID)
	if err != nil {
		return model.BestRecord{}, err
	}
	if !ok {
		return model.BestRecord{}, fmt.Errorf("no best chromosome recorded for run %s", runID)
	}
	return best, nil
}
