// Command genosctl runs genetic algorithm experiments on the built-in
// problems and inspects the run archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"genos/internal/evo"
	"genos/internal/storage"
	"genos/pkg/genos"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: genosctl <run|runs|fitness|best> [flags]", msg)
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "genos.db", "sqlite database path")
	return storeKind, dbPath
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	problemName := fs.String("problem", "onemax", "built-in problem: onemax|knapsack|tsp")
	length := fs.Int("length", 32, "chromosome length")
	population := fs.Int("population", 50, "population size")
	elite := fs.Int("elite", 1, "elite count; negative disables elitism")
	generations := fs.Int("generations", 100, "maximum generation count")
	mutationRate := fs.Float64("mutation", 0.02, "per-allele mutation rate")
	crossoverRate := fs.Float64("crossover-rate", 1.0, "probability a parent pair recombines")
	crossoverOp := fs.String("crossover", "", "crossover operator: single_point|n_point|uniform|cut_splice|ordered|partially_matched|edge_recombination")
	points := fs.Int("points", 2, "cut points for n_point crossover")
	selection := fs.String("selection", "tournament", "selection strategy: tournament|proportionate")
	tournamentSize := fs.Int("tournament-size", 3, "contestants per tournament")
	pBest := fs.Float64("p-best", 1.0, "probability the tournament winner is the best contestant")
	mutationOp := fs.String("mutation-op", "", "mutation operator: point|variable_length|swap")
	stagnation := fs.Int("stagnation", 0, "generations without improvement before converging; 0 disables")
	target := fs.Float64("target", 0, "target fitness; 0 disables")
	direction := fs.String("direction", "", "optimization direction: maximize|minimize; tsp defaults to minimize")
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed")
	workers := fs.Int("workers", 4, "concurrent fitness evaluations")
	items := fs.Int("items", 0, "knapsack item count; defaults to chromosome length")
	capacity := fs.Float64("capacity", 0, "knapsack capacity")
	cities := fs.Int("cities", 0, "tsp city count")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := genos.New(genos.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	req := genos.RunRequest{
		Problem:          *problemName,
		ChromosomeLength: *length,
		PopulationSize:   *population,
		EliteCount:       *elite,
		MaxGenerations:   *generations,
		MutationRate:     *mutationRate,
		CrossoverRate:    *crossoverRate,
		Crossover:        *crossoverOp,
		CrossoverPoints:  *points,
		Selection:        *selection,
		TournamentSize:   *tournamentSize,
		PBest:            *pBest,
		Mutation:         *mutationOp,
		StagnationWindow: *stagnation,
		Direction:        *direction,
		Seed:             *seed,
		Workers:          *workers,
		KnapsackItems:    *items,
		KnapsackCapacity: *capacity,
		Cities:           *cities,
	}
	if *target != 0 {
		req.TargetFitness = target
	}

	var pw progress.Writer
	if isatty.IsTerminal(os.Stdout.Fd()) {
		pw = progress.NewWriter()
		pw.SetOutputWriter(os.Stdout)
		pw.SetTrackerPosition(progress.PositionRight)
		pw.SetUpdateFrequency(100 * time.Millisecond)
		go pw.Render()

		tracker := &progress.Tracker{
			Message: fmt.Sprintf("evolving %s", req.Problem),
			Total:   int64(*generations),
			Units:   progress.UnitsDefault,
		}
		pw.AppendTracker(tracker)
		req.Observer = evo.ObserverFunc(func(summary evo.GenerationSummary) {
			tracker.SetValue(int64(summary.Generation))
		})
		defer func() {
			tracker.MarkAsDone()
			pw.Stop()
			for pw.IsRenderInProgress() {
				time.Sleep(10 * time.Millisecond)
			}
		}()
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished: state=%s reason=%s\n", summary.RunID, summary.State, summary.Reason)
	fmt.Printf("generations=%d evaluations=%s best=%.4f elapsed=%s\n",
		summary.Generations,
		humanize.Comma(int64(summary.Evaluations)),
		summary.BestFitness,
		summary.Elapsed.Round(time.Millisecond),
	)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := genos.New(genos.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"RUN", "PROBLEM", "SEED", "POP", "GENS", "STATE", "REASON", "BEST", "STARTED"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.Problem,
			run.Seed,
			run.PopulationSize,
			run.Generations,
			run.State,
			run.Reason,
			fmt.Sprintf("%.4f", run.BestFitness),
			humanize.Time(run.StartedAt),
		})
	}
	t.Render()
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return fmt.Errorf("run id is required")
	}

	client, err := genos.New(genos.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	records, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"GEN", "BEST", "MEAN", "WORST", "STDDEV", "BEST EVER"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Generation,
			fmt.Sprintf("%.4f", r.BestFitness),
			fmt.Sprintf("%.4f", r.MeanFitness),
			fmt.Sprintf("%.4f", r.WorstFitness),
			fmt.Sprintf("%.4f", r.StdDev),
			fmt.Sprintf("%.4f", r.BestEver),
		})
	}
	t.Render()
	return nil
}

func runBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return fmt.Errorf("run id is required")
	}

	client, err := genos.New(genos.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	best, err := client.Best(ctx, *runID)
	if err != nil {
		return err
	}

	fmt.Printf("run %s best fitness %.4f (born generation %d)\n", best.RunID, best.Fitness, best.Born)
	fmt.Printf("chromosome: %s\n", string(best.Chromosome))
	return nil
}
