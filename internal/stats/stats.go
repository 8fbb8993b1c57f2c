// Package stats computes per-generation fitness summaries.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"genos/internal/gene"
)

// Summary describes the fitness distribution of one evaluated generation.
// Best and Worst follow the configured optimization direction.
type Summary struct {
	Best   float64
	Mean   float64
	Worst  float64
	StdDev float64
	Median float64
}

// Summarize computes a Summary over raw fitness values. The slice is not
// modified.
func Summarize(fitness []float64, dir gene.Direction) Summary {
	if len(fitness) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(fitness))
	copy(sorted, fitness)
	sort.Float64s(sorted)

	best, worst := sorted[len(sorted)-1], sorted[0]
	if dir == gene.Minimize {
		best, worst = worst, best
	}

	stddev := 0.0
	if len(sorted) > 1 {
		stddev = stat.StdDev(sorted, nil)
	}

	return Summary{
		Best:   best,
		Mean:   stat.Mean(sorted, nil),
		Worst:  worst,
		StdDev: stddev,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
}
