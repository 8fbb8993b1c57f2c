package evo

import (
	"fmt"
	"math/rand"
	"sort"

	"genos/internal/gene"
)

// Crossover recombines two parent chromosomes into children. Every operator
// returns exactly 2 fresh children unless documented otherwise; parents are
// never modified and children share no allele storage with them.
type Crossover[A any] interface {
	Name() string
	Recombine(rng *rand.Rand, a, b gene.Chromosome[A]) ([]gene.Chromosome[A], error)
}

func requireEqualLength[A any](name string, a, b gene.Chromosome[A]) error {
	if len(a) != len(b) {
		return fmt.Errorf("%s crossover requires equal-length parents: %d != %d", name, len(a), len(b))
	}
	if len(a) < 2 {
		return fmt.Errorf("%s crossover requires parents of length >= 2: %d", name, len(a))
	}
	return nil
}

// SinglePointCrossover cuts both parents at one locus drawn uniformly from
// [1, len-1] and exchanges the suffixes.
type SinglePointCrossover[A any] struct{}

func (SinglePointCrossover[A]) Name() string {
	return "single_point"
}

func (SinglePointCrossover[A]) Recombine(rng *rand.Rand, a, b gene.Chromosome[A]) ([]gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := requireEqualLength[A]("single_point", a, b); err != nil {
		return nil, err
	}

	cut := 1 + rng.Intn(len(a)-1)
	child1 := append(a[:cut].Clone(), b[cut:]...)
	child2 := append(b[:cut].Clone(), a[cut:]...)
	return []gene.Chromosome[A]{child1, child2}, nil
}

// NPointCrossover cuts both parents at Points distinct loci and alternates
// segments between them, starting from parent a.
type NPointCrossover[A any] struct {
	Points int
}

func (NPointCrossover[A]) Name() string {
	return "n_point"
}

func (c NPointCrossover[A]) Recombine(rng *rand.Rand, a, b gene.Chromosome[A]) ([]gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := requireEqualLength[A]("n_point", a, b); err != nil {
		return nil, err
	}
	if c.Points <= 0 {
		return nil, fmt.Errorf("n_point crossover requires at least one cut point")
	}
	if c.Points > len(a)-1 {
		return nil, fmt.Errorf("n_point crossover with %d points needs parents of length >= %d, got %d", c.Points, c.Points+1, len(a))
	}

	cuts := drawCutPoints(rng, c.Points, len(a))
	child1 := make(gene.Chromosome[A], 0, len(a))
	child2 := make(gene.Chromosome[A], 0, len(a))
	src1, src2 := a, b
	prev := 0
	for _, cut := range append(cuts, len(a)) {
		child1 = append(child1, src1[prev:cut]...)
		child2 = append(child2, src2[prev:cut]...)
		src1, src2 = src2, src1
		prev = cut
	}
	return []gene.Chromosome[A]{child1, child2}, nil
}

// drawCutPoints returns n distinct cut indices in [1, length-1], sorted
// ascending. 0 and length are never cut points: a cut at either end would
// copy a whole parent instead of recombining.
func drawCutPoints(rng *rand.Rand, n, length int) []int {
	perm := rng.Perm(length - 1)
	cuts := make([]int, n)
	for i := 0; i < n; i++ {
		cuts[i] = perm[i] + 1
	}
	sort.Ints(cuts)
	return cuts
}

// UniformCrossover exchanges each allele position independently with
// probability SwapProb (default 0.5).
type UniformCrossover[A any] struct {
	SwapProb float64
}

func (UniformCrossover[A]) Name() string {
	return "uniform"
}

func (c UniformCrossover[A]) Recombine(rng *rand.Rand, a, b gene.Chromosome[A]) ([]gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := requireEqualLength[A]("uniform", a, b); err != nil {
		return nil, err
	}
	swapProb := c.SwapProb
	if swapProb == 0 {
		swapProb = 0.5
	}
	if swapProb < 0 || swapProb > 1 {
		return nil, fmt.Errorf("uniform crossover swap probability must be in [0, 1]: %v", swapProb)
	}

	child1 := a.Clone()
	child2 := b.Clone()
	for i := range child1 {
		if rng.Float64() < swapProb {
			child1[i], child2[i] = child2[i], child1[i]
		}
	}
	return []gene.Chromosome[A]{child1, child2}, nil
}

// CutSpliceCrossover draws an independent cut point for each parent and
// concatenates the prefix of one with the suffix of the other. Parents may
// have different lengths, and children lengths are ca+(lb-cb) and
// cb+(la-ca). This is the only recombination operator that changes
// chromosome length.
type CutSpliceCrossover[A any] struct{}

func (CutSpliceCrossover[A]) Name() string {
	return "cut_splice"
}

func (CutSpliceCrossover[A]) Recombine(rng *rand.Rand, a, b gene.Chromosome[A]) ([]gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(a) < 2 || len(b) < 2 {
		return nil, fmt.Errorf("cut_splice crossover requires parents of length >= 2: %d, %d", len(a), len(b))
	}

	ca := 1 + rng.Intn(len(a)-1)
	cb := 1 + rng.Intn(len(b)-1)
	child1 := append(a[:ca].Clone(), b[cb:]...)
	child2 := append(b[:cb].Clone(), a[ca:]...)
	return []gene.Chromosome[A]{child1, child2}, nil
}
