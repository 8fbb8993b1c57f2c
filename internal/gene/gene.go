// Package gene defines the genetic representation shared by every operator:
// chromosomes, individuals, populations, and the optimization direction.
package gene

import (
	"fmt"
	"sort"
)

// Direction selects whether higher or lower fitness is better.
type Direction int

const (
	Maximize Direction = iota
	Minimize
)

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "maximize", "max":
		return Maximize, nil
	case "minimize", "min":
		return Minimize, nil
	default:
		return Maximize, fmt.Errorf("unknown optimization direction: %s", s)
	}
}

func (d Direction) String() string {
	if d == Minimize {
		return "minimize"
	}
	return "maximize"
}

// Better reports whether fitness a is strictly better than b.
func (d Direction) Better(a, b float64) bool {
	if d == Minimize {
		return a < b
	}
	return a > b
}

// Reached reports whether fitness a has reached or passed the target.
func (d Direction) Reached(a, target float64) bool {
	if d == Minimize {
		return a <= target
	}
	return a >= target
}

// Chromosome is an ordered sequence of alleles. The allele type is
// encoding-defined; the engine treats it opaquely. Operators never mutate a
// chromosome in place; they clone and return fresh storage.
type Chromosome[A any] []A

func (c Chromosome[A]) Clone() Chromosome[A] {
	if c == nil {
		return nil
	}
	out := make(Chromosome[A], len(c))
	copy(out, c)
	return out
}

// Individual is a chromosome plus its cached fitness. Evaluated is false
// until a fitness function has scored the chromosome.
type Individual[A any] struct {
	Chromosome Chromosome[A]
	Fitness    float64
	Evaluated  bool
	Born       int
}

func (ind Individual[A]) Clone() Individual[A] {
	out := ind
	out.Chromosome = ind.Chromosome.Clone()
	return out
}

// Population is the ordered set of individuals evolved together in one
// generation. Duplicates are allowed.
type Population[A any] []Individual[A]

func (p Population[A]) Clone() Population[A] {
	out := make(Population[A], len(p))
	for i, ind := range p {
		out[i] = ind.Clone()
	}
	return out
}

// Evaluated reports whether every individual carries a cached fitness.
func (p Population[A]) Evaluated() bool {
	for _, ind := range p {
		if !ind.Evaluated {
			return false
		}
	}
	return true
}

// Ranked returns a copy of the population sorted best-first for the given
// direction. The sort is stable so equal-fitness individuals keep their
// relative order.
func (p Population[A]) Ranked(dir Direction) Population[A] {
	out := make(Population[A], len(p))
	copy(out, p)
	sort.SliceStable(out, func(i, j int) bool {
		return dir.Better(out[i].Fitness, out[j].Fitness)
	})
	return out
}

// Best returns the best evaluated individual for the given direction.
func (p Population[A]) Best(dir Direction) (Individual[A], error) {
	if len(p) == 0 {
		return Individual[A]{}, fmt.Errorf("population is empty")
	}
	best := p[0]
	for _, ind := range p[1:] {
		if dir.Better(ind.Fitness, best.Fitness) {
			best = ind
		}
	}
	return best, nil
}
