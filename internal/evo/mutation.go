package evo

import (
	"fmt"
	"math/rand"

	"genos/internal/gene"
)

// Mutator perturbs a chromosome's alleles and returns a fresh chromosome,
// possibly of a different length. The mutation rate is per-allele: it is the
// probability that each allele position mutates independently, not the
// probability that the chromosome as a whole is touched.
type Mutator[A any] interface {
	Name() string
	Mutate(rng *rand.Rand, c gene.Chromosome[A]) (gene.Chromosome[A], error)
}

// AlleleGenerator draws a fresh allele from the encoding's domain. It is
// used for point replacement and for insertion events.
type AlleleGenerator[A any] func(rng *rand.Rand) A

// PointMutator replaces each allele, independently with probability Rate,
// by a fresh draw from the allele domain. Chromosome length is preserved.
type PointMutator[A any] struct {
	Rate   float64
	Allele AlleleGenerator[A]
}

func NewPointMutator[A any](rate float64, allele AlleleGenerator[A]) (PointMutator[A], error) {
	if rate < 0 || rate > 1 {
		return PointMutator[A]{}, fmt.Errorf("mutation rate must be in [0, 1]: %v", rate)
	}
	if allele == nil {
		return PointMutator[A]{}, fmt.Errorf("allele generator is required")
	}
	return PointMutator[A]{Rate: rate, Allele: allele}, nil
}

func (PointMutator[A]) Name() string {
	return "point"
}

func (m PointMutator[A]) Mutate(rng *rand.Rand, c gene.Chromosome[A]) (gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	mutant := c.Clone()
	for i := range mutant {
		if rng.Float64() < m.Rate {
			mutant[i] = m.Allele(rng)
		}
	}
	return mutant, nil
}

// VariableLengthMutator applies per-allele point mutation where each
// mutation event is an insertion with probability InsertProb, a deletion
// with probability DeleteProb, and a replacement otherwise. Deletions are
// suppressed once they would shrink the chromosome below MinLength.
type VariableLengthMutator[A any] struct {
	Rate       float64
	InsertProb float64
	DeleteProb float64
	MinLength  int
	Allele     AlleleGenerator[A]
}

func NewVariableLengthMutator[A any](rate, insertProb, deleteProb float64, minLength int, allele AlleleGenerator[A]) (VariableLengthMutator[A], error) {
	if rate < 0 || rate > 1 {
		return VariableLengthMutator[A]{}, fmt.Errorf("mutation rate must be in [0, 1]: %v", rate)
	}
	if insertProb < 0 || deleteProb < 0 || insertProb+deleteProb > 1 {
		return VariableLengthMutator[A]{}, fmt.Errorf("insert and delete probabilities must be non-negative and sum to <= 1: %v, %v", insertProb, deleteProb)
	}
	if minLength < 1 {
		return VariableLengthMutator[A]{}, fmt.Errorf("minimum length must be >= 1: %d", minLength)
	}
	if allele == nil {
		return VariableLengthMutator[A]{}, fmt.Errorf("allele generator is required")
	}
	return VariableLengthMutator[A]{
		Rate:       rate,
		InsertProb: insertProb,
		DeleteProb: deleteProb,
		MinLength:  minLength,
		Allele:     allele,
	}, nil
}

func (VariableLengthMutator[A]) Name() string {
	return "variable_length"
}

func (m VariableLengthMutator[A]) Mutate(rng *rand.Rand, c gene.Chromosome[A]) (gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	mutant := make(gene.Chromosome[A], 0, len(c))
	deletions := 0
	for _, allele := range c {
		if rng.Float64() >= m.Rate {
			mutant = append(mutant, allele)
			continue
		}
		event := rng.Float64()
		switch {
		case event < m.InsertProb:
			mutant = append(mutant, m.Allele(rng), allele)
		case event < m.InsertProb+m.DeleteProb && len(c)-deletions > m.MinLength:
			deletions++
		case event < m.InsertProb+m.DeleteProb:
			// Deletion would violate the minimum length; keep the allele.
			mutant = append(mutant, allele)
		default:
			mutant = append(mutant, m.Allele(rng))
		}
	}
	return mutant, nil
}

// SwapMutator exchanges each allele, independently with probability Rate,
// with another uniformly chosen locus. Designed for permutation encodings:
// it never introduces or removes values.
type SwapMutator[A any] struct {
	Rate float64
}

func NewSwapMutator[A any](rate float64) (SwapMutator[A], error) {
	if rate < 0 || rate > 1 {
		return SwapMutator[A]{}, fmt.Errorf("mutation rate must be in [0, 1]: %v", rate)
	}
	return SwapMutator[A]{Rate: rate}, nil
}

func (SwapMutator[A]) Name() string {
	return "swap"
}

func (m SwapMutator[A]) Mutate(rng *rand.Rand, c gene.Chromosome[A]) (gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	mutant := c.Clone()
	if len(mutant) < 2 {
		return mutant, nil
	}
	for i := range mutant {
		if rng.Float64() < m.Rate {
			j := i
			for j == i {
				j = rng.Intn(len(mutant))
			}
			mutant[i], mutant[j] = mutant[j], mutant[i]
		}
	}
	return mutant, nil
}
