// Package encoding supplies chromosome and allele generators for the
// common encoding schemes: binary, bounded integer, bounded real, symbol
// set, and permutation. An encoding pairs the generator used at population
// initialization with the allele domain mutation draws from.
package encoding

import (
	"fmt"
	"math/rand"

	"golang.org/x/exp/constraints"

	"genos/internal/evo"
	"genos/internal/gene"
)

// Spec couples a chromosome generator with its allele domain.
type Spec[A any] struct {
	Generate evo.GenerateFunc[A]
	Allele   evo.AlleleGenerator[A]
}

// Binary produces fixed-length chromosomes of 0/1 alleles.
func Binary(length int) (Spec[byte], error) {
	if length <= 0 {
		return Spec[byte]{}, fmt.Errorf("chromosome length must be > 0: %d", length)
	}

	allele := func(rng *rand.Rand) byte {
		return byte(rng.Intn(2))
	}
	return Spec[byte]{
		Generate: fixedLength(length, allele),
		Allele:   allele,
	}, nil
}

// IntRange produces chromosomes of integers drawn uniformly from [lo, hi].
func IntRange[T constraints.Integer](length int, lo, hi T) (Spec[T], error) {
	if length <= 0 {
		return Spec[T]{}, fmt.Errorf("chromosome length must be > 0: %d", length)
	}
	if hi < lo {
		return Spec[T]{}, fmt.Errorf("integer range is empty: [%v, %v]", lo, hi)
	}

	allele := func(rng *rand.Rand) T {
		return lo + T(rng.Int63n(int64(hi-lo)+1))
	}
	return Spec[T]{
		Generate: fixedLength(length, allele),
		Allele:   allele,
	}, nil
}

// RealRange produces chromosomes of reals drawn uniformly from [lo, hi).
func RealRange[T constraints.Float](length int, lo, hi T) (Spec[T], error) {
	if length <= 0 {
		return Spec[T]{}, fmt.Errorf("chromosome length must be > 0: %d", length)
	}
	if hi <= lo {
		return Spec[T]{}, fmt.Errorf("real range is empty: [%v, %v)", lo, hi)
	}

	allele := func(rng *rand.Rand) T {
		return lo + T(rng.Float64())*(hi-lo)
	}
	return Spec[T]{
		Generate: fixedLength(length, allele),
		Allele:   allele,
	}, nil
}

// Symbols produces chromosomes whose alleles are drawn uniformly from a
// fixed symbol set.
func Symbols[A any](length int, domain []A) (Spec[A], error) {
	if length <= 0 {
		return Spec[A]{}, fmt.Errorf("chromosome length must be > 0: %d", length)
	}
	if len(domain) == 0 {
		return Spec[A]{}, fmt.Errorf("symbol domain must not be empty")
	}

	values := make([]A, len(domain))
	copy(values, domain)
	allele := func(rng *rand.Rand) A {
		return values[rng.Intn(len(values))]
	}
	return Spec[A]{
		Generate: fixedLength(length, allele),
		Allele:   allele,
	}, nil
}

// Permutation produces chromosomes that are random shuffles of the given
// value set. There is no free allele domain: permutation encodings mutate
// by swapping, never by redrawing, so Allele is nil.
func Permutation[A comparable](values []A) (Spec[A], error) {
	if len(values) < 2 {
		return Spec[A]{}, fmt.Errorf("permutation encoding needs at least 2 values: %d", len(values))
	}
	seen := make(map[A]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			return Spec[A]{}, fmt.Errorf("permutation values must be distinct: %v", v)
		}
		seen[v] = struct{}{}
	}

	base := make([]A, len(values))
	copy(base, values)
	return Spec[A]{
		Generate: func(rng *rand.Rand) (gene.Chromosome[A], error) {
			c := make(gene.Chromosome[A], len(base))
			copy(c, base)
			rng.Shuffle(len(c), func(i, j int) {
				c[i], c[j] = c[j], c[i]
			})
			return c, nil
		},
	}, nil
}

func fixedLength[A any](length int, allele evo.AlleleGenerator[A]) evo.GenerateFunc[A] {
	return func(rng *rand.Rand) (gene.Chromosome[A], error) {
		c := make(gene.Chromosome[A], length)
		for i := range c {
			c[i] = allele(rng)
		}
		return c, nil
	}
}
