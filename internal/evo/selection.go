package evo

import (
	"fmt"
	"math/rand"
	"sort"

	"genos/internal/gene"
)

// Selector chooses parents from an evaluated population. Selection is with
// replacement: the same individual may appear more than once in the result,
// and count may exceed the population size.
type Selector[A any] interface {
	Name() string
	Select(rng *rand.Rand, pop gene.Population[A], count int, dir gene.Direction) ([]gene.Individual[A], error)
}

// ProportionateSelector draws parents with probability proportional to
// fitness. Weights are shifted so every effective weight is non-negative; a
// zero total weight falls back to uniform selection rather than failing.
type ProportionateSelector[A any] struct{}

func (ProportionateSelector[A]) Name() string {
	return "proportionate"
}

func (ProportionateSelector[A]) Select(rng *rand.Rand, pop gene.Population[A], count int, dir gene.Direction) ([]gene.Individual[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(pop) == 0 {
		return nil, fmt.Errorf("cannot select from an empty population")
	}
	if !pop.Evaluated() {
		return nil, fmt.Errorf("proportionate selection requires an evaluated population")
	}

	weights := proportionateWeights(pop, dir)
	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cumulative[i] = total
	}

	selected := make([]gene.Individual[A], 0, count)
	for i := 0; i < count; i++ {
		if total == 0 {
			// Degenerate population: every weight is zero. Documented
			// fallback to uniform choice, not an error.
			selected = append(selected, pop[rng.Intn(len(pop))])
			continue
		}
		draw := rng.Float64() * total
		idx := sort.SearchFloat64s(cumulative, draw)
		for idx < len(cumulative) && cumulative[idx] <= draw {
			idx++
		}
		if idx >= len(pop) {
			idx = len(pop) - 1
		}
		selected = append(selected, pop[idx])
	}
	return selected, nil
}

// proportionateWeights maps fitness to non-negative selection weights. For
// minimization the scale is inverted so the lowest fitness carries the
// largest weight.
func proportionateWeights[A any](pop gene.Population[A], dir gene.Direction) []float64 {
	weights := make([]float64, len(pop))
	if dir == gene.Minimize {
		max := pop[0].Fitness
		for _, ind := range pop[1:] {
			if ind.Fitness > max {
				max = ind.Fitness
			}
		}
		for i, ind := range pop {
			weights[i] = max - ind.Fitness
		}
		return weights
	}

	min := pop[0].Fitness
	for _, ind := range pop[1:] {
		if ind.Fitness < min {
			min = ind.Fitness
		}
	}
	shift := 0.0
	if min < 0 {
		shift = -min
	}
	for i, ind := range pop {
		weights[i] = ind.Fitness + shift
	}
	return weights
}

// TournamentSelector draws Size contestants uniformly with replacement and
// walks their fitness ranking: the best wins with probability PBest, else
// the second-best with probability PBest, and so on down the ranking. The
// last contestant is the fallback when every coin flip fails. Size 1
// degenerates to uniform random selection.
type TournamentSelector[A any] struct {
	Size  int
	PBest float64
}

func (TournamentSelector[A]) Name() string {
	return "tournament"
}

func (s TournamentSelector[A]) Select(rng *rand.Rand, pop gene.Population[A], count int, dir gene.Direction) ([]gene.Individual[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(pop) == 0 {
		return nil, fmt.Errorf("cannot select from an empty population")
	}
	if s.Size <= 0 {
		return nil, fmt.Errorf("tournament size must be > 0")
	}
	pBest := s.PBest
	if pBest == 0 {
		pBest = 1.0
	}
	if pBest < 0 || pBest > 1 {
		return nil, fmt.Errorf("tournament p_best must be in [0, 1]: %v", pBest)
	}

	selected := make([]gene.Individual[A], 0, count)
	contestants := make([]gene.Individual[A], s.Size)
	for i := 0; i < count; i++ {
		for j := range contestants {
			contestants[j] = pop[rng.Intn(len(pop))]
		}
		sort.SliceStable(contestants, func(a, b int) bool {
			return dir.Better(contestants[a].Fitness, contestants[b].Fitness)
		})

		winner := contestants[len(contestants)-1]
		for _, c := range contestants[:len(contestants)-1] {
			if rng.Float64() < pBest {
				winner = c
				break
			}
		}
		selected = append(selected, winner)
	}
	return selected, nil
}
