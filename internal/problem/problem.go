// Package problem holds the built-in demonstration problems wired by the
// CLI layer. Problem-specific fitness never leaks into the engine; these
// are ordinary collaborator fitness functions over binary chromosomes.
package problem

import (
	"fmt"
	"math"
	"math/rand"

	"genos/internal/evo"
	"genos/internal/gene"
)

// OneMax scores a binary chromosome by its count of one-bits.
func OneMax() evo.FitnessFunc[byte] {
	return func(c gene.Chromosome[byte]) (float64, error) {
		ones := 0
		for _, b := range c {
			if b != 0 {
				ones++
			}
		}
		return float64(ones), nil
	}
}

// KnapsackItem is one candidate item for the 0/1 knapsack.
type KnapsackItem struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

// GenerateKnapsackItems builds a random item set for the 0/1 knapsack
// problem with weights in [1, 10) and values in [1, 100).
func GenerateKnapsackItems(rng *rand.Rand, count int) []KnapsackItem {
	items := make([]KnapsackItem, count)
	for i := range items {
		items[i] = KnapsackItem{
			Name:   fmt.Sprintf("item-%d", i),
			Weight: 1 + rng.Float64()*9,
			Value:  1 + rng.Float64()*99,
		}
	}
	return items
}

// City is one stop on a planar tour.
type City struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// GenerateCities places cities uniformly on a 100x100 plane.
func GenerateCities(rng *rand.Rand, count int) []City {
	cities := make([]City, count)
	for i := range cities {
		cities[i] = City{
			Name: fmt.Sprintf("city-%d", i),
			X:    rng.Float64() * 100,
			Y:    rng.Float64() * 100,
		}
	}
	return cities
}

// TourLength scores a tour over the given cities by its total Euclidean
// length, returning to the starting city. Tours are permutation chromosomes
// of city indices; shorter is better, so runs minimize.
func TourLength(cities []City) (evo.FitnessFunc[byte], error) {
	if len(cities) < 3 {
		return nil, fmt.Errorf("a tour needs at least 3 cities: %d", len(cities))
	}

	return func(c gene.Chromosome[byte]) (float64, error) {
		if len(c) != len(cities) {
			return 0, fmt.Errorf("tour length %d does not match city count %d", len(c), len(cities))
		}
		total := 0.0
		for i := range c {
			from, to := int(c[i]), int(c[(i+1)%len(c)])
			if from >= len(cities) || to >= len(cities) {
				return 0, fmt.Errorf("tour references city %d, only %d exist", from, len(cities))
			}
			total += math.Hypot(cities[to].X-cities[from].X, cities[to].Y-cities[from].Y)
		}
		return total, nil
	}, nil
}

// Knapsack scores a binary selection mask over items: the summed value of
// the selected items, or zero when their weight exceeds the capacity.
func Knapsack(items []KnapsackItem, capacity float64) (evo.FitnessFunc[byte], error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("knapsack needs at least one item")
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("knapsack capacity must be > 0: %v", capacity)
	}

	return func(c gene.Chromosome[byte]) (float64, error) {
		if len(c) != len(items) {
			return 0, fmt.Errorf("chromosome length %d does not match item count %d", len(c), len(items))
		}
		weight, value := 0.0, 0.0
		for i, b := range c {
			if b != 0 {
				weight += items[i].Weight
				value += items[i].Value
			}
		}
		if weight > capacity {
			return 0, nil
		}
		return value, nil
	}, nil
}
