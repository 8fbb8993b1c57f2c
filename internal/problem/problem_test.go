package problem

import (
	"math/rand"
	"testing"

	"genos/internal/gene"
)

func TestOneMaxCountsOneBits(t *testing.T) {
	fitness := OneMax()

	cases := []struct {
		c    gene.Chromosome[byte]
		want float64
	}{
		{gene.Chromosome[byte]{}, 0},
		{gene.Chromosome[byte]{0, 0, 0}, 0},
		{gene.Chromosome[byte]{1, 0, 1, 1}, 3},
		{gene.Chromosome[byte]{1, 1, 1, 1, 1}, 5},
	}
	for _, tc := range cases {
		got, err := fitness(tc.c)
		if err != nil {
			t.Fatalf("onemax(%v): %v", tc.c, err)
		}
		if got != tc.want {
			t.Fatalf("onemax(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestGenerateKnapsackItems(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := GenerateKnapsackItems(rng, 25)

	if len(items) != 25 {
		t.Fatalf("got %d items, want 25", len(items))
	}
	names := map[string]bool{}
	for _, item := range items {
		if item.Weight < 1 || item.Weight >= 10 {
			t.Fatalf("item weight %v outside [1, 10)", item.Weight)
		}
		if item.Value < 1 || item.Value >= 100 {
			t.Fatalf("item value %v outside [1, 100)", item.Value)
		}
		if names[item.Name] {
			t.Fatalf("duplicate item name %q", item.Name)
		}
		names[item.Name] = true
	}
}

func TestKnapsackScoring(t *testing.T) {
	items := []KnapsackItem{
		{Name: "a", Weight: 2, Value: 10},
		{Name: "b", Weight: 3, Value: 25},
		{Name: "c", Weight: 5, Value: 40},
	}
	fitness, err := Knapsack(items, 6)
	if err != nil {
		t.Fatalf("knapsack: %v", err)
	}

	got, err := fitness(gene.Chromosome[byte]{1, 1, 0})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 35 {
		t.Fatalf("selection value %v, want 35", got)
	}

	// An overweight selection scores zero, not an error.
	got, err = fitness(gene.Chromosome[byte]{1, 1, 1})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 0 {
		t.Fatalf("overweight selection scored %v, want 0", got)
	}

	got, err = fitness(gene.Chromosome[byte]{0, 0, 0})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 0 {
		t.Fatalf("empty selection scored %v, want 0", got)
	}
}

func TestGenerateCities(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cities := GenerateCities(rng, 10)

	if len(cities) != 10 {
		t.Fatalf("got %d cities, want 10", len(cities))
	}
	names := map[string]bool{}
	for _, city := range cities {
		if city.X < 0 || city.X >= 100 || city.Y < 0 || city.Y >= 100 {
			t.Fatalf("city %q outside the plane: (%v, %v)", city.Name, city.X, city.Y)
		}
		if names[city.Name] {
			t.Fatalf("duplicate city name %q", city.Name)
		}
		names[city.Name] = true
	}
}

func TestTourLengthScoring(t *testing.T) {
	square := []City{
		{Name: "a", X: 0, Y: 0},
		{Name: "b", X: 0, Y: 1},
		{Name: "c", X: 1, Y: 1},
		{Name: "d", X: 1, Y: 0},
	}
	fitness, err := TourLength(square)
	if err != nil {
		t.Fatalf("tour length: %v", err)
	}

	got, err := fitness(gene.Chromosome[byte]{0, 1, 2, 3})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 4 {
		t.Fatalf("square perimeter tour scored %v, want 4", got)
	}

	// A tour crossing the diagonals is strictly longer.
	crossed, err := fitness(gene.Chromosome[byte]{0, 2, 1, 3})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if crossed <= got {
		t.Fatalf("crossed tour scored %v, want > %v", crossed, got)
	}
}

func TestTourLengthValidation(t *testing.T) {
	if _, err := TourLength([]City{{Name: "a"}, {Name: "b"}}); err == nil {
		t.Fatal("expected error for fewer than 3 cities")
	}

	fitness, err := TourLength(GenerateCities(rand.New(rand.NewSource(3)), 4))
	if err != nil {
		t.Fatalf("tour length: %v", err)
	}
	if _, err := fitness(gene.Chromosome[byte]{0, 1, 2}); err == nil {
		t.Fatal("expected error for tour length mismatch")
	}
	if _, err := fitness(gene.Chromosome[byte]{0, 1, 2, 9}); err == nil {
		t.Fatal("expected error for out-of-range city index")
	}
}

func TestKnapsackValidation(t *testing.T) {
	items := []KnapsackItem{{Name: "a", Weight: 1, Value: 1}}

	if _, err := Knapsack(nil, 10); err == nil {
		t.Fatal("expected error for empty item set")
	}
	if _, err := Knapsack(items, 0); err == nil {
		t.Fatal("expected error for non-positive capacity")
	}

	fitness, err := Knapsack(items, 10)
	if err != nil {
		t.Fatalf("knapsack: %v", err)
	}
	if _, err := fitness(gene.Chromosome[byte]{1, 0}); err == nil {
		t.Fatal("expected error for mask length mismatch")
	}
}
