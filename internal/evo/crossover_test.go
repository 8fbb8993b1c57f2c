package evo

import (
	"math/rand"
	"testing"

	"genos/internal/gene"
)

func intChromosome(values ...int) gene.Chromosome[int] {
	return gene.Chromosome[int](values)
}

func TestSinglePointCrossover(t *testing.T) {
	a := intChromosome(0, 1, 2, 3, 4, 5, 6, 7)
	b := intChromosome(10, 11, 12, 13, 14, 15, 16, 17)
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 200; trial++ {
		children, err := (SinglePointCrossover[int]{}).Recombine(rng, a, b)
		if err != nil {
			t.Fatalf("recombine: %v", err)
		}
		if len(children) != 2 {
			t.Fatalf("got %d children, want 2", len(children))
		}

		switches := 0
		for i := range a {
			if children[0][i] == a[i] && children[1][i] != b[i] {
				t.Fatalf("child2 is not the complement at locus %d", i)
			}
			if children[0][i] == b[i] && children[1][i] != a[i] {
				t.Fatalf("child2 is not the complement at locus %d", i)
			}
			if i > 0 {
				fromA := children[0][i] < 10
				prevFromA := children[0][i-1] < 10
				if fromA != prevFromA {
					switches++
				}
			}
		}
		if switches != 1 {
			t.Fatalf("single point crossover switched sources %d times, want 1", switches)
		}
		if children[0][0] != a[0] || children[0][len(a)-1] != b[len(b)-1] {
			t.Fatal("cut point fell outside [1, len-1]")
		}
	}
}

func TestSinglePointCrossoverRequiresEqualLength(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	_, err := (SinglePointCrossover[int]{}).Recombine(rng, intChromosome(1, 2, 3), intChromosome(1, 2))
	if err == nil {
		t.Fatal("expected error for unequal parents")
	}
}

func TestCrossoverDoesNotAliasParents(t *testing.T) {
	a := intChromosome(0, 1, 2, 3)
	b := intChromosome(4, 5, 6, 7)
	rng := rand.New(rand.NewSource(3))

	children, err := (SinglePointCrossover[int]{}).Recombine(rng, a, b)
	if err != nil {
		t.Fatalf("recombine: %v", err)
	}
	for i := range children[0] {
		children[0][i] = -1
		children[1][i] = -1
	}
	for i := range a {
		if a[i] != i || b[i] != i+4 {
			t.Fatal("children share allele storage with parents")
		}
	}
}

func TestDrawCutPointsBoundsAndDistinctness(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const length = 8

	for trial := 0; trial < 2000; trial++ {
		cuts := drawCutPoints(rng, 3, length)
		if len(cuts) != 3 {
			t.Fatalf("got %d cut points, want 3", len(cuts))
		}
		seen := map[int]struct{}{}
		prev := 0
		for _, cut := range cuts {
			if cut < 1 || cut > length-1 {
				t.Fatalf("cut point %d outside [1, %d]", cut, length-1)
			}
			if _, dup := seen[cut]; dup {
				t.Fatalf("duplicate cut point %d", cut)
			}
			if cut <= prev {
				t.Fatalf("cut points not sorted ascending: %v", cuts)
			}
			seen[cut] = struct{}{}
			prev = cut
		}
	}
}

func TestDrawCutPointsCoversFullRange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const length = 8
	seen := map[int]struct{}{}

	for trial := 0; trial < 2000; trial++ {
		for _, cut := range drawCutPoints(rng, 1, length) {
			seen[cut] = struct{}{}
		}
	}
	for cut := 1; cut <= length-1; cut++ {
		if _, ok := seen[cut]; !ok {
			t.Fatalf("cut point %d never drawn in 2000 trials", cut)
		}
	}
	if _, ok := seen[0]; ok {
		t.Fatal("0 must never be a cut point")
	}
	if _, ok := seen[length]; ok {
		t.Fatal("len must never be a cut point")
	}
}

func TestNPointCrossoverAlternatesSegments(t *testing.T) {
	a := intChromosome(0, 1, 2, 3, 4, 5, 6, 7)
	b := intChromosome(10, 11, 12, 13, 14, 15, 16, 17)
	rng := rand.New(rand.NewSource(6))
	op := NPointCrossover[int]{Points: 3}

	for trial := 0; trial < 200; trial++ {
		children, err := op.Recombine(rng, a, b)
		if err != nil {
			t.Fatalf("recombine: %v", err)
		}
		if len(children) != 2 {
			t.Fatalf("got %d children, want 2", len(children))
		}

		switches := 0
		for i := range a {
			// Position pairs are drawn entirely from the parents.
			if children[0][i] != a[i] && children[0][i] != b[i] {
				t.Fatalf("novel allele %d at locus %d", children[0][i], i)
			}
			if children[0][i] == a[i] && children[1][i] != b[i] {
				t.Fatalf("child2 not complementary at locus %d", i)
			}
			if i > 0 && (children[0][i] < 10) != (children[0][i-1] < 10) {
				switches++
			}
		}
		if switches != 3 {
			t.Fatalf("3-point crossover switched sources %d times, want 3", switches)
		}
		if children[0][0] != a[0] {
			t.Fatal("first segment must come from parent a")
		}
	}
}

func TestNPointCrossoverValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := intChromosome(0, 1, 2)
	b := intChromosome(3, 4, 5)

	if _, err := (NPointCrossover[int]{Points: 0}).Recombine(rng, a, b); err == nil {
		t.Fatal("expected error for zero cut points")
	}
	if _, err := (NPointCrossover[int]{Points: 3}).Recombine(rng, a, b); err == nil {
		t.Fatal("expected error for more points than loci")
	}
}

func TestUniformCrossoverPositionsComeFromParents(t *testing.T) {
	a := intChromosome(0, 1, 2, 3, 4, 5, 6, 7)
	b := intChromosome(10, 11, 12, 13, 14, 15, 16, 17)
	rng := rand.New(rand.NewSource(8))

	sawSwap, sawKeep := false, false
	for trial := 0; trial < 100; trial++ {
		children, err := (UniformCrossover[int]{}).Recombine(rng, a, b)
		if err != nil {
			t.Fatalf("recombine: %v", err)
		}
		for i := range a {
			pair := map[int]struct{}{children[0][i]: {}, children[1][i]: {}}
			if _, ok := pair[a[i]]; !ok {
				t.Fatalf("locus %d lost parent a's allele", i)
			}
			if _, ok := pair[b[i]]; !ok {
				t.Fatalf("locus %d lost parent b's allele", i)
			}
			if children[0][i] == b[i] {
				sawSwap = true
			} else {
				sawKeep = true
			}
		}
	}
	if !sawSwap || !sawKeep {
		t.Fatal("uniform crossover never exercised both outcomes")
	}
}

func TestCutSpliceCrossoverLengthLaw(t *testing.T) {
	// Parent a uses values < 100, parent b values >= 100, so the cut points
	// can be recovered from the children.
	a := intChromosome(0, 1, 2, 3, 4)
	b := intChromosome(100, 101, 102, 103, 104, 105, 106)
	rng := rand.New(rand.NewSource(9))

	for trial := 0; trial < 500; trial++ {
		children, err := (CutSpliceCrossover[int]{}).Recombine(rng, a, b)
		if err != nil {
			t.Fatalf("recombine: %v", err)
		}
		if len(children) != 2 {
			t.Fatalf("got %d children, want 2", len(children))
		}

		ca := 0
		for _, v := range children[0] {
			if v < 100 {
				ca++
			}
		}
		cb := len(b) - (len(children[0]) - ca)
		if ca < 1 || ca > len(a)-1 {
			t.Fatalf("cut point ca=%d outside [1, %d]", ca, len(a)-1)
		}
		if cb < 1 || cb > len(b)-1 {
			t.Fatalf("cut point cb=%d outside [1, %d]", cb, len(b)-1)
		}

		if len(children[0]) != ca+len(b)-cb {
			t.Fatalf("child1 length %d, want ca+(lb-cb)=%d", len(children[0]), ca+len(b)-cb)
		}
		if len(children[1]) != cb+len(a)-ca {
			t.Fatalf("child2 length %d, want cb+(la-ca)=%d", len(children[1]), cb+len(a)-ca)
		}
		if len(children[0])+len(children[1]) != len(a)+len(b) {
			t.Fatal("cut and splice must conserve total allele count")
		}

		for i, v := range children[0] {
			if i < ca && v != a[i] {
				t.Fatalf("child1 prefix diverges from parent a at %d", i)
			}
			if i >= ca && v != b[cb+i-ca] {
				t.Fatalf("child1 suffix diverges from parent b at %d", i)
			}
		}
	}
}

func TestCutSpliceCrossoverAllowsUnequalParents(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	if _, err := (CutSpliceCrossover[int]{}).Recombine(rng, intChromosome(1, 2), intChromosome(3, 4, 5, 6)); err != nil {
		t.Fatalf("recombine unequal parents: %v", err)
	}
	if _, err := (CutSpliceCrossover[int]{}).Recombine(rng, intChromosome(1), intChromosome(3, 4)); err == nil {
		t.Fatal("expected error for a parent shorter than 2")
	}
}
