package evo

import (
	"fmt"
	"math/rand"
	"sort"

	"genos/internal/gene"
)

// Permutation operators require comparable alleles so they can track which
// values a child already carries. All three produce exactly 2 children by
// running the underlying recombination twice with the parent roles swapped.

// OrderedCrossover (OX) copies a prefix from one parent and fills the rest
// with the other parent's alleles in their original order. Relative allele
// order is respected; absolute positions are not.
type OrderedCrossover[A comparable] struct{}

func (OrderedCrossover[A]) Name() string {
	return "ordered"
}

func (OrderedCrossover[A]) Recombine(rng *rand.Rand, a, b gene.Chromosome[A]) ([]gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := requireEqualLength[A]("ordered", a, b); err != nil {
		return nil, err
	}

	cut := 1 + rng.Intn(len(a)-1)
	return []gene.Chromosome[A]{orderedChild(a, b, cut), orderedChild(b, a, cut)}, nil
}

func orderedChild[A comparable](first, second gene.Chromosome[A], cut int) gene.Chromosome[A] {
	child := first[:cut].Clone()
	seen := make(map[A]struct{}, cut)
	for _, v := range child {
		seen[v] = struct{}{}
	}
	for _, v := range second {
		if _, ok := seen[v]; !ok {
			child = append(child, v)
		}
	}
	return child
}

// PartiallyMatchedCrossover (PMX) exchanges a segment between the parents
// and repairs duplicates outside the segment by following the value mapping
// the exchange induces. Absolute allele positions are respected.
type PartiallyMatchedCrossover[A comparable] struct{}

func (PartiallyMatchedCrossover[A]) Name() string {
	return "partially_matched"
}

func (PartiallyMatchedCrossover[A]) Recombine(rng *rand.Rand, a, b gene.Chromosome[A]) ([]gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := requireEqualLength[A]("partially_matched", a, b); err != nil {
		return nil, err
	}

	cuts := drawCutPoints(rng, 2, len(a))
	l1, l2 := cuts[0], cuts[1]
	return []gene.Chromosome[A]{pmxChild(a, b, l1, l2), pmxChild(b, a, l1, l2)}, nil
}

func pmxChild[A comparable](base, donor gene.Chromosome[A], l1, l2 int) gene.Chromosome[A] {
	child := base.Clone()
	inSegment := make(map[A]struct{}, l2-l1)
	mapping := make(map[A]A, l2-l1)
	for i := l1; i < l2; i++ {
		child[i] = donor[i]
		inSegment[donor[i]] = struct{}{}
		mapping[donor[i]] = base[i]
	}
	for i := range child {
		if i >= l1 && i < l2 {
			continue
		}
		v := child[i]
		for {
			if _, ok := inSegment[v]; !ok {
				break
			}
			v = mapping[v]
		}
		child[i] = v
	}
	return child
}

// EdgeRecombinationCrossover (ERO) builds children from the union of both
// parents' adjacency sets, preferring the neighbor with the fewest remaining
// neighbors. Useful when edges between alleles matter more than positions,
// as in tour encodings.
type EdgeRecombinationCrossover[A comparable] struct{}

func (EdgeRecombinationCrossover[A]) Name() string {
	return "edge_recombination"
}

func (EdgeRecombinationCrossover[A]) Recombine(rng *rand.Rand, a, b gene.Chromosome[A]) ([]gene.Chromosome[A], error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := requireEqualLength[A]("edge_recombination", a, b); err != nil {
		return nil, err
	}

	return []gene.Chromosome[A]{eroChild(rng, a, b), eroChild(rng, b, a)}, nil
}

func eroChild[A comparable](rng *rand.Rand, first, second gene.Chromosome[A]) gene.Chromosome[A] {
	neighbors := adjacency(first, second)
	indexOf := make(map[A]int, len(first))
	for i, v := range first {
		indexOf[v] = i
	}

	child := make(gene.Chromosome[A], 0, len(first))
	unused := make(map[A]struct{}, len(first))
	for _, v := range first {
		unused[v] = struct{}{}
	}

	node := first[0]
	for len(child) < len(first) {
		child = append(child, node)
		delete(unused, node)
		for _, set := range neighbors {
			delete(set, node)
		}

		if len(neighbors[node]) > 0 {
			node = fewestNeighbors(node, neighbors, indexOf)
		} else if len(unused) > 0 {
			node = randomUnused(rng, first, unused)
		}
	}
	return child
}

// adjacency returns the union of both parents' ring adjacency sets.
func adjacency[A comparable](parents ...gene.Chromosome[A]) map[A]map[A]struct{} {
	neighbors := make(map[A]map[A]struct{})
	for _, parent := range parents {
		end := len(parent) - 1
		for i, v := range parent {
			if neighbors[v] == nil {
				neighbors[v] = make(map[A]struct{})
			}
			left, right := i-1, i+1
			if i == 0 {
				left = end
			}
			if i == end {
				right = 0
			}
			neighbors[v][parent[left]] = struct{}{}
			neighbors[v][parent[right]] = struct{}{}
		}
	}
	return neighbors
}

// fewestNeighbors picks the neighbor with the smallest remaining neighbor
// set, breaking ties by parent position so results are deterministic for a
// given seed.
func fewestNeighbors[A comparable](node A, neighbors map[A]map[A]struct{}, indexOf map[A]int) A {
	type edge struct {
		value A
		count int
		index int
	}
	edges := make([]edge, 0, len(neighbors[node]))
	for v := range neighbors[node] {
		edges = append(edges, edge{value: v, count: len(neighbors[v]), index: indexOf[v]})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].count != edges[j].count {
			return edges[i].count < edges[j].count
		}
		return edges[i].index < edges[j].index
	})
	return edges[0].value
}

func randomUnused[A comparable](rng *rand.Rand, order gene.Chromosome[A], unused map[A]struct{}) A {
	remaining := make([]A, 0, len(unused))
	for _, v := range order {
		if _, ok := unused[v]; ok {
			remaining = append(remaining, v)
		}
	}
	return remaining[rng.Intn(len(remaining))]
}
