package evo

import (
	"fmt"

	"genos/internal/gene"
)

// MergeElites injects the top eliteCount individuals of the previous,
// fully evaluated generation verbatim into the next generation, displacing
// children from the tail so the merged population has exactly size members.
// Elites keep their cached fitness; children are not re-ranked here because
// they have not been evaluated yet. When the children fall short of
// size-eliteCount the merge fails: breeding is responsible for producing
// enough offspring.
func MergeElites[A any](prev, children gene.Population[A], size, eliteCount int, dir gene.Direction) (gene.Population[A], error) {
	if size <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if eliteCount < 0 || eliteCount >= size {
		return nil, fmt.Errorf("elite count must be in [0, population size): %d", eliteCount)
	}
	if eliteCount > len(prev) {
		return nil, fmt.Errorf("elite count %d exceeds previous generation size %d", eliteCount, len(prev))
	}
	if len(children) < size-eliteCount {
		return nil, fmt.Errorf("not enough children to fill generation: got %d, need %d", len(children), size-eliteCount)
	}
	if eliteCount > 0 && !prev.Evaluated() {
		return nil, fmt.Errorf("elitism requires an evaluated previous generation")
	}

	merged := make(gene.Population[A], 0, size)
	merged = append(merged, children[:size-eliteCount]...)
	for _, elite := range prev.Ranked(dir)[:eliteCount] {
		merged = append(merged, elite.Clone())
	}
	return merged, nil
}
