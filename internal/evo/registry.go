package evo

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCrossover = errors.New("unknown crossover operator")
	ErrUnknownSelector  = errors.New("unknown selection strategy")
	ErrUnknownMutator   = errors.New("unknown mutation operator")
)

// Operator configuration surfaces. Names map one-to-one onto concrete
// strategies and are resolved once at startup; there is no dynamic dispatch
// by name afterwards.

type CrossoverConfig struct {
	Points   int     // n_point
	SwapProb float64 // uniform; 0 means 0.5
}

type SelectorConfig struct {
	TournamentSize int
	PBest          float64 // 0 means 1.0
}

type MutatorConfig struct {
	Rate       float64
	InsertProb float64 // variable_length
	DeleteProb float64 // variable_length
	MinLength  int     // variable_length; 0 means 1
}

// CrossoverNames lists the operators ResolveCrossover accepts. The
// permutation operators require comparable alleles and live behind
// ResolvePermutationCrossover.
func CrossoverNames() []string {
	return []string{"single_point", "n_point", "uniform", "cut_splice"}
}

func PermutationCrossoverNames() []string {
	return append(CrossoverNames(), "ordered", "partially_matched", "edge_recombination")
}

func SelectorNames() []string {
	return []string{"proportionate", "tournament"}
}

func MutatorNames() []string {
	return []string{"point", "variable_length", "swap"}
}

func ResolveCrossover[A any](name string, cfg CrossoverConfig) (Crossover[A], error) {
	switch name {
	case "", "single_point":
		return SinglePointCrossover[A]{}, nil
	case "n_point":
		points := cfg.Points
		if points == 0 {
			points = 2
		}
		return NPointCrossover[A]{Points: points}, nil
	case "uniform":
		return UniformCrossover[A]{SwapProb: cfg.SwapProb}, nil
	case "cut_splice":
		return CutSpliceCrossover[A]{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCrossover, name)
	}
}

// ResolvePermutationCrossover resolves the full operator set, including the
// permutation-only operators that need comparable alleles.
func ResolvePermutationCrossover[A comparable](name string, cfg CrossoverConfig) (Crossover[A], error) {
	switch name {
	case "ordered":
		return OrderedCrossover[A]{}, nil
	case "partially_matched":
		return PartiallyMatchedCrossover[A]{}, nil
	case "edge_recombination":
		return EdgeRecombinationCrossover[A]{}, nil
	default:
		return ResolveCrossover[A](name, cfg)
	}
}

func ResolveSelector[A any](name string, cfg SelectorConfig) (Selector[A], error) {
	switch name {
	case "", "tournament":
		size := cfg.TournamentSize
		if size == 0 {
			size = 3
		}
		return TournamentSelector[A]{Size: size, PBest: cfg.PBest}, nil
	case "proportionate":
		return ProportionateSelector[A]{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSelector, name)
	}
}

func ResolveMutator[A any](name string, cfg MutatorConfig, allele AlleleGenerator[A]) (Mutator[A], error) {
	switch name {
	case "", "point":
		m, err := NewPointMutator(cfg.Rate, allele)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "variable_length":
		minLength := cfg.MinLength
		if minLength == 0 {
			minLength = 1
		}
		m, err := NewVariableLengthMutator(cfg.Rate, cfg.InsertProb, cfg.DeleteProb, minLength, allele)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "swap":
		m, err := NewSwapMutator[A](cfg.Rate)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMutator, name)
	}
}
