package evo

// GenerationSummary is the record handed to observers once per generation
// boundary, after the generation's population has been evaluated.
type GenerationSummary struct {
	Generation   int     `json:"generation"`
	BestFitness  float64 `json:"best_fitness"`
	MeanFitness  float64 `json:"mean_fitness"`
	WorstFitness float64 `json:"worst_fitness"`
	StdDev       float64 `json:"stddev"`
	BestEver     float64 `json:"best_ever"`
}

// Observer receives generation-boundary events. The engine makes no
// assumption about what an observer does with them.
type Observer interface {
	OnGeneration(summary GenerationSummary)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(GenerationSummary)

func (f ObserverFunc) OnGeneration(summary GenerationSummary) {
	f(summary)
}

// NopObserver ignores every event. It is the engine default.
type NopObserver struct{}

func (NopObserver) OnGeneration(GenerationSummary) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnGeneration(summary GenerationSummary) {
	for _, o := range m {
		o.OnGeneration(summary)
	}
}
