// Package model defines the persistent record types of the run archive.
package model

import (
	"encoding/json"
	"time"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one archived evolution run.
type RunRecord struct {
	VersionedRecord
	ID               string    `json:"id"`
	Problem          string    `json:"problem"`
	Direction        string    `json:"direction"`
	Seed             int64     `json:"seed"`
	PopulationSize   int       `json:"population_size"`
	ChromosomeLength int       `json:"chromosome_length"`
	EliteCount       int       `json:"elite_count"`
	MaxGenerations   int       `json:"max_generations"`
	MutationRate     float64   `json:"mutation_rate"`
	CrossoverRate    float64   `json:"crossover_rate"`
	Crossover        string    `json:"crossover"`
	Selection        string    `json:"selection"`
	Mutation         string    `json:"mutation"`
	State            string    `json:"state"`
	Reason           string    `json:"reason"`
	Generations      int       `json:"generations"`
	Evaluations      int       `json:"evaluations"`
	BestFitness      float64   `json:"best_fitness"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// GenerationRecord is one generation-boundary summary of a run.
type GenerationRecord struct {
	Generation   int     `json:"generation"`
	BestFitness  float64 `json:"best_fitness"`
	MeanFitness  float64 `json:"mean_fitness"`
	WorstFitness float64 `json:"worst_fitness"`
	StdDev       float64 `json:"stddev"`
	BestEver     float64 `json:"best_ever"`
}

// BestRecord stores the best chromosome of a run. The chromosome payload is
// encoding-specific, so it is kept as raw JSON.
type BestRecord struct {
	VersionedRecord
	RunID      string          `json:"run_id"`
	Fitness    float64         `json:"fitness"`
	Born       int             `json:"born"`
	Chromosome json.RawMessage `json:"chromosome"`
}
