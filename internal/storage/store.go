// Package storage archives completed and in-progress runs: run records,
// per-generation summaries, and best chromosomes. The engine itself never
// touches a store; archiving is wired through the observer hook by the
// facade and CLI layers.
package storage

import (
	"context"

	"genos/internal/model"
)

// Store defines persistence operations for the run archive.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	AppendGeneration(ctx context.Context, runID string, record model.GenerationRecord) error
	GetGenerations(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	SaveBest(ctx context.Context, best model.BestRecord) error
	GetBest(ctx context.Context, runID string) (model.BestRecord, bool, error)
}
