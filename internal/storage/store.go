package storage

import (
	"context"

	"langchange/internal/model"
)

// Store persists the reported aggregates of finished runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFrequencyTable(ctx context.Context, runID string, table model.FrequencyTable) error
	GetFrequencyTable(ctx context.Context, runID string) (model.FrequencyTable, bool, error)
	SaveHierarchy(ctx context.Context, runID string, hierarchy model.Hierarchy) error
	GetHierarchy(ctx context.Context, runID string) (model.Hierarchy, bool, error)
}
