package repository

import (
	"context"

	"github.com/liefhq/injury-api/internal/model"
)

// ReportRepository persists the report/injury aggregate.
//
// Create and ReplaceInjuries are the two writes that touch both tables; each
// runs in a single transaction so a failure never leaves a report with a
// partial injury set.
type ReportRepository interface {
	// Create inserts the report and its injuries atomically and fills in the
	// generated ids and timestamps.
	Create(ctx context.Context, report *model.InjuryReport, entries []model.InjuryEntry) ([]model.Injury, error)

	// Get returns the report with its injuries in insertion order, or nil
	// when no report matches.
	Get(ctx context.Context, id int64) (*model.InjuryReport, []model.Injury, error)

	// List returns every report. Filtering and sorting are client concerns.
	List(ctx context.Context) ([]model.InjuryReport, error)

	// ReplaceInjuries updates the report's own fields and swaps the complete
	// injury set for the submitted one: delete all, then recreate. Callers
	// must resend unchanged injuries or they are lost.
	ReplaceInjuries(ctx context.Context, report *model.InjuryReport, entries []model.InjuryEntry) ([]model.Injury, error)

	// Delete removes the report; the injuries go with it via the foreign key.
	// Deleting an id that does not exist is not an error.
	Delete(ctx context.Context, id int64) error
}
