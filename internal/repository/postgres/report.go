package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/liefhq/injury-api/internal/model"
	"github.com/liefhq/injury-api/internal/repository"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.InjuryReport, entries []model.InjuryEntry) ([]model.Injury, error) {
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	var injuries []model.Injury
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO injury_reports (reporter_name, injury_date_time, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := tx.QueryRowxContext(ctx, query,
			report.ReporterName,
			report.InjuryDateTime,
			report.CreatedAt,
			report.UpdatedAt,
		).Scan(&report.ID); err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}

		var err error
		injuries, err = insertInjuries(ctx, tx, report.ID, entries)
		return err
	})
	if err != nil {
		return nil, err
	}
	return injuries, nil
}

func (r *reportRepository) Get(ctx context.Context, id int64) (*model.InjuryReport, []model.Injury, error) {
	var report model.InjuryReport
	err := r.db.GetContext(ctx, &report, `SELECT * FROM injury_reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get report: %w", err)
	}

	// Insertion order: ids are assigned by an ascending sequence.
	var injuries []model.Injury
	err = r.db.SelectContext(ctx, &injuries,
		`SELECT * FROM injuries WHERE report_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get injuries: %w", err)
	}

	return &report, injuries, nil
}

func (r *reportRepository) List(ctx context.Context) ([]model.InjuryReport, error) {
	var reports []model.InjuryReport
	err := r.db.SelectContext(ctx, &reports, `SELECT * FROM injury_reports ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// ReplaceInjuries is the full-replace update: delete every injury owned by
// the report, update the report row, insert the submitted set. All three
// steps share one transaction so a partial update cannot strand the report
// with no injuries.
func (r *reportRepository) ReplaceInjuries(ctx context.Context, report *model.InjuryReport, entries []model.InjuryEntry) ([]model.Injury, error) {
	report.UpdatedAt = time.Now().UTC()

	var injuries []model.Injury
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM injuries WHERE report_id = $1`, report.ID); err != nil {
			return fmt.Errorf("failed to delete existing injuries: %w", err)
		}

		query := `
			UPDATE injury_reports
			SET reporter_name = $1, injury_date_time = $2, updated_at = $3
			WHERE id = $4
			RETURNING created_at
		`
		err := tx.QueryRowxContext(ctx, query,
			report.ReporterName,
			report.InjuryDateTime,
			report.UpdatedAt,
			report.ID,
		).Scan(&report.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("report %d does not exist", report.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}

		injuries, err = insertInjuries(ctx, tx, report.ID, entries)
		return err
	})
	if err != nil {
		return nil, err
	}
	return injuries, nil
}

func (r *reportRepository) Delete(ctx context.Context, id int64) error {
	// Injuries go via ON DELETE CASCADE. A missing id deletes zero rows,
	// which is fine: delete is idempotent.
	_, err := r.db.ExecContext(ctx, `DELETE FROM injury_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

func insertInjuries(ctx context.Context, tx *sqlx.Tx, reportID int64, entries []model.InjuryEntry) ([]model.Injury, error) {
	injuries := make([]model.Injury, 0, len(entries))
	query := `
		INSERT INTO injuries (report_id, x, y, body_part, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, e := range entries {
		injury := model.Injury{
			ReportID: reportID,
			X:        e.X,
			Y:        e.Y,
			BodyPart: e.BodyPart,
			Details:  e.Details,
		}
		if err := tx.QueryRowxContext(ctx, query,
			reportID, e.X, e.Y, e.BodyPart, e.Details,
		).Scan(&injury.ID); err != nil {
			return nil, fmt.Errorf("failed to insert injury: %w", err)
		}
		injuries = append(injuries, injury)
	}
	return injuries, nil
}
