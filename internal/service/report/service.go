package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liefhq/injury-api/internal/model"
	"github.com/liefhq/injury-api/internal/repository"
	apperrors "github.com/liefhq/injury-api/pkg/errors"
)

// Timestamp layouts accepted from submitters. The editor's date/time field
// produces the datetime-local form; API clients tend to send RFC 3339.
var submissionLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type ReportService interface {
	CreateReport(ctx context.Context, sub *model.ReportSubmission) (*model.ReportDetail, error)
	GetReport(ctx context.Context, id int64) (*model.ReportDetail, error)
	UpdateReport(ctx context.Context, id int64, sub *model.ReportSubmission) (*model.ReportDetail, error)
	DeleteReport(ctx context.Context, id int64) error
	ListReports(ctx context.Context) ([]model.ReportListItem, error)
}

type Service struct {
	repo repository.ReportRepository
}

func NewService(repo repository.ReportRepository) *Service {
	return &Service{repo: repo}
}

// CreateReport validates the submission and writes the report together with
// its injuries as one atomic unit.
func (s *Service) CreateReport(ctx context.Context, sub *model.ReportSubmission) (*model.ReportDetail, error) {
	injuryTime, err := s.validateSubmission(sub)
	if err != nil {
		return nil, err
	}

	report := &model.InjuryReport{
		ReporterName:   sub.ReporterName,
		InjuryDateTime: injuryTime,
	}

	injuries, err := s.repo.Create(ctx, report, sub.Injuries)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return buildDetail(report, injuries), nil
}

// GetReport returns the report with its injuries, or nil when no report
// matches the id. Callers treat nil as not-found.
func (s *Service) GetReport(ctx context.Context, id int64) (*model.ReportDetail, error) {
	report, injuries, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if report == nil {
		return nil, nil
	}
	return buildDetail(report, injuries), nil
}

// UpdateReport is the full-replace update: the submitted injury list becomes
// the report's complete set. Anything not resent is gone.
func (s *Service) UpdateReport(ctx context.Context, id int64, sub *model.ReportSubmission) (*model.ReportDetail, error) {
	injuryTime, err := s.validateSubmission(sub)
	if err != nil {
		return nil, err
	}

	report := &model.InjuryReport{
		ID:             id,
		ReporterName:   sub.ReporterName,
		InjuryDateTime: injuryTime,
	}

	injuries, err := s.repo.ReplaceInjuries(ctx, report, sub.Injuries)
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	return buildDetail(report, injuries), nil
}

// DeleteReport removes the report and its injuries. Deleting an id that does
// not exist succeeds; the list view re-fetches after delete either way.
func (s *Service) DeleteReport(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// ListReports returns every report augmented with the reportDateTime
// projection. reportDateTime is computed from created_at here, at read time,
// and is never stored.
func (s *Service) ListReports(ctx context.Context) ([]model.ReportListItem, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	items := make([]model.ReportListItem, 0, len(reports))
	for _, r := range reports {
		items = append(items, model.ReportListItem{
			InjuryReport:   r,
			ReportDateTime: r.CreatedAt,
		})
	}
	return items, nil
}

func (s *Service) validateSubmission(sub *model.ReportSubmission) (time.Time, error) {
	if strings.TrimSpace(sub.ReporterName) == "" {
		return time.Time{}, apperrors.BadRequest("reporter name is required", nil)
	}

	injuryTime, err := ParseSubmittedTime(sub.InjuryDateTime)
	if err != nil {
		return time.Time{}, apperrors.BadRequest("injury date/time is not a valid timestamp", err)
	}

	for i, e := range sub.Injuries {
		if e.X < 0 || e.X > model.BodyMapWidth || e.Y < 0 || e.Y > model.BodyMapHeight {
			return time.Time{}, apperrors.BadRequest(
				fmt.Sprintf("injury %d is outside the body map canvas", i+1), nil)
		}
	}

	return injuryTime, nil
}

// ParseSubmittedTime parses a submitter-supplied timestamp in any of the
// accepted layouts.
func ParseSubmittedTime(value string) (time.Time, error) {
	for _, layout := range submissionLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func buildDetail(report *model.InjuryReport, injuries []model.Injury) *model.ReportDetail {
	points := make([]model.InjuryPoint, 0, len(injuries))
	for _, inj := range injuries {
		points = append(points, model.InjuryPoint{
			ID:      inj.ID,
			X:       inj.X,
			Y:       inj.Y,
			Details: inj.Details,
		})
	}
	return &model.ReportDetail{
		InjuryReport: *report,
		Injuries:     points,
	}
}
