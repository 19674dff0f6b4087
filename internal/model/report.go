package model

import (
	"time"
)

// Body map canvas dimensions in pixels. Injury coordinates are stored as
// canvas-local pixels against this fixed surface, so the values are only
// meaningful while the rendering surface keeps this size.
const (
	BodyMapWidth  = 300
	BodyMapHeight = 500
)

// InjuryReport is the aggregate root. It owns its injuries: an injury never
// outlives its report, and an update replaces the whole injury set.
type InjuryReport struct {
	ID             int64     `db:"id" json:"id"`
	ReporterName   string    `db:"reporter_name" json:"reporterName"`
	InjuryDateTime time.Time `db:"injury_date_time" json:"injuryDateTime"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Injury is one annotated point on the body map belonging to exactly one report.
type Injury struct {
	ID       int64   `db:"id" json:"id"`
	ReportID int64   `db:"report_id" json:"reportId"`
	X        float64 `db:"x" json:"x"`
	Y        float64 `db:"y" json:"y"`
	BodyPart string  `db:"body_part" json:"bodyPart"`
	Details  string  `db:"details" json:"details"`
}

// ReportListItem is a list-endpoint element: the report row plus the
// reportDateTime projection. ReportDateTime is always derived from CreatedAt
// at read time, never stored.
type ReportListItem struct {
	InjuryReport
	ReportDateTime time.Time `json:"reportDateTime"`
}

// InjuryPoint is the injury shape returned by the fetch-one path. BodyPart is
// deliberately absent there.
type InjuryPoint struct {
	ID      int64   `db:"id" json:"id"`
	X       float64 `db:"x" json:"x"`
	Y       float64 `db:"y" json:"y"`
	Details string  `db:"details" json:"details"`
}

// ReportDetail is the fetch-one response: report fields with nested injuries
// in insertion order.
type ReportDetail struct {
	InjuryReport
	Injuries []InjuryPoint `json:"injuries"`
}

// InjuryEntry is one submitted annotation. BodyPart defaults to "" when the
// client omits it.
type InjuryEntry struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	BodyPart string  `json:"bodyPart"`
	Details  string  `json:"details"`
}

// ReportSubmission is the create/update payload. Update uses the same shape
// plus the target id from the URL; the injury list is the complete desired
// set, not a diff.
type ReportSubmission struct {
	ReporterName   string        `json:"reporterName" binding:"required"`
	InjuryDateTime string        `json:"injuryDateTime" binding:"required,reporttime"`
	Injuries       []InjuryEntry `json:"injuries"`
}
