// Package bodymap holds the annotation editor core: the state accumulated
// while a reporter marks injuries on the body-map image, independent of any
// rendering surface.
package bodymap

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/liefhq/injury-api/internal/model"
)

const (
	CanvasWidth  = model.BodyMapWidth
	CanvasHeight = model.BodyMapHeight

	// Marker rendering constants, fixed regardless of how many annotations
	// exist or where they sit.
	MarkerRadius = 20
	MarkerFill   = "rgba(255, 0, 0, 0.5)"
	LabelColor   = "white"
	LabelFont    = "16px Arial"

	// DateTimeLocalLayout is the value format of a datetime-local input.
	DateTimeLocalLayout = "2006-01-02T15:04"
)

// Annotation is one marked injury point. IDs are a dense 1-based sequence in
// click order; since the editor has no removal operation the sequence never
// develops gaps.
type Annotation struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Details string  `json:"details"`
}

// Bounds is the canvas's bounding box in viewport coordinates, used to
// translate pointer positions into canvas-local pixels.
type Bounds struct {
	Left float64
	Top  float64
}

// Marker is one entry of the draw list. Markers are emitted in annotation
// order, so later annotations paint over earlier ones where they overlap.
type Marker struct {
	X      float64
	Y      float64
	Radius float64
	Fill   string
	Label  string
}

// Sheet is the editor state: reporter identity, injury timestamp, the ordered
// annotation list, and whether the base image is ready to draw on.
type Sheet struct {
	ReporterName   string       `json:"reporterName"`
	InjuryDateTime string       `json:"injuryDateTime"`
	Annotations    []Annotation `json:"injuries"`

	imageReady bool
}

func NewSheet() *Sheet {
	return &Sheet{}
}

// ImageLoaded marks the base image as ready. Until then the sheet produces no
// draw list.
func (s *Sheet) ImageLoaded() {
	s.imageReady = true
}

// Click records a new annotation at the pointer position relative to the
// canvas bounds. The annotation id is the current count plus one.
func (s *Sheet) Click(clientX, clientY float64, bounds Bounds) Annotation {
	a := Annotation{
		ID: len(s.Annotations) + 1,
		X:  clientX - bounds.Left,
		Y:  clientY - bounds.Top,
	}
	s.Annotations = append(s.Annotations, a)
	return a
}

// Mark records an annotation already expressed in canvas-local coordinates.
func (s *Sheet) Mark(x, y float64) Annotation {
	return s.Click(x, y, Bounds{})
}

// SetDetails updates the details text of the annotation with the given id,
// leaving every other field and annotation untouched. Unknown ids are a
// no-op, matching an edit arriving for a marker that was never placed.
func (s *Sheet) SetDetails(id int, details string) {
	for i := range s.Annotations {
		if s.Annotations[i].ID == id {
			s.Annotations[i].Details = details
			return
		}
	}
}

// MarkerPlan derives the draw list for the current state: clear, draw the
// base image, then one fixed-radius marker per annotation in list order with
// its 1-based position number as the label. Nil until the image is ready.
func (s *Sheet) MarkerPlan() []Marker {
	if !s.imageReady {
		return nil
	}
	markers := make([]Marker, 0, len(s.Annotations))
	for i, a := range s.Annotations {
		markers = append(markers, Marker{
			X:      a.X,
			Y:      a.Y,
			Radius: MarkerRadius,
			Fill:   MarkerFill,
			Label:  fmt.Sprintf("%d", i+1),
		})
	}
	return markers
}

// Hydrate loads the sheet from a fetched report so an existing report can be
// edited. The stored timestamp is converted to the datetime-local input
// format.
func (s *Sheet) Hydrate(detail *model.ReportDetail) {
	s.ReporterName = detail.ReporterName
	s.InjuryDateTime = detail.InjuryDateTime.Format(DateTimeLocalLayout)
	s.Annotations = make([]Annotation, 0, len(detail.Injuries))
	for _, inj := range detail.Injuries {
		s.Annotations = append(s.Annotations, Annotation{
			ID:      int(inj.ID),
			X:       inj.X,
			Y:       inj.Y,
			Details: inj.Details,
		})
	}
}

// Submission packages the sheet for the create/update API call: reporter
// name, injury timestamp, and the full annotation list.
func (s *Sheet) Submission() *model.ReportSubmission {
	entries := make([]model.InjuryEntry, 0, len(s.Annotations))
	for _, a := range s.Annotations {
		entries = append(entries, model.InjuryEntry{
			X:       a.X,
			Y:       a.Y,
			Details: a.Details,
		})
	}
	return &model.ReportSubmission{
		ReporterName:   s.ReporterName,
		InjuryDateTime: s.InjuryDateTime,
		Injuries:       entries,
	}
}

// MarshalState serializes the sheet for a form round-trip.
func (s *Sheet) MarshalState() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sheet state: %w", err)
	}
	return string(data), nil
}

// UnmarshalState restores a sheet from a serialized form value. An empty
// value yields a fresh sheet.
func UnmarshalState(state string) (*Sheet, error) {
	s := NewSheet()
	if state == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(state), s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sheet state: %w", err)
	}
	return s, nil
}

// FormatDateTimeLocal renders a timestamp as a datetime-local input value.
func FormatDateTimeLocal(t time.Time) string {
	return t.Format(DateTimeLocalLayout)
}
