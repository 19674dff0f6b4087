package bodymap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liefhq/injury-api/internal/model"
)

func TestClickAssignsDenseIDs(t *testing.T) {
	s := NewSheet()

	first := s.Click(120, 260, Bounds{Left: 100, Top: 200})
	second := s.Click(150, 300, Bounds{Left: 100, Top: 200})
	third := s.Click(180, 340, Bounds{Left: 100, Top: 200})

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 3, third.ID)

	// Coordinates are canvas-local.
	assert.Equal(t, 20.0, first.X)
	assert.Equal(t, 60.0, first.Y)
}

func TestSetDetailsOnlyTouchesMatchingAnnotation(t *testing.T) {
	s := NewSheet()
	s.Mark(10, 20)
	s.Mark(30, 40)
	s.Mark(50, 60)

	s.SetDetails(2, "bruised rib")

	assert.Equal(t, "", s.Annotations[0].Details)
	assert.Equal(t, "bruised rib", s.Annotations[1].Details)
	assert.Equal(t, "", s.Annotations[2].Details)

	// Positions stay untouched.
	assert.Equal(t, 30.0, s.Annotations[1].X)
	assert.Equal(t, 40.0, s.Annotations[1].Y)
}

func TestSetDetailsUnknownIDIsNoOp(t *testing.T) {
	s := NewSheet()
	s.Mark(10, 20)

	s.SetDetails(99, "nothing")

	assert.Equal(t, "", s.Annotations[0].Details)
}

func TestMarkerPlanWaitsForImage(t *testing.T) {
	s := NewSheet()
	s.Mark(10, 20)

	assert.Nil(t, s.MarkerPlan())

	s.ImageLoaded()
	require.Len(t, s.MarkerPlan(), 1)
}

func TestMarkerPlanOrderAndLabels(t *testing.T) {
	s := NewSheet()
	s.ImageLoaded()
	s.Mark(10, 20)
	s.Mark(30, 40)

	plan := s.MarkerPlan()
	require.Len(t, plan, 2)

	assert.Equal(t, "1", plan[0].Label)
	assert.Equal(t, "2", plan[1].Label)
	assert.Equal(t, 10.0, plan[0].X)
	assert.Equal(t, 30.0, plan[1].X)
	for _, m := range plan {
		assert.Equal(t, float64(MarkerRadius), m.Radius)
		assert.Equal(t, MarkerFill, m.Fill)
	}
}

func TestHydrateFromFetchedReport(t *testing.T) {
	detail := &model.ReportDetail{
		InjuryReport: model.InjuryReport{
			ID:             7,
			ReporterName:   "Dana",
			InjuryDateTime: time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		Injuries: []model.InjuryPoint{
			{ID: 41, X: 100, Y: 200, Details: "sprained ankle"},
			{ID: 42, X: 150, Y: 250, Details: ""},
		},
	}

	s := NewSheet()
	s.Hydrate(detail)

	assert.Equal(t, "Dana", s.ReporterName)
	assert.Equal(t, "2024-03-14T09:30", s.InjuryDateTime)
	require.Len(t, s.Annotations, 2)
	assert.Equal(t, 41, s.Annotations[0].ID)
	assert.Equal(t, "sprained ankle", s.Annotations[0].Details)
}

func TestSubmissionPackagesFullState(t *testing.T) {
	s := NewSheet()
	s.ReporterName = "Robin"
	s.InjuryDateTime = "2024-05-01T14:00"
	s.Mark(10, 20)
	s.Mark(30, 40)
	s.SetDetails(1, "cut")

	sub := s.Submission()

	assert.Equal(t, "Robin", sub.ReporterName)
	assert.Equal(t, "2024-05-01T14:00", sub.InjuryDateTime)
	require.Len(t, sub.Injuries, 2)
	assert.Equal(t, "cut", sub.Injuries[0].Details)
	assert.Equal(t, 30.0, sub.Injuries[1].X)
}

func TestStateRoundTrip(t *testing.T) {
	s := NewSheet()
	s.ReporterName = "Robin"
	s.InjuryDateTime = "2024-05-01T14:00"
	s.Mark(10, 20)
	s.SetDetails(1, "cut")

	state, err := s.MarshalState()
	require.NoError(t, err)

	restored, err := UnmarshalState(state)
	require.NoError(t, err)

	assert.Equal(t, s.ReporterName, restored.ReporterName)
	assert.Equal(t, s.InjuryDateTime, restored.InjuryDateTime)
	assert.Equal(t, s.Annotations, restored.Annotations)

	// A restored sheet keeps assigning dense ids.
	next := restored.Mark(50, 60)
	assert.Equal(t, 2, next.ID)
}

func TestUnmarshalStateEmptyYieldsFreshSheet(t *testing.T) {
	s, err := UnmarshalState("")
	require.NoError(t, err)
	assert.Empty(t, s.Annotations)
}
