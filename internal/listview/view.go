// Package listview implements the report list's query pipeline: a pure
// derivation from (collection, filter state, sort state) to an ordered
// sequence. The server always returns the full collection; everything here
// happens in memory.
package listview

import (
	"sort"
	"strings"
	"time"

	"github.com/liefhq/injury-api/internal/model"
)

type SortField string

const (
	SortReporterName   SortField = "reporterName"
	SortInjuryDateTime SortField = "injuryDateTime"
	SortReportDateTime SortField = "reportDateTime"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Query is the list view's filter and sort state. Unset date bounds leave
// that side unbounded; the search term matches reporter names
// case-insensitively as a substring.
type Query struct {
	Search          string
	InjuryDateStart string
	InjuryDateEnd   string
	ReportDateStart string
	ReportDateEnd   string
	SortField       SortField
	SortDirection   Direction
}

// DefaultQuery is the view's initial state: newest reports first.
func DefaultQuery() Query {
	return Query{
		SortField:     SortReportDateTime,
		SortDirection: Descending,
	}
}

// Toggle switches the sort state for a clicked field: clicking the active
// field flips direction, clicking another field selects it ascending.
func (q *Query) Toggle(field SortField) {
	if field == q.SortField {
		if q.SortDirection == Ascending {
			q.SortDirection = Descending
		} else {
			q.SortDirection = Ascending
		}
		return
	}
	q.SortField = field
	q.SortDirection = Ascending
}

// Apply filters and sorts the collection without mutating it. All filter
// conditions AND together, and comparisons run on the raw timestamp strings
// the API returns, exactly as the browser view does. The sort is stable so
// equal keys keep their fetched order.
func (q Query) Apply(items []model.ReportListItem) []model.ReportListItem {
	search := strings.ToLower(q.Search)

	out := make([]model.ReportListItem, 0, len(items))
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.ReporterName), search) {
			continue
		}
		injury := rawTime(item.InjuryDateTime)
		reported := rawTime(item.ReportDateTime)
		if q.InjuryDateStart != "" && injury < q.InjuryDateStart {
			continue
		}
		if q.InjuryDateEnd != "" && injury > q.InjuryDateEnd {
			continue
		}
		if q.ReportDateStart != "" && reported < q.ReportDateStart {
			continue
		}
		if q.ReportDateEnd != "" && reported > q.ReportDateEnd {
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := q.sortKey(out[i]), q.sortKey(out[j])
		if q.SortDirection == Descending {
			return a > b
		}
		return a < b
	})

	return out
}

func (q Query) sortKey(item model.ReportListItem) string {
	switch q.SortField {
	case SortReporterName:
		return item.ReporterName
	case SortInjuryDateTime:
		return rawTime(item.InjuryDateTime)
	default:
		return rawTime(item.ReportDateTime)
	}
}

// rawTime renders a timestamp the way the API serializes it, so string
// comparisons against date-input bounds behave the same as in the browser.
func rawTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
