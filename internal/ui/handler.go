// Package ui serves the form-driven pages. The pages are thin: the list page
// feeds query parameters through the listview pipeline, and the editor pages
// round-trip a bodymap sheet through the form, so all real behavior lives in
// those packages.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/liefhq/injury-api/internal/bodymap"
	"github.com/liefhq/injury-api/internal/listview"
	"github.com/liefhq/injury-api/internal/middleware"
	"github.com/liefhq/injury-api/internal/model"
	"github.com/liefhq/injury-api/internal/service/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"sortLink": func(q listview.Query, field string) template.URL {
		next := q
		next.Toggle(listview.SortField(field))
		v := url.Values{}
		if next.Search != "" {
			v.Set("search", next.Search)
		}
		if next.InjuryDateStart != "" {
			v.Set("injuryDateStart", next.InjuryDateStart)
		}
		if next.InjuryDateEnd != "" {
			v.Set("injuryDateEnd", next.InjuryDateEnd)
		}
		if next.ReportDateStart != "" {
			v.Set("reportDateStart", next.ReportDateStart)
		}
		if next.ReportDateEnd != "" {
			v.Set("reportDateEnd", next.ReportDateEnd)
		}
		v.Set("sortField", string(next.SortField))
		v.Set("sortDir", string(next.SortDirection))
		return template.URL("/?" + v.Encode())
	},
	"sortIcon": func(q listview.Query, field string) string {
		if q.SortField != listview.SortField(field) {
			return ""
		}
		if q.SortDirection == listview.Ascending {
			return "▲"
		}
		return "▼"
	},
	"markerLeft": func(m bodymap.Marker) float64 { return m.X - m.Radius },
	"markerTop":  func(m bodymap.Marker) float64 { return m.Y - m.Radius },
	"markerSize": func(m bodymap.Marker) float64 { return 2 * m.Radius },
	// The fill is a fixed rgba() value; the CSS sanitizer rejects functional
	// notation coming through a plain string.
	"markerFill": func(m bodymap.Marker) template.CSS { return template.CSS(m.Fill) },
}

type Handler struct {
	service report.ReportService
	list    *template.Template
	editor  *template.Template
}

func NewHandler(service report.ReportService) (*Handler, error) {
	list, err := template.New("layout.html").Funcs(funcs).
		ParseFS(templateFS, "templates/layout.html", "templates/list.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse list templates: %w", err)
	}
	editor, err := template.New("layout.html").Funcs(funcs).
		ParseFS(templateFS, "templates/layout.html", "templates/editor.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse editor templates: %w", err)
	}
	return &Handler{service: service, list: list, editor: editor}, nil
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/", h.ListPage)

	protected.GET("/injuryReport", h.NewReportPage)
	protected.POST("/injuryReport", h.EditorAction)
	protected.GET("/reports/:id", h.EditReportPage)
	protected.POST("/reports/:id", h.EditorAction)
	protected.POST("/reports/:id/delete", h.DeleteAction)
}

type listPage struct {
	User     *model.SessionUser
	Notice   string
	Error    string
	Query    listview.Query
	Reports  []model.ReportListItem
	Filtered []model.ReportListItem
}

// ListPage fetches the full collection once per request and derives the
// displayed rows through the listview pipeline. Filtering and sorting never
// touch the server query.
func (h *Handler) ListPage(c *gin.Context) {
	q := queryFromParams(c)

	reports, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load report list")
		c.String(http.StatusInternalServerError, "could not load reports")
		return
	}

	h.render(c, h.list, "layout", listPage{
		User:     middleware.SessionUser(c),
		Notice:   c.Query("notice"),
		Query:    q,
		Reports:  reports,
		Filtered: q.Apply(reports),
	})
}

type editorPage struct {
	User         *model.SessionUser
	Notice       string
	Error        string
	Editing      bool
	Action       string
	Sheet        *bodymap.Sheet
	State        string
	Markers      []bodymap.Marker
	CanvasWidth  int
	CanvasHeight int
}

func (h *Handler) NewReportPage(c *gin.Context) {
	h.renderEditor(c, bodymap.NewSheet(), "", false)
}

// EditReportPage hydrates the editor from the stored report, converting the
// stored timestamp into the datetime-local input format.
func (h *Handler) EditReportPage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid report id")
		return
	}

	detail, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("report_id", id).Msg("failed to hydrate editor")
		c.String(http.StatusInternalServerError, "could not load report")
		return
	}
	if detail == nil {
		c.String(http.StatusNotFound, "report not found")
		return
	}

	sheet := bodymap.NewSheet()
	sheet.Hydrate(detail)
	h.renderEditor(c, sheet, "", true)
}

// EditorAction handles both editor forms. "mark" adds an annotation at the
// posted coordinates, "submit" sends the sheet to create or update; any
// failure re-renders the form with the error and the state intact for retry.
func (h *Handler) EditorAction(c *gin.Context) {
	sheet, err := bodymap.UnmarshalState(c.PostForm("state"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid editor state")
		return
	}

	sheet.ReporterName = c.PostForm("reporterName")
	sheet.InjuryDateTime = c.PostForm("injuryDateTime")
	for _, a := range sheet.Annotations {
		if details, ok := c.GetPostForm(fmt.Sprintf("details_%d", a.ID)); ok {
			sheet.SetDetails(a.ID, details)
		}
	}

	editing := c.Param("id") != ""

	switch c.PostForm("action") {
	case "mark":
		x, errX := strconv.ParseFloat(c.PostForm("clickX"), 64)
		y, errY := strconv.ParseFloat(c.PostForm("clickY"), 64)
		if errX == nil && errY == nil {
			sheet.Mark(x, y)
		}
		h.renderEditor(c, sheet, "", editing)

	case "submit":
		if editing {
			h.submitUpdate(c, sheet)
			return
		}
		h.submitCreate(c, sheet)

	default:
		h.renderEditor(c, sheet, "", editing)
	}
}

func (h *Handler) submitCreate(c *gin.Context, sheet *bodymap.Sheet) {
	if _, err := h.service.CreateReport(c.Request.Context(), sheet.Submission()); err != nil {
		h.renderEditor(c, sheet, "Failed to submit the report: "+err.Error(), false)
		return
	}
	c.Redirect(http.StatusSeeOther, "/?notice="+url.QueryEscape("Successfully Created"))
}

func (h *Handler) submitUpdate(c *gin.Context, sheet *bodymap.Sheet) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid report id")
		return
	}
	if _, err := h.service.UpdateReport(c.Request.Context(), id, sheet.Submission()); err != nil {
		h.renderEditor(c, sheet, "Failed to submit the report: "+err.Error(), true)
		return
	}
	c.Redirect(http.StatusSeeOther, "/?notice="+url.QueryEscape("Report Successfully Updated"))
}

// DeleteAction removes a report and returns to the list, which re-fetches
// the collection rather than trimming it locally.
func (h *Handler) DeleteAction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid report id")
		return
	}
	if err := h.service.DeleteReport(c.Request.Context(), id); err != nil {
		log.Error().Err(err).Int64("report_id", id).Msg("failed to delete report")
		c.String(http.StatusInternalServerError, "could not delete report")
		return
	}
	c.Redirect(http.StatusSeeOther, "/?notice="+url.QueryEscape("Report Successfully Deleted"))
}

func (h *Handler) renderEditor(c *gin.Context, sheet *bodymap.Sheet, errMsg string, editing bool) {
	// The server renders after the image is inlined, so the sheet is always
	// ready to produce its draw list here.
	sheet.ImageLoaded()

	state, err := sheet.MarshalState()
	if err != nil {
		c.String(http.StatusInternalServerError, "could not serialize editor state")
		return
	}

	action := "/injuryReport"
	if editing {
		action = "/reports/" + c.Param("id")
	}

	h.render(c, h.editor, "layout", editorPage{
		User:         middleware.SessionUser(c),
		Error:        errMsg,
		Editing:      editing,
		Action:       action,
		Sheet:        sheet,
		State:        state,
		Markers:      sheet.MarkerPlan(),
		CanvasWidth:  bodymap.CanvasWidth,
		CanvasHeight: bodymap.CanvasHeight,
	})
}

func (h *Handler) render(c *gin.Context, tmpl *template.Template, name string, data interface{}) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("failed to render page")
	}
}

func queryFromParams(c *gin.Context) listview.Query {
	q := listview.DefaultQuery()
	q.Search = c.Query("search")
	q.InjuryDateStart = c.Query("injuryDateStart")
	q.InjuryDateEnd = c.Query("injuryDateEnd")
	q.ReportDateStart = c.Query("reportDateStart")
	q.ReportDateEnd = c.Query("reportDateEnd")
	if f := c.Query("sortField"); f != "" {
		q.SortField = listview.SortField(f)
	}
	if d := c.Query("sortDir"); d != "" {
		q.SortDirection = listview.Direction(d)
	}
	return q
}
