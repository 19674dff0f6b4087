package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liefhq/injury-api/internal/middleware"
	"github.com/liefhq/injury-api/internal/model"
	apperrors "github.com/liefhq/injury-api/pkg/errors"
)

type fakeService struct {
	listItems []model.ReportListItem
	detail    *model.ReportDetail
	created   *model.ReportDetail
	err       error

	deletedID int64
	updatedID int64
	gotSub    *model.ReportSubmission
}

func (f *fakeService) CreateReport(_ context.Context, sub *model.ReportSubmission) (*model.ReportDetail, error) {
	f.gotSub = sub
	return f.created, f.err
}

func (f *fakeService) GetReport(_ context.Context, id int64) (*model.ReportDetail, error) {
	return f.detail, f.err
}

func (f *fakeService) UpdateReport(_ context.Context, id int64, sub *model.ReportSubmission) (*model.ReportDetail, error) {
	f.updatedID = id
	f.gotSub = sub
	return f.detail, f.err
}

func (f *fakeService) DeleteReport(_ context.Context, id int64) error {
	f.deletedID = id
	return f.err
}

func (f *fakeService) ListReports(_ context.Context) ([]model.ReportListItem, error) {
	return f.listItems, f.err
}

func setup(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()
	engine := gin.New()
	h := NewHandler(svc)
	group := engine.Group("")
	h.RegisterRoutes(group, group)
	return engine
}

func perform(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestListReturnsBareArrayWithReportDateTime(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := &fakeService{
		listItems: []model.ReportListItem{
			{
				InjuryReport: model.InjuryReport{
					ID:           1,
					ReporterName: "Alice",
					CreatedAt:    created,
				},
				ReportDateTime: created,
			},
		},
	}

	w := perform(setup(svc), http.MethodGet, "/reports", "")

	require.Equal(t, http.StatusOK, w.Code)

	var payload []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, "Alice", payload[0]["reporterName"])
	assert.Equal(t, payload[0]["createdAt"], payload[0]["reportDateTime"])
}

func TestGetMissingReportRendersJSONNull(t *testing.T) {
	svc := &fakeService{detail: nil}

	w := perform(setup(svc), http.MethodGet, "/reports/42", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
}

func TestGetReportIncludesInjuriesWithoutBodyPart(t *testing.T) {
	svc := &fakeService{
		detail: &model.ReportDetail{
			InjuryReport: model.InjuryReport{ID: 7, ReporterName: "Dana"},
			Injuries: []model.InjuryPoint{
				{ID: 1, X: 10, Y: 20, Details: "cut"},
			},
		},
	}

	w := perform(setup(svc), http.MethodGet, "/reports/7", "")

	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	injuries := payload["injuries"].([]interface{})
	first := injuries[0].(map[string]interface{})
	assert.Equal(t, "cut", first["details"])
	_, hasBodyPart := first["bodyPart"]
	assert.False(t, hasBodyPart)
}

func TestGetReportInvalidID(t *testing.T) {
	w := perform(setup(&fakeService{}), http.MethodGet, "/reports/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReportSuccess(t *testing.T) {
	svc := &fakeService{
		created: &model.ReportDetail{
			InjuryReport: model.InjuryReport{ID: 1, ReporterName: "Alice"},
		},
	}

	body := `{"reporterName":"Alice","injuryDateTime":"2024-03-14T09:30","injuries":[{"x":10,"y":20,"details":"cut"}]}`
	w := perform(setup(svc), http.MethodPost, "/create", body)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotSub)
	require.Len(t, svc.gotSub.Injuries, 1)
	// bodyPart was omitted and defaults to the empty string.
	assert.Equal(t, "", svc.gotSub.Injuries[0].BodyPart)
}

func TestCreateReportPersistenceFailureIsPlainText500(t *testing.T) {
	svc := &fakeService{err: errors.New("db down")}

	body := `{"reporterName":"Alice","injuryDateTime":"2024-03-14T09:30","injuries":[]}`
	w := perform(setup(svc), http.MethodPost, "/create", body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Could not create the report", w.Body.String())
}

func TestCreateReportValidationFailureIs400(t *testing.T) {
	svc := &fakeService{err: apperrors.BadRequest("reporter name is required", nil)}

	body := `{"reporterName":"x","injuryDateTime":"2024-03-14T09:30","injuries":[]}`
	w := perform(setup(svc), http.MethodPost, "/create", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReportRejectsMissingFields(t *testing.T) {
	w := perform(setup(&fakeService{}), http.MethodPost, "/create", `{"injuries":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReportRoutesToReplace(t *testing.T) {
	svc := &fakeService{
		detail: &model.ReportDetail{
			InjuryReport: model.InjuryReport{ID: 9, ReporterName: "Bob"},
		},
	}

	body := `{"reporterName":"Bob","injuryDateTime":"2024-03-14T09:30","injuries":[{"x":1,"y":2,"details":"d"}]}`
	w := perform(setup(svc), http.MethodPost, "/reports/9", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(9), svc.updatedID)
	require.NotNil(t, svc.gotSub)
	assert.Len(t, svc.gotSub.Injuries, 1)
}

func TestDeleteReportReturnsPlainSuccess(t *testing.T) {
	svc := &fakeService{}

	w := perform(setup(svc), http.MethodDelete, "/reports/3", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successully deleted", w.Body.String())
	assert.Equal(t, int64(3), svc.deletedID)
}

func TestDeleteReportFailure(t *testing.T) {
	svc := &fakeService{err: errors.New("db down")}

	w := perform(setup(svc), http.MethodDelete, "/reports/3", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
