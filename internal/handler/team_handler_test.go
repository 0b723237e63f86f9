package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestsecurity/meeting-scheduler/internal/middleware"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

type teamServiceMock struct {
	slots []models.TeamSlot
	dates []models.AvailableDate
	err   error
}

func (m *teamServiceMock) Slots(ctx context.Context, query models.TeamSlotQuery) ([]models.TeamSlot, error) {
	return m.slots, m.err
}

func (m *teamServiceMock) AvailableDates(ctx context.Context, query models.MonthQuery) ([]models.AvailableDate, error) {
	return m.dates, m.err
}

// teamRouter mounts the team endpoints behind the same role guard the
// server uses, with the given claims injected for every request.
func teamRouter(svc teamSlotService, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTeamHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, claims)
	})
	team := r.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeamLead))
	team.GET("/team/slots", h.Slots)
	team.GET("/team/available-dates", h.AvailableDates)
	return r
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}

func TestTeamSlotsDeniedForMember(t *testing.T) {
	r := teamRouter(&teamServiceMock{}, &models.JWTClaims{UserID: "org-1", Role: models.RoleMember})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/team/slots?resources=res-1,res-2&date=2026-09-02", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, appErrors.ErrPermissionDenied.Code, errorCode(t, w.Body.Bytes()))
}

func TestTeamSlotsAllowedForLead(t *testing.T) {
	mockSvc := &teamServiceMock{slots: []models.TeamSlot{}}
	r := teamRouter(mockSvc, &models.JWTClaims{UserID: "lead-1", Role: models.RoleTeamLead})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/team/slots?resources=res-1,res-2&date=2026-09-02", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestTeamAvailableDatesDeniedForMember(t *testing.T) {
	r := teamRouter(&teamServiceMock{}, &models.JWTClaims{UserID: "org-1", Role: models.RoleMember})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/team/available-dates?resources=res-1&year=2026&month=9", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, appErrors.ErrPermissionDenied.Code, errorCode(t, w.Body.Bytes()))
}

func TestTeamAvailableDatesAllowedForAdmin(t *testing.T) {
	mockSvc := &teamServiceMock{dates: []models.AvailableDate{}}
	r := teamRouter(mockSvc, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/team/available-dates?resources=res-1&year=2026&month=9", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
