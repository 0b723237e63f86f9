package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestsecurity/meeting-scheduler/internal/middleware"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

type bookingServiceMock struct {
	booking       *models.Booking
	err           error
	lastActor     models.ActorContext
	createReq     models.CreateBookingRequest
	rescheduleReq models.RescheduleRequest
	cancelCalled  bool
}

func (m *bookingServiceMock) Create(ctx context.Context, actor models.ActorContext, req models.CreateBookingRequest) (*models.Booking, error) {
	m.lastActor = actor
	m.createReq = req
	return m.booking, m.err
}

func (m *bookingServiceMock) CreateTeamMeeting(ctx context.Context, actor models.ActorContext, req models.CreateTeamMeetingRequest) (*models.Booking, error) {
	m.lastActor = actor
	return m.booking, m.err
}

func (m *bookingServiceMock) Get(ctx context.Context, id string) (*models.Booking, error) {
	return m.booking, m.err
}

func (m *bookingServiceMock) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	if m.booking == nil {
		return nil, 0, m.err
	}
	return []models.Booking{*m.booking}, 1, m.err
}

func (m *bookingServiceMock) Reschedule(ctx context.Context, actor models.ActorContext, id string, req models.RescheduleRequest) (*models.Booking, error) {
	m.lastActor = actor
	m.rescheduleReq = req
	return m.booking, m.err
}

func (m *bookingServiceMock) Reassign(ctx context.Context, actor models.ActorContext, id string, req models.ReassignRequest) (*models.Booking, error) {
	m.lastActor = actor
	return m.booking, m.err
}

func (m *bookingServiceMock) ReassignReschedule(ctx context.Context, actor models.ActorContext, id string, req models.ReassignRescheduleRequest) (*models.Booking, error) {
	m.lastActor = actor
	return m.booking, m.err
}

func (m *bookingServiceMock) Extend(ctx context.Context, actor models.ActorContext, id string, req models.ExtendRequest) (*models.Booking, error) {
	m.lastActor = actor
	return m.booking, m.err
}

func (m *bookingServiceMock) Cancel(ctx context.Context, actor models.ActorContext, id string, req models.CancelRequest) (*models.Booking, error) {
	m.lastActor = actor
	m.cancelCalled = true
	return m.booking, m.err
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:         "bk-1",
		ResourceID: "res-1",
		Status:     models.BookingStatusConfirmed,
		StartAt:    time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2026, 9, 2, 11, 0, 0, 0, time.UTC),
		Version:    2,
	}
}

func authedContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "org-1", Role: models.RoleMember})
	return c, w
}

func TestBookingHandlerReschedule(t *testing.T) {
	mockSvc := &bookingServiceMock{booking: testBooking()}
	handler := NewBookingHandler(mockSvc, nil)

	payload, _ := json.Marshal(models.RescheduleRequest{
		StartAt:         time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC),
		EndAt:           time.Date(2026, 9, 3, 11, 0, 0, 0, time.UTC),
		ExpectedVersion: 2,
	})
	c, w := authedContext(t, http.MethodPatch, "/bookings/bk-1/reschedule", payload)
	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}

	handler.Reschedule(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "org-1", mockSvc.lastActor.UserID)
	assert.Equal(t, 2, mockSvc.rescheduleReq.ExpectedVersion)
}

func TestBookingHandlerCreate(t *testing.T) {
	mockSvc := &bookingServiceMock{booking: testBooking()}
	handler := NewBookingHandler(mockSvc, nil)

	payload, _ := json.Marshal(models.CreateBookingRequest{
		Title:      "Intro call",
		ResourceID: "res-1",
		StartAt:    time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2026, 9, 2, 11, 0, 0, 0, time.UTC),
	})
	c, w := authedContext(t, http.MethodPost, "/bookings", payload)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "org-1", mockSvc.lastActor.UserID)
	assert.Equal(t, "res-1", mockSvc.createReq.ResourceID)
}

func TestBookingHandlerRescheduleInvalidBody(t *testing.T) {
	handler := NewBookingHandler(&bookingServiceMock{booking: testBooking()}, nil)

	c, w := authedContext(t, http.MethodPatch, "/bookings/bk-1/reschedule", []byte(`{"start_at":`))
	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}

	handler.Reschedule(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerCancelConflictStatus(t *testing.T) {
	mockSvc := &bookingServiceMock{err: appErrors.ErrConcurrentModification}
	handler := NewBookingHandler(mockSvc, nil)

	payload, _ := json.Marshal(models.CancelRequest{Reason: "host unavailable", ExpectedVersion: 2})
	c, w := authedContext(t, http.MethodPost, "/bookings/bk-1/cancel", payload)
	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}

	handler.Cancel(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, mockSvc.cancelCalled)
}

func TestBookingHandlerMutationRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{booking: testBooking()}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload, _ := json.Marshal(models.CancelRequest{Reason: "done", ExpectedVersion: 2})
	req, err := http.NewRequest(http.MethodPost, "/bookings/bk-1/cancel", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}

	handler.Cancel(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
