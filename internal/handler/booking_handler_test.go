package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/dto"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingService is a mock implementation of service.BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) BookAmenity(ctx context.Context, amenityID, userID string, start, end time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, amenityID, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) IsAvailable(ctx context.Context, amenityID, userID string, start, end time.Time) error {
	args := m.Called(ctx, amenityID, userID, start, end)
	return args.Error(0)
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func setupBookingTestRouter(svc *MockBookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.UserIdentity(false))

	h := NewBookingHandler(svc)
	router.POST("/amenities/:id/bookings", h.BookAmenity)
	router.POST("/bookings/:id/cancel", h.CancelBooking)
	router.GET("/bookings/:id", h.GetBooking)
	router.GET("/amenities/:id/availability", h.CheckAvailability)
	return router
}

func bookingFixture(t *testing.T) *domain.Booking {
	t.Helper()
	start, err := time.Parse(domain.TimeLayout, "2026-03-02T09:00")
	if err != nil {
		t.Fatal(err)
	}
	return &domain.Booking{
		ID:        "booking-001",
		AmenityID: "amenity-001",
		UserID:    "user-001",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.BookingStatusRequested,
	}
}

func TestBookAmenity_Created(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("BookAmenity", mock.Anything, "amenity-001", "user-001", mock.Anything, mock.Anything).
		Return(bookingFixture(t), nil)

	router := setupBookingTestRouter(svc)

	body, _ := json.Marshal(dto.BookAmenityRequest{
		StartTime: "2026-03-02T09:00",
		EndTime:   "2026-03-02T10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/amenities/amenity-001/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.BookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "booking-001", resp.ID)
	assert.Equal(t, "requested", resp.Status)
	svc.AssertExpectations(t)
}

func TestBookAmenity_MissingUserHeader(t *testing.T) {
	svc := &MockBookingService{}
	router := setupBookingTestRouter(svc)

	body, _ := json.Marshal(dto.BookAmenityRequest{
		StartTime: "2026-03-02T09:00",
		EndTime:   "2026-03-02T10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/amenities/amenity-001/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "BookAmenity")
}

func TestBookAmenity_MalformedTimes(t *testing.T) {
	svc := &MockBookingService{}
	router := setupBookingTestRouter(svc)

	body, _ := json.Marshal(dto.BookAmenityRequest{
		StartTime: "March 2nd 9am",
		EndTime:   "2026-03-02T10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/amenities/amenity-001/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
	svc.AssertNotCalled(t, "BookAmenity")
}

func TestBookAmenity_RejectionCarriesReason(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("BookAmenity", mock.Anything, "amenity-001", "user-001", mock.Anything, mock.Anything).
		Return(nil, domain.Reject(domain.ReasonTenantLimitReached))

	router := setupBookingTestRouter(svc)

	body, _ := json.Marshal(dto.BookAmenityRequest{
		StartTime: "2026-03-02T09:00",
		EndTime:   "2026-03-02T10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/amenities/amenity-001/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BOOKING_REJECTED", resp.Code)
	assert.Equal(t, string(domain.ReasonTenantLimitReached), resp.Reason)
}

func TestBookAmenity_UnavailableIsConflict(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("BookAmenity", mock.Anything, "amenity-001", "user-001", mock.Anything, mock.Anything).
		Return(nil, domain.Reject(domain.ReasonUnavailable))

	router := setupBookingTestRouter(svc)

	body, _ := json.Marshal(dto.BookAmenityRequest{
		StartTime: "2026-03-02T09:00",
		EndTime:   "2026-03-02T10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/amenities/amenity-001/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.ReasonUnavailable), resp.Reason)
}

func TestBookAmenity_WriteRaceIsConflict(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("BookAmenity", mock.Anything, "amenity-001", "user-001", mock.Anything, mock.Anything).
		Return(nil, domain.ErrBookingConflict)

	router := setupBookingTestRouter(svc)

	body, _ := json.Marshal(dto.BookAmenityRequest{
		StartTime: "2026-03-02T09:00",
		EndTime:   "2026-03-02T10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/amenities/amenity-001/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BOOKING_CONFLICT", resp.Code)
}

func TestBookAmenity_StoreTimeoutIs503(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("BookAmenity", mock.Anything, "amenity-001", "user-001", mock.Anything, mock.Anything).
		Return(nil, domain.ErrStoreTimeout)

	router := setupBookingTestRouter(svc)

	body, _ := json.Marshal(dto.BookAmenityRequest{
		StartTime: "2026-03-02T09:00",
		EndTime:   "2026-03-02T10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/amenities/amenity-001/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "STORE_UNAVAILABLE", resp.Code)
}

func TestBookAmenity_AmenityNotFound(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("BookAmenity", mock.Anything, "missing", "user-001", mock.Anything, mock.Anything).
		Return(nil, domain.ErrAmenityNotFound)

	router := setupBookingTestRouter(svc)

	body, _ := json.Marshal(dto.BookAmenityRequest{
		StartTime: "2026-03-02T09:00",
		EndTime:   "2026-03-02T10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/amenities/missing/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelBooking_OK(t *testing.T) {
	cancelled := bookingFixture(t)
	cancelled.Status = domain.BookingStatusCancelled

	svc := &MockBookingService{}
	svc.On("CancelBooking", mock.Anything, "booking-001").Return(cancelled, nil)

	router := setupBookingTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/bookings/booking-001/cancel", nil)
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.BookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("CancelBooking", mock.Anything, "booking-001").Return(nil, domain.ErrBookingNotFound)

	router := setupBookingTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/bookings/booking-001/cancel", nil)
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBooking_OK(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("GetBooking", mock.Anything, "booking-001").Return(bookingFixture(t), nil)

	router := setupBookingTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/bookings/booking-001", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckAvailability_Available(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("IsAvailable", mock.Anything, "amenity-001", "", mock.Anything, mock.Anything).Return(nil)

	router := setupBookingTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/amenities/amenity-001/availability?from=2026-03-02T09:00&to=2026-03-02T10:00", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.AvailabilityResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	assert.Empty(t, resp.Reason)
}

func TestCheckAvailability_RejectedWithReason(t *testing.T) {
	svc := &MockBookingService{}
	svc.On("IsAvailable", mock.Anything, "amenity-001", "", mock.Anything, mock.Anything).
		Return(domain.Reject(domain.ReasonUnderMaintenance))

	router := setupBookingTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/amenities/amenity-001/availability?from=2026-03-02T09:00&to=2026-03-02T10:00", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.AvailabilityResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Available)
	assert.Equal(t, string(domain.ReasonUnderMaintenance), resp.Reason)
}

func TestCheckAvailability_MissingRange(t *testing.T) {
	svc := &MockBookingService{}
	router := setupBookingTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/amenities/amenity-001/availability", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "IsAvailable")
}
