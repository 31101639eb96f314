package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/dto"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/service"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/middleware"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// BookingHandler handles booking HTTP requests. The caller's identity comes
// from the gateway header; authentication is upstream.
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// BookAmenity handles POST /amenities/:id/bookings
func (h *BookingHandler) BookAmenity(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.book")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	amenityID := c.Param("id")

	var req dto.BookAmenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	start, end, err := req.Parse()
	if err != nil {
		span.SetStatus(codes.Error, "invalid time format")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid time format",
			Code:    "INVALID_REQUEST",
			Message: "times must use the format " + domain.TimeLayout,
		})
		return
	}

	span.SetAttributes(
		attribute.String("amenity_id", amenityID),
		attribute.String("user_id", userID),
		attribute.String("start_time", req.StartTime),
		attribute.String("end_time", req.EndTime),
	)

	booking, err := h.bookingService.BookAmenity(ctx, amenityID, userID, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	if _, ok := middleware.GetUserID(c); !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := h.bookingService.CancelBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := h.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// CheckAvailability handles GET /amenities/:id/availability
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.check_availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	amenityID := c.Param("id")
	userID, _ := middleware.GetUserID(c)

	start, end, ok := parseRange(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid range")
		return
	}

	span.SetAttributes(
		attribute.String("amenity_id", amenityID),
		attribute.String("start_time", start.Format(domain.TimeLayout)),
		attribute.String("end_time", end.Format(domain.TimeLayout)),
	)

	resp := dto.AvailabilityResponse{
		AmenityID: amenityID,
		StartTime: start.Format(domain.TimeLayout),
		EndTime:   end.Format(domain.TimeLayout),
	}

	err := h.bookingService.IsAvailable(ctx, amenityID, userID, start, end)
	switch {
	case err == nil:
		resp.Available = true
	case domain.IsRejection(err):
		reason, _ := domain.RejectionReason(err)
		resp.Available = false
		resp.Reason = string(reason)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, resp)
}

// parseRange reads the from/to query params and writes the error response on
// failure
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "range required",
			Code:    "INVALID_REQUEST",
			Message: "from and to query parameters are required",
		})
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(domain.TimeLayout, from)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid time format",
			Code:    "INVALID_REQUEST",
			Message: "times must use the format " + domain.TimeLayout,
		})
		return time.Time{}, time.Time{}, false
	}

	end, err := time.Parse(domain.TimeLayout, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid time format",
			Code:    "INVALID_REQUEST",
			Message: "times must use the format " + domain.TimeLayout,
		})
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// handleError converts domain errors to HTTP responses
func (h *BookingHandler) handleError(c *gin.Context, err error) {
	if reason, ok := domain.RejectionReason(err); ok {
		status := http.StatusUnprocessableEntity
		if reason == domain.ReasonUnavailable {
			status = http.StatusConflict
		}
		c.JSON(status, dto.ErrorResponse{
			Error:  err.Error(),
			Code:   "BOOKING_REJECTED",
			Reason: string(reason),
		})
		return
	}

	switch {
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	case errors.Is(err, domain.ErrBookingConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "BOOKING_CONFLICT",
		})
	case domain.IsTransientError(err):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "STORE_UNAVAILABLE",
			Message: "The reservation store timed out; retry with the same request",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
