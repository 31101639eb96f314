package handler

import (
	"net/http"
	"strings"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/dto"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/service"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/middleware"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CalendarHandler handles availability and calendar HTTP requests
type CalendarHandler struct {
	calendarService service.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService service.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
	}
}

// GetSlots handles GET /amenities/:id/slots
func (h *CalendarHandler) GetSlots(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.calendar.get_slots")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	amenityID := c.Param("id")

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

	slots, err := h.calendarService.GetAvailableSlots(ctx, amenityID, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.SlotsResponse{
		AmenityID: amenityID,
		StartTime: start.Format(domain.TimeLayout),
		EndTime:   end.Format(domain.TimeLayout),
		Slots:     dto.FormatSlots(slots),
	})
}

// GetBookings handles GET /bookings
func (h *CalendarHandler) GetBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.calendar.get_bookings")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	filter, ok := h.parseFilter(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid filter")
		return
	}

	bookings, err := h.calendarService.GetBookings(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Success: true,
		Data:    dto.ToBookingResponses(bookings),
	})
}

// GetCalendar handles GET /calendar
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.calendar.get_calendar")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	filter, ok := h.parseFilter(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid filter")
		return
	}

	viewerID, _ := middleware.GetUserID(c)

	view, err := h.calendarService.GetCalendar(ctx, filter, viewerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("amenity_count", len(view.Amenities)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.ToCalendarResponse(view))
}

// parseFilter builds a BookingFilter from query params and writes the error
// response on failure
func (h *CalendarHandler) parseFilter(c *gin.Context) (*domain.BookingFilter, bool) {
	start, end, ok := parseRange(c)
	if !ok {
		return nil, false
	}

	filter := &domain.BookingFilter{
		Start: start,
		End:   end,
	}

	if amenities := c.Query("amenity_ids"); amenities != "" {
		filter.AmenityIDs = strings.Split(amenities, ",")
	}
	if users := c.Query("user_ids"); users != "" {
		filter.UserIDs = strings.Split(users, ",")
	}
	if statuses := c.Query("statuses"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.BookingStatus(s))
		}
	}

	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return nil, false
	}

	return filter, true
}

// handleError converts domain errors to HTTP responses
func (h *CalendarHandler) handleError(c *gin.Context, err error) {
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
