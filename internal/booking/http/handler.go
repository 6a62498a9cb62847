package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/rental-booking/internal/auth"
	"github.com/nekogravitycat/rental-booking/internal/booking"
	"github.com/nekogravitycat/rental-booking/internal/pkg/request"
	"github.com/nekogravitycat/rental-booking/internal/pkg/response"
)

const idempotencyKeyHeader = "Idempotency-Key"

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// Create books a listing for the caller. The new booking starts pending.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	key := c.GetHeader(idempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLen {
		response.BindError(c, fmt.Errorf("%s must be at most %d characters", idempotencyKeyHeader, maxIdempotencyKeyLen))
		return
	}

	start, end, err := dates(body.StartDate, body.EndDate)
	if err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		GuestID:        auth.GetUserID(c),
		ListingID:      body.ListingID,
		StartDate:      start,
		EndDate:        end,
		NumberOfGuests: body.NumberOfGuests,
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// Mine lists bookings the caller made as a guest.
func (h *Handler) Mine(c *gin.Context) {
	h.list(c, h.service.ListForGuest)
}

// Hosting lists bookings on listings the caller hosts.
func (h *Handler) Hosting(c *gin.Context) {
	h.list(c, h.service.ListForHost)
}

type listFunc func(ctx context.Context, userID string, page, pageSize int) ([]*booking.Booking, int, error)

func (h *Handler) list(c *gin.Context, fetch listFunc) {
	var q request.ListParams
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	q.Normalize()

	bookings, total, err := fetch(c.Request.Context(), auth.GetUserID(c), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

// Get returns a booking to its guest or host.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.Get(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// UpdateStatus lets the host confirm or reject a pending booking.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), uri.ID, auth.GetUserID(c), booking.Status(body.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Cancel withdraws a booking on behalf of its guest or host.
func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Availability reports whether a listing can take a stay without creating one.
func (h *Handler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	if q.Guests == 0 {
		q.Guests = 1
	}

	start, end, err := dates(q.StartDate, q.EndDate)
	if err != nil {
		response.BindError(c, err)
		return
	}

	err = h.service.CheckAvailability(c.Request.Context(), booking.AvailabilityRequest{
		ListingID:      uri.ID,
		StartDate:      start,
		EndDate:        end,
		NumberOfGuests: q.Guests,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{Available: true})
}
