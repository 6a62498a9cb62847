package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/rental-booking/internal/auth"
	"github.com/nekogravitycat/rental-booking/internal/listing"
	"github.com/nekogravitycat/rental-booking/internal/pkg/request"
	"github.com/nekogravitycat/rental-booking/internal/pkg/response"
)

type Handler struct {
	service listing.Service
}

func NewHandler(service listing.Service) *Handler {
	return &Handler{service: service}
}

// List searches listings with optional filters.
func (h *Handler) List(c *gin.Context) {
	var q ListListingsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	h.list(c, q)
}

// ListMine returns the caller's own listings.
func (h *Handler) ListMine(c *gin.Context) {
	var q ListListingsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	q.HostID = auth.GetUserID(c)
	h.list(c, q)
}

func (h *Handler) list(c *gin.Context, q ListListingsRequest) {
	filter, err := q.toFilter()
	if err != nil {
		response.Error(c, err)
		return
	}

	listings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ListingResponse, len(listings))
	for i, l := range listings {
		items[i] = NewListingResponse(l)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

// Create publishes a new listing owned by the caller.
func (h *Handler) Create(c *gin.Context) {
	var body CreateListingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	l, err := h.service.Create(c.Request.Context(), listing.CreateRequest{
		HostID:        auth.GetUserID(c),
		Title:         body.Title,
		Description:   body.Description,
		PricePerNight: *body.PricePerNight,
		MaxGuests:     body.MaxGuests,
		Bedrooms:      body.Bedrooms,
		Bathrooms:     body.Bathrooms,
		PropertyType:  listing.PropertyType(body.PropertyType),
		Location:      body.Location.toDomain(),
		Amenities:     body.Amenities,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewListingResponse(l))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListingResponse(l))
}

// Update modifies a listing. Only its host may do so.
func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var body UpdateListingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	l, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), body.toDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListingResponse(l))
}

// Delete removes a listing. Only its host may do so.
func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
