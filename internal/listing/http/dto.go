package http

import (
	"time"

	"github.com/nekogravitycat/rental-booking/internal/listing"
	"github.com/nekogravitycat/rental-booking/internal/pkg/money"
	"github.com/nekogravitycat/rental-booking/internal/pkg/request"
)

type LocationBody struct {
	Address   string   `json:"address"`
	City      string   `json:"city" binding:"required"`
	State     string   `json:"state"`
	Country   string   `json:"country" binding:"required"`
	Latitude  *float64 `json:"lat" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"lng" binding:"omitempty,min=-180,max=180"`
}

func (b LocationBody) toDomain() listing.Location {
	return listing.Location{
		Address:   b.Address,
		City:      b.City,
		State:     b.State,
		Country:   b.Country,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
	}
}

type CreateListingRequest struct {
	Title         string        `json:"title" binding:"required,max=200"`
	Description   string        `json:"description" binding:"max=5000"`
	PricePerNight *money.Amount `json:"price_per_night" binding:"required"`
	MaxGuests     int           `json:"max_guests" binding:"required,min=1"`
	Bedrooms      int           `json:"bedrooms" binding:"min=0"`
	Bathrooms     int           `json:"bathrooms" binding:"min=0"`
	PropertyType  string        `json:"property_type" binding:"required,oneof=apartment house villa condo studio"`
	Location      LocationBody  `json:"location"`
	Amenities     []string      `json:"amenities" binding:"omitempty,dive,required"`
}

// Validate performs checks the binding tags cannot express.
func (r *CreateListingRequest) Validate() error {
	if !listing.ValidPrice(*r.PricePerNight) {
		return listing.ErrInvalidPrice
	}
	return nil
}

type UpdateListingRequest struct {
	Title         *string       `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string       `json:"description" binding:"omitempty,max=5000"`
	PricePerNight *money.Amount `json:"price_per_night"`
	MaxGuests     *int          `json:"max_guests" binding:"omitempty,min=1"`
	Bedrooms      *int          `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms     *int          `json:"bathrooms" binding:"omitempty,min=0"`
	PropertyType  *string       `json:"property_type" binding:"omitempty,oneof=apartment house villa condo studio"`
	Location      *LocationBody `json:"location"`
	Amenities     []string      `json:"amenities" binding:"omitempty,dive,required"`
}

// Validate performs checks the binding tags cannot express.
func (r *UpdateListingRequest) Validate() error {
	if r.PricePerNight != nil && !listing.ValidPrice(*r.PricePerNight) {
		return listing.ErrInvalidPrice
	}
	return nil
}

func (r *UpdateListingRequest) toDomain() listing.UpdateRequest {
	req := listing.UpdateRequest{
		Title:         r.Title,
		Description:   r.Description,
		PricePerNight: r.PricePerNight,
		MaxGuests:     r.MaxGuests,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		Amenities:     r.Amenities,
	}
	if r.PropertyType != nil {
		pt := listing.PropertyType(*r.PropertyType)
		req.PropertyType = &pt
	}
	if r.Location != nil {
		loc := r.Location.toDomain()
		req.Location = &loc
	}
	return req
}

// ListListingsRequest defines query parameters for searching listings.
type ListListingsRequest struct {
	request.ListParams
	HostID       string   `form:"host_id"`
	City         string   `form:"city"`
	Country      string   `form:"country"`
	PropertyType string   `form:"property_type" binding:"omitempty,oneof=apartment house villa condo studio"`
	MinPrice     *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice     *float64 `form:"max_price" binding:"omitempty,min=0"`
	Guests       int      `form:"guests" binding:"omitempty,min=1"`
}

func (r *ListListingsRequest) toFilter() (listing.Filter, error) {
	r.Normalize()
	f := listing.Filter{
		HostID:       r.HostID,
		City:         r.City,
		Country:      r.Country,
		PropertyType: listing.PropertyType(r.PropertyType),
		Guests:       r.Guests,
		Page:         r.Page,
		PageSize:     r.PageSize,
	}
	if r.MinPrice != nil {
		v, err := money.FromMajor(*r.MinPrice)
		if err != nil {
			return f, listing.ErrInvalidPrice
		}
		f.MinPrice = &v
	}
	if r.MaxPrice != nil {
		v, err := money.FromMajor(*r.MaxPrice)
		if err != nil {
			return f, listing.ErrInvalidPrice
		}
		f.MaxPrice = &v
	}
	return f, nil
}

type LocationResponse struct {
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
}

type ListingResponse struct {
	ID            string           `json:"id"`
	HostID        string           `json:"host_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	PricePerNight money.Amount     `json:"price_per_night"`
	MaxGuests     int              `json:"max_guests"`
	Bedrooms      int              `json:"bedrooms"`
	Bathrooms     int              `json:"bathrooms"`
	PropertyType  string           `json:"property_type"`
	Location      LocationResponse `json:"location"`
	Amenities     []string         `json:"amenities"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func NewListingResponse(l *listing.Listing) ListingResponse {
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return ListingResponse{
		ID:            l.ID,
		HostID:        l.HostID,
		Title:         l.Title,
		Description:   l.Description,
		PricePerNight: l.PricePerNight,
		MaxGuests:     l.MaxGuests,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		PropertyType:  string(l.PropertyType),
		Location: LocationResponse{
			Address:   l.Location.Address,
			City:      l.Location.City,
			State:     l.Location.State,
			Country:   l.Location.Country,
			Latitude:  l.Location.Latitude,
			Longitude: l.Location.Longitude,
		},
		Amenities: amenities,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
