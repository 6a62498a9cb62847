package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/rental-booking/internal/auth"
	"github.com/nekogravitycat/rental-booking/internal/booking"
	"github.com/nekogravitycat/rental-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking/internal/pkg/response"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) CheckAvailability(ctx context.Context, req booking.AvailabilityRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockService) Create(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) ListForGuest(ctx context.Context, guestID string, page, pageSize int) ([]*booking.Booking, int, error) {
	args := m.Called(ctx, guestID, page, pageSize)
	bs, _ := args.Get(0).([]*booking.Booking)
	return bs, args.Int(1), args.Error(2)
}

func (m *mockService) ListForHost(ctx context.Context, hostID string, page, pageSize int) ([]*booking.Booking, int, error) {
	args := m.Called(ctx, hostID, page, pageSize)
	bs, _ := args.Get(0).([]*booking.Booking)
	return bs, args.Int(1), args.Error(2)
}

func (m *mockService) Get(ctx context.Context, id, requestorID string) (*booking.Booking, error) {
	args := m.Called(ctx, id, requestorID)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) UpdateStatus(ctx context.Context, id, requestorID string, next booking.Status) (*booking.Booking, error) {
	args := m.Called(ctx, id, requestorID, next)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) Cancel(ctx context.Context, id, requestorID string) (*booking.Booking, error) {
	args := m.Called(ctx, id, requestorID)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) HasUpcomingReservations(ctx context.Context, listingID string) (bool, error) {
	args := m.Called(ctx, listingID)
	return args.Bool(0), args.Error(1)
}

const (
	bookingID = "7f1c4d1e-5a8b-4c1a-9a4e-0d3b2c1a0f01"
	listingID = "4a4f2a84-8a4f-4c63-b1e5-7a6a3f7b0c01"
)

var jwtManager = auth.NewJWTManager("test-secret", time.Minute, "")

func setupRouter(svc booking.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderDisallowUnknownFields = true

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), auth.AuthRequired(jwtManager))
	return r
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwtManager.GenerateAccessToken(userID, "")
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path string, body any, tok string, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sample() *booking.Booking {
	return &booking.Booking{
		ID:             bookingID,
		ListingID:      listingID,
		GuestID:        "guest-1",
		HostID:         "host-1",
		StartDate:      time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2030, 1, 4, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 2,
		TotalPrice:     30000,
		Status:         booking.StatusPending,
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreate(t *testing.T) {
	svc := &mockService{}
	r := setupRouter(svc)
	body := map[string]any{
		"listing_id":       listingID,
		"start_date":       "2030-01-01",
		"end_date":         "2030-01-04",
		"number_of_guests": 2,
	}

	t.Run("Success", func(t *testing.T) {
		svc.On("Create", mock.Anything, booking.CreateRequest{
			GuestID:        "guest-1",
			ListingID:      listingID,
			StartDate:      time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:        time.Date(2030, 1, 4, 0, 0, 0, 0, time.UTC),
			NumberOfGuests: 2,
			IdempotencyKey: "abc",
		}).Return(sample(), nil).Once()

		w := do(r, http.MethodPost, "/v1/bookings", body, token(t, "guest-1"), map[string]string{"Idempotency-Key": "abc"})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, bookingID, resp.ID)
		assert.Equal(t, "2030-01-01", resp.StartDate)
		assert.Equal(t, "2030-01-04", resp.EndDate)
		assert.Equal(t, int64(3), resp.Nights)
		assert.Equal(t, "pending", resp.Status)
		assert.Contains(t, w.Body.String(), `"total_price":300.00`)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/bookings", body, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperror.KindUnauthorized, decodeError(t, w).Kind)
	})

	t.Run("Binding failures", func(t *testing.T) {
		cases := map[string]any{
			"missing guests":  map[string]any{"listing_id": listingID, "start_date": "2030-01-01", "end_date": "2030-01-04"},
			"zero guests":     map[string]any{"listing_id": listingID, "start_date": "2030-01-01", "end_date": "2030-01-04", "number_of_guests": 0},
			"bad date":        map[string]any{"listing_id": listingID, "start_date": "01/01/2030", "end_date": "2030-01-04", "number_of_guests": 1},
			"bad listing id":  map[string]any{"listing_id": "nope", "start_date": "2030-01-01", "end_date": "2030-01-04", "number_of_guests": 1},
			"unknown field":   map[string]any{"listing_id": listingID, "start_date": "2030-01-01", "end_date": "2030-01-04", "number_of_guests": 1, "price": 1},
			"malformed json":  `{"listing_id":`,
			"string as guest": `{"listing_id":"` + listingID + `","start_date":"2030-01-01","end_date":"2030-01-04","number_of_guests":"2"}`,
		}
		for name, payload := range cases {
			t.Run(name, func(t *testing.T) {
				w := do(r, http.MethodPost, "/v1/bookings", payload, token(t, "guest-1"), nil)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, apperror.KindValidation, decodeError(t, w).Kind)
			})
		}
	})

	t.Run("Idempotency key too long", func(t *testing.T) {
		long := string(bytes.Repeat([]byte("k"), maxIdempotencyKeyLen+1))
		w := do(r, http.MethodPost, "/v1/bookings", body, token(t, "guest-1"), map[string]string{"Idempotency-Key": long})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Domain errors map to status codes", func(t *testing.T) {
		cases := []struct {
			err  error
			code int
		}{
			{booking.ErrConflict, http.StatusConflict},
			{booking.ErrListingNotFound, http.StatusNotFound},
			{booking.ErrTooManyGuests, http.StatusBadRequest},
			{booking.ErrStartDatePast, http.StatusBadRequest},
		}
		for _, tc := range cases {
			svc.On("Create", mock.Anything, mock.Anything).Return(nil, tc.err).Once()
			w := do(r, http.MethodPost, "/v1/bookings", body, token(t, "guest-2"), nil)
			assert.Equal(t, tc.code, w.Code, tc.err.Error())
			assert.Equal(t, tc.err.Error(), decodeError(t, w).Error)
		}
	})

	svc.AssertExpectations(t)
}

func TestListMineAndHosting(t *testing.T) {
	svc := &mockService{}
	r := setupRouter(svc)

	svc.On("ListForGuest", mock.Anything, "guest-1", 1, 20).Return([]*booking.Booking{sample()}, 1, nil).Once()
	w := do(r, http.MethodGet, "/v1/bookings/mine", nil, token(t, "guest-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page response.PageResponse[BookingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Items, 1)

	svc.On("ListForHost", mock.Anything, "host-1", 2, 5).Return(nil, 6, nil).Once()
	w = do(r, http.MethodGet, "/v1/bookings/hosting?page=2&page_size=5", nil, token(t, "host-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	w = do(r, http.MethodGet, "/v1/bookings/hosting?page_size=500", nil, token(t, "host-1"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestGet(t *testing.T) {
	svc := &mockService{}
	r := setupRouter(svc)

	svc.On("Get", mock.Anything, bookingID, "guest-1").Return(sample(), nil).Once()
	svc.On("Get", mock.Anything, bookingID, "stranger").Return(nil, booking.ErrPermissionDenied).Once()

	w := do(r, http.MethodGet, "/v1/bookings/"+bookingID, nil, token(t, "guest-1"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/v1/bookings/"+bookingID, nil, token(t, "stranger"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.KindForbidden, decodeError(t, w).Kind)

	w = do(r, http.MethodGet, "/v1/bookings/not-a-uuid", nil, token(t, "guest-1"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestUpdateStatus(t *testing.T) {
	svc := &mockService{}
	r := setupRouter(svc)

	confirmed := sample()
	confirmed.Status = booking.StatusConfirmed
	svc.On("UpdateStatus", mock.Anything, bookingID, "host-1", booking.StatusConfirmed).Return(confirmed, nil).Once()
	svc.On("UpdateStatus", mock.Anything, bookingID, "host-1", booking.StatusRejected).Return(nil, booking.ErrInvalidTransition).Once()

	w := do(r, http.MethodPost, "/v1/bookings/"+bookingID+"/status", map[string]string{"status": "confirmed"}, token(t, "host-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"confirmed"`)

	w = do(r, http.MethodPost, "/v1/bookings/"+bookingID+"/status", map[string]string{"status": "rejected"}, token(t, "host-1"), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.KindInvalidTransition, decodeError(t, w).Kind)

	svc.On("UpdateStatus", mock.Anything, bookingID, "host-1", booking.StatusCancelled).Return(nil, booking.ErrInvalidTransition).Once()
	svc.On("UpdateStatus", mock.Anything, bookingID, "host-1", booking.StatusPending).Return(nil, booking.ErrInvalidTransition).Once()
	for _, status := range []string{"cancelled", "pending"} {
		w = do(r, http.MethodPost, "/v1/bookings/"+bookingID+"/status", map[string]string{"status": status}, token(t, "host-1"), nil)
		assert.Equal(t, http.StatusConflict, w.Code, status)
		assert.Equal(t, apperror.KindInvalidTransition, decodeError(t, w).Kind, status)
	}

	w = do(r, http.MethodPost, "/v1/bookings/"+bookingID+"/status", map[string]string{"status": "archived"}, token(t, "host-1"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.KindValidation, decodeError(t, w).Kind)

	svc.AssertExpectations(t)
}

func TestCancel(t *testing.T) {
	svc := &mockService{}
	r := setupRouter(svc)

	cancelled := sample()
	cancelled.Status = booking.StatusCancelled
	svc.On("Cancel", mock.Anything, bookingID, "guest-1").Return(cancelled, nil).Once()
	svc.On("Cancel", mock.Anything, bookingID, "guest-2").Return(nil, booking.ErrTooLate).Once()

	w := do(r, http.MethodPost, "/v1/bookings/"+bookingID+"/cancel", nil, token(t, "guest-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)

	w = do(r, http.MethodPost, "/v1/bookings/"+bookingID+"/cancel", nil, token(t, "guest-2"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.KindTooLate, decodeError(t, w).Kind)

	svc.AssertExpectations(t)
}

func TestAvailability(t *testing.T) {
	svc := &mockService{}
	r := setupRouter(svc)

	svc.On("CheckAvailability", mock.Anything, booking.AvailabilityRequest{
		ListingID:      listingID,
		StartDate:      time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2030, 1, 4, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 1,
	}).Return(nil).Once()
	svc.On("CheckAvailability", mock.Anything, mock.MatchedBy(func(req booking.AvailabilityRequest) bool {
		return req.NumberOfGuests == 3
	})).Return(booking.ErrConflict).Once()

	// no token needed
	w := do(r, http.MethodGet, "/v1/listings/"+listingID+"/availability?start_date=2030-01-01&end_date=2030-01-04", nil, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":true}`, w.Body.String())

	w = do(r, http.MethodGet, "/v1/listings/"+listingID+"/availability?start_date=2030-01-01&end_date=2030-01-04&guests=3", nil, "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodGet, "/v1/listings/"+listingID+"/availability?start_date=2030-01-01", nil, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}
