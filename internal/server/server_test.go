package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vehiclerent/internal/config"
	"vehiclerent/internal/database"
	"vehiclerent/internal/domain"
	"vehiclerent/internal/notification"
	"vehiclerent/internal/pkg/codes"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type suite struct {
	t   *testing.T
	app *App
	db  *gorm.DB
}

var clock = time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)

func setupSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.ConnectWith(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppEnv:            "test",
		JWTSecret:         "test_secret_key_32_characters_min",
		JWTAccessTTL:      time.Hour,
		SequenceStrategy:  "counter",
		AllocMaxAttempts:  5,
		AllocMaxBackoff:   5 * time.Millisecond,
		VehicleLockOnBook: true,
	}
	app, err := New(cfg, db, Options{
		Mailer: notification.LogMailer{},
		Now:    func() time.Time { return clock },
	})
	require.NoError(t, err)
	t.Cleanup(app.Hub.Close)
	t.Cleanup(app.Bookings.WaitMail)

	return &suite{t: t, app: app, db: db}
}

func (s *suite) do(method, path string, body any, token string) (int, *testResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var resp testResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), "status %d body %s", w.Code, w.Body.String())
	if resp.Error != nil {
		s.t.Logf("%s %s -> [%s] %s", method, path, resp.Error.Code, resp.Error.Message)
	}
	return w.Code, &resp
}

// register signs a user up and logs them in, returning the token and user id.
func (s *suite) register(email, role string) (string, int64) {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Test " + role, "email": email, "password": "Password123!", "role": role,
	}, "")
	require.Equal(s.t, http.StatusCreated, code)

	code, resp := s.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": email, "password": "Password123!",
	}, "")
	require.Equal(s.t, http.StatusOK, code)

	token, _ := resp.Data["access_token"].(string)
	require.NotEmpty(s.t, token)
	user := resp.Data["user"].(map[string]any)
	return token, int64(user["id"].(float64))
}

func (s *suite) adminToken() string {
	s.t.Helper()
	admin := &domain.User{Email: "admin@test.com", PasswordHash: "x", Name: "Admin", Role: domain.RoleAdmin, VerificationStatus: domain.VerificationVerified}
	require.NoError(s.t, s.db.Create(admin).Error)
	token, err := s.app.JWT.GenerateToken(admin.ID, string(domain.RoleAdmin))
	require.NoError(s.t, err)
	return token
}

func nested(resp *testResponse, key string) map[string]any {
	m, _ := resp.Data[key].(map[string]any)
	return m
}

func TestFlow_RentalLifecycle(t *testing.T) {
	s := setupSuite(t)
	admin := s.adminToken()
	owner, ownerID := s.register("owner@test.com", "owner")
	customer, customerID := s.register("customer@test.com", "customer")

	var vehicleID int64
	t.Run("owner lists a vehicle", func(t *testing.T) {
		code, resp := s.do(http.MethodPost, "/api/vehicles", map[string]any{
			"make": "Toyota", "model": "Prius", "plate_number": "WP-4411", "price_per_day": 100,
		}, owner)
		require.Equal(t, http.StatusCreated, code)
		v := nested(resp, "vehicle")
		assert.Equal(t, float64(ownerID), v["owner_id"])
		vehicleID = int64(v["id"].(float64))
	})

	booking := map[string]any{
		"booking_start_date": "2025-03-01",
		"booking_end_date":   "2025-03-03",
		"start_location":     "Colombo",
		"end_location":       "Galle",
	}

	t.Run("unverified customer cannot book", func(t *testing.T) {
		booking["vehicle_id"] = vehicleID
		code, resp := s.do(http.MethodPost, "/api/bookings", booking, customer)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("admin verifies the customer", func(t *testing.T) {
		code, resp := s.do(http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/verification", customerID), map[string]any{"status": "verified"}, admin)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "verified", nested(resp, "user")["verification_status"])

		code, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/verification", customerID), map[string]any{"status": "verified"}, owner)
		assert.Equal(t, http.StatusForbidden, code)
	})

	var bookingID string
	t.Run("customer books the vehicle", func(t *testing.T) {
		code, resp := s.do(http.MethodPost, "/api/bookings", booking, customer)
		require.Equal(t, http.StatusCreated, code)

		b := nested(resp, "booking")
		bookingID = b["id"].(string)
		assert.Equal(t, "BOOK-20250220-000001", b["booking_code"])
		assert.True(t, codes.Valid(codes.PrefixBooking, b["booking_code"].(string)))
		assert.Equal(t, float64(200), b["total_price"])
		assert.Equal(t, "pending", b["booking_status"])

		code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/vehicles/%d", vehicleID), nil, "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "unavailable", nested(resp, "vehicle")["status"])
	})

	t.Run("customer cannot change status", func(t *testing.T) {
		code, _ := s.do(http.MethodPatch, "/api/bookings/"+bookingID+"/status", map[string]any{"status": "confirmed"}, customer)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("owner confirms, starts and settles", func(t *testing.T) {
		code, resp := s.do(http.MethodPatch, "/api/bookings/"+bookingID+"/status", map[string]any{"status": "confirmed"}, owner)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "confirmed", nested(resp, "booking")["booking_status"])

		code, _ = s.do(http.MethodPatch, "/api/bookings/"+bookingID+"/status", map[string]any{"status": "completed"}, owner)
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = s.do(http.MethodPatch, "/api/bookings/"+bookingID+"/status", map[string]any{"status": "ongoing"}, owner)
		require.Equal(t, http.StatusOK, code)

		code, resp = s.do(http.MethodPost, "/api/bookings/"+bookingID+"/settlement", map[string]any{
			"agreed_mileage": 300, "start_odometer": 12000, "end_odometer": 12450, "rate_per_km": 0.5, "complete": true,
		}, owner)
		require.Equal(t, http.StatusOK, code)
		b := nested(resp, "booking")
		assert.Equal(t, "completed", b["booking_status"])
		assert.Equal(t, float64(150), b["extra_mileage"])
		assert.Equal(t, float64(75), b["extra_charge"])

		code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/vehicles/%d", vehicleID), nil, "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "available", nested(resp, "vehicle")["status"])
	})

	t.Run("customer reviews once", func(t *testing.T) {
		review := map[string]any{"booking_id": bookingID, "rating": 5, "comment": "Clean and on time"}
		code, resp := s.do(http.MethodPost, "/api/reviews", review, customer)
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "REVIEW-20250220-000001", nested(resp, "review")["review_code"])

		code, _ = s.do(http.MethodPost, "/api/reviews", review, customer)
		assert.Equal(t, http.StatusConflict, code)

		code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/vehicles/%d/reviews", vehicleID), nil, "")
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, resp.Data["reviews"], 1)
	})

	t.Run("customer sees every lifecycle alert", func(t *testing.T) {
		code, resp := s.do(http.MethodGet, "/api/alerts", nil, customer)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, resp.Data["alerts"], 4)
		assert.Equal(t, float64(4), resp.Data["unread_count"])

		code, _ = s.do(http.MethodPatch, "/api/alerts/read-all", nil, customer)
		require.Equal(t, http.StatusOK, code)

		_, resp = s.do(http.MethodGet, "/api/alerts?unread=true", nil, customer)
		assert.Empty(t, resp.Data["alerts"])
	})
}

func TestFlow_AuthErrors(t *testing.T) {
	s := setupSuite(t)
	s.register("dup@test.com", "customer")

	code, resp := s.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Again", "email": "dup@test.com", "password": "Password123!",
	}, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "EMAIL_EXISTS", resp.Error.Code)

	code, resp = s.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "dup@test.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)

	code, resp = s.do(http.MethodGet, "/api/bookings/my", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)
}
