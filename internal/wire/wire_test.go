package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vessel-booking/internal/data/entity"
	"vessel-booking/internal/data/repository"
	"vessel-booking/pkg/middleware"
	"vessel-booking/pkg/notify"
	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type testServer struct {
	t      *testing.T
	router http.Handler
	repo   *repository.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := repository.NewMemoryRepository(zap.NewNop())
	config := &utils.Config{
		Booking:   utils.BookingConfig{LoyaltyPointsPerStay: 100},
		Allocator: utils.AllocatorConfig{MaxParallel: 2},
	}
	app := Wiring(repo, config, notify.NewLogNotifier(zap.NewNop()), zap.NewNop())
	return &testServer{t: t, router: app.Router, repo: repo}
}

func (s *testServer) vessel(price int64, capacity int) uuid.UUID {
	v := &entity.Vessel{Base: entity.Base{ID: uuid.New(), CreatedAt: time.Now()}, Name: "Amelia", PricePerDayCents: price, Capacity: capacity}
	require.NoError(s.t, s.repo.Vessel.Create(context.Background(), v))
	return v.ID
}

func (s *testServer) do(method, path string, body any, userID uuid.UUID, role string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set(middleware.HeaderUserID, userID.String())
	}
	if role != "" {
		req.Header.Set(middleware.HeaderUserRole, role)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(http.MethodGet, "/health", nil, uuid.Nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAvailabilityEndpoint(t *testing.T) {
	s := newTestServer(t)
	vesselID := s.vessel(50000, 10)

	rec, env := s.do(http.MethodGet, "/api/vessels/"+vesselID.String()+"/availability?start=2025-06-01&end=2025-06-06&guests=4", nil, uuid.Nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		IsAvailable     bool  `json:"is_available"`
		TotalPriceCents int64 `json:"total_price_cents"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.IsAvailable)
	assert.EqualValues(t, 250000, data.TotalPriceCents)

	rec, env = s.do(http.MethodGet, "/api/vessels/"+vesselID.String()+"/availability?start=2025-06-01&end=2025-06-06", nil, uuid.Nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Errors, "guest_count")
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	vesselID := s.vessel(50000, 10)
	owner := uuid.New()
	admin := uuid.New()

	body := map[string]any{
		"vessel_id":   vesselID.String(),
		"start_date":  "2025-06-01",
		"end_date":    "2025-06-06",
		"guest_count": 4,
	}

	rec, _ := s.do(http.MethodPost, "/api/bookings", body, uuid.Nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := s.do(http.MethodPost, "/api/bookings", body, owner, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, "PENDING", booking.Status)

	body["start_date"], body["end_date"] = "2025-06-03", "2025-06-08"
	rec, _ = s.do(http.MethodPost, "/api/bookings", body, uuid.New(), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	statusPath := "/api/bookings/" + booking.ID + "/status"
	rec, _ = s.do(http.MethodPatch, statusPath, map[string]string{"status": "CONFIRMED"}, owner, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodPatch, statusPath, map[string]string{"status": "COMPLETED"}, admin, utils.RoleAdmin)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = s.do(http.MethodPatch, statusPath, map[string]string{"status": "CONFIRMED"}, admin, utils.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	modPath := "/api/bookings/" + booking.ID + "/modifications"
	rec, _ = s.do(http.MethodPost, modPath, map[string]any{
		"kind":  "requests",
		"value": map[string]string{"special_requests": "window cabin"},
	}, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, modPath, nil, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mods []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &mods))
	assert.Len(t, mods, 1)

	rec, _ = s.do(http.MethodPatch, statusPath, map[string]string{"status": "COMPLETED"}, admin, utils.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(http.MethodPatch, statusPath, map[string]string{"status": "COMPLETED"}, admin, utils.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/loyalty", nil, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var loyalty struct {
		Points int64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &loyalty))
	assert.EqualValues(t, 100, loyalty.Points)

	rec, _ = s.do(http.MethodPost, modPath, map[string]any{
		"kind":  "guests",
		"value": map[string]int{"guest_count": 3},
	}, owner, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminCalendarRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	vesselID := s.vessel(50000, 10)
	path := "/api/admin/vessels/" + vesselID.String() + "/calendar?from=2025-06-01&to=2025-07-01"

	rec, _ := s.do(http.MethodGet, path, nil, uuid.New(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodGet, path, nil, uuid.New(), utils.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAllocationEndpointReportsNoneAvailable(t *testing.T) {
	s := newTestServer(t)
	vesselID := s.vessel(50000, 10)
	owner := uuid.New()

	rec, _ := s.do(http.MethodPost, "/api/bookings", map[string]any{
		"vessel_id": vesselID.String(), "start_date": "2025-06-01", "end_date": "2025-06-06", "guest_count": 2,
	}, owner, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := s.do(http.MethodPost, "/api/allocations", map[string]any{
		"candidate_vessel_ids": []string{vesselID.String()},
		"start_date":           "2025-06-02",
		"end_date":             "2025-06-04",
		"guest_count":          2,
	}, uuid.Nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Available)
}

func TestUnknownBodyFieldsRejected(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(http.MethodPost, "/api/bookings", map[string]any{"cabin_id": "A1"}, uuid.New(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
