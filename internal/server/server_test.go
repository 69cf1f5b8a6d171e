package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympulse/pulse-cli/internal/checkin"
	"github.com/gympulse/pulse-cli/internal/directory"
	"github.com/gympulse/pulse-cli/internal/entitlement"
	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/occupancy"
	"github.com/gympulse/pulse-cli/internal/refresh"
	"github.com/gympulse/pulse-cli/internal/store"
)

var entitlementSecret = []byte("test-secret")

type testEnv struct {
	server *Server
	store  store.Store
	router http.Handler
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	dir := directory.New([]model.Gym{
		{
			ID: "gym-a", Name: "Gym Alpha", Brand: "Alpha", City: "Montréal", Province: "QC",
			Coordinates: model.Coordinates{Lat: 45.5017, Lng: -73.5673},
		},
		{
			ID: "gym-b", Name: "Gym Beta", Brand: "Beta", City: "Québec", Province: "QC",
			Coordinates: model.Coordinates{Lat: 46.8139, Lng: -71.2080},
		},
	})

	synth := occupancy.NewSynthesizer(&occupancy.SequenceSource{Values: []int{50, 20}})
	blender := occupancy.NewBlender(synth)
	readings := occupancy.NewLiveService(st, dir, blender)
	checkins := checkin.NewService(st, dir, checkin.StaticLocator{})
	verifier := entitlement.NewVerifier(entitlementSecret)

	srv := New(dir, st, checkins, readings, synth, verifier, opts...)
	return &testEnv{server: srv, store: st, router: srv.Router()}
}

func (e *testEnv) get(t *testing.T, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func premiumToken(t *testing.T) string {
	t.Helper()
	token, err := entitlement.NewIssuer(entitlementSecret).Mint("user-1", entitlement.PlanMonthly)
	require.NoError(t, err)
	return token
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsExposed(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListGyms(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/gyms")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]model.Gym](t, rec)
	assert.Len(t, body["gyms"], 2)

	rec = env.get(t, "/api/gyms?province=QC&city=Montréal")
	body = decode[map[string][]model.Gym](t, rec)
	require.Len(t, body["gyms"], 1)
	assert.Equal(t, "gym-a", body["gyms"][0].ID)
}

func TestSearchGyms(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/gyms/search?q=beta")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]model.Gym](t, rec)
	require.Len(t, body["gyms"], 1)
	assert.Equal(t, "gym-b", body["gyms"][0].ID)

	rec = env.get(t, "/api/gyms/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGym(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/gyms/gym-a")
	require.Equal(t, http.StatusOK, rec.Code)
	gym := decode[model.Gym](t, rec)
	assert.Equal(t, "Gym Alpha", gym.Name)

	rec = env.get(t, "/api/gyms/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOccupancy(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/gyms/gym-a/occupancy")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reading         model.LiveOccupancyReading `json:"reading"`
		ConfidenceLabel string                     `json:"confidence_label"`
		Stale           bool                       `json:"stale"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "gym-a", body.Reading.GymID)
	assert.Equal(t, "Gym Alpha", body.Reading.GymName)
	assert.False(t, body.Stale)
	assert.NotEmpty(t, body.ConfidenceLabel)
}

type staticGyms []model.Gym

func (s staticGyms) All() []model.Gym { return s }

// snapshotFeed returns a fixed reading for whichever gym is fetched.
type snapshotFeed struct{ reading model.LiveOccupancyReading }

func (f snapshotFeed) Fetch(_ context.Context, gymID string) (*model.LiveOccupancyReading, error) {
	r := f.reading
	r.GymID = gymID
	r.LastUpdatedAt = time.Now()
	return &r, nil
}

func TestOccupancy_ServedFromRefreshSnapshot(t *testing.T) {
	feed := snapshotFeed{reading: model.LiveOccupancyReading{
		GymName:    "Gym Alpha",
		Percentage: 64,
		Level:      model.LevelModerate,
		Confidence: 90,
		Capacity:   100,
	}}
	engine := refresh.NewEngine(feed, staticGyms{{ID: "gym-a"}},
		refresh.WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = engine.Run(ctx) }()
	require.Eventually(t, func() bool {
		return engine.Snapshot("gym-a") != nil
	}, time.Second, 10*time.Millisecond)

	env := newTestEnv(t, WithEngine(engine))

	rec := env.get(t, "/api/gyms/gym-a/occupancy")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reading model.LiveOccupancyReading `json:"reading"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 64, body.Reading.Percentage)
	assert.Equal(t, 90, body.Reading.Confidence)

	// A gym the engine has not swept yet still gets an on-demand reading.
	rec = env.get(t, "/api/gyms/gym-b/occupancy")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "gym-b", body.Reading.GymID)
}

func TestTrendAndForecast(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/gyms/gym-a/trend")
	require.Equal(t, http.StatusOK, rec.Code)
	trend := decode[map[string][]occupancy.TrendPoint](t, rec)
	assert.Len(t, trend["points"], 24)

	rec = env.get(t, "/api/gyms/gym-a/forecast")
	require.Equal(t, http.StatusOK, rec.Code)
	var forecast struct {
		Points    []occupancy.PredictionPoint `json:"points"`
		BestVisit string                      `json:"best_visit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forecast))
	assert.Len(t, forecast.Points, 12)
	assert.NotEmpty(t, forecast.BestVisit)

	rec = env.get(t, "/api/gyms/nope/trend")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckIn_Created(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "/api/gyms/gym-a/checkins", checkInRequest{
		UserID: "user-1", Lat: 45.5017, Lng: -73.5673,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ci := decode[model.CheckIn](t, rec)
	assert.Equal(t, "gym-a", ci.GymID)
	assert.Equal(t, "user-1", ci.UserID)
}

func TestCheckIn_RejectedOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	// Position is hundreds of kilometers from gym-a.
	rec := env.post(t, "/api/gyms/gym-a/checkins", checkInRequest{
		UserID: "user-1", Lat: 46.8139, Lng: -71.2080,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rej := decode[checkin.RejectionError](t, rec)
	assert.Equal(t, checkin.ReasonOutOfRange, rej.Reason)
	assert.Greater(t, rej.DistanceMeters, 200.0)
}

func TestCheckIn_RejectedRateLimited(t *testing.T) {
	env := newTestEnv(t)
	body := checkInRequest{UserID: "user-1", Lat: 45.5017, Lng: -73.5673}

	require.Equal(t, http.StatusCreated, env.post(t, "/api/gyms/gym-a/checkins", body).Code)

	rec := env.post(t, "/api/gyms/gym-a/checkins", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rej := decode[checkin.RejectionError](t, rec)
	assert.Equal(t, checkin.ReasonRateLimited, rej.Reason)
	assert.Equal(t, 60, rej.MinutesRemaining)
}

func TestCheckIn_UnknownGym(t *testing.T) {
	env := newTestEnv(t)
	rec := env.post(t, "/api/gyms/nope/checkins", checkInRequest{
		UserID: "user-1", Lat: 45.5017, Lng: -73.5673,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSensorIngestion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "/api/gyms/gym-a/sensor", sensorRequest{Headcount: 55})
	require.Equal(t, http.StatusAccepted, rec.Code)

	stored, err := env.store.LatestSensorReading(context.Background(), "gym-a")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 55, stored.Headcount)

	rec = env.post(t, "/api/gyms/gym-a/sensor", sensorRequest{Headcount: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.post(t, "/api/gyms/nope/sensor", sensorRequest{Headcount: 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPersonalAnalytics(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	require.NoError(t, env.store.AppendCheckIn(context.Background(), model.CheckIn{
		ID: "ci-1", GymID: "gym-a", UserID: "user-1", Timestamp: now.Add(-time.Hour),
		Source: model.CheckInSourceUser,
	}))

	rec := env.get(t, "/api/analytics/personal?user_id=user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gym Alpha")

	rec = env.get(t, "/api/analytics/personal")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommunityAnalytics(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/api/analytics/community")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdvancedAnalytics_Entitlement(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/analytics/advanced?user_id=user-1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.get(t, "/api/analytics/advanced?user_id=user-1",
		"Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.get(t, "/api/analytics/advanced?user_id=user-1",
		"Authorization", "Bearer "+premiumToken(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "consistency_score")
}

func TestPartnershipExport_Entitlement(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/export/partnership")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.get(t, "/api/export/partnership",
		"Authorization", "Bearer "+premiumToken(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summary")
}
