package shiftest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"linetrack-backend/internal/platform/throttle"
	"linetrack-backend/internal/upstream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type attCall struct {
	id string
	q  upstream.AttendanceQuery
}

type fakeUpstream struct {
	stations    []upstream.Station
	stationsErr error
	workers     []upstream.Worker
	workersErr  error

	payloads map[string]string
	failing  map[string]error

	mu    sync.Mutex
	calls []attCall
}

func (f *fakeUpstream) ListStations(context.Context) ([]upstream.Station, error) {
	return f.stations, f.stationsErr
}

func (f *fakeUpstream) ListWorkers(context.Context) ([]upstream.Worker, error) {
	return f.workers, f.workersErr
}

func (f *fakeUpstream) Attendance(_ context.Context, id string, q upstream.AttendanceQuery) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, attCall{id: id, q: q})
	f.mu.Unlock()
	if err := f.failing[id]; err != nil {
		return nil, err
	}
	return []byte(f.payloads[id]), nil
}

func newFake() *fakeUpstream {
	return &fakeUpstream{
		stations: []upstream.Station{
			{ID: "s1", Name: "Corte", WorkerIDs: []string{"1", "2"}},
			{ID: "s2", Name: "Costura"},
			{ID: "s3", Name: "Empaque", WorkerIDs: []string{"1"}},
		},
		workers: []upstream.Worker{
			{ID: "1", Name: "Ana", GeoVictoriaID: "g1"},
			{ID: "2", Name: "Luis", GeoVictoriaID: "g2"},
			{ID: "3", Name: "Eva", StationIDs: []string{"s2"}},
			{ID: "4", Name: "Rosa", GeoVictoriaID: "g4", StationIDs: []string{"s2"}},
		},
		payloads: map[string]string{
			"g1": `{"Users":[{"PlannedInterval":[{"Date":"20240308000000","Punches":[
				{"Date":"20240308173500","Type":"Out"},
				{"Date":"20240308080100","Type":"In"}
			]}]}]}`,
			"g2": `[{"Fecha":"2024-03-08","Entrada":"08:10","Salida":"17:40"}]`,
		},
		failing: map[string]error{"g4": &upstream.StatusError{StatusCode: 503}},
	}
}

func newTestService(up Upstream) *Service {
	s := NewService(up, throttle.New(0), time.UTC, DefaultRules(), 7, nil)
	s.clock = fixedClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	return s
}

func TestEstimate(t *testing.T) {
	up := newFake()
	res, err := newTestService(up).Estimate(context.Background(), "2024-03-08")
	require.NoError(t, err)

	// assigned and linked workers only, once each, in order
	assert.Equal(t, []attCall{
		{id: "g1", q: upstream.AttendanceQuery{Days: 3}},
		{id: "g2", q: upstream.AttendanceQuery{Days: 3}},
		{id: "g4", q: upstream.AttendanceQuery{Days: 3}},
	}, up.calls)

	require.Len(t, res.Stations, 3)
	s1 := res.Stations[0]
	assert.Equal(t, StatusEstimated, s1.Status)
	assert.Equal(t, 2, s1.PresentCount)
	assert.Equal(t, 530, *s1.ShiftMinutes)
	assert.True(t, time.Date(2024, 3, 8, 17, 10, 0, 0, time.UTC).Equal(*s1.EstimatedEnd))

	s2 := res.Stations[1]
	assert.Equal(t, StatusNoShift, s2.Status)
	require.Len(t, s2.WorkerAttendance, 2)
	assert.Equal(t, StateUnlinked, s2.WorkerAttendance[0].State)
	assert.Equal(t, StateError, s2.WorkerAttendance[1].State)

	s3 := res.Stations[2]
	assert.Equal(t, StatusEstimated, s3.Status)
	assert.Equal(t, 525, *s3.ShiftMinutes)

	assert.Empty(t, res.Errors.Stations)
	assert.Empty(t, res.Errors.Workers)
}

func TestEstimateOldDateUsesExplicitRange(t *testing.T) {
	up := newFake()
	_, err := newTestService(up).Estimate(context.Background(), "2024-01-15")
	require.NoError(t, err)
	require.NotEmpty(t, up.calls)
	assert.Equal(t, upstream.AttendanceQuery{StartDate: "2024-01-15", EndDate: "2024-01-15"}, up.calls[0].q)
}

func TestEstimateReferenceFailure(t *testing.T) {
	up := newFake()
	up.workersErr = upstream.ErrCircuitOpen

	res, err := newTestService(up).Estimate(context.Background(), "today")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-10", res.Date)
	assert.Equal(t, "upstream temporarily unavailable", res.Errors.Workers)
	assert.Empty(t, up.calls)
	require.Len(t, res.Stations, 3)
	for _, s := range res.Stations {
		assert.Equal(t, StatusNoShift, s.Status)
		assert.Zero(t, s.AssignedCount)
	}
}

func TestEstimateHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestService(newFake()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shift-estimates?date=2024-03-08", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Stations, 3)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shift-estimates?date=08-03-2024", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(CodeInvalidArgument))
}
