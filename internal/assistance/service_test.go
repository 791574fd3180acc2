package assistance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"linetrack-backend/internal/activity"
	"linetrack-backend/internal/upstream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeUpstream struct {
	workers    []upstream.Worker
	workersErr error

	attendance []byte
	attErr     error
	attQuery   upstream.AttendanceQuery
	attID      string

	tasks     []activity.TaskInstance
	taskErr   error
	taskQuery upstream.TaskQuery
}

func (f *fakeUpstream) ListWorkers(context.Context) ([]upstream.Worker, error) {
	return f.workers, f.workersErr
}

func (f *fakeUpstream) Attendance(_ context.Context, id string, q upstream.AttendanceQuery) ([]byte, error) {
	f.attID, f.attQuery = id, q
	return f.attendance, f.attErr
}

func (f *fakeUpstream) TaskHistory(_ context.Context, q upstream.TaskQuery) ([]activity.TaskInstance, error) {
	f.taskQuery = q
	return f.tasks, f.taskErr
}

func newTestService(up Upstream) *Service {
	s := NewService(up, time.UTC, Options{DefaultDays: 7, ActivityLimit: 500}, nil)
	s.clock = fixedClock{t: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	return s
}

func baseUpstream() *fakeUpstream {
	return &fakeUpstream{
		workers: []upstream.Worker{
			{ID: "1", Name: "Ana", GeoVictoriaID: "g-1"},
			{ID: "2", Name: "Luis"},
		},
		attendance: []byte(`[
			{"Fecha":"2024-03-08","Entrada":"08:00","Salida":"17:30"},
			{"Fecha":"2024-02-01","Entrada":"08:00","Salida":"17:30"}
		]`),
		tasks: []activity.TaskInstance{
			{ID: "t2", StartedAt: "2024-03-09T10:00:00", CompletedAt: "2024-03-09T11:00:00"},
			{ID: "t1", StartedAt: "2024-03-09T08:00:00", CompletedAt: "2024-03-09T09:00:00", DurationMinutes: f64(45)},
		},
	}
}

func TestWorkerAssistanceMergesBothSources(t *testing.T) {
	up := baseUpstream()
	res, err := newTestService(up).WorkerAssistance(context.Background(), "1", "", "")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", res.From)
	assert.Equal(t, "2024-03-10", res.To)
	assert.Equal(t, "g-1", up.attID)
	assert.Equal(t, upstream.AttendanceQuery{StartDate: "2024-03-04", EndDate: "2024-03-10"}, up.attQuery)
	assert.Equal(t, upstream.TaskQuery{WorkerID: "1", FromDate: "2024-03-04", ToDate: "2024-03-10", Limit: 500}, up.taskQuery)

	// 2024-02-01 is outside the range
	require.Len(t, res.Days, 2)
	assert.Equal(t, "2024-03-09", res.Days[0].Date)
	assert.Equal(t, "2024-03-08", res.Days[1].Date)

	act := res.Days[0].Activity
	require.NotNil(t, act)
	assert.Equal(t, "t1", act.Tasks[0].ID, "tasks sorted by start for display")
	assert.Equal(t, SourceActivity, res.Days[0].PresenceSource)
	require.NotNil(t, res.Days[0].PresenceSeconds)
	assert.Equal(t, 3*3600.0, *res.Days[0].PresenceSeconds)

	assert.Equal(t, SourceGeoVictoria, res.Days[1].PresenceSource)
	assert.Equal(t, 9.5*3600, *res.Days[1].PresenceSeconds)

	assert.Equal(t, 2, res.Totals.DaysPresent)
	assert.Equal(t, 1, res.Totals.DaysWithActivity)
	assert.Equal(t, 45*60+3600.0, res.Totals.ActiveSeconds)
	assert.Empty(t, res.Errors.Attendance)
	assert.Empty(t, res.Errors.Activity)
}

func TestWorkerAssistancePartialFailure(t *testing.T) {
	up := baseUpstream()
	up.attErr = &upstream.StatusError{Endpoint: upstream.EndpointAttendance, StatusCode: 500}

	res, err := newTestService(up).WorkerAssistance(context.Background(), "1", "2024-03-01", "2024-03-10")
	require.NoError(t, err)

	assert.Equal(t, "upstream returned HTTP 500", res.Errors.Attendance)
	assert.Empty(t, res.Errors.Activity)
	require.Len(t, res.Days, 1)
	assert.Equal(t, "2024-03-09", res.Days[0].Date)
}

func TestWorkerAssistanceUnlinkedWorker(t *testing.T) {
	up := baseUpstream()
	up.taskErr = errors.New("dial tcp: connection refused")

	res, err := newTestService(up).WorkerAssistance(context.Background(), "2", "", "")
	require.NoError(t, err)

	assert.Equal(t, "unlinked", res.Errors.Attendance)
	assert.Equal(t, "dial tcp: connection refused", res.Errors.Activity)
	assert.Empty(t, up.attID, "attendance is not requested for unlinked workers")
	assert.NotNil(t, res.Days)
	assert.Empty(t, res.Days)
}

func TestWorkerAssistanceErrors(t *testing.T) {
	cases := []struct {
		name     string
		up       *fakeUpstream
		worker   string
		from, to string
		code     Code
	}{
		{name: "unknown worker", up: baseUpstream(), worker: "99", code: CodeNotFound},
		{name: "bad from", up: baseUpstream(), worker: "1", from: "03/01/2024", code: CodeInvalidArgument},
		{name: "from after to", up: baseUpstream(), worker: "1", from: "2024-03-10", to: "2024-03-01", code: CodeInvalidArgument},
		{name: "range too long", up: baseUpstream(), worker: "1", from: "2022-01-01", to: "2024-01-01", code: CodeInvalidArgument},
		{name: "worker list down", up: &fakeUpstream{workersErr: upstream.ErrCircuitOpen}, worker: "1", code: CodeUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestService(tc.up).WorkerAssistance(context.Background(), tc.worker, tc.from, tc.to)
			var api *APIError
			require.ErrorAs(t, err, &api)
			assert.Equal(t, tc.code, api.Code)
		})
	}
}

func requestJSON(t *testing.T, r http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestService(baseUpstream()))

	rec, body := requestJSON(t, r, http.MethodGet, "/assistance/workers/1?from=2024-03-08&to=2024-03-09")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["days"], 2)
	assert.Equal(t, "2024-03-08", body["from"])

	rec, body = requestJSON(t, r, http.MethodGet, "/assistance/workers/404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(CodeNotFound), body["error"].(map[string]any)["code"])

	rec, _ = requestJSON(t, r, http.MethodGet, "/assistance/workers/1?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
