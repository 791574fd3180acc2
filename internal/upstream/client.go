package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"linetrack-backend/internal/activity"
	"linetrack-backend/internal/platform/config"
	"linetrack-backend/internal/platform/fields"
	"linetrack-backend/internal/platform/metrics"
)

const (
	EndpointWorkers    = "workers"
	EndpointStations   = "stations"
	EndpointAttendance = "attendance"
	EndpointTasks      = "tasks"

	breakerName = "upstream"

	// a few months of attendance is a few hundred KB
	maxBodyBytes = 8 << 20
)

var ErrCircuitOpen = errors.New("upstream circuit breaker is open")

// StatusError is a non-2xx answer from the upstream API.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the external production/attendance REST API. Every call goes through one
// shared circuit breaker.
type Client struct {
	baseURL string
	paths   config.Paths
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     *zap.Logger
}

func New(cfg config.UpstreamConfig, log *zap.Logger, m *metrics.Metrics) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		paths:   cfg.Paths,
		http:    &http.Client{Timeout: cfg.Timeout},
		metrics: m,
		log:     log,
	}
	bc := cfg.Breaker
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.FailureThreshold
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if m != nil {
				m.SetBreakerState(name, to)
			}
		},
	})
	return c
}

// countsAsHealthy reports whether err leaves the shared breaker alone. Only 5xx answers and
// transport errors count as failures; 4xx and a done caller context do not.
func countsAsHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError
}

func (c *Client) ListWorkers(ctx context.Context) ([]Worker, error) {
	body, err := c.get(ctx, EndpointWorkers, c.paths.Workers, nil)
	if err != nil {
		return nil, err
	}
	return decodeWorkers(fields.Decode(body)), nil
}

func (c *Client) ListStations(ctx context.Context) ([]Station, error) {
	body, err := c.get(ctx, EndpointStations, c.paths.Stations, nil)
	if err != nil {
		return nil, err
	}
	return decodeStations(fields.Decode(body)), nil
}

// Attendance returns the raw attendance payload for one GeoVictoria identifier. The shape
// is not known in advance; callers hand it to attendance.Normalize.
func (c *Client) Attendance(ctx context.Context, identifier string, q AttendanceQuery) ([]byte, error) {
	if identifier == "" {
		return nil, errors.New("attendance: empty identifier")
	}
	v := url.Values{}
	if q.StartDate != "" || q.EndDate != "" {
		v.Set("start_date", q.StartDate)
		v.Set("end_date", q.EndDate)
	} else if q.Days > 0 {
		v.Set("days", strconv.Itoa(q.Days))
	}
	path := strings.ReplaceAll(c.paths.Attendance, "{id}", url.PathEscape(identifier))
	return c.get(ctx, EndpointAttendance, path, v)
}

func (c *Client) TaskHistory(ctx context.Context, q TaskQuery) ([]activity.TaskInstance, error) {
	v := url.Values{}
	v.Set("worker_id", q.WorkerID)
	if q.FromDate != "" {
		v.Set("from_date", q.FromDate)
	}
	if q.ToDate != "" {
		v.Set("to_date", q.ToDate)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	body, err := c.get(ctx, EndpointTasks, c.paths.Tasks, v)
	if err != nil {
		return nil, err
	}
	return activity.DecodeTasks(body), nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	start := time.Now()
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, endpoint, u)
	})
	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "circuit_open"
		err = fmt.Errorf("%s: %w", endpoint, ErrCircuitOpen)
	case err != nil:
		outcome = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordUpstream(endpoint, outcome, time.Since(start))
	}
	if err != nil {
		c.log.Warn("upstream request failed", zap.String("endpoint", endpoint), zap.String("url", u), zap.Error(err))
		return nil, err
	}
	c.log.Debug("upstream request", zap.String("endpoint", endpoint), zap.String("url", u), zap.Duration("took", time.Since(start)))
	return res.([]byte), nil
}

func (c *Client) do(ctx context.Context, endpoint, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", endpoint, err)
	}
	if resp.StatusCode >= 400 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: msg}
	}
	return body, nil
}
