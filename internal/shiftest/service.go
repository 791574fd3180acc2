package shiftest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"linetrack-backend/internal/attendance"
	"linetrack-backend/internal/platform/throttle"
	"linetrack-backend/internal/upstream"
)

// ===== Interfaces =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Upstream interface {
	ListWorkers(ctx context.Context) ([]upstream.Worker, error)
	ListStations(ctx context.Context) ([]upstream.Station, error)
	Attendance(ctx context.Context, identifier string, q upstream.AttendanceQuery) ([]byte, error)
}

// ===== Service =====

type Service struct {
	up     Upstream
	sched  *throttle.Scheduler
	loc    *time.Location
	rules  Rules
	window int
	clock  Clock
	log    *zap.Logger
}

// NewService wires the estimator. window is the recent-days threshold for PlanQuery.
func NewService(up Upstream, sched *throttle.Scheduler, loc *time.Location, rules Rules, window int, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if sched == nil {
		sched = throttle.New(150 * time.Millisecond)
	}
	if window <= 0 {
		window = 7
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{up: up, sched: sched, loc: loc, rules: rules, window: window, clock: realClock{}, log: log}
}

type fetched struct {
	days []attendance.Day
}

// Estimate builds one summary per station for date ("" or "today" means today).
// Stations and workers load concurrently; attendance is then fetched one worker at a time
// through the scheduler.
func (s *Service) Estimate(ctx context.Context, date string) (*EstimateResponse, error) {
	today := s.clock.Now().In(s.loc).Format(attendance.DateLayout)
	switch date {
	case "", "today":
		date = today
	default:
		if _, err := time.Parse(attendance.DateLayout, date); err != nil {
			return nil, ErrInvalid("date must be YYYY-MM-DD or today")
		}
	}

	var (
		stations []upstream.Station
		workers  []upstream.Worker
		errs     SourceErrors
		g        errgroup.Group
	)
	g.Go(func() error {
		st, err := s.up.ListStations(ctx)
		if err != nil {
			errs.Stations = sourceMessage(err)
			return nil
		}
		stations = st
		return nil
	})
	g.Go(func() error {
		ws, err := s.up.ListWorkers(ctx)
		if err != nil {
			errs.Workers = sourceMessage(err)
			return nil
		}
		workers = ws
		return nil
	})
	_ = g.Wait()

	assigned := make([][]upstream.Worker, len(stations))
	queue := make([]upstream.Worker, 0)
	queued := make(map[string]bool)
	for i, st := range stations {
		assigned[i] = AssignedWorkers(st, workers)
		for _, w := range assigned[i] {
			if w.Linked() && !queued[w.ID] {
				queued[w.ID] = true
				queue = append(queue, w)
			}
		}
	}

	q := PlanQuery(date, today, s.window)
	s.log.Debug("shift estimate attendance queue",
		zap.String("date", date),
		zap.Int("workers", len(queue)),
		zap.Duration("delay", s.sched.Delay()),
	)
	results := throttle.Run(ctx, s.sched, queue, func(ctx context.Context, w upstream.Worker) (fetched, error) {
		raw, err := s.up.Attendance(ctx, w.GeoVictoriaID, q)
		if err != nil {
			return fetched{}, err
		}
		days, _ := attendance.Normalize(raw, s.loc)
		return fetched{days: days}, nil
	})
	byWorker := make(map[string]throttle.Result[fetched], len(queue))
	for i, w := range queue {
		byWorker[w.ID] = results[i]
		if results[i].Err != nil {
			s.log.Warn("worker attendance failed", zap.String("worker_id", w.ID), zap.Error(results[i].Err))
		}
	}

	out := make([]StationShiftSummary, 0, len(stations))
	for i, st := range stations {
		att := make([]WorkerAttendance, 0, len(assigned[i]))
		for _, w := range assigned[i] {
			r := byWorker[w.ID]
			att = append(att, ResolveWorkerAttendance(w, r.Value.days, date, r.Err))
		}
		out = append(out, EstimateStation(st, assigned[i], att, date, s.rules, s.loc))
	}

	return &EstimateResponse{Date: date, Stations: out, Errors: errs}, nil
}

func sourceMessage(err error) string {
	var se *upstream.StatusError
	switch {
	case errors.Is(err, upstream.ErrCircuitOpen):
		return "upstream temporarily unavailable"
	case errors.As(err, &se):
		return fmt.Sprintf("upstream returned HTTP %d", se.StatusCode)
	default:
		return err.Error()
	}
}
