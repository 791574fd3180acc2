package assistance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"linetrack-backend/internal/activity"
	"linetrack-backend/internal/attendance"
	"linetrack-backend/internal/upstream"
)

// widest from/to range, in days
const maxRangeDays = 366

// ===== Interfaces =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Upstream is the slice of the upstream client this dashboard needs.
type Upstream interface {
	ListWorkers(ctx context.Context) ([]upstream.Worker, error)
	Attendance(ctx context.Context, identifier string, q upstream.AttendanceQuery) ([]byte, error)
	TaskHistory(ctx context.Context, q upstream.TaskQuery) ([]activity.TaskInstance, error)
}

type Options struct {
	DefaultDays   int
	ActivityLimit int
}

// ===== Service =====

type Service struct {
	up    Upstream
	loc   *time.Location
	opts  Options
	clock Clock
	log   *zap.Logger
}

func NewService(up Upstream, loc *time.Location, opts Options, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 30
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{up: up, loc: loc, opts: opts, clock: realClock{}, log: log}
}

// WorkerAssistance builds the per-day view for one worker. Attendance and activity are
// fetched concurrently; a failure on one side is reported in Errors and the other side
// still renders.
func (s *Service) WorkerAssistance(ctx context.Context, workerID, from, to string) (*WorkerAssistanceResponse, error) {
	if workerID == "" {
		return nil, ErrInvalid("worker_id is required")
	}
	from, to, err := s.resolveRange(from, to)
	if err != nil {
		return nil, err
	}

	workers, err := s.up.ListWorkers(ctx)
	if err != nil {
		s.log.Warn("list workers failed", zap.Error(err))
		return nil, ErrUnavailable("worker list unavailable: " + err.Error())
	}
	var worker *upstream.Worker
	for i := range workers {
		if workers[i].ID == workerID {
			worker = &workers[i]
			break
		}
	}
	if worker == nil {
		return nil, ErrNotFound("worker not found")
	}

	var (
		attDays []attendance.Day
		actDays []activity.Day
		errs    SourceErrors
		g       errgroup.Group
	)
	// each goroutine records its own error and returns nil, so one side never cancels the other
	g.Go(func() error {
		if !worker.Linked() {
			errs.Attendance = "unlinked"
			return nil
		}
		raw, err := s.up.Attendance(ctx, worker.GeoVictoriaID, upstream.AttendanceQuery{StartDate: from, EndDate: to})
		if err != nil {
			errs.Attendance = sourceMessage(err)
			return nil
		}
		attDays, _ = attendance.Normalize(raw, s.loc)
		return nil
	})
	g.Go(func() error {
		tasks, err := s.up.TaskHistory(ctx, upstream.TaskQuery{
			WorkerID: worker.ID,
			FromDate: from,
			ToDate:   to,
			Limit:    s.opts.ActivityLimit,
		})
		if err != nil {
			errs.Activity = sourceMessage(err)
			return nil
		}
		actDays = activity.Aggregate(tasks, s.loc)
		return nil
	})
	_ = g.Wait()

	if errs.Attendance != "" || errs.Activity != "" {
		s.log.Info("assistance partial result",
			zap.String("worker_id", worker.ID),
			zap.String("attendance_error", errs.Attendance),
			zap.String("activity_error", errs.Activity),
		)
	}

	merged := MergeDays(inRangeAttendance(attDays, from, to), inRangeActivity(actDays, from, to))
	days := make([]DayDTO, 0, len(merged))
	for _, d := range merged {
		dto := DayDTO{Date: d.Date, Attendance: d.Attendance, Activity: d.Activity}
		if d.Activity != nil {
			sorted := *d.Activity
			sorted.Tasks = activity.SortTasks(d.Activity.Tasks, s.loc)
			dto.Activity = &sorted
		}
		p := PresenceOf(d)
		dto.PresenceSource = p.Source
		if p.OK {
			secs := p.Seconds
			dto.PresenceSeconds = &secs
		}
		days = append(days, dto)
	}

	return &WorkerAssistanceResponse{
		Worker: *worker,
		From:   from,
		To:     to,
		Days:   days,
		Totals: Reduce(merged),
		Errors: errs,
	}, nil
}

// resolveRange defaults to the DefaultDays days ending today.
func (s *Service) resolveRange(from, to string) (string, string, error) {
	today := s.clock.Now().In(s.loc)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if to != "" {
		t, err := time.Parse(attendance.DateLayout, to)
		if err != nil {
			return "", "", ErrInvalid("to must be YYYY-MM-DD")
		}
		end = t
	}
	start := end.AddDate(0, 0, -(s.opts.DefaultDays - 1))
	if from != "" {
		f, err := time.Parse(attendance.DateLayout, from)
		if err != nil {
			return "", "", ErrInvalid("from must be YYYY-MM-DD")
		}
		start = f
	}
	if start.After(end) {
		return "", "", ErrInvalid("from must not be after to")
	}
	if end.Sub(start) >= maxRangeDays*24*time.Hour {
		return "", "", ErrInvalid("range must not exceed 366 days")
	}
	return start.Format(attendance.DateLayout), end.Format(attendance.DateLayout), nil
}

func inRangeAttendance(days []attendance.Day, from, to string) []attendance.Day {
	out := make([]attendance.Day, 0, len(days))
	for _, d := range days {
		if d.Date >= from && d.Date <= to {
			out = append(out, d)
		}
	}
	return out
}

func inRangeActivity(days []activity.Day, from, to string) []activity.Day {
	out := make([]activity.Day, 0, len(days))
	for _, d := range days {
		if d.Date >= from && d.Date <= to {
			out = append(out, d)
		}
	}
	return out
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
