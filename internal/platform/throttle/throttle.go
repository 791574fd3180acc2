// Package throttle runs calls against a rate-sensitive upstream one at a time, with a fixed
// idle gap between the end of one call and the start of the next.
package throttle

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Scheduler is a single-lane queue. Items run strictly in order and never overlap; the next
// item starts no earlier than Delay after the previous one returned.
type Scheduler struct {
	delay time.Duration
	wait  prometheus.Observer
}

type Option func(*Scheduler)

// WithWaitObserver records how long each item waited for its slot.
func WithWaitObserver(o prometheus.Observer) Option {
	return func(s *Scheduler) { s.wait = o }
}

func New(delay time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{delay: delay}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Scheduler) Delay() time.Duration { return s.delay }

type Result[R any] struct {
	Value R
	Err   error
}

// Run executes fn for each item through the scheduler. Results line up with items.
// A failing item does not stop the queue; once ctx is done the remaining items get ctx.Err().
func Run[T, R any](ctx context.Context, s *Scheduler, items []T, fn func(ctx context.Context, item T) (R, error)) []Result[R] {
	out := make([]Result[R], len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		// the first item goes out at once
		if i > 0 {
			start := time.Now()
			if err := s.pause(ctx); err != nil {
				out[i].Err = err
				continue
			}
			if s.wait != nil {
				s.wait.Observe(time.Since(start).Seconds())
			}
		} else if s.wait != nil {
			s.wait.Observe(0)
		}
		out[i].Value, out[i].Err = fn(ctx, item)
	}
	return out
}

func (s *Scheduler) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
