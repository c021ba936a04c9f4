// Package debounce provides a single pending-task slot: scheduling a task
// cancels whatever was pending, so a burst of triggers runs the last task once
// after the quiet period.
package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the slot needs.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc is the production scheduler.
type Scheduler func(d time.Duration, f func()) Timer

func realScheduler(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Slot holds at most one pending task.
type Slot struct {
	mu    sync.Mutex
	delay time.Duration
	after Scheduler
	timer Timer
	gen   uint64
}

func New(delay time.Duration) *Slot {
	return NewWithScheduler(delay, realScheduler)
}

func NewWithScheduler(delay time.Duration, after Scheduler) *Slot {
	if after == nil {
		after = realScheduler
	}
	return &Slot{delay: delay, after: after}
}

// Schedule replaces the pending task (if any) with task.
func (s *Slot) Schedule(task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = s.after(s.delay, func() {
		s.mu.Lock()
		// a Stop that lost the race with the timer leaves gen advanced
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		task()
	})
}

// Cancel drops the pending task. It reports whether one was pending.
func (s *Slot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.timer != nil
	s.stopLocked()
	s.gen++
	return pending
}

// Pending reports whether a task is waiting to run.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Slot) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
