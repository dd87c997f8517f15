package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	running     atomic.Int32
	lastRunUnix atomic.Int64 // unix seconds
	lastRunErr  atomic.Bool
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// BeginRun / EndRun оборачивают прогон бэктеста.
func (s *State) BeginRun() { s.running.Add(1) }

func (s *State) EndRun(t time.Time, failed bool) {
	s.running.Add(-1)
	s.lastRunUnix.Store(t.Unix())
	s.lastRunErr.Store(failed)
}

func (s *State) Running() bool       { return s.running.Load() > 0 }
func (s *State) LastRunFailed() bool { return s.lastRunErr.Load() }

func (s *State) LastRun() time.Time {
	u := s.lastRunUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
