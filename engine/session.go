// Package engine wires the tracer, region, and match subsystems into one
// session scoped to a single target process. A Session carries no state
// across process invocations: each CLI command opens one, uses it, and
// lets it go.
package engine

import (
	"context"
	"sync"

	errorsx "github.com/cquaid/scnm/errors"
	"github.com/cquaid/scnm/logging"
	"github.com/cquaid/scnm/match"
	"github.com/cquaid/scnm/region"
	"github.com/cquaid/scnm/tracer"
)

// Session owns the tracer, the discovered region set, and the running
// match list for one target pid.
type Session struct {
	mu sync.RWMutex

	pid     int
	tracer  *tracer.Tracer
	regions *region.Set
	matches *match.List
}

// Attach creates a Session and attaches to pid, blocking until the
// initial ptrace-stop is observed.
func Attach(ctx context.Context, pid int) (*Session, error) {
	t, err := tracer.New(ctx, pid)
	if err != nil {
		return nil, err
	}
	if err := t.AttachWait(); err != nil {
		return nil, err
	}

	logging.Info("session attached", "pid", pid)

	return &Session{
		pid:     pid,
		tracer:  t,
		matches: match.NewList(),
	}, nil
}

// Pid returns the target process id.
func (s *Session) Pid() int { return s.pid }

// Tracer returns the session's underlying Tracer.
func (s *Session) Tracer() *tracer.Tracer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracer
}

// Detach releases ptrace control of the target process. The Session
// must not be used for further tracer operations afterward, though its
// region set and match list remain readable.
func (s *Session) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracer.Detach(); err != nil {
		return err
	}
	logging.Info("session detached", "pid", s.pid)
	return nil
}

// DiscoverRegions re-reads /proc/<pid>/maps and replaces the session's
// region set.
func (s *Session) DiscoverRegions() (*region.Set, error) {
	set, err := region.Discover(s.pid)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.regions = set
	s.mu.Unlock()

	logging.Info("regions discovered", "pid", s.pid, "count", set.Len())
	return set, nil
}

// Regions returns the most recently discovered region set, or nil if
// DiscoverRegions has not yet been called.
func (s *Session) Regions() *region.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.regions
}

// Matches returns the session's running match list.
func (s *Session) Matches() *match.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matches
}

// requireRegions returns the current region set or an InvalidState
// error when no discovery has happened yet.
func (s *Session) requireRegions() (*region.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.regions == nil {
		return nil, errorsx.New(errorsx.InvalidState, "engine_search", "no regions discovered; call DiscoverRegions first")
	}
	return s.regions, nil
}

// Search runs a fresh scan across the session's discovered regions,
// replacing the match list with the results. A prior DiscoverRegions
// call is required.
func (s *Session) Search(needle match.Needle, opts match.SearchOptions, op func(t *tracer.Tracer, pid int, list *match.List, n match.Needle, regions *region.Set, opts match.SearchOptions) error) error {
	regions, err := s.requireRegions()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches.Clear()
	return op(s.tracer, s.pid, s.matches, needle, regions, opts)
}

// Filter narrows the session's existing match list in place.
func (s *Session) Filter(op func(t *tracer.Tracer, pid int, list *match.List) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return op(s.tracer, s.pid, s.matches)
}

// ClearMatches empties the session's match list, per spec's explicit
// MatchList.Clear operation.
func (s *Session) ClearMatches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches.Clear()
}
