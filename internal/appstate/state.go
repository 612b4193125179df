// Package appstate holds the per-process front-end state: developer mode and the
// title tap sequence that toggles it.
package appstate

import (
	"sync"
	"time"
)

// Options configures a State.
type Options struct {
	DevMode   bool
	TapCount  int           // consecutive taps needed to toggle dev mode
	TapWindow time.Duration // max gap between two taps of one sequence
}

// State is constructed once at startup and shared by the HTTP handlers.
type State struct {
	mu        sync.Mutex
	devMode   bool
	taps      int
	lastTap   time.Time
	tapCount  int
	tapWindow time.Duration
}

// New returns a State with the given options.
func New(opts Options) *State {
	if opts.TapCount <= 0 {
		opts.TapCount = 7
	}
	if opts.TapWindow <= 0 {
		opts.TapWindow = 3 * time.Second
	}
	return &State{
		devMode:   opts.DevMode,
		tapCount:  opts.TapCount,
		tapWindow: opts.TapWindow,
	}
}

// DevMode reports whether developer mode (capture editing) is on.
func (s *State) DevMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devMode
}

// SetDevMode forces developer mode and clears any tap sequence in progress.
func (s *State) SetDevMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devMode = on
	s.taps = 0
}

// TapResult describes the effect of one title tap.
type TapResult struct {
	DevMode   bool `json:"devMode"`
	Toggled   bool `json:"toggled"`
	Remaining int  `json:"remaining"`
}

// RegisterTap counts a tap on the page title. TapCount taps in a row, each within
// TapWindow of the previous one, toggle developer mode.
func (s *State) RegisterTap(now time.Time) TapResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taps > 0 && now.Sub(s.lastTap) > s.tapWindow {
		s.taps = 0
	}
	s.taps++
	s.lastTap = now

	if s.taps >= s.tapCount {
		s.taps = 0
		s.devMode = !s.devMode
		return TapResult{DevMode: s.devMode, Toggled: true, Remaining: s.tapCount}
	}
	return TapResult{DevMode: s.devMode, Remaining: s.tapCount - s.taps}
}
