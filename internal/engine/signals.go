// SPDX-License-Identifier: MIT
package engine

import "sync/atomic"

// Signals carries the one-way notifications other tasks may send to the
// render loop: a status line (last write wins) and a one-shot request to
// resume audio capture. Neither touches the rings, the frame counter or the
// smoothing state, so they are safe to use from any goroutine.
type Signals struct {
	status atomic.Pointer[string]
	resume atomic.Bool
	taken  atomic.Bool
}

// SetStatus replaces the status line.
func (s *Signals) SetStatus(msg string) {
	s.status.Store(&msg)
}

// Status returns the latest status line, or "" if none was set.
func (s *Signals) Status() string {
	if p := s.status.Load(); p != nil {
		return *p
	}
	return ""
}

// RequestResume asks the render loop to resume audio. Repeated calls are
// harmless.
func (s *Signals) RequestResume() {
	s.resume.Store(true)
}

// TakeResume reports true exactly once, on the first call after a resume
// request.
func (s *Signals) TakeResume() bool {
	return s.resume.Load() && s.taken.CompareAndSwap(false, true)
}
