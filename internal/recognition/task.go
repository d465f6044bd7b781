// SPDX-License-Identifier: MIT
package recognition

import (
	"context"
	"errors"
	"time"

	"ringviz/internal/config"
	"ringviz/internal/log"
)

// Capture is the audio side of the task: it signals when capture is running
// and hands out recent audio as an encoded clip.
type Capture interface {
	Started() <-chan struct{}
	EncodeWAV(seconds float64) ([]byte, error)
}

// Identifier resolves a clip to a match.
type Identifier interface {
	Identify(ctx context.Context, sample []byte) (Match, error)
}

// Signals is the task's only path into the engine.
type Signals interface {
	SetStatus(status string)
	RequestResume()
}

const listeningStatus = "Listening..."

// Task periodically identifies the captured audio and publishes the result
// as the engine status.
type Task struct {
	capture    Capture
	identifier Identifier
	signals    Signals

	interval   time.Duration
	seconds    float64
	timeout    time.Duration
	autoResume bool
	fallback   string
}

func NewTask(rc config.RecognitionConfig, capture Capture, identifier Identifier, signals Signals) *Task {
	fallback := rc.Fallback
	if fallback == "" {
		fallback = config.DefaultFallbackStatus
	}
	return &Task{
		capture:    capture,
		identifier: identifier,
		signals:    signals,
		interval:   rc.Interval,
		seconds:    rc.CaptureSeconds,
		timeout:    rc.Timeout,
		autoResume: rc.AutoResume,
		fallback:   fallback,
	}
}

// Run waits for capture to start, then attempts an identification every
// interval until ctx is cancelled. It never returns an error for a failed
// attempt.
func (t *Task) Run(ctx context.Context) error {
	if t.autoResume {
		t.signals.RequestResume()
	}

	select {
	case <-t.capture.Started():
	case <-ctx.Done():
		return nil
	}

	log.Infof("Recognition: Started (Interval: %v, Clip: %.0fs)", t.interval, t.seconds)
	t.signals.SetStatus(listeningStatus)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("Recognition: Stopped")
			return nil
		case <-ticker.C:
			t.Attempt(ctx)
		}
	}
}

// Attempt runs one identification and publishes its outcome. It returns
// the status it set, or "" when there was no audio to send.
func (t *Task) Attempt(ctx context.Context) string {
	sample, err := t.capture.EncodeWAV(t.seconds)
	if err != nil {
		log.Warnf("Recognition: No clip to identify: %v", err)
		return ""
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	status := t.fallback
	match, err := t.identifier.Identify(ctx, sample)
	switch {
	case err == nil:
		status = match.String()
		log.Infof("Recognition: Identified %q", status)
	case errors.Is(err, ErrNoMatch):
		log.Debugf("Recognition: No match for %d byte clip", len(sample))
	case errors.Is(err, context.Canceled):
		return ""
	default:
		log.Warnf("Recognition: %v", err)
	}

	t.signals.SetStatus(status)
	return status
}
