package internal

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	CaptionReady     = "Ready"
	CaptionRecording = "Recording"

	DefaultStatusInterval = time.Second
)

// StatusPoller polls GET /status and folds each snapshot into the store
type StatusPoller struct {
	Client   *Client
	Store    *Store
	Notifier *Notifier
	Interval time.Duration
	Now      func() time.Time
}

// NewStatusPoller creates a poller with the default interval
func NewStatusPoller(client *Client, store *Store, notifier *Notifier) *StatusPoller {
	return &StatusPoller{
		Client:   client,
		Store:    store,
		Notifier: notifier,
		Interval: DefaultStatusInterval,
		Now:      time.Now,
	}
}

// Run polls immediately and then on every tick until ctx is done.
// A slow request delays the next cycle; ticks that fire meanwhile are dropped.
func (p *StatusPoller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultStatusInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			LogWarn("Status poll failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PollOnce runs a single status cycle
func (p *StatusPoller) PollOnce(ctx context.Context) error {
	snap, err := p.Client.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	LogDebug("status: recording=%v rms=%s", snap.IsRecording, formatRMS(snap.RMS))
	p.Store.Update(func(v *ViewState) {
		ApplyStatus(v, snap, now())
	})

	if p.Notifier != nil {
		p.Notifier.Observe(snap)
	}
	return nil
}

// ApplyStatus folds a status snapshot into v
func ApplyStatus(v *ViewState, snap *StatusSnapshot, now time.Time) {
	if !snap.IsRecording {
		v.Recording = false
		v.StartedAt = time.Time{}
		v.Elapsed = 0
		v.Pulse = Pulse{Scale: 1}
		if v.CaptionOverride != "" {
			v.Caption = v.CaptionOverride
		} else {
			v.Caption = CaptionReady
		}
		return
	}

	v.Recording = true
	v.CaptionOverride = ""
	if v.StartedAt.IsZero() {
		v.StartedAt = now
	}
	v.Elapsed = now.Sub(v.StartedAt)
	if v.Elapsed < 0 {
		v.Elapsed = 0
	}
	v.Pulse = PulseFor(snap.RMS)
	v.Caption = CaptionRecording
}

// PulseFor maps an input level to the indicator's scale and opacity
func PulseFor(rms float64) Pulse {
	if rms < 0 || math.IsNaN(rms) {
		rms = 0
	}
	return Pulse{
		Scale:   1 + math.Min(rms*5, 1.5),
		Opacity: math.Min(rms*2, 0.8),
	}
}

// FormatElapsed renders d as MM:SS; minutes keep counting past 59
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
