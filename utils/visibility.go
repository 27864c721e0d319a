package utils

import "time"

// DefaultVisibilityDelay is how old a bounty must be before the public
// listing endpoint exposes it.
const DefaultVisibilityDelay = 15 * time.Minute

// VisibilityWindow gates which bounties the pull-based listing endpoint
// exposes. Fresh bounties stay hidden for Delay so agents that want
// low-latency discovery use the event feed instead of hammering the API;
// the listing endpoint serves backlog catch-up. Creators querying their own
// address bypass the window entirely.
type VisibilityWindow struct {
	Delay time.Duration
}

func NewVisibilityWindow(delay time.Duration) VisibilityWindow {
	if delay <= 0 {
		delay = DefaultVisibilityDelay
	}
	return VisibilityWindow{Delay: delay}
}

// Cutoff returns the creation-time threshold: bounties created before it
// are visible.
func (w VisibilityWindow) Cutoff(now time.Time) time.Time {
	return now.Add(-w.Delay)
}

// IsVisible reports whether a bounty created at createdAt has aged past the
// window as of now.
func (w VisibilityWindow) IsVisible(createdAt, now time.Time) bool {
	return createdAt.Before(w.Cutoff(now))
}

// TimeUntilVisible returns the remaining wait before the bounty appears in
// the public listing, or zero once it is already visible.
func (w VisibilityWindow) TimeUntilVisible(createdAt, now time.Time) time.Duration {
	remaining := createdAt.Sub(w.Cutoff(now))
	if remaining < 0 {
		return 0
	}
	return remaining
}
