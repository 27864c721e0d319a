package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisibilityWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	fifteen := NewVisibilityWindow(15 * time.Minute)
	sixty := NewVisibilityWindow(60 * time.Minute)

	// Created 20 minutes ago: past a 15-minute window, inside a 60-minute one.
	createdAt := now.Add(-20 * time.Minute)
	assert.True(t, fifteen.IsVisible(createdAt, now))
	assert.False(t, sixty.IsVisible(createdAt, now))

	// Created 10 minutes ago: hidden under a 15-minute window.
	createdAt = now.Add(-10 * time.Minute)
	assert.False(t, fifteen.IsVisible(createdAt, now))
	assert.Equal(t, 5*time.Minute, fifteen.TimeUntilVisible(createdAt, now))

	// Already visible: zero remaining wait.
	createdAt = now.Add(-2 * time.Hour)
	assert.True(t, fifteen.IsVisible(createdAt, now))
	assert.Equal(t, time.Duration(0), fifteen.TimeUntilVisible(createdAt, now))
}

func TestVisibilityCutoff(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	w := NewVisibilityWindow(15 * time.Minute)

	assert.Equal(t, now.Add(-15*time.Minute), w.Cutoff(now))

	// Boundary: exactly at the cutoff is not yet visible (strict before).
	assert.False(t, w.IsVisible(w.Cutoff(now), now))
}

func TestVisibilityWindowDefault(t *testing.T) {
	w := NewVisibilityWindow(0)
	assert.Equal(t, DefaultVisibilityDelay, w.Delay)
}
