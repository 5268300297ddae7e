// Package prefs answers whether rendered notifications should play a
// sound. The preference lives outside the renderer; lookups never fail
// outward, they fall back to the configured default.
package prefs

import (
	"context"
)

type SoundPreference interface {
	SoundEnabled(ctx context.Context) bool
}

// Static always answers with a fixed value. Used when no preference
// store is configured, and in tests.
type Static struct {
	enabled bool
}

func NewStatic(enabled bool) *Static {
	return &Static{enabled: enabled}
}

func (s *Static) SoundEnabled(context.Context) bool {
	return s.enabled
}
