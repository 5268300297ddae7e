package render

import (
	"strconv"

	"pushrender/internal/constants"
	"pushrender/pkg/models"
)

// ColorResolver turns a color token into a concrete ARGB value. It never
// fails: an absent or unparseable token resolves to the default.
type ColorResolver struct {
	fallback models.Color
}

// NewColorResolver parses the configured default token once. When that
// token is itself invalid or empty, the process-wide constant applies.
func NewColorResolver(defaultToken string) *ColorResolver {
	fallback := models.Color(constants.DefaultNotificationColor)
	if c, ok := ParseColor(defaultToken); ok {
		fallback = c
	}
	return &ColorResolver{fallback: fallback}
}

func (r *ColorResolver) Resolve(token string) models.Color {
	if c, ok := ParseColor(token); ok {
		return c
	}
	return r.fallback
}

// ParseColor parses "#RRGGBB" or "#AARRGGBB" hex tokens. A six-digit
// token gets a full alpha channel.
func ParseColor(token string) (models.Color, bool) {
	if len(token) == 0 || token[0] != '#' {
		return 0, false
	}

	digits := token[1:]
	if len(digits) != 6 && len(digits) != 8 {
		return 0, false
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, false
	}

	if len(digits) == 6 {
		v |= 0xFF000000
	}
	return models.Color(v), true
}
