package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushrender/internal/constants"
	"pushrender/pkg/models"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  models.Color
		ok    bool
	}{
		{name: "rgb gets full alpha", token: "#FF00FF", want: 0xFFFF00FF, ok: true},
		{name: "argb kept verbatim", token: "#80112233", want: 0x80112233, ok: true},
		{name: "lowercase hex", token: "#a1b2c3", want: 0xFFA1B2C3, ok: true},
		{name: "black", token: "#000000", want: 0xFF000000, ok: true},
		{name: "missing hash", token: "FF00FF", ok: false},
		{name: "short token", token: "#FFF", ok: false},
		{name: "seven digits", token: "#1234567", ok: false},
		{name: "non-hex digits", token: "#GGGGGG", ok: false},
		{name: "empty", token: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseColor(tt.token)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestColorResolverFallback(t *testing.T) {
	r := NewColorResolver("#112233")

	assert.Equal(t, models.Color(0xFFFF00FF), r.Resolve("#FF00FF"))
	assert.Equal(t, models.Color(0xFF112233), r.Resolve("not a color"))
	assert.Equal(t, models.Color(0xFF112233), r.Resolve(""))
}

func TestColorResolverInvalidDefaultUsesConstant(t *testing.T) {
	r := NewColorResolver("nonsense")

	assert.Equal(t, models.Color(constants.DefaultNotificationColor), r.Resolve(""))
}

func TestResolveIsPure(t *testing.T) {
	r := NewColorResolver("")
	first := r.Resolve("#ABCDEF")
	second := r.Resolve("#ABCDEF")
	assert.Equal(t, first, second)
}
