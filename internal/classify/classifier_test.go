package classify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushrender/internal/logger"
	"pushrender/pkg/models"
)

func newTestClassifier(now func() time.Time) *Classifier {
	return NewClassifier(NewIDAllocatorWithClock(now), logger.NopLogger())
}

func msgWith(data map[string]string) models.PushMessage {
	return models.PushMessage{Data: data}
}

func TestClassifyRejectsForeignMessages(t *testing.T) {
	c := newTestClassifier(time.Now)
	ctx := context.Background()

	tests := []struct {
		name string
		data map[string]string
	}{
		{
			name: "missing type",
			data: map[string]string{"title": "hello"},
		},
		{
			name: "wrong type",
			data: map[string]string{"type": "OTHER", "title": "hello"},
		},
		{
			name: "empty type",
			data: map[string]string{"type": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := c.Classify(ctx, msgWith(tt.data))
			assert.False(t, ok)
		})
	}
}

func TestClassifyExtractsBaseFields(t *testing.T) {
	c := newTestClassifier(time.Now)

	res, ok := c.Classify(context.Background(), msgWith(map[string]string{
		"type":     TypeMarker,
		"id":       "42",
		"title":    "Order shipped",
		"message":  "Your order is on the way",
		"color":    "#FF00FF",
		"deeplink": "app://orders/42",
		"template": "BIG_TEXT",
	}))

	require.True(t, ok)
	assert.Equal(t, models.NotificationID(42), res.ID)
	assert.Equal(t, "Order shipped", res.Title)
	assert.Equal(t, "Your order is on the way", res.Body)
	assert.Equal(t, "#FF00FF", res.ColorToken)
	assert.Equal(t, "app://orders/42", res.Deeplink)
	assert.Equal(t, TemplateBigText, res.Template)
}

func TestClassifyIDFallback(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	c := newTestClassifier(func() time.Time { return fixed })
	wantAllocated := models.NotificationID(fixed.UnixMilli() & idMask)

	tests := []struct {
		name string
		data map[string]string
		want models.NotificationID
	}{
		{
			name: "numeric id used verbatim",
			data: map[string]string{"type": TypeMarker, "id": "1234"},
			want: 1234,
		},
		{
			name: "non-numeric id falls back to allocator",
			data: map[string]string{"type": TypeMarker, "id": "abc"},
			want: wantAllocated,
		},
		{
			name: "absent id falls back to allocator",
			data: map[string]string{"type": TypeMarker},
			want: wantAllocated,
		},
		{
			name: "id exceeding int32 falls back to allocator",
			data: map[string]string{"type": TypeMarker, "id": "99999999999"},
			want: wantAllocated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := c.Classify(context.Background(), msgWith(tt.data))
			require.True(t, ok)
			assert.Equal(t, tt.want, res.ID)
		})
	}
}

func TestClassifyTemplateDefaults(t *testing.T) {
	c := newTestClassifier(time.Now)

	tests := []struct {
		name     string
		template string
		absent   bool
		want     Template
	}{
		{name: "large", template: "LARGE", want: TemplateLarge},
		{name: "conversation", template: "CONVERSATION", want: TemplateConversation},
		{name: "big text", template: "BIG_TEXT", want: TemplateBigText},
		{name: "inbox", template: "INBOX", want: TemplateInbox},
		{name: "unrecognized", template: "HOLOGRAM", want: TemplateDefault},
		{name: "absent", absent: true, want: TemplateDefault},
		{name: "lowercase is not recognized", template: "large", want: TemplateDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]string{"type": TypeMarker}
			if !tt.absent {
				data["template"] = tt.template
			}
			res, ok := c.Classify(context.Background(), msgWith(data))
			require.True(t, ok)
			assert.Equal(t, tt.want, res.Template)
		})
	}
}
