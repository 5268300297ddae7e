package payload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushrender/internal/logger"
	"pushrender/pkg/models"
)

func newTestParser() *Parser {
	return NewParser(logger.NopLogger())
}

func TestParseConversation(t *testing.T) {
	p := newTestParser()
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
		want []models.ConversationMessage
	}{
		{
			name: "empty array",
			raw:  `[]`,
			want: []models.ConversationMessage{},
		},
		{
			name: "not json",
			raw:  `not json`,
			want: nil,
		},
		{
			name: "object instead of array",
			raw:  `{}`,
			want: nil,
		},
		{
			name: "single message",
			raw:  `[{"text":"hi","timestamp":1,"sender":"A"}]`,
			want: []models.ConversationMessage{
				{Text: "hi", Timestamp: 1, Sender: "A"},
			},
		},
		{
			name: "order preserved",
			raw:  `[{"text":"first","timestamp":1,"sender":"A"},{"text":"second","timestamp":2,"sender":"B"}]`,
			want: []models.ConversationMessage{
				{Text: "first", Timestamp: 1, Sender: "A"},
				{Text: "second", Timestamp: 2, Sender: "B"},
			},
		},
		{
			name: "malformed element skipped",
			raw:  `[{"text":"ok","timestamp":1,"sender":"A"},{"text":"bad","timestamp":"later","sender":"B"}]`,
			want: []models.ConversationMessage{
				{Text: "ok", Timestamp: 1, Sender: "A"},
			},
		},
		{
			name: "entry without sender skipped",
			raw:  `[{"text":"hello","timestamp":5}]`,
			want: []models.ConversationMessage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ParseConversation(ctx, tt.raw)
			assert.Equal(t, len(tt.want), len(got))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestParseInboxLines(t *testing.T) {
	p := newTestParser()
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "two lines in order",
			raw:  `["a","b"]`,
			want: []string{"a", "b"},
		},
		{
			name: "empty array",
			raw:  `[]`,
			want: []string{},
		},
		{
			name: "object yields empty",
			raw:  `{}`,
			want: nil,
		},
		{
			name: "garbage yields empty",
			raw:  `garbage`,
			want: nil,
		},
		{
			name: "non-string element skipped",
			raw:  `["a",42,"b"]`,
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ParseInboxLines(ctx, tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseButtons(t *testing.T) {
	p := newTestParser()
	ctx := context.Background()

	got := p.ParseButtons(ctx, `[{"text":"Open","deeplink":"https://x"}]`)
	require.Len(t, got, 1)
	assert.Equal(t, "Open", got[0].Label)
	assert.Equal(t, "https://x", got[0].Deeplink)

	assert.Empty(t, p.ParseButtons(ctx, `not json`))
	assert.Empty(t, p.ParseButtons(ctx, `[]`))
	assert.Empty(t, p.ParseButtons(ctx, `[{"deeplink":"https://x"}]`), "button without label is dropped")
}
