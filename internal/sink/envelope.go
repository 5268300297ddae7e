package sink

import (
	"encoding/base64"
	"time"

	"pushrender/pkg/models"
)

// displayEnvelope is the wire form of a rendered notification. The style
// tag discriminates which of the optional style sections is populated.
type displayEnvelope struct {
	ID            int32                        `json:"id"`
	Title         string                       `json:"title,omitempty"`
	Body          string                       `json:"body,omitempty"`
	Color         string                       `json:"color"`
	Sound         bool                         `json:"sound"`
	ContentAction *models.ActionHandle         `json:"content_action,omitempty"`
	Style         string                       `json:"style"`
	BigText       string                       `json:"big_text,omitempty"`
	Image         *imageSection                `json:"image,omitempty"`
	Conversation  []models.ConversationMessage `json:"conversation,omitempty"`
	Lines         []string                     `json:"lines,omitempty"`
	Actions       []models.ActionButton        `json:"actions,omitempty"`
	RenderedAt    time.Time                    `json:"rendered_at"`
}

type imageSection struct {
	Data        string `json:"data"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type cancelEnvelope struct {
	ID         int32     `json:"id"`
	CanceledAt time.Time `json:"canceled_at"`
}

func toDisplayEnvelope(n models.Notification) displayEnvelope {
	env := displayEnvelope{
		ID:            int32(n.ID),
		Title:         n.Title,
		Body:          n.Body,
		Color:         formatColor(n.Color),
		Sound:         n.Sound,
		ContentAction: n.ContentAction,
		Style:         n.Style.StyleName(),
		Actions:       n.Actions,
		RenderedAt:    time.Now(),
	}

	switch s := n.Style.(type) {
	case models.BigTextStyle:
		env.BigText = s.Body
	case models.LargeImageStyle:
		env.Image = &imageSection{
			Data:        base64.StdEncoding.EncodeToString(s.Image.Data),
			ContentType: s.Image.ContentType,
			Width:       s.Image.Width,
			Height:      s.Image.Height,
		}
	case models.ConversationStyle:
		env.Conversation = s.Messages
	case models.InboxStyle:
		env.Lines = s.Lines
	}

	return env
}

func formatColor(c models.Color) string {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, 9)
	out[0] = '#'
	for i := 0; i < 8; i++ {
		out[8-i] = hexDigits[(c>>(4*uint(i)))&0xF]
	}
	return string(out)
}
