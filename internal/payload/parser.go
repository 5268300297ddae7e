// Package payload parses the small JSON-array sub-payloads embedded in a
// push message: conversation messages, inbox lines and action buttons.
//
// All three operations share one failure policy: a payload that does not
// decode as a JSON array yields an empty result and a diagnostic log,
// never an error to the caller. Elements that decode but are individually
// malformed are skipped; the rest of the array survives.
package payload

import (
	"context"
	"encoding/json"

	"pushrender/internal/logger"
	"pushrender/pkg/metrics"
	"pushrender/pkg/models"
)

type Parser struct {
	logger logger.Logger
}

func NewParser(log logger.Logger) *Parser {
	return &Parser{logger: log}
}

// ParseConversation decodes a JSON array of conversation entries. Order is
// preserved. Entries without text or sender are dropped.
func (p *Parser) ParseConversation(ctx context.Context, raw string) []models.ConversationMessage {
	elements, ok := p.decodeArray(ctx, "conversation", raw)
	if !ok {
		return nil
	}

	messages := make([]models.ConversationMessage, 0, len(elements))
	for i, el := range elements {
		var msg models.ConversationMessage
		if err := json.Unmarshal(el, &msg); err != nil {
			p.skipElement(ctx, "conversation", i, err)
			continue
		}
		if msg.Text == "" || msg.Sender == "" {
			p.logger.DebugwCtx(ctx, "Skipping conversation entry without text or sender",
				"index", i,
			)
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// ParseInboxLines decodes a JSON array of strings, order-preserving.
func (p *Parser) ParseInboxLines(ctx context.Context, raw string) []string {
	elements, ok := p.decodeArray(ctx, "lines", raw)
	if !ok {
		return nil
	}

	lines := make([]string, 0, len(elements))
	for i, el := range elements {
		var line string
		if err := json.Unmarshal(el, &line); err != nil {
			p.skipElement(ctx, "lines", i, err)
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseButtons decodes a JSON array of label/deeplink pairs. Entries
// without a label are dropped.
func (p *Parser) ParseButtons(ctx context.Context, raw string) []models.ButtonSpec {
	elements, ok := p.decodeArray(ctx, "buttons", raw)
	if !ok {
		return nil
	}

	buttons := make([]models.ButtonSpec, 0, len(elements))
	for i, el := range elements {
		var btn models.ButtonSpec
		if err := json.Unmarshal(el, &btn); err != nil {
			p.skipElement(ctx, "buttons", i, err)
			continue
		}
		if btn.Label == "" {
			p.logger.DebugwCtx(ctx, "Skipping button without label",
				"index", i,
			)
			continue
		}
		buttons = append(buttons, btn)
	}
	return buttons
}

func (p *Parser) decodeArray(ctx context.Context, kind, raw string) ([]json.RawMessage, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		metrics.PayloadParseFailuresTotal.WithLabelValues(kind).Inc()
		p.logger.WarnwCtx(ctx, "Discarding malformed sub-payload",
			"payload", kind,
			"error", err,
		)
		return nil, false
	}
	return elements, true
}

func (p *Parser) skipElement(ctx context.Context, kind string, index int, err error) {
	metrics.PayloadParseFailuresTotal.WithLabelValues(kind).Inc()
	p.logger.WarnwCtx(ctx, "Skipping malformed sub-payload element",
		"payload", kind,
		"index", index,
		"error", err,
	)
}
