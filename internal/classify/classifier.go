// Package classify decides whether an inbound push message belongs to
// this renderer and, when it does, extracts the base fields every
// template shares.
package classify

import (
	"context"
	"strconv"

	"pushrender/internal/logger"
	"pushrender/pkg/models"
)

// TypeMarker is the sentinel the sender sets on every message intended
// for this renderer. Anything else is not ours.
const TypeMarker = "ANDP"

// Template selects which visual layout a notification uses.
type Template string

const (
	TemplateDefault      Template = "DEFAULT"
	TemplateLarge        Template = "LARGE"
	TemplateConversation Template = "CONVERSATION"
	TemplateBigText      Template = "BIG_TEXT"
	TemplateInbox        Template = "INBOX"
)

// Result is an accepted, field-extracted message ready for rendering.
type Result struct {
	ID         models.NotificationID
	Title      string
	Body       string
	ColorToken string
	Deeplink   string
	Template   Template
	Msg        models.PushMessage
}

type Classifier struct {
	alloc  *IDAllocator
	logger logger.Logger
}

func NewClassifier(alloc *IDAllocator, log logger.Logger) *Classifier {
	return &Classifier{alloc: alloc, logger: log}
}

// Classify accepts or rejects a message. Rejection is not an error: the
// message simply is not addressed to this renderer, so it is logged at
// debug and ignored.
func (c *Classifier) Classify(ctx context.Context, msg models.PushMessage) (Result, bool) {
	typ, ok := msg.Get(models.KeyType)
	if !ok || typ != TypeMarker {
		c.logger.DebugwCtx(ctx, "Ignoring message with unknown type",
			"type", typ,
		)
		return Result{}, false
	}

	return Result{
		ID:         c.notificationID(ctx, msg),
		Title:      msg.GetOr(models.KeyTitle, ""),
		Body:       msg.GetOr(models.KeyMessage, ""),
		ColorToken: msg.GetOr(models.KeyColor, ""),
		Deeplink:   msg.GetOr(models.KeyDeeplink, ""),
		Template:   c.template(msg),
		Msg:        msg,
	}, true
}

// notificationID uses the sender-supplied numeric id verbatim; absence or
// a non-numeric value falls back to the allocator.
func (c *Classifier) notificationID(ctx context.Context, msg models.PushMessage) models.NotificationID {
	raw, ok := msg.Get(models.KeyID)
	if !ok {
		return c.alloc.Allocate()
	}

	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		c.logger.DebugwCtx(ctx, "Non-numeric notification id, allocating one",
			"id", raw,
		)
		return c.alloc.Allocate()
	}
	return models.NotificationID(id)
}

func (c *Classifier) template(msg models.PushMessage) Template {
	switch Template(msg.GetOr(models.KeyTemplate, "")) {
	case TemplateLarge:
		return TemplateLarge
	case TemplateConversation:
		return TemplateConversation
	case TemplateBigText:
		return TemplateBigText
	case TemplateInbox:
		return TemplateInbox
	default:
		return TemplateDefault
	}
}
