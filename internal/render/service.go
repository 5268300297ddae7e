// Package render dispatches a classified push message to one of five
// template branches and hands the resulting notification to the sink.
//
// The whole path is total: malformed sub-payloads, missing required
// fields and failed image fetches all degrade to "produce less" (an
// empty list, a default value, or no notification) rather than an error.
// A bad payload must never block the rest of the message.
package render

import (
	"context"
	"time"

	"pushrender/internal/classify"
	"pushrender/internal/config"
	"pushrender/internal/deeplink"
	"pushrender/internal/imagefetch"
	"pushrender/internal/logger"
	"pushrender/internal/payload"
	"pushrender/internal/prefs"
	"pushrender/internal/sink"
	"pushrender/pkg/logging"
	"pushrender/pkg/metrics"
	"pushrender/pkg/models"
	"pushrender/pkg/tracing"
)

const (
	statusRendered = "rendered"
	statusDropped  = "dropped"
	statusRejected = "rejected"
)

type Service struct {
	classifier *classify.Classifier
	parser     *payload.Parser
	colors     *ColorResolver
	fetcher    imagefetch.Fetcher
	sink       sink.Sink
	sound      prefs.SoundPreference
	deeplinks  deeplink.Resolver
	logger     logger.Logger
}

func NewService(
	cfg config.RenderConfig,
	classifier *classify.Classifier,
	parser *payload.Parser,
	fetcher imagefetch.Fetcher,
	s sink.Sink,
	sound prefs.SoundPreference,
	deeplinks deeplink.Resolver,
	log logger.Logger,
) *Service {
	return &Service{
		classifier: classifier,
		parser:     parser,
		colors:     NewColorResolver(cfg.DefaultColor),
		fetcher:    fetcher,
		sink:       s,
		sound:      sound,
		deeplinks:  deeplinks,
		logger:     log,
	}
}

// Process renders one inbound message. The returned error is only ever a
// sink delivery failure; everything about the payload itself degrades
// silently per the template rules.
func (s *Service) Process(ctx context.Context, msg models.PushMessage) error {
	ctx, span := tracing.GetTracer("render-service").Start(ctx, "render.process")
	defer span.End()

	res, ok := s.classifier.Classify(ctx, msg)
	if !ok {
		metrics.MessagesTotal.WithLabelValues("none", statusRejected).Inc()
		return nil
	}

	ctx = logging.WithNotificationID(ctx, int32(res.ID))
	start := time.Now()

	n := s.baseNotification(ctx, res)
	n.Actions = s.actions(ctx, res)

	// Covers the synchronous pass only; a LARGE display lands on the
	// fetch goroutine and shows up in the image fetch metrics instead.
	template := string(res.Template)
	defer func() {
		metrics.ObserveRenderDuration(time.Since(start), template)
	}()

	switch res.Template {
	case classify.TemplateLarge:
		return s.renderLarge(ctx, res, n)
	case classify.TemplateConversation:
		return s.renderConversation(ctx, res, n)
	case classify.TemplateBigText:
		n.Style = models.BigTextStyle{Body: res.Body}
		return s.display(ctx, template, n)
	case classify.TemplateInbox:
		return s.renderInbox(ctx, res, n)
	default:
		n.Style = models.DefaultStyle{}
		return s.display(ctx, template, n)
	}
}

// baseNotification carries the fields every template shares. The style
// starts as Default and is replaced by the chosen branch.
func (s *Service) baseNotification(ctx context.Context, res classify.Result) models.Notification {
	n := models.Notification{
		ID:    res.ID,
		Title: res.Title,
		Body:  res.Body,
		Color: s.colors.Resolve(res.ColorToken),
		Sound: s.sound.SoundEnabled(ctx),
		Style: models.DefaultStyle{},
	}

	if res.Deeplink != "" {
		handle := s.deeplinks.Resolve(res.Deeplink)
		n.ContentAction = &handle
	}

	return n
}

// actions parses the button overlay. It is independent of the template:
// whatever branch runs, the parsed actions ride on the same notification
// identity.
func (s *Service) actions(ctx context.Context, res classify.Result) []models.ActionButton {
	raw, ok := res.Msg.Get(models.KeyButtons)
	if !ok {
		return nil
	}

	specs := s.parser.ParseButtons(ctx, raw)
	if len(specs) == 0 {
		return nil
	}

	buttons := make([]models.ActionButton, 0, len(specs))
	for _, spec := range specs {
		buttons = append(buttons, models.ActionButton{
			Label:  spec.Label,
			Action: s.deeplinks.Resolve(spec.Deeplink),
		})
	}
	return buttons
}

// renderLarge launches the image fetch and returns immediately. The
// display happens on the fetch goroutine's continuation; a failed fetch
// drops the notification with no fallback style. The goroutine keeps the
// caller's context values but ignores its cancellation, so an in-flight
// fetch outlives the message-handling pass that started it.
func (s *Service) renderLarge(ctx context.Context, res classify.Result, n models.Notification) error {
	url, ok := res.Msg.Get(models.KeyImage)
	if !ok {
		return s.skipBranch(ctx, res, n, "missing image url")
	}

	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		bmp, err := s.fetcher.Fetch(fetchCtx, url)
		if err != nil || bmp == nil {
			metrics.MessagesTotal.WithLabelValues(string(classify.TemplateLarge), statusDropped).Inc()
			s.logger.WarnwCtx(fetchCtx, "Dropping large-image notification, fetch failed",
				"url", url,
				"error", err,
			)
			return
		}

		n.Style = models.LargeImageStyle{Image: *bmp}
		if err := s.display(fetchCtx, string(classify.TemplateLarge), n); err != nil {
			s.logger.ErrorwCtx(fetchCtx, "Failed to deliver large-image notification",
				"error", err,
			)
		}
	}()

	return nil
}

// renderConversation: an absent payload produces nothing; a present but
// malformed payload still produces a notification with zero messages.
func (s *Service) renderConversation(ctx context.Context, res classify.Result, n models.Notification) error {
	raw, ok := res.Msg.Get(models.KeyConversation)
	if !ok {
		return s.skipBranch(ctx, res, n, "missing conversation payload")
	}

	n.Style = models.ConversationStyle{Messages: s.parser.ParseConversation(ctx, raw)}
	return s.display(ctx, string(res.Template), n)
}

func (s *Service) renderInbox(ctx context.Context, res classify.Result, n models.Notification) error {
	raw, ok := res.Msg.Get(models.KeyLines)
	if !ok {
		return s.skipBranch(ctx, res, n, "missing lines payload")
	}

	n.Style = models.InboxStyle{Lines: s.parser.ParseInboxLines(ctx, raw)}
	return s.display(ctx, string(res.Template), n)
}

// skipBranch handles a template whose required field is absent: the
// styled notification is silently not produced. Parsed actions still
// apply under the same identity, carried by a plain default-style
// notification, so a broken primary payload never suppresses buttons.
func (s *Service) skipBranch(ctx context.Context, res classify.Result, n models.Notification, reason string) error {
	s.logger.DebugwCtx(ctx, "Skipping template branch",
		"template", string(res.Template),
		"reason", reason,
	)

	if len(n.Actions) == 0 {
		metrics.MessagesTotal.WithLabelValues(string(res.Template), statusDropped).Inc()
		return nil
	}

	n.Style = models.DefaultStyle{}
	return s.display(ctx, string(res.Template), n)
}

func (s *Service) display(ctx context.Context, template string, n models.Notification) error {
	if err := s.sink.Display(ctx, n); err != nil {
		metrics.MessagesTotal.WithLabelValues(template, statusDropped).Inc()
		return err
	}

	metrics.MessagesTotal.WithLabelValues(template, statusRendered).Inc()
	return nil
}

// Cancel removes the notification displayed under id.
func (s *Service) Cancel(ctx context.Context, id models.NotificationID) error {
	ctx = logging.WithNotificationID(ctx, int32(id))
	return s.sink.Cancel(ctx, id)
}
