package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pushrender/internal/config"
	"pushrender/internal/logger"
	"pushrender/pkg/metrics"
	"pushrender/pkg/models"
)

// Webhook POSTs rendered notifications to a downstream delivery endpoint.
type Webhook struct {
	client    *http.Client
	url       string
	authToken string
	logger    logger.Logger
}

func NewWebhook(cfg config.WebhookConfig, log logger.Logger) *Webhook {
	timeout := cfg.TimeoutSeconds * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Webhook{
		client:    &http.Client{Timeout: timeout},
		url:       cfg.URL,
		authToken: cfg.AuthToken,
		logger:    log,
	}
}

func (w *Webhook) Display(ctx context.Context, n models.Notification) error {
	env := toDisplayEnvelope(n)

	if err := w.post(ctx, w.url+"/notifications", env); err != nil {
		return err
	}

	metrics.SinkDisplaysTotal.WithLabelValues(env.Style).Inc()
	w.logger.InfowCtx(ctx, "Notification displayed",
		"notification_id", int32(n.ID),
		"style", env.Style,
	)
	return nil
}

func (w *Webhook) Cancel(ctx context.Context, id models.NotificationID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		w.url+"/notifications/"+strconv.Itoa(int(id)), nil)
	if err != nil {
		return fmt.Errorf("failed to build cancel request: %w", err)
	}
	w.authorize(req)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cancel request returned status %d", resp.StatusCode)
	}

	metrics.SinkCancelsTotal.Inc()
	return nil
}

func (w *Webhook) post(ctx context.Context, url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build display request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	w.authorize(req)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("display request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("display request returned status %d", resp.StatusCode)
	}
	return nil
}

func (w *Webhook) authorize(req *http.Request) {
	if w.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+w.authToken)
	}
}
