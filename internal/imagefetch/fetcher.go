// Package imagefetch retrieves the picture for a large-image notification.
//
// The contract is deliberately loose: a failed fetch is reported as an
// error and the caller treats it exactly like "nothing to render". No
// retry and no timeout are applied here unless configured; a hung fetch
// delays only its own notification.
package imagefetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"pushrender/internal/config"
	"pushrender/internal/constants"
	"pushrender/internal/logger"
	"pushrender/pkg/circuitbreaker"
	"pushrender/pkg/metrics"
	"pushrender/pkg/models"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.Bitmap, error)
}

type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
	breaker  *circuitbreaker.Wrapper
	logger   logger.Logger
}

func NewHTTPFetcher(cfg config.ImageFetchConfig, log logger.Logger) *HTTPFetcher {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = constants.MaxImageBytes
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: cfg.TimeoutSeconds * time.Second,
		},
		maxBytes: maxBytes,
		logger:   log,
	}
}

// WithBreaker guards fetches with a circuit breaker. An open breaker
// surfaces as a fetch failure, which the renderer treats as a drop.
func (f *HTTPFetcher) WithBreaker(cb *circuitbreaker.Wrapper) *HTTPFetcher {
	f.breaker = cb
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*models.Bitmap, error) {
	start := time.Now()

	var bmp *models.Bitmap
	var err error
	if f.breaker != nil {
		var result interface{}
		result, err = f.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
			return f.fetch(ctx, url)
		})
		f.breaker.RecordRequest(err == nil)
		if err == nil {
			bmp = result.(*models.Bitmap)
		}
	} else {
		bmp, err = f.fetch(ctx, url)
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.ImageFetchTotal.WithLabelValues(status).Inc()
	metrics.ObserveImageFetchDuration(time.Since(start), status)

	return bmp, err
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) (*models.Bitmap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &models.Bitmap{
		Data:        data,
		ContentType: "image/" + format,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
