package render

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushrender/internal/classify"
	"pushrender/internal/config"
	"pushrender/internal/deeplink"
	"pushrender/internal/logger"
	"pushrender/internal/payload"
	"pushrender/internal/prefs"
	"pushrender/internal/sink"
	"pushrender/pkg/metrics"
	"pushrender/pkg/models"
)

type recordingSink struct {
	mu       sync.Mutex
	displays []models.Notification
	cancels  []models.NotificationID
}

func (s *recordingSink) Display(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displays = append(s.displays, n)
	return nil
}

func (s *recordingSink) Cancel(_ context.Context, id models.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, id)
	return nil
}

func (s *recordingSink) displayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.displays)
}

func (s *recordingSink) lastDisplay() models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displays[len(s.displays)-1]
}

type fakeFetcher struct {
	bmp    *models.Bitmap
	err    error
	called chan string
}

func newFakeFetcher(bmp *models.Bitmap, err error) *fakeFetcher {
	return &fakeFetcher{bmp: bmp, err: err, called: make(chan string, 1)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*models.Bitmap, error) {
	f.called <- url
	return f.bmp, f.err
}

type slowSink struct {
	recordingSink
	delay time.Duration
}

func (s *slowSink) Display(ctx context.Context, n models.Notification) error {
	time.Sleep(s.delay)
	return s.recordingSink.Display(ctx, n)
}

func newTestService(s sink.Sink, fetcher *fakeFetcher) *Service {
	return NewService(
		config.RenderConfig{DefaultColor: "#112233"},
		classify.NewClassifier(classify.NewIDAllocator(), logger.NopLogger()),
		payload.NewParser(logger.NopLogger()),
		fetcher,
		s,
		prefs.NewStatic(true),
		deeplink.NewURIResolver(),
		logger.NopLogger(),
	)
}

func process(t *testing.T, svc *Service, data map[string]string) {
	t.Helper()
	require.NoError(t, svc.Process(context.Background(), models.PushMessage{Data: data}))
}

func TestProcessIgnoresForeignMessages(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{"title": "no type"})
	process(t, svc, map[string]string{"type": "OTHER", "template": "BIG_TEXT"})

	assert.Zero(t, s.displayCount())
}

func TestProcessDefaultTemplate(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{
		"type":    classify.TypeMarker,
		"id":      "7",
		"title":   "Hello",
		"message": "World",
	})

	require.Equal(t, 1, s.displayCount())
	n := s.lastDisplay()
	assert.Equal(t, models.NotificationID(7), n.ID)
	assert.Equal(t, "Hello", n.Title)
	assert.Equal(t, "World", n.Body)
	assert.IsType(t, models.DefaultStyle{}, n.Style)
	assert.True(t, n.Sound)
	assert.Equal(t, models.Color(0xFF112233), n.Color)
}

func TestProcessBigText(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"template": "BIG_TEXT",
		"message":  "hello",
	})

	require.Equal(t, 1, s.displayCount())
	style, ok := s.lastDisplay().Style.(models.BigTextStyle)
	require.True(t, ok)
	assert.Equal(t, "hello", style.Body)
}

func TestProcessLargeWithoutImageProducesNothing(t *testing.T) {
	s := &recordingSink{}
	fetcher := newFakeFetcher(nil, nil)
	svc := newTestService(s, fetcher)

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"template": "LARGE",
		"title":    "picture",
	})

	assert.Zero(t, s.displayCount())
	assert.Empty(t, fetcher.called, "fetcher must not be invoked without an image url")
}

func TestProcessLargeFetchSuccess(t *testing.T) {
	s := &recordingSink{}
	bmp := &models.Bitmap{Data: []byte{1, 2, 3}, ContentType: "image/png", Width: 1, Height: 1}
	fetcher := newFakeFetcher(bmp, nil)
	svc := newTestService(s, fetcher)

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"template": "LARGE",
		"image":    "http://good.png",
	})

	select {
	case url := <-fetcher.called:
		assert.Equal(t, "http://good.png", url)
	case <-time.After(time.Second):
		t.Fatal("fetcher was never invoked")
	}

	require.Eventually(t, func() bool {
		return s.displayCount() == 1
	}, time.Second, 5*time.Millisecond)

	style, ok := s.lastDisplay().Style.(models.LargeImageStyle)
	require.True(t, ok)
	assert.Equal(t, *bmp, style.Image)
}

func TestProcessLargeFetchFailureDropsSilently(t *testing.T) {
	s := &recordingSink{}
	fetcher := newFakeFetcher(nil, errors.New("connection refused"))
	svc := newTestService(s, fetcher)

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"template": "LARGE",
		"image":    "http://bad.png",
	})

	select {
	case <-fetcher.called:
	case <-time.After(time.Second):
		t.Fatal("fetcher was never invoked")
	}

	assert.Never(t, func() bool {
		return s.displayCount() > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestProcessConversation(t *testing.T) {
	tests := []struct {
		name         string
		data         map[string]string
		wantDisplays int
		wantMessages int
	}{
		{
			name: "absent payload produces nothing",
			data: map[string]string{
				"type":     classify.TypeMarker,
				"template": "CONVERSATION",
			},
			wantDisplays: 0,
		},
		{
			name: "malformed payload still displays with zero messages",
			data: map[string]string{
				"type":         classify.TypeMarker,
				"template":     "CONVERSATION",
				"conversation": "not json",
			},
			wantDisplays: 1,
			wantMessages: 0,
		},
		{
			name: "valid payload",
			data: map[string]string{
				"type":         classify.TypeMarker,
				"template":     "CONVERSATION",
				"conversation": `[{"text":"hi","timestamp":1,"sender":"A"},{"text":"yo","timestamp":2,"sender":"B"}]`,
			},
			wantDisplays: 1,
			wantMessages: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSink{}
			svc := newTestService(s, newFakeFetcher(nil, nil))

			process(t, svc, tt.data)

			require.Equal(t, tt.wantDisplays, s.displayCount())
			if tt.wantDisplays > 0 {
				style, ok := s.lastDisplay().Style.(models.ConversationStyle)
				require.True(t, ok)
				assert.Len(t, style.Messages, tt.wantMessages)
			}
		})
	}
}

func TestProcessInbox(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"template": "INBOX",
		"lines":    `["a","b"]`,
	})

	require.Equal(t, 1, s.displayCount())
	style, ok := s.lastDisplay().Style.(models.InboxStyle)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, style.Lines)
}

func TestProcessInboxMalformedLinesStillDisplays(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"template": "INBOX",
		"lines":    `{}`,
	})

	require.Equal(t, 1, s.displayCount())
	style, ok := s.lastDisplay().Style.(models.InboxStyle)
	require.True(t, ok)
	assert.Empty(t, style.Lines)
}

func TestProcessInboxWithoutLinesProducesNothing(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"template": "INBOX",
	})

	assert.Zero(t, s.displayCount())
}

func TestProcessMergesActionsIntoSingleDisplay(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"id":       "99",
		"template": "BIG_TEXT",
		"message":  "body",
		"buttons":  `[{"text":"Open","deeplink":"https://x"},{"text":"Dismiss","deeplink":"app://close"}]`,
	})

	require.Equal(t, 1, s.displayCount(), "actions merge into the styled notification")
	n := s.lastDisplay()
	assert.Equal(t, models.NotificationID(99), n.ID)
	require.Len(t, n.Actions, 2)
	assert.Equal(t, "Open", n.Actions[0].Label)
	assert.Equal(t, "https://x", n.Actions[0].Action.URI)
	assert.IsType(t, models.BigTextStyle{}, n.Style)
}

func TestProcessActionsSurviveSkippedBranch(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"id":       "5",
		"template": "LARGE",
		"buttons":  `[{"text":"Retry","deeplink":"app://retry"}]`,
	})

	require.Equal(t, 1, s.displayCount(), "buttons still apply when the styled branch is skipped")
	n := s.lastDisplay()
	assert.Equal(t, models.NotificationID(5), n.ID)
	assert.IsType(t, models.DefaultStyle{}, n.Style)
	require.Len(t, n.Actions, 1)
	assert.Equal(t, "Retry", n.Actions[0].Label)
}

func TestRenderDurationObservesDisplayLatency(t *testing.T) {
	const delay = 80 * time.Millisecond
	s := &slowSink{delay: delay}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	template := string(classify.TemplateBigText)
	before := renderDurationSum(t, template)

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"template": "BIG_TEXT",
		"message":  "slow",
	})

	after := renderDurationSum(t, template)
	assert.GreaterOrEqual(t, after-before, float64(delay.Milliseconds()),
		"histogram must cover the time spent in the display path")
}

func renderDurationSum(t *testing.T, template string) float64 {
	t.Helper()
	obs, err := metrics.RenderDuration.GetMetricWithLabelValues(template)
	require.NoError(t, err)

	var m dto.Metric
	require.NoError(t, obs.(prometheus.Histogram).Write(&m))
	return m.GetHistogram().GetSampleSum()
}

func TestProcessResolvesContentDeeplink(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	process(t, svc, map[string]string{
		"type":     classify.TypeMarker,
		"deeplink": "app://orders/42",
	})

	require.Equal(t, 1, s.displayCount())
	n := s.lastDisplay()
	require.NotNil(t, n.ContentAction)
	assert.Equal(t, "app://orders/42", n.ContentAction.URI)
}

func TestCancel(t *testing.T) {
	s := &recordingSink{}
	svc := newTestService(s, newFakeFetcher(nil, nil))

	require.NoError(t, svc.Cancel(context.Background(), 42))
	require.Len(t, s.cancels, 1)
	assert.Equal(t, models.NotificationID(42), s.cancels[0])
}
