package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushrender/internal/classify"
	"pushrender/internal/config"
	"pushrender/internal/deeplink"
	"pushrender/internal/logger"
	"pushrender/internal/payload"
	"pushrender/internal/prefs"
	"pushrender/internal/render"
	"pushrender/pkg/models"
)

type memorySink struct {
	mu       sync.Mutex
	displays []models.Notification
	cancels  []models.NotificationID
}

func (s *memorySink) Display(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displays = append(s.displays, n)
	return nil
}

func (s *memorySink) Cancel(_ context.Context, id models.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, id)
	return nil
}

type nopFetcher struct{}

func (nopFetcher) Fetch(_ context.Context, _ string) (*models.Bitmap, error) {
	return nil, nil
}

func newTestRouter(s *memorySink) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logger.NopLogger()
	svc := render.NewService(
		config.RenderConfig{DefaultColor: "#008577"},
		classify.NewClassifier(classify.NewIDAllocator(), log),
		payload.NewParser(log),
		nopFetcher{},
		s,
		prefs.NewStatic(true),
		deeplink.NewURIResolver(),
		log,
	)

	router := gin.New()
	NewHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestIngestMessageAccepted(t *testing.T) {
	s := &memorySink{}
	router := newTestRouter(s)

	body := `{"trace_id":"t-1","data":{"type":"ANDP","id":"7","title":"hi"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"trace_id":"t-1"`)
	require.Len(t, s.displays, 1)
	assert.Equal(t, models.NotificationID(7), s.displays[0].ID)
}

func TestIngestMessageGeneratesTraceID(t *testing.T) {
	router := newTestRouter(&memorySink{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(`{"data":{"type":"ANDP"}}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "trace_id")
}

func TestIngestMessageRejectsBadJSON(t *testing.T) {
	s := &memorySink{}
	router := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.displays)
}

func TestIngestMessageRequiresData(t *testing.T) {
	router := newTestRouter(&memorySink{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(`{"trace_id":"t"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelNotification(t *testing.T) {
	s := &memorySink{}
	router := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/notifications/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.cancels, 1)
	assert.Equal(t, models.NotificationID(42), s.cancels[0])
}

func TestCancelNotificationRejectsNonNumericID(t *testing.T) {
	s := &memorySink{}
	router := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/notifications/abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.cancels)
}
