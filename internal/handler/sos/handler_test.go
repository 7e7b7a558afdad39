package sos

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/internal/service/alert"
	"github.com/jwalitptl/ayusutra-api/internal/service/notification"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	router  *gin.Engine
	notes   *notification.Buffer
	clock   *clock
	metrics *metrics.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		notes:   &notification.Buffer{},
		clock:   &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
		metrics: metrics.New("test"),
	}
	svc := alert.NewService(alert.Config{Now: f.clock.Now}, f.notes, alert.NewLogRecorder(logger.Nop()), f.metrics, logger.Nop())

	f.router = gin.New()
	NewHandler(svc, nil).RegisterRoutes(f.router.Group("/api/v1"))
	return f
}

func (f *fixture) press(t *testing.T, session, key string) keyPressResponse {
	t.Helper()
	raw, _ := json.Marshal(map[string]string{"session_id": session, "key": key})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/keypress", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data keyPressResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestTap(t *testing.T) {
	f := setup(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sos", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Contains(t, w.Body.String(), "Emergency Alert Activated")
	assert.Contains(t, w.Body.String(), `"source":"tap"`)
	assert.Equal(t, 1, f.notes.Len())
}

func TestKeyPressDoublePress(t *testing.T) {
	f := setup(t)

	assert.False(t, f.press(t, "s1", "v").Fired)
	f.clock.Advance(800 * time.Millisecond)

	resp := f.press(t, "s1", "V")
	assert.True(t, resp.Fired)
	require.NotNil(t, resp.Alert)
	assert.Equal(t, model.AlertSourceKeyboard, resp.Alert.Source)
	assert.Equal(t, 1, f.notes.Len())
}

func TestKeyPressSlowDoesNotFire(t *testing.T) {
	f := setup(t)

	f.press(t, "s1", "v")
	f.clock.Advance(3 * time.Second)
	assert.False(t, f.press(t, "s1", "v").Fired)
	assert.Equal(t, 0, f.notes.Len())
}

func TestKeyPressRequiresFields(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/keypress", strings.NewReader(`{"key":"v"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStream(t *testing.T) {
	f := setup(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sos/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	send := func(key string) keyPressResponse {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(key)))
		var resp keyPressResponse
		require.NoError(t, conn.ReadJSON(&resp))
		return resp
	}

	assert.False(t, send("x").Fired)
	assert.False(t, send("v").Fired)
	assert.True(t, send("v").Fired)
	assert.False(t, send("v").Fired)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.KeyListeners))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(f.metrics.KeyListeners) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, f.notes.Len())
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin([]string{"https://app.ayusutra.test"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.ayusutra.test")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.test")
	assert.False(t, check(req))
}
