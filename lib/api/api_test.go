package api

import (
	"bytes"
	"encoding/json"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/stats"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFrames struct {
	frame *encdec.Frame
}

func (s *staticFrames) Snapshot() *encdec.Frame {
	if s.frame == nil {
		return nil
	}
	return s.frame.Clone()
}

func newTestApi(t *testing.T, frame *encdec.Frame) (*Api, *httptest.Server, *atomic.Int32) {
	t.Helper()
	var kills atomic.Int32
	a := New(&config.ApiCfg{Bind: "127.0.0.1:0"}, &staticFrames{frame: frame}, stats.New(), func() { kills.Add(1) })
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return a, srv, &kills
}

func testFrame() *encdec.Frame {
	return &encdec.Frame{
		Pixels:   []byte{255, 0, 0, 0, 255, 0, 0, 0, 255, 9, 9, 9},
		Width:    2,
		Height:   2,
		Channels: 3,
	}
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStats(t *testing.T) {
	_, srv, _ := newTestApi(t, nil)
	resp := get(t, srv.URL+"/api/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap stats.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Zero(t, snap.FramesDrawn)
}

func TestFrameBeforeFirstFrame(t *testing.T) {
	_, srv, _ := newTestApi(t, nil)
	resp := get(t, srv.URL+"/api/frame")
	assert.Equal(t, http.StatusFailedDependency, resp.StatusCode)
}

func TestFramePNG(t *testing.T) {
	_, srv, _ := newTestApi(t, testFrame())
	for _, path := range []string{"/api/frame", "/api/frame/png"} {
		resp := get(t, srv.URL+path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

		img, err := png.Decode(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, 2, img.Bounds().Dx())
		r, g, b, a := img.At(0, 0).RGBA()
		assert.Equal(t, []uint32{0xffff, 0, 0, 0xffff}, []uint32{r, g, b, a})
		r, g, b, _ = img.At(1, 0).RGBA()
		assert.Equal(t, []uint32{0, 0xffff, 0}, []uint32{r, g, b})
	}
}

func TestFrameJPEG(t *testing.T) {
	_, srv, _ := newTestApi(t, testFrame())
	resp := get(t, srv.URL+"/api/frame/jpeg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	img, err := jpeg.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestFrameBadFormat(t *testing.T) {
	_, srv, _ := newTestApi(t, testFrame())
	resp := get(t, srv.URL+"/api/frame/gif")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestKill(t *testing.T) {
	_, srv, kills := newTestApi(t, nil)

	resp := get(t, srv.URL+"/api/kill")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Zero(t, kills.Load())

	resp, err := http.Post(srv.URL+"/api/kill", "application/json", bytes.NewReader(nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), kills.Load())
}

func TestMetrics(t *testing.T) {
	_, srv, _ := newTestApi(t, nil)
	resp := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSwaggerDoc(t *testing.T) {
	_, srv, _ := newTestApi(t, nil)
	resp := get(t, srv.URL+"/swagger/doc.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc.Paths, "/api/stats")
	assert.Contains(t, doc.Paths, "/api/frame/{format}")
}

func TestProfilerDisabled(t *testing.T) {
	_, srv, _ := newTestApi(t, nil)
	resp := get(t, srv.URL+"/prof")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketPushesStats(t *testing.T) {
	a := New(&config.ApiCfg{Bind: "127.0.0.1:0"}, &staticFrames{}, stats.New(), nil)
	a.WsInterval = 10 * time.Millisecond
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, msg, err := ws.ReadMessage()
		require.NoError(t, err)
		var snap stats.Snapshot
		require.NoError(t, json.Unmarshal(msg, &snap))
	}
	assert.Eventually(t, func() bool {
		return a.Stats.Snapshot().WsClients == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool {
		return a.Stats.Snapshot().WsClients == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestServeInBackgroundWithoutConfig(t *testing.T) {
	assert.Nil(t, ServeInBackground(nil, &staticFrames{}, stats.New(), nil))
}
