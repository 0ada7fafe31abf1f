package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	yaml "github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rtspview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseRTSP(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
window:
  title: camera
  width: 800
  height: 600
  resizable: true
  vsync: true
renderer:
  background_colour: "#101010ff"
  glsl_version: "300 es"
  filter: linear
source:
  type: rtsp
  name: door
  url: rtsp://10.0.0.5:554/stream
  transport: tcp
  min_port: 6000
  max_port: -1
  frames:
    width: 640
    height: 480
  retry:
    initial_ms: 100
    max_ms: 2000
    max_retries: 5
api:
  bind: 127.0.0.1:8000
  enable_profiler: true
`)
	cfg, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "camera", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.True(t, cfg.Window.Resizable)
	assert.True(t, cfg.Window.VSync)

	assert.Equal(t, "#101010ff", cfg.Renderer.BackgroundColour)
	assert.Equal(t, "#ff0000ff", cfg.Renderer.UnconfiguredColour)
	assert.Equal(t, "300 es", cfg.Renderer.GLSLVersion)
	assert.Equal(t, FilterLinear, cfg.Renderer.Filter)

	assert.Equal(t, "door", cfg.Source.Name)
	rtsp, ok := cfg.Source.Cfg.(*RTSPSourceCfg)
	require.True(t, ok)
	assert.Equal(t, "rtsp://10.0.0.5:554/stream", rtsp.URL)
	assert.Equal(t, "tcp", rtsp.Transport)
	require.NotNil(t, rtsp.MinPort)
	assert.Equal(t, 6000, *rtsp.MinPort)
	require.NotNil(t, rtsp.MaxPort)
	assert.Equal(t, -1, *rtsp.MaxPort)
	assert.Equal(t, 640, rtsp.Width)
	assert.Equal(t, 480, rtsp.Height)
	assert.Equal(t, RetryCfg{InitialMs: 100, MaxMs: 2000, MaxRetries: 5}, rtsp.Retry)

	require.NotNil(t, cfg.Api)
	assert.Equal(t, "127.0.0.1:8000", cfg.Api.Bind)
	assert.True(t, cfg.Api.EnableProfiler)

	level, err := ParseLevel(cfg.LogLevel)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  type: stdin
  frames:
    width: 4
    height: 4
`)
	cfg, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "stdin", cfg.Source.Name)
	assert.Equal(t, "rtspview", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "#000000ff", cfg.Renderer.BackgroundColour)
	assert.Equal(t, FilterNearest, cfg.Renderer.Filter)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Nil(t, cfg.Api)
	assert.Contains(t, cfg.String(), "stdin (stdin)")
}

func TestImagePathIsRelativeToConfig(t *testing.T) {
	path := writeConfig(t, `
source:
  type: image
  path: images/test.png
  inotify: true
`)
	cfg, err := Parse(path)
	require.NoError(t, err)

	img, ok := cfg.Source.Cfg.(*ImgSourceCfg)
	require.True(t, ok)
	assert.Equal(t, CfgPath(filepath.Join(filepath.Dir(path), "images/test.png")), img.Path)
	assert.True(t, img.Inotify)
}

func TestConcurrentParsesResolveOwnPaths(t *testing.T) {
	const content = `
source:
  type: image
  path: still.png
`
	paths := make([]string, 8)
	for i := range paths {
		paths[i] = writeConfig(t, content)
	}

	got := make([]CfgPath, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := Parse(path)
			if assert.NoError(t, err) {
				got[i] = cfg.Source.Cfg.(*ImgSourceCfg).Path
			}
		}()
	}
	wg.Wait()

	for i, path := range paths {
		assert.Equal(t, CfgPath(filepath.Join(filepath.Dir(path), "still.png")), got[i])
	}
}

func TestCfgPathBaseDir(t *testing.T) {
	var p struct{ Path CfgPath }

	require.NoError(t, yaml.UnmarshalContext(WithBaseDir(context.Background(), "/srv/view"), []byte("path: a/b.png"), &p))
	assert.Equal(t, CfgPath("/srv/view/a/b.png"), p.Path)

	require.NoError(t, yaml.UnmarshalContext(WithBaseDir(context.Background(), "/srv/view"), []byte("path: /abs.png"), &p))
	assert.Equal(t, CfgPath("/abs.png"), p.Path)

	require.NoError(t, yaml.Unmarshal([]byte("path: rel.png"), &p))
	assert.Equal(t, CfgPath("rel.png"), p.Path)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"no source": `
window:
  width: 10
`,
		"unknown source type": `
source:
  type: v4l
`,
		"missing frames": `
source:
  type: rtsp
  url: rtsp://cam/stream
`,
		"not rtsp": `
source:
  type: rtsp
  url: http://cam/stream
  frames: {width: 2, height: 2}
`,
		"bad transport": `
source:
  type: rtsp
  url: rtsp://cam/stream
  transport: sctp
  frames: {width: 2, height: 2}
`,
		"bad retry": `
source:
  type: rtsp
  url: rtsp://cam/stream
  frames: {width: 2, height: 2}
  retry: {initial_ms: 100, max_ms: 10}
`,
		"bad colour": `
renderer:
  background_colour: black
source:
  type: stdin
  frames: {width: 2, height: 2}
`,
		"bad filter": `
renderer:
  filter: cubic
source:
  type: stdin
  frames: {width: 2, height: 2}
`,
		"bad log level": `
log_level: loud
source:
  type: stdin
  frames: {width: 2, height: 2}
`,
		"image without path or size": `
source:
  type: image
`,
		"api without bind": `
api:
  enable_profiler: true
source:
  type: stdin
  frames: {width: 2, height: 2}
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
