package ffmpegsource

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPorts(t *testing.T) {
	cases := []struct {
		min, max         int
		wantMin, wantMax int
	}{
		{-1, -1, 5000, 65000},
		{6000, -1, 6000, 65000},
		{-1, 7000, 5000, 7000},
		{6000, 6001, 6000, 6002},
		{6000, 6000, 6000, 6002},
		{6000, 100, 6000, 6002},
		{0, 0, 0, 2},
		{10000, 20000, 10000, 20000},
	}
	for _, c := range cases {
		lo, hi := ClampPorts(c.min, c.max)
		assert.Equal(t, c.wantMin, lo, "min for %d,%d", c.min, c.max)
		assert.Equal(t, c.wantMax, hi, "max for %d,%d", c.min, c.max)
		assert.GreaterOrEqual(t, hi, lo+2)
	}
}

func intPtr(i int) *int { return &i }

func TestArgs(t *testing.T) {
	f := New("cam", &config.RTSPSourceCfg{
		FrameCfg:  encdec.FrameCfg{Width: 640, Height: 360},
		URL:       "rtsp://cam/stream",
		Transport: "tcp",
		MinPort:   intPtr(7000),
		MaxPort:   intPtr(7000),
	})
	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "warning", "-nostdin",
		"-rtsp_transport", "tcp",
		"-min_port", "7000",
		"-max_port", "7002",
		"-i", "rtsp://cam/stream",
		"-an",
		"-vf", "scale=640:360",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	}, f.Args())
	assert.Equal(t, "cam", f.Name())
	assert.Equal(t, "ffmpeg", f.cfg.FFmpeg)
}

func TestArgsDefaults(t *testing.T) {
	f := New("cam", &config.RTSPSourceCfg{
		FrameCfg: encdec.FrameCfg{Width: 2, Height: 2},
		URL:      "rtsp://cam/stream",
	})
	args := f.Args()
	assert.NotContains(t, args, "-rtsp_transport")
	assert.Contains(t, args, "5000")
	assert.Contains(t, args, "65000")
}

func TestProcessStdoutPartialFrame(t *testing.T) {
	f := New("cam", &config.RTSPSourceCfg{FrameCfg: encdec.FrameCfg{Width: 2, Height: 2}})

	var frames int
	h := source.FrameHandlerFunc(func(pixels []byte, channels, width, height int) error {
		frames++
		assert.Len(t, pixels, 12)
		assert.Equal(t, 3, channels)
		return nil
	})

	delivered, err := f.processStdout(context.Background(), bytes.NewReader(make([]byte, 13)), h)
	assert.True(t, delivered)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 1, frames)

	frames = 0
	delivered, err = f.processStdout(context.Background(), bytes.NewReader(make([]byte, 24)), h)
	assert.True(t, delivered)
	assert.NoError(t, err)
	assert.Equal(t, 2, frames)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func TestRunDeliversUntilCancelled(t *testing.T) {
	requireShell(t)
	f := New("cam", &config.RTSPSourceCfg{
		FrameCfg: encdec.FrameCfg{Width: 2, Height: 2},
		Cmd:      "head -c 36 /dev/zero",
		Retry:    config.RetryCfg{InitialMs: 1, MaxMs: 1},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	frames := 0
	err := f.Run(ctx, source.FrameHandlerFunc(func(pixels []byte, channels, width, height int) error {
		frames++
		if frames == 5 {
			cancel()
		}
		return nil
	}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, frames)
}

func TestRunGivesUp(t *testing.T) {
	requireShell(t)
	f := New("cam", &config.RTSPSourceCfg{
		FrameCfg: encdec.FrameCfg{Width: 2, Height: 2},
		Cmd:      "exit 3",
		Retry:    config.RetryCfg{InitialMs: 1, MaxMs: 1, MaxRetries: 2},
	})

	err := f.Run(context.Background(), source.FrameHandlerFunc(func([]byte, int, int, int) error {
		t.Error("no frame expected")
		return nil
	}))
	require.ErrorIs(t, err, source.ErrRetriesExhausted)
	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
}

var _ source.Source = (*FFmpegSource)(nil)
