// Package ffmpegsource pulls an RTSP stream through an ffmpeg subprocess
// that decodes it to raw rgb24 on stdout.
package ffmpegsource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/source"
	"golang.org/x/sys/unix"
)

type FFmpegSource struct {
	name    string
	cfg     config.RTSPSourceCfg
	minPort int
	maxPort int
	backoff *source.Backoff
	log     *slog.Logger
}

func New(name string, cfg *config.RTSPSourceCfg) *FFmpegSource {
	minPort, maxPort := -1, -1
	if cfg.MinPort != nil {
		minPort = *cfg.MinPort
	}
	if cfg.MaxPort != nil {
		maxPort = *cfg.MaxPort
	}
	f := &FFmpegSource{
		name: name,
		cfg:  *cfg,
		backoff: source.NewBackoff(
			time.Duration(cfg.Retry.InitialMs)*time.Millisecond,
			time.Duration(cfg.Retry.MaxMs)*time.Millisecond,
			cfg.Retry.MaxRetries,
		),
		log: slog.Default().With(slog.String("module", name)),
	}
	f.minPort, f.maxPort = ClampPorts(minPort, maxPort)
	if f.cfg.FFmpeg == "" {
		f.cfg.FFmpeg = "ffmpeg"
	}
	return f
}

func (f *FFmpegSource) Name() string {
	return f.name
}

// Args is the ffmpeg command line used for each connection attempt.
func (f *FFmpegSource) Args() []string {
	args := []string{"-hide_banner", "-loglevel", "warning", "-nostdin"}
	if f.cfg.Transport != "" {
		args = append(args, "-rtsp_transport", f.cfg.Transport)
	}
	args = append(args,
		"-min_port", strconv.Itoa(f.minPort),
		"-max_port", strconv.Itoa(f.maxPort),
		"-i", f.cfg.URL,
		"-an",
		"-vf", fmt.Sprintf("scale=%d:%d", f.cfg.Width, f.cfg.Height),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	return args
}

func (f *FFmpegSource) command(ctx context.Context) *exec.Cmd {
	var cmd *exec.Cmd
	if f.cfg.Cmd != "" {
		cmd = exec.CommandContext(ctx, "bash", "-c", f.cfg.Cmd)
	} else {
		cmd = exec.CommandContext(ctx, f.cfg.FFmpeg, f.Args()...)
	}
	// own process group, so bash -c pipelines die with it
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pdeathsig: syscall.SIGTERM}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
	}
	cmd.WaitDelay = 2 * time.Second
	return cmd
}

// Run connects and delivers frames until ctx is cancelled or the retries
// run out.
func (f *FFmpegSource) Run(ctx context.Context, h source.FrameHandler) error {
	return source.Reconnect(ctx, f.name, f.backoff, func(ctx context.Context) (bool, error) {
		return f.session(ctx, h)
	})
}

func (f *FFmpegSource) session(parent context.Context, h source.FrameHandler) (bool, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cmd := f.command(ctx)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return false, fmt.Errorf("could not get ffmpeg stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return false, fmt.Errorf("could not get ffmpeg stderr: %w", err)
	}

	f.log.Info("starting ffmpeg")
	err = cmd.Start()
	if err != nil {
		return false, fmt.Errorf("could not start ffmpeg: %w", err)
	}

	go f.processStderr(stderr)

	delivered, readErr := f.processStdout(ctx, stdout, h)
	if readErr != nil {
		// we stopped reading, so ffmpeg would block on a full pipe
		cancel()
	}
	waitErr := cmd.Wait()

	if parent.Err() != nil {
		return delivered, nil
	}
	if readErr != nil {
		return delivered, readErr
	}
	if waitErr != nil {
		return delivered, fmt.Errorf("ffmpeg exited: %w", waitErr)
	}
	return delivered, nil
}

func (f *FFmpegSource) processStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		f.log.Debug(fmt.Sprintf("[ffmpeg] %s", scanner.Text()))
	}
}

func (f *FFmpegSource) processStdout(ctx context.Context, stdout io.Reader, h source.FrameHandler) (bool, error) {
	frame := make([]byte, f.cfg.FrameCfg.CalcBufSize())
	reader := bufio.NewReaderSize(stdout, len(frame))
	delivered := false
	for {
		_, err := io.ReadFull(reader, frame)
		if errors.Is(err, io.EOF) {
			return delivered, nil
		}
		if err != nil {
			return delivered, fmt.Errorf("could not read from ffmpeg's output: %w", err)
		}
		if ctx.Err() != nil {
			return delivered, nil
		}

		err = h.OnFrame(frame, encdec.RGBChannels, f.cfg.Width, f.cfg.Height)
		if err != nil {
			f.log.Warn(fmt.Sprintf("frame rejected: %s", err))
			continue
		}
		delivered = true
	}
}
