// Package imgsource shows a still image, optionally reloading it whenever
// the file is rewritten.
package imgsource

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"time"

	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/source"
	"github.com/jhenstridge/go-inotify"
)

type ImgSource struct {
	name    string
	path    string
	inotify bool
	frame   encdec.Frame
	log     *slog.Logger
}

func New(name string, cfg *config.ImgSourceCfg) (*ImgSource, error) {
	s := &ImgSource{
		name:    name,
		inotify: cfg.Inotify,
		log:     slog.Default().With(slog.String("module", name)),
	}

	if cfg.Path != "" {
		err := s.LoadImage(string(cfg.Path))
		if err != nil {
			return nil, err
		}
	} else {
		s.CreateImage(cfg.Width, cfg.Height)
	}
	return s, nil
}

func (s *ImgSource) Name() string {
	return s.name
}

func (s *ImgSource) Frame() *encdec.Frame {
	return &s.frame
}

func (s *ImgSource) LoadImage(path string) error {
	s.path = path
	s.log.Info(fmt.Sprintf("loading %s", s.path))
	imgFile, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", s.path, err)
	}
	defer imgFile.Close()

	img, _, err := image.Decode(imgFile)
	if err != nil {
		return fmt.Errorf("could not decode %s: %w", s.path, err)
	}
	encdec.FrameFromImage(img, &s.frame)
	return nil
}

// CreateImage makes a black frame of the given size.
func (s *ImgSource) CreateImage(width, height int) {
	s.frame = encdec.Frame{
		Pixels:   make([]byte, width*height*encdec.RGBChannels),
		Width:    width,
		Height:   height,
		Channels: encdec.RGBChannels,
	}
}

func (s *ImgSource) deliver(h source.FrameHandler) error {
	return h.OnFrame(s.frame.Pixels, s.frame.Channels, s.frame.Width, s.frame.Height)
}

// Run delivers the image once, then waits for ctx to end. With inotify
// enabled the image is delivered again after each rewrite of the file.
func (s *ImgSource) Run(ctx context.Context, h source.FrameHandler) error {
	s.log.Debug(fmt.Sprintf("size: %dx%d", s.frame.Width, s.frame.Height))
	err := s.deliver(h)
	if err != nil {
		return err
	}

	if s.inotify {
		return s.watch(ctx, h)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *ImgSource) watch(ctx context.Context, h source.FrameHandler) error {
	watcher, err := inotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create inotify watcher: %w", err)
	}
	defer func(watcher *inotify.Watcher) {
		err := watcher.Close()
		if err != nil {
			s.log.Warn(fmt.Sprintf("could not close inotify watcher: %s", err))
		}
	}(watcher)

	_, err = watcher.Watch(s.path)
	if err != nil {
		return fmt.Errorf("could not start inotify watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Event:
			if !ok {
				return nil
			}
			if ev.Mask&inotify.IN_CLOSE_WRITE == 0 {
				continue
			}
			s.log.Debug("reloading image due to inotify event")
			time.Sleep(100 * time.Millisecond)

			err := s.LoadImage(s.path)
			if err != nil {
				s.log.Error(fmt.Sprintf("error loading image: %s", err))
				continue
			}
			err = s.deliver(h)
			if err != nil {
				s.log.Error(fmt.Sprintf("error delivering image: %s", err))
			}
		}
	}
}
