package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/SnowmanTackler/RtspLibrary/lib/api"
	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	"github.com/SnowmanTackler/RtspLibrary/lib/kbdctl"
	rlog "github.com/SnowmanTackler/RtspLibrary/lib/log"
	"github.com/SnowmanTackler/RtspLibrary/lib/renderer"
	"github.com/SnowmanTackler/RtspLibrary/lib/rendering/gldevice"
	"github.com/SnowmanTackler/RtspLibrary/lib/rendering/gpu"
	"github.com/SnowmanTackler/RtspLibrary/lib/rendering/shaders"
	"github.com/SnowmanTackler/RtspLibrary/lib/sink/windowsink"
	"github.com/SnowmanTackler/RtspLibrary/lib/source"
	"github.com/SnowmanTackler/RtspLibrary/lib/source/ffmpegsource"
	"github.com/SnowmanTackler/RtspLibrary/lib/source/imgsource"
	"github.com/SnowmanTackler/RtspLibrary/lib/source/stdinsource"
	"github.com/SnowmanTackler/RtspLibrary/lib/stats"
	"github.com/SnowmanTackler/RtspLibrary/lib/utils"
)

func init() {
	// The OpenGL stuff must be in one thread
	runtime.LockOSThread()
}

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <config file>", os.Args[0])
	}
	cfg, err := config.Parse(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(slog.New(rlog.NewHandler(&slog.HandlerOptions{Level: level})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, err := makeSource(cfg.Source)
	if err != nil {
		log.Fatalf("could not set up source: %s", err)
	}

	ws := windowsink.New("window", cfg.Window)
	err = ws.Start()
	if err != nil {
		log.Fatalf("could not open window: %s", err)
	}

	dev, err := gldevice.Init()
	if err != nil {
		log.Fatalf("could not initialise OpenGL: %s", err)
	}

	rendererCfg, err := makeRendererConfig(cfg.Renderer)
	if err != nil {
		log.Fatalf("invalid renderer config: %s", err)
	}
	r := renderer.New(rendererCfg, dev, ws)
	listener := renderer.NewListener(r)

	st := stats.New()
	ws.AfterDraw = func() {
		st.Update(r.Stats(), listener.FPS())
	}
	kbdctl.SetupShortcutKeys(ws, cancel, st)
	theApi := api.ServeInBackground(cfg.Api, r, st, cancel)

	go func() {
		err := src.Run(ctx, listener)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error(fmt.Sprintf("source %s stopped: %s", src.Name(), err))
		}
	}()

	err = ws.Run(ctx, r)
	if err != nil {
		log.Fatal(err)
	}
	cancel()

	if theApi != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		err = theApi.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn(fmt.Sprintf("could not shut down web server: %s", err))
		}
	}
}

func makeSource(cfg *config.SourceCfg) (source.Source, error) {
	switch c := cfg.Cfg.(type) {
	case *config.RTSPSourceCfg:
		return ffmpegsource.New(cfg.Name, c), nil
	case *config.StdinSourceCfg:
		return stdinsource.New(cfg.Name, c), nil
	case *config.ImgSourceCfg:
		return imgsource.New(cfg.Name, c)
	default:
		return nil, fmt.Errorf("unsupported source type %s", cfg.Type)
	}
}

func makeRendererConfig(cfg *config.RendererCfg) (renderer.Config, error) {
	rc := renderer.DefaultConfig()
	var err error
	rc.Background, err = utils.ColourParse(cfg.BackgroundColour)
	if err != nil {
		return rc, fmt.Errorf("background_colour: %w", err)
	}
	rc.Unconfigured, err = utils.ColourParse(cfg.UnconfiguredColour)
	if err != nil {
		return rc, fmt.Errorf("unconfigured_colour: %w", err)
	}
	if cfg.GLSLVersion != "" {
		rc.Shader = shaders.ShaderData{GLSLVersion: cfg.GLSLVersion}
	}
	if cfg.Filter == config.FilterLinear {
		rc.Filter = gpu.Linear
	}
	return rc, nil
}
