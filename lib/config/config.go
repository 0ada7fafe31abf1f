package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/utils"
	yaml "github.com/goccy/go-yaml"
)

type Config struct {
	Window   *WindowCfg
	Renderer *RendererCfg
	Source   *SourceCfg
	Api      *ApiCfg
	LogLevel string `yaml:"log_level"`
}

func Parse(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", filename, err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			slog.Warn(fmt.Sprintf("could not close %s: %s", filename, err))
		}
	}(f)

	absFilename, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("somehow, %s is malformed: %w", filename, err)
	}
	ctx := WithBaseDir(context.Background(), filepath.Dir(absFilename))

	m := yaml.NewDecoder(f)
	cfg := &Config{}
	err = m.DecodeContext(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, err
}

// ApplyDefaults fills in every optional section that was left out.
func (c *Config) ApplyDefaults() {
	if c.Window == nil {
		c.Window = &WindowCfg{}
	}
	if c.Window.Title == "" {
		c.Window.Title = "rtspview"
	}
	if c.Window.Width == 0 {
		c.Window.Width = 1280
	}
	if c.Window.Height == 0 {
		c.Window.Height = 720
	}

	if c.Renderer == nil {
		c.Renderer = &RendererCfg{}
	}
	if c.Renderer.BackgroundColour == "" {
		c.Renderer.BackgroundColour = "#000000ff"
	}
	if c.Renderer.UnconfiguredColour == "" {
		c.Renderer.UnconfiguredColour = "#ff0000ff"
	}
	if c.Renderer.Filter == "" {
		c.Renderer.Filter = FilterNearest
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	if c.Source == nil {
		return fmt.Errorf("a source must be defined")
	}
	err := c.Source.Validate()
	if err != nil {
		return fmt.Errorf("source %s is invalid: %w", c.Source.Name, err)
	}
	if c.Window != nil {
		err = c.Window.Validate()
		if err != nil {
			return fmt.Errorf("window config is invalid: %w", err)
		}
	}
	if c.Renderer != nil {
		err = c.Renderer.Validate()
		if err != nil {
			return fmt.Errorf("renderer config is invalid: %w", err)
		}
	}
	if c.Api != nil {
		err = c.Api.Validate()
		if err != nil {
			return fmt.Errorf("api config is invalid: %w", err)
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	if c.Source != nil {
		b.WriteString(fmt.Sprintf("Source:\n  %s (%s)\n", c.Source.Name, c.Source.Type))
	}
	if c.Window != nil {
		b.WriteString(fmt.Sprintf("\nWindow:\n  %q %dx%d\n", c.Window.Title, c.Window.Width, c.Window.Height))
	}
	if c.Renderer != nil {
		b.WriteString(fmt.Sprintf(
			"\nRenderer:\n  background %s, unconfigured %s, filter %s\n",
			c.Renderer.BackgroundColour, c.Renderer.UnconfiguredColour, c.Renderer.Filter,
		))
	}
	if c.Api != nil {
		b.WriteString(fmt.Sprintf("\nApi:\n  %s\n", c.Api.Bind))
	}
	return b.String()
}

// ParseLevel maps a log_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(s))
	if err != nil {
		return l, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return l, nil
}

type Valid interface {
	Validate() error
}

type WindowCfg struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	VSync     bool `yaml:"vsync"`
}

func (w *WindowCfg) Validate() error {
	if w.Width < 0 || w.Height < 0 {
		return fmt.Errorf("window size %dx%d is negative", w.Width, w.Height)
	}
	return nil
}

const (
	FilterNearest = "nearest"
	FilterLinear  = "linear"
)

type RendererCfg struct {
	BackgroundColour   string `yaml:"background_colour"`
	UnconfiguredColour string `yaml:"unconfigured_colour"`
	GLSLVersion        string `yaml:"glsl_version"`
	Filter             string
}

func (r *RendererCfg) Validate() error {
	for name, c := range map[string]string{
		"background_colour":   r.BackgroundColour,
		"unconfigured_colour": r.UnconfiguredColour,
	} {
		if c != "" && !utils.ColourValidate(c) {
			return fmt.Errorf("%s %s is not a valid RGBA hex colour", name, c)
		}
	}
	switch r.Filter {
	case "", FilterNearest, FilterLinear:
	default:
		return fmt.Errorf("unknown filter %q, expected %s or %s", r.Filter, FilterNearest, FilterLinear)
	}
	return nil
}

type SourceCfgStub struct {
	Type string
	Name string
}

type SourceCfg struct {
	SourceCfgStub
	Cfg Valid
}

func (s *SourceCfg) UnmarshalYAML(ctx context.Context, b []byte) error {
	err := yaml.UnmarshalContext(ctx, b, &s.SourceCfgStub)
	if err != nil {
		return err
	}
	if s.Name == "" {
		s.Name = s.Type
	}

	switch s.Type {
	case "rtsp":
		cfg := RTSPSourceCfg{}
		s.Cfg = &cfg
		return yaml.UnmarshalContext(ctx, b, &cfg)
	case "stdin":
		cfg := StdinSourceCfg{}
		s.Cfg = &cfg
		return yaml.UnmarshalContext(ctx, b, &cfg)
	case "image":
		cfg := ImgSourceCfg{}
		s.Cfg = &cfg
		return yaml.UnmarshalContext(ctx, b, &cfg)
	default:
		return fmt.Errorf("unknown source type: %s", s.Type)
	}
}

func (s *SourceCfg) Validate() error {
	if s.Cfg == nil {
		return fmt.Errorf("source type must be specified")
	}
	return s.Cfg.Validate()
}

type RetryCfg struct {
	InitialMs  int `yaml:"initial_ms"`
	MaxMs      int `yaml:"max_ms"`
	MaxRetries int `yaml:"max_retries"`
}

func (r *RetryCfg) Validate() error {
	if r.InitialMs < 0 || r.MaxMs < 0 || r.MaxRetries < 0 {
		return fmt.Errorf("retry settings must be nonnegative")
	}
	if r.MaxMs != 0 && r.MaxMs < r.InitialMs {
		return fmt.Errorf("max_ms (%d) must not be below initial_ms (%d)", r.MaxMs, r.InitialMs)
	}
	return nil
}

type RTSPSourceCfg struct {
	encdec.FrameCfg `yaml:"frames"`
	URL             string `yaml:"url"`
	Transport       string
	// MinPort and MaxPort bound the local UDP ports; unset or negative
	// means the default.
	MinPort *int `yaml:"min_port"`
	MaxPort *int `yaml:"max_port"`
	FFmpeg  string
	// Cmd replaces the generated ffmpeg invocation with a shell command
	// that writes raw rgb24 frames to stdout.
	Cmd   string
	Retry RetryCfg
}

func (s *RTSPSourceCfg) Validate() error {
	if s.URL == "" && s.Cmd == "" {
		return fmt.Errorf("rtsp url must be specified")
	}
	if s.URL != "" && !strings.HasPrefix(s.URL, "rtsp://") && !strings.HasPrefix(s.URL, "rtsps://") {
		return fmt.Errorf("%s is not an rtsp url", s.URL)
	}
	switch s.Transport {
	case "", "udp", "tcp":
	default:
		return fmt.Errorf("unknown rtsp transport %q", s.Transport)
	}
	err := s.Retry.Validate()
	if err != nil {
		return err
	}
	return s.FrameCfg.Validate()
}

type StdinSourceCfg struct {
	encdec.FrameCfg `yaml:"frames"`
	Rate            int
}

func (s *StdinSourceCfg) Validate() error {
	if s.Rate < 0 {
		return fmt.Errorf("rate must be nonnegative")
	}
	return s.FrameCfg.Validate()
}

type ImgSourceCfg struct {
	Path    CfgPath
	Width   int
	Height  int
	Inotify bool
}

func (s *ImgSourceCfg) Validate() error {
	if s.Path == "" {
		if s.Width == 0 && s.Height == 0 {
			return fmt.Errorf("image path or size must be specified")
		}
		if s.Inotify {
			return fmt.Errorf("cannot enable inotify for an imagesource without path")
		}
	} else {
		if s.Width != 0 || s.Height != 0 {
			return fmt.Errorf("image path or size can't both be specified")
		}
	}
	return nil
}

type ApiCfg struct {
	Bind           string
	EnableProfiler bool `yaml:"enable_profiler"`
}

func (a *ApiCfg) Validate() error {
	if a.Bind == "" {
		return fmt.Errorf("api bind address must be specified")
	}
	return nil
}
