//	@title			rtspview API
//	@version		1.0
//	@description	Status and still frames of a running rtspview.
//	@BasePath		/

//go:generate go tool swag init -g api.go -o docs

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/pprof"
	"sync"
	"time"

	_ "github.com/SnowmanTackler/RtspLibrary/lib/api/docs"
	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/metrics"
	"github.com/SnowmanTackler/RtspLibrary/lib/stats"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger"
)

// FrameSource gives access to the most recently received frame.
type FrameSource interface {
	Snapshot() *encdec.Frame
}

type Api struct {
	srv      http.Server
	mux      *http.ServeMux
	cfg      *config.ApiCfg
	frames   FrameSource
	shutdown func()
	log      *slog.Logger

	Stats *stats.Stats

	wsMutex   sync.Mutex
	wsClients map[*websocket.Conn]bool
	// WsInterval is how often stats are pushed to websocket clients.
	WsInterval time.Duration
}

func New(cfg *config.ApiCfg, frames FrameSource, st *stats.Stats, shutdown func()) *Api {
	a := &Api{
		cfg:        cfg,
		mux:        http.NewServeMux(),
		frames:     frames,
		shutdown:   shutdown,
		log:        slog.Default().With(slog.String("module", "api")),
		Stats:      st,
		wsClients:  make(map[*websocket.Conn]bool),
		WsInterval: 2 * time.Second,
	}
	a.srv.Addr = cfg.Bind
	a.srv.Handler = a.mux
	a.routes()
	return a
}

func (a *Api) routes() {
	if a.cfg.EnableProfiler {
		a.mux.HandleFunc("/prof", a.profileCPU)
	}
	a.mux.HandleFunc("POST /api/kill", a.suicide)
	a.mux.HandleFunc("GET /api/stats", a.getStats)
	a.mux.HandleFunc("GET /api/ws", a.handleWebsocket)
	a.mux.HandleFunc("GET /api/frame", a.handleFrame)
	a.mux.HandleFunc("GET /api/frame/{format}", a.handleFrame)
	a.mux.Handle("/metrics", metrics.Handler())
	a.mux.Handle("/swagger/", httpSwagger.WrapHandler)
}

func (a *Api) Handler() http.Handler {
	return a.mux
}

func (a *Api) Serve() error {
	return a.srv.ListenAndServe()
}

func (a *Api) Shutdown(ctx context.Context) error {
	return a.srv.Shutdown(ctx)
}

// @Summary	Capture a 10 second CPU profile
// @Router		/prof [get]
// @Tags		debug
// @Produce	octet-stream
// @Success	200
// @Failure	500	{string}	string	"A profile is already running"
func (a *Api) profileCPU(w http.ResponseWriter, _ *http.Request) {
	err := pprof.StartCPUProfile(w)
	if err != nil {
		http.Error(w, fmt.Sprintf("Could not start CPU profile: %s", err), http.StatusInternalServerError)
		return
	}
	time.Sleep(10 * time.Second)
	pprof.StopCPUProfile()
}

// @Summary	Shut down the viewer
// @Router		/api/kill [post]
// @Tags		base
// @Produce	json
// @Success	200	{string}	string	"ok"
func (a *Api) suicide(w http.ResponseWriter, _ *http.Request) {
	a.log.Info("shutting down as per api request")
	if a.shutdown != nil {
		a.shutdown()
	}
	_, err := fmt.Fprintf(w, "\"ok\"\n")
	if err != nil {
		a.log.Warn(fmt.Sprintf("could not write response: %s", err))
		return
	}
}

// @Summary	Get renderer statistics
// @Router		/api/stats [get]
// @Tags		base
// @Produce	json
// @Success	200	{object}	stats.Snapshot
func (a *Api) getStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	err := encoder.Encode(a.Stats.Snapshot())
	if err != nil {
		http.Error(w, fmt.Sprintf("could encode stats: %s", err), http.StatusInternalServerError)
		return
	}
}

// ServeInBackground starts the API if it is configured and returns nil
// otherwise.
func ServeInBackground(cfg *config.ApiCfg, frames FrameSource, st *stats.Stats, shutdown func()) *Api {
	if cfg == nil {
		return nil
	}
	theApi := New(cfg, frames, st, shutdown)

	theApi.log.Info(fmt.Sprintf("starting web server on %s", cfg.Bind))
	go func() {
		err := theApi.Serve()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			theApi.log.Error(fmt.Sprintf("web server stopped: %s", err))
			if shutdown != nil {
				shutdown()
			}
		}
	}()
	return theApi
}
