// Package daemon serves battery and SMC state over a unix socket while the
// cycling loop runs.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/config"
	"github.com/battcycle/battcycle/pkg/cycle"
	"github.com/battcycle/battcycle/pkg/events"
	"github.com/battcycle/battcycle/pkg/history"
	"github.com/battcycle/battcycle/pkg/powersource"
	"github.com/battcycle/battcycle/pkg/smc"
)

const DefaultSocketPath = "/var/run/battcycle.sock"

// StatusSource provides the cycling loop state.
type StatusSource interface {
	Status() cycle.Status
}

// HistorySource provides stored readings.
type HistorySource interface {
	Recent(limit int) ([]history.Reading, error)
}

// Options wires the server to the rest of the program. Status, History and
// Events may be nil, in which case their endpoints answer 503.
type Options struct {
	Config       config.Config
	SMC          smc.KeyReadWriter
	Fetch        func() powersource.BatteryInfo
	SystemCharge func() (float64, error)
	Status       StatusSource
	History      HistorySource
	Events       *events.EventHub
}

type Server struct {
	opts   Options
	router *gin.Engine
}

func New(opts Options) *Server {
	if opts.Fetch == nil {
		opts.Fetch = powersource.FetchBatteryInfo
	}
	if opts.SystemCharge == nil {
		opts.SystemCharge = powersource.SystemCharge
	}
	if opts.SMC == nil {
		opts.SMC = smc.Default()
	}

	s := &Server{opts: opts}
	s.router = s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", s.getStatus)
	router.GET("/battery", s.getBattery)
	router.GET("/smc/:key", s.getSMCKey)
	router.PUT("/smc/:key", s.setSMCKey)
	router.GET("/history", s.getHistory)
	router.GET("/config", s.getConfig)
	router.GET("/events", s.streamEvents)
	router.GET("/version", getVersion)

	return router
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on unixSocketPath until ctx is done, then shuts the server
// down and removes the socket.
func (s *Server) Serve(ctx context.Context, unixSocketPath string, allowNonRoot bool) error {
	// A stale socket from a crashed run would make Listen fail.
	if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "failed to remove stale socket %s", unixSocketPath)
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}
	defer func() {
		if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("failed to remove socket %s: %v", unixSocketPath, err)
		}
	}()

	if allowNonRoot || (s.opts.Config != nil && s.opts.Config.AllowNonRootAccess()) {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		if err := os.Chmod(unixSocketPath, 0777); err != nil {
			_ = l.Close()
			return pkgerrors.Wrapf(err, "failed to change permissions of %s", unixSocketPath)
		}
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		// Event streams end with ctx instead of holding Shutdown open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		errc <- srv.Serve(l)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return pkgerrors.Wrap(err, "failed to shutdown http server")
	}

	return nil
}
