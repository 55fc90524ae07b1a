// Package server hosts ownership network sessions over HTTP. Clients create
// a session, stream pointer, touch and view events to it and poll its
// state; the layout runs on the server.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ha1tch/reseau/pkg/config"
	"github.com/ha1tch/reseau/pkg/logger"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
	"github.com/ha1tch/reseau/pkg/physics"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// Source loads the dataset new sessions are built from.
type Source func(ctx context.Context) (medias.Dataset, error)

// Options configures a Server.
type Options struct {
	Config  *config.Config
	Source  Source
	Metrics *metrics.Registry

	// NewScheduler returns the frame scheduler of a new session. Sessions
	// use a TimerScheduler at their profile's frame interval when nil.
	NewScheduler func() physics.Scheduler
}

// App is the state shared by every request.
type App struct {
	Config       *config.Config
	Sessions     *Store
	Metrics      *metrics.Registry
	NewScheduler func() physics.Scheduler

	source  Source
	mu      sync.Mutex
	dataset *medias.Dataset
}

// Dataset returns the cached dataset, loading it on first use or when
// refresh is set. A failed load is not cached.
func (a *App) Dataset(ctx context.Context, refresh bool) (medias.Dataset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dataset != nil && !refresh {
		return *a.dataset, nil
	}
	if a.source == nil {
		return medias.Dataset{}, nil
	}
	ds, err := a.source(ctx)
	if err != nil {
		return medias.Dataset{}, err
	}
	a.dataset = &ds
	return ds, nil
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}

// MetricsMiddleware records every request by route pattern.
func MetricsMiddleware(reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			reg.RecordHTTPRequest(c.Request().Method, c.Path(), strconv.Itoa(status), time.Since(start))
			return err
		}
	}
}

// Server is the HTTP host.
type Server struct {
	echo *echo.Echo
	app  *App
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	app := &App{
		Config:       opts.Config,
		Sessions:     NewStore(opts.Metrics),
		Metrics:      opts.Metrics,
		NewScheduler: opts.NewScheduler,
		source:       opts.Source,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if opts.Metrics != nil {
		e.Use(MetricsMiddleware(opts.Metrics))
	}

	RegisterRoutes(e, opts.Metrics, opts.Config.Serve.Metrics)

	return &Server{echo: e, app: app}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Sessions returns the session store.
func (s *Server) Sessions() *Store { return s.app.Sessions }

// Run serves on addr until ctx is done, then shuts down and closes every
// session.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		s.app.Sessions.CloseAll()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.echo.Shutdown(shutdownCtx)
	s.app.Sessions.CloseAll()
	if err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
	return err
}
