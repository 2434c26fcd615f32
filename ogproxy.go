// Package ogproxy is a crawler-aware edge router that fronts a single-page
// application. Crawler traffic gets synthesized OGP documents, sitemaps, and
// feeds built from a REST content store; everything else is transparently
// proxied to the origin.
package ogproxy

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// App wires the classifier, content store, prober, forwarder, and renderers
// behind a single Echo server.
type App struct {
	Config Config
	Echo   *echo.Echo

	pages      *PageSet
	classifier *Classifier
	store      *Store
	prober     *Prober
	forwarder  *Forwarder
}

// New creates an App with the given configuration. Call Start to validate
// the config, build the pipeline, and begin serving.
func New(cfg Config) *App {
	return &App{Config: cfg, Echo: echo.New()}
}

// Start validates configuration, builds the request pipeline, and serves.
// It blocks until the server stops.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Site.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) init() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	a.pages = DefaultPages(a.Config.Site)
	a.classifier = NewClassifier(a.Config, a.pages)
	a.store = NewStore(a.Config.ContentStore)
	a.store.SetLogger(a.Echo.Logger)
	a.prober = NewProber(a.Config.Probe)
	forwarder, err := NewForwarder(a.Config.Origin)
	if err != nil {
		return err
	}
	a.forwarder = forwarder

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	// robots.txt is generated here, ahead of the catch-all, so the ".txt"
	// asset rule never sees it.
	e.Any("/robots.txt", a.handleRobots)
	e.Any("/*", a.handleEdge)
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}
