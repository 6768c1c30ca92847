package restspec

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gopatchy/jsrest"
	"github.com/gopatchy/potency"
	"github.com/gopatchy/selfcert"
	"github.com/julienschmidt/httprouter"
)

// App wraps an httprouter instance with the configuration and request
// pipeline that registered blueprints are mounted on.
type App struct {
	config     *Config
	router     *httprouter.Router
	potency    *potency.Potency
	converters map[string]Converter
	logger     *slog.Logger

	listener net.Listener
	srv      *http.Server

	stripPrefix RequestHook
	authBasic   RequestHook
	authBearer  RequestHook
	requestHook RequestHook
}

type (
	// RequestHook runs before routing and may replace the request.
	RequestHook func(*http.Request, *App) (*http.Request, error)
	ContextKey  int
)

const (
	ContextAuthBasicUser ContextKey = iota
	ContextAuthBearerClaims
	contextArguments
)

func NewApp(config *Config) *App {
	if config == nil {
		config = &Config{}
	}

	router := httprouter.New()

	app := &App{
		config:  config,
		router:  router,
		potency: potency.NewPotency(router),
		converters: map[string]Converter{
			"string": StringConverter{},
			"int":    IntConverter{},
			"uuid":   UUIDConverter{},
		},
		logger: slog.Default(),
		srv: &http.Server{
			ReadHeaderTimeout: 30 * time.Second,
		},
	}

	app.srv.Handler = app

	app.router.GET(
		"/_debug",
		func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) { app.handleDebug(w, r) },
	)

	return app
}

func (app *App) Config() *Config {
	return app.config
}

// RegisterConverter adds a named URL converter usable in route rules as
// <name:param>. Last registration for a name wins.
func (app *App) RegisterConverter(name string, conv Converter) {
	app.converters[name] = conv
}

func (app *App) SetStripPrefix(prefix string) {
	app.stripPrefix = func(r *http.Request, _ *App) (*http.Request, error) {
		if !strings.HasPrefix(r.URL.Path, prefix) {
			return nil, jsrest.Errorf(jsrest.ErrNotFound, "not found")
		}

		r.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)

		return r, nil
	}
}

func (app *App) SetRequestHook(hook RequestHook) {
	app.requestHook = hook
}

func (app *App) Handle(method, path string, handler httprouter.Handle) {
	app.router.Handle(method, path, handler)
}

func (app *App) Handler(method, path string, handler http.Handler) {
	app.router.Handler(method, path, handler)
}

func (app *App) HandlerFunc(method, path string, handler http.HandlerFunc) {
	app.router.HandlerFunc(method, path, handler)
}

func (app *App) ServeFiles(path string, fs http.FileSystem) {
	app.router.ServeFiles(path, fs)
}

func (app *App) ListenSelfCert(bind string) error {
	tlsConfig, err := selfcert.NewTLSConfigFromHostPort(bind)
	if err != nil {
		return err
	}

	app.listener, err = tls.Listen("tcp", bind, tlsConfig)
	if err != nil {
		return err
	}

	return nil
}

func (app *App) ListenTLS(bind, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return err
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   []string{"h2"},
	}

	app.listener, err = tls.Listen("tcp", bind, cfg)
	if err != nil {
		return err
	}

	return nil
}

func (app *App) ListenInsecure(bind string) error {
	var err error

	app.listener, err = net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	return nil
}

func (app *App) Addr() *net.TCPAddr {
	return app.listener.Addr().(*net.TCPAddr)
}

func (app *App) Serve() error {
	app.logger.Info("serving", "addr", app.listener.Addr().String())

	return app.srv.Serve(app.listener)
}

func (app *App) Shutdown(ctx context.Context) error {
	return app.srv.Shutdown(ctx)
}

func (app *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := app.serveHTTP(w, r)
	if err != nil {
		jsrest.WriteError(w, err)
	}
}

func (app *App) serveHTTP(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")

	err := r.ParseForm()
	if err != nil {
		return jsrest.Errorf(jsrest.ErrBadRequest, "parse form failed (%w)", err)
	}

	if app.stripPrefix != nil {
		r, err = app.stripPrefix(r, app)
		if err != nil {
			return jsrest.Errorf(jsrest.ErrNotFound, "strip prefix failed (%w)", err)
		}
	}

	if app.authBasic != nil {
		r, err = app.authBasic(r, app)
		if err != nil {
			return jsrest.Errorf(jsrest.ErrUnauthorized, "basic authentication failed (%w)", err)
		}
	}

	if app.authBearer != nil {
		r, err = app.authBearer(r, app)
		if err != nil {
			return jsrest.Errorf(jsrest.ErrUnauthorized, "bearer authentication failed (%w)", err)
		}
	}

	if app.requestHook != nil {
		r, err = app.requestHook(r, app)
		if err != nil {
			return jsrest.Errorf(jsrest.ErrInternalServerError, "request hook failed (%w)", err)
		}
	}

	app.potency.ServeHTTP(w, r)

	return nil
}
