package cllwa

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/advdv/bhttp"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App is a Lambda Web Adapter HTTP service.
type App struct {
	fx *fx.App
}

// Option configures NewApp.
type Option func(*appOptions)

type appOptions struct {
	fxOptions     []fx.Option
	healthHandler HandlerFunc
}

// WithAWSClient provides an AWS SDK client, created from the instrumented aws.Config,
// for injection by type.
func WithAWSClient[T any](factory func(cfg aws.Config) *T) Option {
	return func(o *appOptions) {
		o.fxOptions = append(o.fxOptions, AWSClientProvider(factory))
	}
}

// WithFx adds fx options such as providers for handlers and repositories.
func WithFx(opts ...fx.Option) Option {
	return func(o *appOptions) {
		o.fxOptions = append(o.fxOptions, opts...)
	}
}

// WithHealthHandler replaces the default readiness check handler.
func WithHealthHandler(h HandlerFunc) Option {
	return func(o *appOptions) {
		o.healthHandler = h
	}
}

// WithHealthHandlerFrom replaces the default readiness check handler with one
// taken from a provided dependency, e.g. a handler struct built by fx.
func WithHealthHandlerFrom[T any](fn func(dep T) HandlerFunc) Option {
	return func(o *appOptions) {
		o.fxOptions = append(o.fxOptions, fx.Provide(
			fx.Annotate(fn, fx.ResultTags(`name:"cllwa_health"`)),
		))
	}
}

type healthIn struct {
	fx.In
	Handler HandlerFunc `name:"cllwa_health" optional:"true"`
}

// NewApp builds an app whose routes are registered by routing, an fx invoke
// function taking *Mux followed by any provided dependency:
//
//	cllwa.NewApp[Env](func(m *cllwa.Mux, h *Handlers) {
//	    m.HandleFunc("GET /items", h.List)
//	})
func NewApp[E Environment](routing any, opts ...Option) *App {
	options := &appOptions{healthHandler: defaultHealthHandler}
	for _, opt := range opts {
		opt(options)
	}

	fxOpts := []fx.Option{
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(NewLogger),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(provideAWSConfig),
		fx.Provide(NewMux),
		fx.Provide(newServer),
	}
	fxOpts = append(fxOpts, options.fxOptions...)
	fxOpts = append(fxOpts,
		fx.Invoke(func(mux *Mux, logger *zap.Logger) {
			mux.Use(RequestLogging(logger))
		}),
		fx.Invoke(func(mux *Mux, env Environment, in healthIn) {
			health := options.healthHandler
			if in.Handler != nil {
				health = in.Handler
			}
			mux.HandleFunc("GET "+env.readinessCheckPath(), health)
		}),
		fx.Invoke(routing),
		fx.Invoke(func(*http.Server) {}),
	)

	return &App{fx: fx.New(fxOpts...)}
}

// Run starts the app and blocks until a termination signal is received.
func (a *App) Run() {
	a.fx.Run()
}

// Start starts the app and blocks until ctx is done, then stops it.
func (a *App) Start(ctx context.Context) error {
	if err := a.fx.Start(ctx); err != nil {
		return errors.Wrap(err, "start app")
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.fx.Stop(stopCtx)
}

// Err returns the error fx encountered while building the dependency graph.
func (a *App) Err() error {
	return a.fx.Err()
}

func newServer(
	lc fx.Lifecycle,
	env Environment,
	mux *Mux,
	tp trace.TracerProvider,
	prop propagation.TextMapPropagator,
	logger *zap.Logger,
) *http.Server {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(env.port())),
		Handler:           withTracing(tp, prop, env.serviceName(), env.readinessCheckPath())(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", srv.Addr)
			}
			logger.Info("http server started", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func defaultHealthHandler(_ context.Context, w bhttp.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
