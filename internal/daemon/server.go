package daemon

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/controllers/tenancy"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/middleware"
	"github.com/openkcm/tenancy/internal/registry"
	"github.com/openkcm/tenancy/internal/repo/sql"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 30 * time.Second
	IdleTimeout       = 120 * time.Second
	ServerLogDomain   = "server daemon"

	MetricsPath = "/metrics"
)

type TenancyServer struct {
	cfg     *config.Config
	server  *http.Server
	Manager *manager.TenantManager
}

type Server interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

type serverOptions struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	managerOps []manager.Option
}

type ServerOption func(*serverOptions)

// WithRegistry sets where the lifecycle metrics are registered and served from.
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(o *serverOptions) {
		o.registerer = reg
		o.gatherer = reg
	}
}

func WithManagerOptions(opts ...manager.Option) ServerOption {
	return func(o *serverOptions) {
		o.managerOps = append(o.managerOps, opts...)
	}
}

func NewTenancyServer(
	cfg *config.Config,
	dbCon *multitenancy.DB,
	opts ...ServerOption,
) (*TenancyServer, error) {
	o := &serverOptions{
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(o)
	}

	metrics, err := manager.NewMetrics(o.registerer)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "registering metrics")
	}

	repo := sql.NewRepository(dbCon)
	mgr := manager.NewTenantManager(repo, cfg.Tenancy, append([]manager.Option{manager.WithMetrics(metrics)}, o.managerOps...)...)

	handler := NewHandler(cfg, registry.New(repo), tenancy.NewAPIController(mgr))

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", handler)

	return &TenancyServer{
		cfg:     cfg,
		Manager: mgr,
		server: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           mux,
			ReadHeaderTimeout: ReadHeaderTimeout,
			ReadTimeout:       ReadTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
		},
	}, nil
}

// NewHandler builds the API handler with its middleware chain.
func NewHandler(cfg *config.Config, reg *registry.Registry, ctr *tenancy.APIController) http.Handler {
	mux := NewServeMux("")

	RegisterRoutes(mux, ctr,
		middleware.InjectMultiTenancy(cfg.Tenancy),
		middleware.BindTenantScope(reg),
	)

	// Middlewares are applied from the last to the first, so
	// InjectRequestID runs first
	var handler http.Handler = mux
	for _, mw := range []func(http.Handler) http.Handler{
		middleware.ClientDataMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.PanicRecoveryMiddleware(),
		middleware.InjectRequestID(),
	} {
		handler = mw(handler)
	}

	return handler
}

// Handler returns the root handler serving the API and metrics.
func (s *TenancyServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *TenancyServer) Start(ctx context.Context) error {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server encountered an error", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()

	return nil
}

func (s *TenancyServer) Close(ctx context.Context) error {
	shutdownCtx, shutdownRelease := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	err := s.server.Shutdown(shutdownCtx)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	log.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
