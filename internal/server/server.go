// Package server exposes the sandboxed filesystem service over HTTP, with a
// websocket stream for download events.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/getsiphon/siphonfs/internal/api/middleware"
	"github.com/getsiphon/siphonfs/internal/config"
	"github.com/getsiphon/siphonfs/internal/events"
	"github.com/getsiphon/siphonfs/internal/fs"
	"github.com/getsiphon/siphonfs/internal/infrastructure/monitoring"
	"github.com/getsiphon/siphonfs/internal/jobs"
	"github.com/getsiphon/siphonfs/internal/logging"
	"github.com/getsiphon/siphonfs/internal/native/local"
)

// Server wires the service and its HTTP surface together.
type Server struct {
	router  *gin.Engine
	svc     *fs.Service
	bus     *events.Bus
	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics
	promReg *prometheus.Registry
	httpSrv *http.Server
}

// NewServer builds the full dependency graph from configuration. It fails
// fast when the application identifier is missing.
func NewServer(cfg *config.Config) (*Server, error) {
	var log *logging.Logger
	if cfg.Logging.Development {
		log = logging.NewDevelopment()
	} else {
		log = logging.NewDefault()
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(promReg)
	bus := events.NewBus()

	client := local.New(bus, log, local.Options{
		Timeout:    time.Duration(cfg.Download.TimeoutSeconds) * time.Second,
		RetryCount: cfg.Download.RetryCount,
	})

	registry := jobs.NewRegistry(events.Fanout{bus}, log)
	svc := fs.NewService(policy, client, registry, log, metrics)

	log.Info("sandboxed filesystem service initialized",
		zap.String("app_id", cfg.App.ID),
		zap.String("platform", string(cfg.Platform())),
		zap.String("caches_root", svc.CachesDirectoryPath()),
		zap.String("documents_root", svc.DocumentDirectoryPath()),
	)

	s := &Server{
		svc:     svc,
		bus:     bus,
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		promReg: promReg,
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	if !s.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(nil))
	router.Use(middleware.RateLimit(s.cfg.RateLimit))
	router.Use(monitoring.Middleware(s.metrics))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	{
		v1.GET("/roots", s.handleRoots)

		v1.GET("/fs/dir", s.handleReadDir)
		v1.GET("/fs/names", s.handleReaddir)
		v1.GET("/fs/stat", s.handleStat)
		v1.GET("/fs/exists", s.handleExists)
		v1.GET("/fs/file", s.handleReadFile)
		v1.PUT("/fs/file", s.handleWriteFile)
		v1.DELETE("/fs/file", s.handleUnlink)
		v1.POST("/fs/move", s.handleMove)
		v1.POST("/fs/mkdir", s.handleMkdir)

		v1.POST("/downloads", s.handleDownload)
		v1.DELETE("/downloads/:id", s.handleStopDownload)
		v1.GET("/downloads/:id/events", s.handleDownloadEvents)
	}

	return router
}

// Run serves until the context is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.Server.Host + ":" + s.cfg.Server.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Close()
	case err := <-errCh:
		return err
	}
}

// Close drains in-flight requests and shuts the server down.
func (s *Server) Close() error {
	if s.httpSrv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info("shutting down")
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
