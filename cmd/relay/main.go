package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"aircast/internal/core/services"
	httphandlers "aircast/internal/handlers/http"
	"aircast/internal/infrastructure/middleware"
	"aircast/internal/infrastructure/monitoring"
	"aircast/internal/infrastructure/repositories/memory"
	signalserver "aircast/internal/infrastructure/signal"
	"aircast/pkg/config"
	"aircast/pkg/logger"
	"aircast/pkg/tracing"

	"github.com/gin-gonic/gin"
	webrtc "github.com/pion/webrtc/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// A missing file is fine (defaults apply); an unreadable or invalid one
	// is not.
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		stdlog.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	// Tracing (no-op unless enabled)
	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}
	defer tp.Shutdown(context.Background())

	// All broadcast state is process-local; the relay is explicitly
	// single-process.
	cameraRepo := memory.NewMemoryCameraRepository()
	directorRepo := memory.NewMemoryDirectorRepository()
	viewerRepo := memory.NewMemoryViewerRepository()

	conns := signalserver.NewConnManager(cfg.Signal.WriteTimeout, log)

	membershipService := services.NewMembershipService(cameraRepo, directorRepo, viewerRepo, conns, log)
	feedService := services.NewFeedService(directorRepo, viewerRepo, conns, log)
	relayService := services.NewRelayService(conns, log)

	collector := monitoring.NewCollector()

	wsOpts := signalserver.ServerOptions{
		AllowedOrigins: cfg.Signal.AllowedOrigins,
		PingInterval:   cfg.Signal.PingInterval,
		PongTimeout:    cfg.Signal.PongTimeout,
		WriteTimeout:   cfg.Signal.WriteTimeout,
	}
	if cfg.RateLimiting.Enabled {
		wsOpts.MessagesPerSecond = cfg.RateLimiting.WebSocket.MessagesPerSecond
		wsOpts.Burst = cfg.RateLimiting.WebSocket.Burst
		wsOpts.MaxMessageSize = cfg.RateLimiting.WebSocket.MaxMessageSizeBytes
	}
	wsServer := signalserver.NewWebSocketServer(conns, membershipService, feedService, relayService, collector, wsOpts, log)

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("signal", func(ctx context.Context) (bool, error) {
		return conns.Count() >= 0, nil
	}, cfg.Server.ReadTimeout)

	var iceServers []webrtc.ICEServer
	for _, s := range cfg.WebRTC.ICEServers {
		iceServers = append(iceServers, webrtc.ICEServer{URLs: s.URLs})
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	broadcastHandler := httphandlers.NewBroadcastHandler(membershipService, conns, healthChecker, iceServers)
	broadcastHandler.SetupRoutes(router)

	router.GET(cfg.Signal.Path, gin.WrapF(wsServer.HandleWebSocket))

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infow("starting relay server",
			"address", cfg.Server.Address,
			"signal_path", cfg.Signal.Path,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
