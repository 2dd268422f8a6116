package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geoframe/internal/config"
	logpkg "github.com/kailas-cloud/geoframe/internal/logger"
	"github.com/kailas-cloud/geoframe/internal/metrics"
	chiTransport "github.com/kailas-cloud/geoframe/internal/transport/chi"
	conversionuc "github.com/kailas-cloud/geoframe/internal/usecase/conversion"
	healthuc "github.com/kailas-cloud/geoframe/internal/usecase/health"
	selfcheckuc "github.com/kailas-cloud/geoframe/internal/usecase/selfcheck"
	"github.com/kailas-cloud/geoframe/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting geoframe server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("surface", cfg.Surface.Type),
		zap.Float64("latitude_deg", cfg.Reference.LatitudeDeg),
		zap.Float64("longitude_deg", cfg.Reference.LongitudeDeg),
		zap.Float64("heading_deg", cfg.Reference.HeadingDeg),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterConversionMetrics()
	metrics.RegisterHTTPMetrics()

	// Build the shared transformer — composition root
	convSvc := conversionuc.New(cfg.BuildTransformer(logger), logger)

	probes := make([]r3.Vector, 0, len(cfg.SelfCheck.Probes))
	for _, p := range cfg.SelfCheck.Probes {
		probes = append(probes, r3.Vector{X: p.X, Y: p.Y, Z: p.Z})
	}
	selfCheck := selfcheckuc.New(convSvc, probes, cfg.SelfCheck.ToleranceM, logger)

	// Verify the frame once before serving
	failed := 0
	for _, err := range selfCheck.Run(context.Background()) {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Warn("Startup self-check reported failures", zap.Int("failed", failed))
	} else {
		logger.Info("Startup self-check passed", zap.Int("probes", len(probes)))
	}

	healthSvc := healthuc.New(selfCheck)

	// Create chi server
	server := chiTransport.NewServer(convSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware(server.Operations()))
	r.Use(chiTransport.BearerAuthMiddleware(chiTransport.AuthOptions{
		APIKeys:      cfg.Auth.APIKeys,
		ExemptPaths:  cfg.Auth.ExemptPaths,
		ProtectReads: cfg.Auth.ProtectReads,
	}, logger))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
