package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cenvorto/internal/auth"
	"cenvorto/internal/config"
	"cenvorto/internal/game"
	"cenvorto/internal/logger"
	"cenvorto/internal/reward"
	"cenvorto/internal/storage"
)

// Route constants
const (
	RouteWords          = "/words"
	RouteRandomWord     = "/words/random"
	RouteCheckGuess     = "/words/check"
	RouteWinner         = "/winner"
	RouteLeaderboard    = "/leaderboard"
	RouteAuthNonce      = "/auth/nonce"
	RouteAuthVerify     = "/auth/verify"
	RouteAuthDisconnect = "/auth/disconnect"
	RouteHealthz        = "/healthz"
	RouteMetrics        = "/metrics"
)

// Server owns the HTTP surface and the wiring between the handshake, the
// round engine, the reward bridge, and durable storage.
type Server struct {
	cfg       *config.Config
	engine    *game.Engine
	store     storage.Storage
	bridge    *reward.Bridge
	handshake *auth.Handshake
	metrics   *Metrics
	startTime time.Time

	limiterMap   map[string]*rate.Limiter
	limiterMutex sync.Mutex
}

func New(cfg *config.Config, engine *game.Engine, store storage.Storage, bridge *reward.Bridge, handshake *auth.Handshake) *Server {
	return &Server{
		cfg:        cfg,
		engine:     engine,
		store:      store,
		bridge:     bridge,
		handshake:  handshake,
		metrics:    NewMetrics(),
		startTime:  time.Now(),
		limiterMap: make(map[string]*rate.Limiter),
	}
}

// Router assembles the gin engine with all middleware and routes.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression))
	router.Use(noStoreMiddleware())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logger.Warn("failed to set trusted proxies", zap.Error(err))
	}

	router.POST(RouteWords, s.rateLimitMiddleware(), s.wordsCreateHandler)
	router.GET(RouteRandomWord, s.randomWordHandler)
	router.POST(RouteCheckGuess, s.rateLimitMiddleware(), s.checkGuessHandler)
	router.POST(RouteWinner, s.rateLimitMiddleware(), s.winnerHandler)
	router.GET(RouteLeaderboard, s.leaderboardGetHandler)
	router.POST(RouteLeaderboard, s.rateLimitMiddleware(), s.leaderboardPostHandler)

	router.POST(RouteAuthNonce, s.rateLimitMiddleware(), s.authNonceHandler)
	router.POST(RouteAuthVerify, s.rateLimitMiddleware(), s.authVerifyHandler)
	router.POST(RouteAuthDisconnect, s.rateLimitMiddleware(), s.authDisconnectHandler)

	router.GET(RouteHealthz, s.healthzHandler)
	router.GET(RouteMetrics, gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	return router
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logger.Info("shutdown signal received, shutting down gracefully")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("server starting", zap.String("addr", s.cfg.Addr))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	<-idleConnsClosed
	logger.Info("server shutdown complete")
	return nil
}
