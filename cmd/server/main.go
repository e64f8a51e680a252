package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cenvorto/internal/auth"
	"cenvorto/internal/chain"
	"cenvorto/internal/config"
	"cenvorto/internal/game"
	"cenvorto/internal/logger"
	"cenvorto/internal/reward"
	"cenvorto/internal/server"
	"cenvorto/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	logger.Initialize(logger.Configuration{
		LogFile: cfg.LogFile,
		Level:   cfg.LogLevel,
		Console: cfg.LogConsole,
	})
	logger.Info("starting cenvorto", zap.String("env", cfg.Env))

	store, err := storage.NewSqliteStorage(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("opening database", zap.Error(err))
	}

	registry, err := chain.NewRegistry(cfg.Chains)
	if err != nil {
		logger.Fatal("loading chain table", zap.Error(err))
	}
	logger.Info("chain table loaded", zap.Uint64s("chains", registry.ChainIDs()))

	if cfg.OperatorKey == "" {
		logger.Fatal("operator_key must be configured")
	}
	client, err := chain.NewEvmClient(registry, cfg.OperatorKey, cfg.TxWaitTimeout)
	if err != nil {
		logger.Fatal("building chain client", zap.Error(err))
	}

	rounds := game.NewRoundStore()
	engine := game.NewEngine(store, rounds)
	bridge := reward.NewBridge(client, store, rounds)
	handshake := auth.NewHandshake()

	srv := server.New(cfg, engine, store, bridge, handshake)
	if err := srv.Run(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
