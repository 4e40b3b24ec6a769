package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/cache"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/config"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/httpapi"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/ledger"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/session"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/store"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/store/memory"
	pgstore "github.com/Wesllen-Vinicius/controle-producao-sub001/internal/store/postgres"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/pkg/logger"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid security configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback", zap.Error(err))
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Info("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		log.Info("repository: in-memory")
	}

	balanceCache := cache.BalanceCache(cache.NoopBalanceCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisBalanceCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, using noop cache", zap.Error(err))
		} else {
			balanceCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Info("cache: redis")
		}
	} else {
		log.Info("cache: noop")
	}

	sess := session.New(domain.Actor{})
	svc := ledger.New(repo, balanceCache, sess, logger.Named(log, "ledger"))
	if report := svc.Refresh(ctx); report.Err() != nil {
		// Served state degrades gracefully; a later /refresh can recover it.
		log.Warn("initial load incomplete", zap.Error(report.Err()))
	}

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("production ledger listening", zap.String("addr", cfg.Address()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}

	svc.Close()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn("close error", zap.Error(err))
		}
	}

	log.Info("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
