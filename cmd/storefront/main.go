// Package main запускает HTTP-сервер витрины доставки еды.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/storefront/internal/config"
	"github.com/mmeshcher/storefront/internal/events"
	"github.com/mmeshcher/storefront/internal/handler"
	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/repository"
	"github.com/mmeshcher/storefront/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	// Денежные суммы отдаются в JSON числами.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	payments := payment.NewClient(cfg.PaymentGatewayAddress, cfg.PaymentKeyID, cfg.PaymentKeySecret)
	if !payments.Configured() {
		sugar.Warn("payment gateway credentials not set, online payments use mock orders")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	if cfg.AuthSecret == "" {
		sugar.Warn("auth secret not set, sessions and rider links will not survive restart")
	}

	svc := service.NewService(repo, payments, events.NewHub(), authMiddleware, cfg.Brand)
	defer svc.Close()

	if cfg.AdminLogin != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := svc.EnsureFranchiseAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword)
		cancel()
		if err != nil {
			sugar.Fatalw("create franchise admin", "error", err.Error())
		}
	}

	h := handler.NewHandler(svc, logger, authMiddleware)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress, "brand", cfg.Brand)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
