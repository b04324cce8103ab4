package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/api"
	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/logger"
	"meal-planner/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	rt, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer rt.Close()

	var opts api.Options
	var bot *telegram.Bot
	if cfg.TelegramEnabled() {
		sessions := telegram.NewSessionRepository(rt.DB.SQL)
		bot, err = telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramWebhookURL, rt.App, sessions, cfg.AllowedUserIDs, log)
		if err != nil {
			log.Fatal("failed to initialize telegram bot", zap.Error(err))
		}
		if n, err := sessions.CleanupExpired(ctx, time.Now()); err != nil {
			log.Warn("failed to clean up bot sessions", zap.Error(err))
		} else if n > 0 {
			log.Info("expired bot sessions removed", zap.Int64("sessions", n))
		}
		opts.Webhook = bot
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewServer(rt.App, log, opts),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.Bool("telegram", bot != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if bot != nil {
		bot.Wait()
	}
	log.Info("server exiting")
}
