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

	"github.com/joho/godotenv"
	"github.com/nidhogg/wabot/internal/api"
	"github.com/nidhogg/wabot/internal/command"
	"github.com/nidhogg/wabot/internal/config"
	"github.com/nidhogg/wabot/internal/gateway"
	msgrouter "github.com/nidhogg/wabot/internal/router"
	"github.com/nidhogg/wabot/internal/translate"
	"github.com/nidhogg/wabot/internal/tts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting WaBot...", zap.String("bot", cfg.Bot.Name))
	for _, name := range cfg.MissingSecrets() {
		logger.Warn("required secret is not set", zap.String("env", name))
	}

	timeout := cfg.Server.HTTPTimeout.Duration

	// Translation, optionally cached in Redis
	var translator translate.Translator = translate.NewClient(translate.Config{
		BaseURL: cfg.Translate.BaseURL,
		APIKey:  cfg.Translate.APIKey,
		Timeout: timeout,
	}, logger)
	if cfg.Redis.URL != "" {
		rdb, rErr := translate.NewRedisClient(context.Background(), cfg.Redis.URL)
		if rErr != nil {
			logger.Warn("Redis unavailable, running without translation cache", zap.Error(rErr))
		} else {
			defer rdb.Close()
			translator = translate.NewCache(translator, rdb, cfg.Translate.CacheTTL.Duration, logger)
			logger.Info("Translation cache enabled")
		}
	}
	synth := tts.NewGoogleTTS(cfg.TTS.BaseURL)

	// Commands are registered once here and only read afterwards.
	profile := command.Profile{
		BotName:    cfg.Bot.Name,
		Creator:    cfg.Bot.Creator,
		ChannelURL: cfg.Bot.ChannelURL,
		GroupURL:   cfg.Bot.GroupURL,
	}
	registry := command.NewRegistry()
	command.RegisterBuiltins(registry, profile, translator, synth, logger)
	dispatcher := command.NewDispatcher(registry, logger)

	// Initialize gateway
	gw := gateway.NewGateway(logger)

	// Adapters look the handler up per message, so order here is free.
	msgRouter := msgrouter.New(gw, dispatcher, profile, logger)
	gw.SetHandler(msgRouter.Handle)

	whatsapp := gateway.NewWhatsAppAdapter(gateway.WhatsAppConfig{
		Token:         cfg.WhatsApp.Token,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		VerifyToken:   cfg.WhatsApp.VerifyToken,
		APIURL:        cfg.WhatsApp.APIURL,
		APIVersion:    cfg.WhatsApp.APIVersion,
		Timeout:       timeout,
	}, logger)
	gw.Register(whatsapp)

	restAdapter := gateway.NewRESTAdapter(logger)
	gw.Register(restAdapter)

	if err := gw.ConnectAll(context.Background()); err != nil {
		logger.Warn("some gateway adapters failed to connect", zap.Error(err))
	}

	handler := api.NewHandler(whatsapp, restAdapter, gw, cfg.Bot.Name, logger)

	port := fmt.Sprintf("%d", cfg.Server.Port)
	if port == "0" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("WaBot listening", zap.String("port", port))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down WaBot...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	gw.Close()
}

// newLogger returns a development logger unless running in production.
func newLogger(cfg *config.Config) *zap.Logger {
	var zc zap.Config
	if cfg.Production() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.Server.LogLevel); err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zc.Build()
	if err != nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}
