package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ericfisherdev/codeconvert/internal/adapter/driven/gemini"
	"github.com/ericfisherdev/codeconvert/internal/adapter/driven/jwtauth"
	"github.com/ericfisherdev/codeconvert/internal/adapter/driven/password"
	httphandler "github.com/ericfisherdev/codeconvert/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/codeconvert/internal/adapter/driving/web"
	"github.com/ericfisherdev/codeconvert/internal/application"
	"github.com/ericfisherdev/codeconvert/internal/config"
	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
	"github.com/ericfisherdev/codeconvert/internal/logging"
)

// setup loads configuration and installs the process logger.
func setup(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func migrateOnly(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.closeLogged(logger)

	if err := st.migrate(); err != nil {
		return err
	}
	logger.Info("migrations applied", "backend", st.backend)
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	// 1. Load configuration (fail fast on missing secret or bad values).
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"env", cfg.Env,
		"gemini_model", cfg.GeminiModel,
		"stream_timeout", cfg.StreamTimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the credential store and apply migrations.
	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.closeLogged(logger)

	if err := st.migrate(); err != nil {
		return err
	}
	logger.Info("migrations applied", "backend", st.backend)

	// 4. Session and password primitives.
	codec, err := jwtauth.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}
	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	// 5. Completion provider. Without a key the server still serves auth and
	// reports conversions as unavailable.
	var completer driven.Completer
	if cfg.HasGeminiCredentials() {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:            cfg.GeminiAPIKey,
			Model:             cfg.GeminiModel,
			BaseURL:           cfg.GeminiBaseURL,
			RequestsPerSecond: cfg.UpstreamRPS,
			Burst:             cfg.UpstreamBurst,
		})
		if err != nil {
			return err
		}
		completer = client
		logger.Info("gemini client created", "model", client.Model())
	} else {
		logger.Warn("no Gemini API key configured, conversions are disabled")
	}

	// 6. Application services.
	authSvc := application.NewAuthService(st.users, codec, hasher, logger)
	converterSvc := application.NewConverterService(completer, cfg.StreamTimeout, logger)
	healthSvc := application.NewHealthService(st.users, converterSvc)

	// 7. HTTP routes: API plus the embedded client.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(authSvc, converterSvc, healthSvc, cfg.IsProduction(), cfg.AllowedOrigin, logger)
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler, err := webhandler.NewHandler(logger)
	if err != nil {
		return err
	}
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, cfg.AllowedOrigin, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.StreamTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	// 8. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	// 9. Graceful shutdown; in-flight conversions get the remaining drain window.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
