package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/coursewave/service-auth-go/internal/auth"
	"github.com/coursewave/service-auth-go/internal/auth/repo"
	"github.com/coursewave/service-auth-go/internal/mail"
	"github.com/coursewave/service-auth-go/internal/router"
	"github.com/coursewave/service-auth-go/pkg/database"
	"github.com/coursewave/service-auth-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-auth-go")

	// auth config fails fast when the signing secret is missing
	authCfg, err := auth.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("auth config: %v", err)
	}

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	// wire the auth subsystem
	userRepo := repo.NewUserRepo(sqlxDB)
	if err := userRepo.EnsureTable(context.Background()); err != nil {
		sugar.Fatalf("ensure users table: %v", err)
	}
	tokens := auth.NewTokenIssuer(authCfg.JWTSecret)
	mailer := mail.NewSMTPMailer(mail.ConfigFromEnv())
	svc := auth.NewService(userRepo, nil, tokens, mailer, authCfg)
	transport := auth.SessionTransport{Secure: authCfg.SecureCookies, TTL: authCfg.TokenTTL}
	guard := auth.CsrfGuard{}
	handler := auth.NewHandler(svc, guard, transport, sugar)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Info("service is running; press Ctrl+C to stop")

	addr := os.Getenv("AUTH_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8000"
	}

	// mount http server
	srv := &http.Server{
		Addr: addr,
		Handler: router.RegisterRoutes(sugar, router.Deps{
			Handler:   handler,
			Tokens:    tokens,
			Transport: transport,
			Guard:     guard,
		}),
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// ping db once more
	if err := sqlDB.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
