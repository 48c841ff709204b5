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

	"restaurant/configs"
	"restaurant/routes"
	"restaurant/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := configs.NewLogger(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	// DB
	db, err := configs.ConnectionDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database failed")
	}
	if err := configs.SetupDatabase(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	if err := configs.ProvisionAdmin(cfg, services.NewCredentialService(cfg.BcryptCost), log); err != nil {
		log.Fatal().Err(err).Msg("provision admin failed")
	}

	app := routes.NewApp(routes.Deps{DB: db, Config: cfg, Log: log})
	if n, err := app.Auth.PruneSessions(); err != nil {
		log.Error().Err(err).Msg("prune sessions")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("pruned expired sessions")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
