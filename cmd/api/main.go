package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"patient-portal-api/internal/platform/config"
	"patient-portal-api/internal/platform/logger"
	"patient-portal-api/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// todavía no hay logger configurado
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "patient-portal-api",
	})

	h, err := router.NewRouter(router.Options{Cfg: cfg, Log: log})
	if err != nil {
		log.Error("router init failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	log.Info("shutting down", nil)
	_ = srv.Close()
}
