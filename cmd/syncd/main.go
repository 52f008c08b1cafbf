// syncd keeps one authenticated session against the AccuNode platform API and
// serves read-mostly views of the prediction, job, and dashboard stores over
// HTTP to local consumers.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accunode/accunode-go/internal/app"
	"github.com/accunode/accunode-go/internal/server"
	"github.com/accunode/accunode-go/pkg/logger"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer a.Close()

	metrics := server.NewMetrics()
	router := server.NewRouter(&a.Cfg.Server, a.AuthStore, a.PredStore, a.JobStore, a.StatStore, metrics, a.Log)

	errCh := make(chan error, 1)
	go func() { errCh <- router.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			a.Log.Error(context.Background(), "server failed", err)
			os.Exit(1)
		}
	case sig := <-quit:
		a.Log.Info(context.Background(), "shutting down", logger.Fields{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Shutdown(ctx); err != nil {
		a.Log.Error(ctx, "shutdown failed", err)
	}
}
