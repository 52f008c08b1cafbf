// Package server exposes the synced client state over HTTP. syncd keeps one
// authenticated session against the platform API and serves read-mostly views
// of the prediction, job, and dashboard stores to local consumers.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/accunode/accunode-go/internal/config"
	"github.com/accunode/accunode-go/internal/store/auth"
	"github.com/accunode/accunode-go/internal/store/jobs"
	"github.com/accunode/accunode-go/internal/store/predictions"
	"github.com/accunode/accunode-go/internal/store/stats"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/logger"
)

// Router owns the gin engine and the HTTP server lifecycle.
type Router struct {
	engine *gin.Engine
	server *http.Server
	cfg    *config.ServerConfig
	log    logger.Logger

	authStore *auth.Store
	predStore *predictions.Store
	jobStore  *jobs.Store
	statStore *stats.Store
}

// NewRouter assembles the engine, middleware, and routes.
func NewRouter(cfg *config.ServerConfig, authStore *auth.Store, predStore *predictions.Store, jobStore *jobs.Store, statStore *stats.Store, metrics *Metrics, log logger.Logger) *Router {
	if log == nil {
		log = logger.NewNopLogger()
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r := &Router{
		engine:    engine,
		cfg:       cfg,
		log:       log.WithComponent("server"),
		authStore: authStore,
		predStore: predStore,
		jobStore:  jobStore,
		statStore: statStore,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.engine.GET("/healthz", r.handleHealth)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.engine.Group("/v1")
	{
		v1.GET("/session", r.handleSession)

		v1.GET("/predictions", r.handlePredictions)
		v1.POST("/predictions/refresh", r.handlePredictionsRefresh)
		v1.PUT("/predictions/filter", r.handleSetFilter)

		v1.GET("/jobs", r.handleJobs)
		v1.GET("/jobs/:id", r.handleJob)
		v1.GET("/jobs/:id/results.csv", r.handleJobResults)

		v1.GET("/dashboard", r.handleDashboard)
	}
}

// Start runs the HTTP server until the listener fails or Shutdown is called.
func (r *Router) Start() error {
	addr := fmt.Sprintf("%s:%d", r.cfg.Host, r.cfg.Port)
	r.server = &http.Server{
		Addr:         addr,
		Handler:      r.engine,
		ReadTimeout:  time.Duration(r.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(r.cfg.WriteTimeout) * time.Second,
	}
	r.log.Info(context.Background(), "http server listening", logger.Fields{"addr": addr})
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (r *Router) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}

// Engine exposes the underlying engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
