// Package app wires the client stack: config, logger, event bus, transport
// client, API services, and the four stores. Both binaries build the same
// graph; they differ only in the surface they put on top of it.
package app

import (
	"github.com/redis/go-redis/v9"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/config"
	"github.com/accunode/accunode-go/internal/store/auth"
	"github.com/accunode/accunode-go/internal/store/events"
	"github.com/accunode/accunode-go/internal/store/jobs"
	"github.com/accunode/accunode-go/internal/store/predictions"
	"github.com/accunode/accunode-go/internal/store/stats"
	"github.com/accunode/accunode-go/internal/transport"
	"github.com/accunode/accunode-go/pkg/logger"
)

// App is the assembled client.
type App struct {
	Cfg *config.Config
	Log logger.Logger
	Bus *events.Bus

	Client *transport.Client

	Auth          *api.AuthService
	Users         *api.UsersService
	Predictions   *api.PredictionsService
	JobsAPI       *api.JobsService
	Dashboard     *api.DashboardService
	Organizations *api.OrganizationsService
	Tenants       *api.TenantsService

	AuthStore *auth.Store
	PredStore *predictions.Store
	JobStore  *jobs.Store
	StatStore *stats.Store

	redisClient *redis.Client
}

// New loads configuration and assembles the full client graph.
func New() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, log)
}

// NewWithConfig assembles the client graph from an already-loaded config.
func NewWithConfig(cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	a := &App{Cfg: cfg, Log: log, Bus: events.NewBus()}

	// The client and the auth store depend on each other: requests draw
	// tokens from the store, the store logs in through the client. Build the
	// client token-less first, then close the loop.
	a.Client = transport.New(cfg.API.BaseURL, cfg.API.HTTPTimeout(), nil, log)

	a.Auth = api.NewAuthService(a.Client)
	a.Users = api.NewUsersService(a.Client)
	a.Predictions = api.NewPredictionsService(a.Client)
	a.JobsAPI = api.NewJobsService(a.Client)
	a.Dashboard = api.NewDashboardService(a.Client)
	a.Organizations = api.NewOrganizationsService(a.Client)
	a.Tenants = api.NewTenantsService(a.Client)

	persist, err := a.buildSessionStore()
	if err != nil {
		return nil, err
	}

	a.AuthStore = auth.NewStore(a.Auth, a.Users, persist, a.Bus, log)
	a.Client.SetTokenSource(a.AuthStore)

	a.PredStore = predictions.NewStore(a.Predictions, a.AuthStore, a.Bus, log)
	a.JobStore = jobs.NewStore(a.JobsAPI, a.Predictions, a.Bus, log)
	a.StatStore = stats.NewStore(a.Dashboard, a.Bus, log)

	return a, nil
}

func (a *App) buildSessionStore() (auth.SessionStore, error) {
	switch a.Cfg.Session.Backend {
	case "redis":
		a.redisClient = redis.NewClient(&redis.Options{
			Addr:     a.Cfg.Session.Redis.Addr,
			Password: a.Cfg.Session.Redis.Password,
			DB:       a.Cfg.Session.Redis.DB,
		})
		return auth.NewRedisStore(a.redisClient), nil
	default:
		return auth.NewFileStore(a.Cfg.Session.Path), nil
	}
}

// Close stops background polling and releases connections.
func (a *App) Close() error {
	a.JobStore.Close()
	if a.redisClient != nil {
		return a.redisClient.Close()
	}
	return nil
}
