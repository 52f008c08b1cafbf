// Package stats caches the role-scoped dashboard aggregates with a short
// TTL. Prediction mutations invalidate the cache through the event bus, so
// the summary cards stay eventually consistent with the prediction lists
// without polling.
package stats

import (
	"context"
	"sync"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/store/events"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/logger"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "dashboard"

// Store is the dashboard stats store. Safe for concurrent use.
type Store struct {
	svc   *api.DashboardService
	cache *gocache.Cache
	group singleflight.Group
	log   logger.Logger

	mu        sync.RWMutex
	lastError string
}

// NewStore builds the stats store and wires cache invalidation to prediction
// mutations and logout.
func NewStore(svc *api.DashboardService, bus *events.Bus, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Store{
		svc:   svc,
		cache: gocache.New(constants.DashboardStatsTTL, constants.DashboardStatsTTL),
		log:   log.WithComponent("stats-store"),
	}
	if bus != nil {
		bus.Subscribe(constants.EventPredictionsChanged, func(events.Event) { s.Invalidate() })
		bus.Subscribe(constants.EventAuthLogout, func(events.Event) { s.Invalidate() })
		bus.Subscribe(constants.EventSessionExpired, func(events.Event) { s.Invalidate() })
	}
	return s
}

// Fetch returns the dashboard aggregates. Inside the TTL window the cached
// copy is served without a network call unless force is set. Concurrent
// cache misses coalesce into one request.
func (s *Store) Fetch(ctx context.Context, force bool) (*models.DashboardStats, error) {
	if !force {
		if cached, ok := s.cache.Get(cacheKey); ok {
			return cached.(*models.DashboardStats), nil
		}
	}

	result, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		stats, err := s.svc.Stats(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.SetDefault(cacheKey, stats)
		return stats, nil
	})

	s.mu.Lock()
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn(ctx, "dashboard stats fetch failed", logger.Fields{"error": err.Error()})
		return nil, err
	}
	return result.(*models.DashboardStats), nil
}

// Invalidate drops the cached aggregates; the next Fetch goes to the server.
func (s *Store) Invalidate() {
	s.cache.Delete(cacheKey)
}

// LastError returns the most recent non-fatal fetch error.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}
