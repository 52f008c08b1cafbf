// Package predictions caches the fetched prediction lists. Four partitions
// are held in disjoint slices: user-annual, user-quarterly, system-annual,
// system-quarterly. The user and system partitions are never merged — a
// personal-scope user must never see system aggregate data labeled as their
// own, so every filter operation stays strictly on one side of that boundary.
package predictions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/store/events"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/logger"
)

// RoleSource supplies the caller's current role. The auth store implements
// it; tests use a stub.
type RoleSource interface {
	Role() constants.Role
}

// FetchOptions controls a Fetch call.
type FetchOptions struct {
	// IncludeSystem additionally fetches the system-wide partition (the
	// "system" tab). Ignored for super-admins, who only ever see system data.
	IncludeSystem bool

	// Force bypasses the cache window.
	Force bool
}

// Store is the predictions cache. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	userAnnual      []models.Prediction
	userQuarterly   []models.Prediction
	systemAnnual    []models.Prediction
	systemQuarterly []models.Prediction

	// fetchedAt tracks freshness per partition key ("user/annual", ...)
	fetchedAt map[string]time.Time

	// isFetching dedupes overlapping fetches of the same partition
	isFetching map[string]bool

	activeFilter constants.DataFilter
	lastError    string

	svc   *api.PredictionsService
	roles RoleSource
	bus   *events.Bus
	log   logger.Logger
}

// NewStore builds the predictions store and wires it to reset on logout and
// session expiry.
func NewStore(svc *api.PredictionsService, roles RoleSource, bus *events.Bus, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Store{
		fetchedAt:    make(map[string]time.Time),
		isFetching:   make(map[string]bool),
		activeFilter: "",
		svc:          svc,
		roles:        roles,
		bus:          bus,
		log:          log.WithComponent("predictions-store"),
	}
	if bus != nil {
		bus.Subscribe(constants.EventAuthLogout, func(events.Event) { s.Reset() })
		bus.Subscribe(constants.EventSessionExpired, func(events.Event) { s.Reset() })
	}
	return s
}

// ================================================================================
// Fetching
// ================================================================================

// Fetch loads the partitions the caller's role needs for the given type.
// A super-admin only ever fetches system-wide lists; other roles fetch their
// own lists and, when the system view is requested, the system lists too.
// Partitions fetched within the cache window are not refetched unless Force
// is set or the partition is empty.
func (s *Store) Fetch(ctx context.Context, typ constants.PredictionType, opts FetchOptions) error {
	superAdmin := s.roles != nil && s.roles.Role() == constants.RoleSuperAdmin

	if superAdmin {
		return s.fetchPartition(ctx, typ, true, opts.Force)
	}
	if err := s.fetchPartition(ctx, typ, false, opts.Force); err != nil {
		return err
	}
	if opts.IncludeSystem {
		return s.fetchPartition(ctx, typ, true, opts.Force)
	}
	return nil
}

func (s *Store) fetchPartition(ctx context.Context, typ constants.PredictionType, system, force bool) error {
	key := partitionKey(typ, system)

	s.mu.Lock()
	if s.isFetching[key] {
		s.mu.Unlock()
		return nil // an identical fetch is already in flight
	}
	if !force && !s.partitionEmptyLocked(typ, system) &&
		time.Since(s.fetchedAt[key]) < constants.PredictionsCacheWindow {
		s.mu.Unlock()
		return nil
	}
	s.isFetching[key] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isFetching[key] = false
		s.mu.Unlock()
	}()

	var (
		list *api.PredictionList
		err  error
	)
	if system {
		list, err = s.svc.ListSystem(ctx, typ)
	} else {
		list, err = s.svc.List(ctx, typ)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastError = err.Error()
		s.log.Warn(ctx, "prediction fetch failed",
			logger.Fields{"partition": key, "error": err.Error()})
		return err
	}
	s.lastError = ""
	s.setPartitionLocked(typ, system, list.Items)
	s.fetchedAt[key] = time.Now()
	s.log.Debug(ctx, "partition refreshed",
		logger.Fields{"partition": key, "count": len(list.Items)})
	return nil
}

// ================================================================================
// Filtering
// ================================================================================

// SetDataFilter sets the active view filter. A super-admin is always pinned
// to the system filter; any other value is coerced back.
func (s *Store) SetDataFilter(filter constants.DataFilter) {
	if s.roles != nil && s.roles.Role() == constants.RoleSuperAdmin {
		filter = constants.FilterSystem
	}
	s.mu.Lock()
	s.activeFilter = filter
	s.mu.Unlock()
}

// ActiveFilter returns the effective filter, falling back to the role default
// when none has been set.
func (s *Store) ActiveFilter() constants.DataFilter {
	s.mu.RLock()
	filter := s.activeFilter
	s.mu.RUnlock()
	if filter == "" {
		return s.DefaultFilter()
	}
	if s.roles != nil && s.roles.Role() == constants.RoleSuperAdmin {
		return constants.FilterSystem
	}
	return filter
}

// DefaultFilter returns the starting filter for the current role: system for
// a super-admin (always), organization for org-level roles, personal
// otherwise.
func (s *Store) DefaultFilter() constants.DataFilter {
	if s.roles == nil {
		return constants.FilterPersonal
	}
	role := s.roles.Role()
	switch {
	case role == constants.RoleSuperAdmin:
		return constants.FilterSystem
	case role.AtLeast(constants.RoleOrgMember):
		return constants.FilterOrganization
	default:
		return constants.FilterPersonal
	}
}

// Filtered returns the predictions of the given type visible under the
// active filter. The system filter returns exactly the system partition;
// every other filter draws only from the user partition.
func (s *Store) Filtered(typ constants.PredictionType) []models.Prediction {
	filter := s.ActiveFilter()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter == constants.FilterSystem {
		return copySlice(s.systemPartitionLocked(typ))
	}

	user := s.userPartitionLocked(typ)
	if filter == constants.FilterAll {
		return copySlice(user)
	}

	var access constants.OrganizationAccess
	switch filter {
	case constants.FilterPersonal:
		access = constants.AccessPersonal
	case constants.FilterOrganization:
		access = constants.AccessOrganization
	}
	out := make([]models.Prediction, 0)
	for _, p := range user {
		if p.OrganizationAccess == access {
			out = append(out, p)
		}
	}
	return out
}

// SortedByProbability returns the filtered list ordered by default
// probability, highest risk first.
func (s *Store) SortedByProbability(typ constants.PredictionType) []models.Prediction {
	out := s.Filtered(typ)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DefaultProbability > out[j].DefaultProbability
	})
	return out
}

// SortedByPeriod returns the filtered list ordered by reporting period,
// newest first.
func (s *Store) SortedByPeriod(typ constants.PredictionType) []models.Prediction {
	out := s.Filtered(typ)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Period() > out[j].Period()
	})
	return out
}

// ================================================================================
// Mutations
// ================================================================================

// Add inserts a prediction at the head of the partition selected by the
// prediction's own organization_access field, then publishes
// predictions.changed.
func (s *Store) Add(p models.Prediction) {
	s.mu.Lock()
	target := s.partitionRefLocked(p.Type, p.IsSystem())
	*target = append([]models.Prediction{p}, *target...)
	s.mu.Unlock()
	s.publishChanged()
}

// Replace swaps the cached entry with the same id. Used after an edit, where
// the server returns the replacement record. Both sides are searched since
// the id space is server-global.
func (s *Store) Replace(p models.Prediction) {
	s.mu.Lock()
	replaced := replaceByID(s.partitionRefLocked(p.Type, false), p) ||
		replaceByID(s.partitionRefLocked(p.Type, true), p)
	s.mu.Unlock()
	if replaced {
		s.publishChanged()
	}
}

// Remove deletes the prediction by id from both the user and system lists.
// Defensive on both sides: the id space is assumed server-global.
func (s *Store) Remove(typ constants.PredictionType, id string) {
	s.mu.Lock()
	removed := removeByID(s.partitionRefLocked(typ, false), id)
	removed = removeByID(s.partitionRefLocked(typ, true), id) || removed
	s.mu.Unlock()
	if removed {
		s.publishChanged()
	}
}

// Reset drops every partition and freshness marker. Runs on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userAnnual = nil
	s.userQuarterly = nil
	s.systemAnnual = nil
	s.systemQuarterly = nil
	s.fetchedAt = make(map[string]time.Time)
	s.isFetching = make(map[string]bool)
	s.activeFilter = ""
	s.lastError = ""
}

// LastError returns the most recent non-fatal fetch error, empty when the
// last fetch succeeded.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// ================================================================================
// Internals
// ================================================================================

func (s *Store) publishChanged() {
	if s.bus != nil {
		s.bus.Publish(constants.EventPredictionsChanged, nil)
	}
}

func partitionKey(typ constants.PredictionType, system bool) string {
	if system {
		return "system/" + string(typ)
	}
	return "user/" + string(typ)
}

func (s *Store) partitionRefLocked(typ constants.PredictionType, system bool) *[]models.Prediction {
	switch {
	case system && typ == constants.PredictionQuarterly:
		return &s.systemQuarterly
	case system:
		return &s.systemAnnual
	case typ == constants.PredictionQuarterly:
		return &s.userQuarterly
	default:
		return &s.userAnnual
	}
}

func (s *Store) userPartitionLocked(typ constants.PredictionType) []models.Prediction {
	if typ == constants.PredictionQuarterly {
		return s.userQuarterly
	}
	return s.userAnnual
}

func (s *Store) systemPartitionLocked(typ constants.PredictionType) []models.Prediction {
	if typ == constants.PredictionQuarterly {
		return s.systemQuarterly
	}
	return s.systemAnnual
}

func (s *Store) partitionEmptyLocked(typ constants.PredictionType, system bool) bool {
	return len(*s.partitionRefLocked(typ, system)) == 0
}

func (s *Store) setPartitionLocked(typ constants.PredictionType, system bool, items []models.Prediction) {
	*s.partitionRefLocked(typ, system) = items
}

func copySlice(in []models.Prediction) []models.Prediction {
	out := make([]models.Prediction, len(in))
	copy(out, in)
	return out
}

func replaceByID(list *[]models.Prediction, p models.Prediction) bool {
	for i := range *list {
		if (*list)[i].ID == p.ID {
			(*list)[i] = p
			return true
		}
	}
	return false
}

func removeByID(list *[]models.Prediction, id string) bool {
	for i := range *list {
		if (*list)[i].ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
