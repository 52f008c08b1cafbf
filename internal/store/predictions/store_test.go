package predictions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/store/events"
	"github.com/accunode/accunode-go/internal/transport"
	"github.com/accunode/accunode-go/pkg/constants"
)

type stubRoles struct{ role constants.Role }

func (s stubRoles) Role() constants.Role { return s.role }

func pred(id string, access constants.OrganizationAccess, prob float64) models.Prediction {
	return models.Prediction{
		ID:                 id,
		StockSymbol:        "SYM-" + id,
		Type:               constants.PredictionAnnual,
		ReportingYear:      2025,
		DefaultProbability: prob,
		OrganizationAccess: access,
	}
}

type predFixture struct {
	store       *Store
	bus         *events.Bus
	userCalls   atomic.Int32
	systemCalls atomic.Int32
}

func newPredFixture(t *testing.T, role constants.Role) *predFixture {
	t.Helper()
	f := &predFixture{}

	mux := http.NewServeMux()
	mux.HandleFunc(constants.APIBasePath+"/predictions/annual", func(w http.ResponseWriter, r *http.Request) {
		f.userCalls.Add(1)
		json.NewEncoder(w).Encode(api.PredictionList{Items: []models.Prediction{
			pred("p1", constants.AccessPersonal, 0.02),
			pred("o1", constants.AccessOrganization, 0.09),
		}})
	})
	mux.HandleFunc(constants.APIBasePath+"/predictions/annual/system", func(w http.ResponseWriter, r *http.Request) {
		f.systemCalls.Add(1)
		json.NewEncoder(w).Encode(api.PredictionList{Items: []models.Prediction{
			pred("s1", constants.AccessSystem, 0.05),
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := transport.New(srv.URL, 5*time.Second, nil, nil)
	f.bus = events.NewBus()
	f.store = NewStore(api.NewPredictionsService(client), stubRoles{role: role}, f.bus, nil)
	return f
}

func TestAddRoutesByOrganizationAccess(t *testing.T) {
	s := NewStore(nil, stubRoles{role: constants.RoleUser}, nil, nil)

	s.Add(pred("mine", constants.AccessPersonal, 0.01))
	s.Add(pred("sys", constants.AccessSystem, 0.03))

	// System-access records land in the system partition, never the user one.
	assert.Len(t, s.userAnnual, 1)
	assert.Len(t, s.systemAnnual, 1)
	assert.Equal(t, "mine", s.userAnnual[0].ID)
	assert.Equal(t, "sys", s.systemAnnual[0].ID)
}

func TestAddInsertsAtHead(t *testing.T) {
	s := NewStore(nil, stubRoles{role: constants.RoleUser}, nil, nil)
	s.Add(pred("first", constants.AccessPersonal, 0.01))
	s.Add(pred("second", constants.AccessPersonal, 0.02))
	require.Len(t, s.userAnnual, 2)
	assert.Equal(t, "second", s.userAnnual[0].ID)
}

func TestSystemFilterReturnsSystemPartitionExactly(t *testing.T) {
	s := NewStore(nil, stubRoles{role: constants.RoleOrgMember}, nil, nil)
	s.Add(pred("mine", constants.AccessPersonal, 0.01))
	s.Add(pred("org", constants.AccessOrganization, 0.02))
	s.Add(pred("sys1", constants.AccessSystem, 0.03))
	s.Add(pred("sys2", constants.AccessSystem, 0.04))

	s.SetDataFilter(constants.FilterSystem)
	got := s.Filtered(constants.PredictionAnnual)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, constants.AccessSystem, p.OrganizationAccess)
	}
}

func TestPersonalAndOrganizationFiltersStayOnUserSide(t *testing.T) {
	s := NewStore(nil, stubRoles{role: constants.RoleOrgMember}, nil, nil)
	s.Add(pred("mine", constants.AccessPersonal, 0.01))
	s.Add(pred("org", constants.AccessOrganization, 0.02))
	s.Add(pred("sys", constants.AccessSystem, 0.03))

	s.SetDataFilter(constants.FilterPersonal)
	got := s.Filtered(constants.PredictionAnnual)
	require.Len(t, got, 1)
	assert.Equal(t, "mine", got[0].ID)

	s.SetDataFilter(constants.FilterOrganization)
	got = s.Filtered(constants.PredictionAnnual)
	require.Len(t, got, 1)
	assert.Equal(t, "org", got[0].ID)

	// "all" means all of the user's own data, never the system partition.
	s.SetDataFilter(constants.FilterAll)
	got = s.Filtered(constants.PredictionAnnual)
	assert.Len(t, got, 2)
}

func TestSuperAdminPinnedToSystemFilter(t *testing.T) {
	s := NewStore(nil, stubRoles{role: constants.RoleSuperAdmin}, nil, nil)

	assert.Equal(t, constants.FilterSystem, s.ActiveFilter())
	s.SetDataFilter(constants.FilterPersonal)
	assert.Equal(t, constants.FilterSystem, s.ActiveFilter())
}

func TestDefaultFilterByRole(t *testing.T) {
	assert.Equal(t, constants.FilterPersonal,
		NewStore(nil, stubRoles{role: constants.RoleUser}, nil, nil).DefaultFilter())
	assert.Equal(t, constants.FilterOrganization,
		NewStore(nil, stubRoles{role: constants.RoleOrgMember}, nil, nil).DefaultFilter())
	assert.Equal(t, constants.FilterOrganization,
		NewStore(nil, stubRoles{role: constants.RoleTenantAdmin}, nil, nil).DefaultFilter())
	assert.Equal(t, constants.FilterSystem,
		NewStore(nil, stubRoles{role: constants.RoleSuperAdmin}, nil, nil).DefaultFilter())
}

func TestFetchHonorsCacheWindow(t *testing.T) {
	f := newPredFixture(t, constants.RoleUser)

	require.NoError(t, f.store.Fetch(context.Background(), constants.PredictionAnnual, FetchOptions{}))
	require.NoError(t, f.store.Fetch(context.Background(), constants.PredictionAnnual, FetchOptions{}))
	assert.Equal(t, int32(1), f.userCalls.Load(), "a fresh partition must not refetch")

	require.NoError(t, f.store.Fetch(context.Background(), constants.PredictionAnnual, FetchOptions{Force: true}))
	assert.Equal(t, int32(2), f.userCalls.Load())
}

func TestSuperAdminFetchesOnlySystem(t *testing.T) {
	f := newPredFixture(t, constants.RoleSuperAdmin)

	require.NoError(t, f.store.Fetch(context.Background(), constants.PredictionAnnual, FetchOptions{}))
	assert.Equal(t, int32(0), f.userCalls.Load())
	assert.Equal(t, int32(1), f.systemCalls.Load())

	got := f.store.Filtered(constants.PredictionAnnual)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
}

func TestFetchIncludeSystemLoadsBothPartitions(t *testing.T) {
	f := newPredFixture(t, constants.RoleOrgAdmin)

	require.NoError(t, f.store.Fetch(context.Background(), constants.PredictionAnnual, FetchOptions{IncludeSystem: true}))
	assert.Equal(t, int32(1), f.userCalls.Load())
	assert.Equal(t, int32(1), f.systemCalls.Load())
}

func TestReplaceAndRemoveSearchBothSides(t *testing.T) {
	var changed atomic.Int32
	bus := events.NewBus()
	bus.Subscribe(constants.EventPredictionsChanged, func(events.Event) { changed.Add(1) })

	s := NewStore(nil, stubRoles{role: constants.RoleUser}, bus, nil)
	s.Add(pred("a", constants.AccessPersonal, 0.01))
	s.Add(pred("b", constants.AccessSystem, 0.02))
	changed.Store(0)

	updated := pred("b", constants.AccessSystem, 0.2)
	s.Replace(updated)
	assert.Equal(t, 0.2, s.systemAnnual[0].DefaultProbability)
	assert.Equal(t, int32(1), changed.Load())

	s.Remove(constants.PredictionAnnual, "a")
	assert.Empty(t, s.userAnnual)
	assert.Equal(t, int32(2), changed.Load())

	// Removing an unknown id publishes nothing.
	s.Remove(constants.PredictionAnnual, "missing")
	assert.Equal(t, int32(2), changed.Load())
}

func TestSortedByProbabilityHighestFirst(t *testing.T) {
	s := NewStore(nil, stubRoles{role: constants.RoleUser}, nil, nil)
	s.Add(pred("low", constants.AccessPersonal, 0.01))
	s.Add(pred("high", constants.AccessPersonal, 0.30))
	s.Add(pred("mid", constants.AccessPersonal, 0.10))
	s.SetDataFilter(constants.FilterPersonal)

	got := s.SortedByProbability(constants.PredictionAnnual)
	require.Len(t, got, 3)
	assert.Equal(t, "high", got[0].ID)
	assert.Equal(t, "low", got[2].ID)
}

func TestResetOnLogoutEvent(t *testing.T) {
	f := newPredFixture(t, constants.RoleUser)
	require.NoError(t, f.store.Fetch(context.Background(), constants.PredictionAnnual, FetchOptions{}))
	require.NotEmpty(t, f.store.Filtered(constants.PredictionAnnual))

	f.bus.Publish(constants.EventAuthLogout, nil)
	assert.Empty(t, f.store.Filtered(constants.PredictionAnnual))

	// After reset the next fetch goes back to the network.
	require.NoError(t, f.store.Fetch(context.Background(), constants.PredictionAnnual, FetchOptions{}))
	assert.Equal(t, int32(2), f.userCalls.Load())
}
