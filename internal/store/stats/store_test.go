package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
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

type statsFixture struct {
	store *Store
	bus   *events.Bus
	calls atomic.Int32
	fail  atomic.Bool
}

func newStatsFixture(t *testing.T) *statsFixture {
	t.Helper()
	f := &statsFixture{}

	mux := http.NewServeMux()
	mux.HandleFunc(constants.APIBasePath+"/predictions/dashboard", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if f.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"aggregation failed"}`))
			return
		}
		json.NewEncoder(w).Encode(models.DashboardStats{
			Scope:            "organization",
			TotalCompanies:   12,
			TotalPredictions: 40,
			HighRiskCount:    3,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := transport.New(srv.URL, 5*time.Second, nil, nil)
	f.bus = events.NewBus()
	f.store = NewStore(api.NewDashboardService(client), f.bus, nil)
	return f
}

func TestFetchServesCacheInsideTTL(t *testing.T) {
	f := newStatsFixture(t)

	first, err := f.store.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 12, first.TotalCompanies)

	_, err = f.store.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load(), "repeated fetches inside the TTL hit the cache")

	_, err = f.store.Fetch(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load(), "force bypasses the cache")
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	f := newStatsFixture(t)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.store.Fetch(context.Background(), false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestPredictionMutationInvalidatesCache(t *testing.T) {
	f := newStatsFixture(t)

	_, err := f.store.Fetch(context.Background(), false)
	require.NoError(t, err)

	f.bus.Publish(constants.EventPredictionsChanged, nil)

	_, err = f.store.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load(), "a prediction change must drop the cached stats")
}

func TestFetchErrorIsRecordedAndRecoverable(t *testing.T) {
	f := newStatsFixture(t)
	f.fail.Store(true)

	_, err := f.store.Fetch(context.Background(), false)
	require.Error(t, err)
	assert.NotEmpty(t, f.store.LastError())

	f.fail.Store(false)
	stats, err := f.store.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 40, stats.TotalPredictions)
	assert.Empty(t, f.store.LastError())
}
