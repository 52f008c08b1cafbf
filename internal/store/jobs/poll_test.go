package jobs

import (
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

type pollFixture struct {
	store *Store
	bus   *events.Bus

	statusFail   atomic.Bool
	status       atomic.Value // constants.JobStatus
	detailsCalls atomic.Int32
}

func newPollFixture(t *testing.T) *pollFixture {
	t.Helper()
	f := &pollFixture{}
	f.status.Store(constants.JobStatusProcessing)

	mux := http.NewServeMux()
	mux.HandleFunc(constants.APIBasePath+"/jobs/j1", func(w http.ResponseWriter, r *http.Request) {
		if f.statusFail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(models.Job{
			ID:       "j1",
			Status:   f.status.Load().(constants.JobStatus),
			Progress: 50,
		})
	})
	mux.HandleFunc(constants.APIBasePath+"/jobs/j1/details", func(w http.ResponseWriter, r *http.Request) {
		f.detailsCalls.Add(1)
		json.NewEncoder(w).Encode(models.Job{
			ID:     "j1",
			Status: constants.JobStatusCompleted,
			Results: []models.JobResultRow{
				{StockSymbol: "ACME", DefaultProbability: 0.03, RiskLevel: "low"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := transport.New(srv.URL, 5*time.Second, nil, nil)
	jobsSvc := api.NewJobsService(client)
	f.bus = events.NewBus()
	f.store = NewStore(jobsSvc, api.NewPredictionsService(client), f.bus, nil)
	t.Cleanup(f.store.Close)
	return f
}

func TestPollFailureDoublesIntervalWithoutAborting(t *testing.T) {
	f := newPollFixture(t)
	f.store.Track(testJob("j1", constants.JobStatusProcessing))

	f.store.mu.Lock()
	f.store.stopTimerLocked("j1")
	f.store.intervals["j1"] = 4 * time.Second
	f.store.mu.Unlock()

	f.statusFail.Store(true)
	f.store.poll("j1")

	f.store.mu.Lock()
	interval := f.store.intervals["j1"]
	_, rescheduled := f.store.timers["j1"]
	f.store.mu.Unlock()

	assert.Equal(t, 8*time.Second, interval)
	assert.True(t, rescheduled, "a failed poll backs off, it never stops the job")
	job, ok := f.store.Job("j1")
	require.True(t, ok)
	assert.False(t, job.Terminal())

	// A second failure doubles again.
	f.store.poll("j1")
	f.store.mu.Lock()
	assert.Equal(t, 16*time.Second, f.store.intervals["j1"])
	f.store.mu.Unlock()
}

func TestTerminalPollFetchesResultsAndPublishes(t *testing.T) {
	f := newPollFixture(t)
	var changed atomic.Bool
	f.bus.Subscribe(constants.EventPredictionsChanged, func(events.Event) { changed.Store(true) })

	f.store.Track(testJob("j1", constants.JobStatusProcessing))
	f.store.mu.Lock()
	f.store.stopTimerLocked("j1")
	f.store.mu.Unlock()

	f.status.Store(constants.JobStatusCompleted)
	f.store.poll("j1")

	job, ok := f.store.Job("j1")
	require.True(t, ok)
	assert.Equal(t, constants.JobStatusCompleted, job.Status)
	require.Len(t, job.Results, 1)
	assert.Equal(t, "ACME", job.Results[0].StockSymbol)
	assert.Equal(t, int32(1), f.detailsCalls.Load())
	assert.True(t, changed.Load(), "a completed bulk job changes the prediction lists")

	f.store.mu.Lock()
	_, hasTimer := f.store.timers["j1"]
	f.store.mu.Unlock()
	assert.False(t, hasTimer)
}
