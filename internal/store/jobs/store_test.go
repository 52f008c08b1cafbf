package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/store/events"
	"github.com/accunode/accunode-go/pkg/constants"
)

func testJob(id string, status constants.JobStatus) *models.Job {
	return &models.Job{
		ID:        id,
		FileName:  "companies.xlsx",
		Type:      constants.PredictionAnnual,
		Status:    status,
		TotalRows: 100,
		CreatedAt: time.Now(),
	}
}

func TestUpdateFromAPIMovesStatusForwardOnly(t *testing.T) {
	s := NewStore(nil, nil, nil, nil)
	t.Cleanup(s.Close)
	s.Track(testJob("j1", constants.JobStatusProcessing))

	// A stale pending snapshot must not regress the status.
	keep := s.UpdateFromAPI(&models.Job{ID: "j1", Status: constants.JobStatusPending, Progress: 10})
	assert.True(t, keep)
	job, _ := s.Job("j1")
	assert.Equal(t, constants.JobStatusProcessing, job.Status)

	keep = s.UpdateFromAPI(&models.Job{ID: "j1", Status: constants.JobStatusCompleted, Progress: 100})
	assert.False(t, keep, "a terminal job needs no more polling")
	job, _ = s.Job("j1")
	assert.Equal(t, constants.JobStatusCompleted, job.Status)

	// Terminal is final: a later snapshot cannot move it.
	s.UpdateFromAPI(&models.Job{ID: "j1", Status: constants.JobStatusProcessing})
	job, _ = s.Job("j1")
	assert.Equal(t, constants.JobStatusCompleted, job.Status)
}

func TestProgressNeverDecreases(t *testing.T) {
	s := NewStore(nil, nil, nil, nil)
	t.Cleanup(s.Close)
	s.Track(testJob("j1", constants.JobStatusProcessing))

	s.UpdateFromAPI(&models.Job{ID: "j1", Status: constants.JobStatusProcessing, Progress: 60})
	s.UpdateFromAPI(&models.Job{ID: "j1", Status: constants.JobStatusProcessing, Progress: 40})

	job, _ := s.Job("j1")
	assert.Equal(t, float64(60), job.Progress)
}

func TestNoTimerSurvivesTerminalState(t *testing.T) {
	s := NewStore(nil, nil, nil, nil)
	t.Cleanup(s.Close)
	s.Track(testJob("j1", constants.JobStatusProcessing))

	s.mu.Lock()
	_, hadTimer := s.timers["j1"]
	s.mu.Unlock()
	require.True(t, hadTimer)

	s.UpdateFromAPI(&models.Job{ID: "j1", Status: constants.JobStatusFailed, Message: "model error"})

	s.mu.Lock()
	_, hasTimer := s.timers["j1"]
	s.mu.Unlock()
	assert.False(t, hasTimer, "a finished job must not be polled again")

	// Tracking an already-terminal job never schedules a poll.
	s.Track(testJob("j2", constants.JobStatusCompleted))
	s.mu.Lock()
	_, hasTimer = s.timers["j2"]
	s.mu.Unlock()
	assert.False(t, hasTimer)
}

func TestCloseStopsScheduling(t *testing.T) {
	s := NewStore(nil, nil, nil, nil)
	s.Track(testJob("j1", constants.JobStatusProcessing))
	s.Close()

	s.mu.Lock()
	timerCount := len(s.timers)
	s.mu.Unlock()
	assert.Zero(t, timerCount)

	s.Track(testJob("j2", constants.JobStatusPending))
	_, tracked := s.Job("j2")
	assert.False(t, tracked, "a closed store accepts no new jobs")
}

func TestResetOnLogoutEvent(t *testing.T) {
	bus := events.NewBus()
	s := NewStore(nil, nil, bus, nil)
	t.Cleanup(s.Close)
	s.Track(testJob("j1", constants.JobStatusProcessing))

	bus.Publish(constants.EventAuthLogout, nil)
	assert.Empty(t, s.Jobs())
	s.mu.Lock()
	assert.Empty(t, s.timers)
	s.mu.Unlock()
}

func TestJobsNewestFirst(t *testing.T) {
	s := NewStore(nil, nil, nil, nil)
	old := testJob("old", constants.JobStatusCompleted)
	old.CreatedAt = time.Now().Add(-time.Hour)
	s.Track(old)
	s.Track(testJob("new", constants.JobStatusCompleted))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "new", jobs[0].ID)
}

func TestInitialDelayFromEstimate(t *testing.T) {
	// 9-minute estimate: first poll at a third, steady polls at a quarter.
	job := &models.Job{EstimatedMinutes: 9}
	assert.Equal(t, 3*time.Minute, initialDelay(job))
	assert.Equal(t, 135*time.Second, pollInterval(job))

	// Tiny estimates clamp to the floors.
	job = &models.Job{EstimatedMinutes: 0.1}
	assert.Equal(t, constants.PollMinInitialDelay, initialDelay(job))
	assert.Equal(t, constants.PollMinInterval, pollInterval(job))
}

func TestRowHeuristicWithoutEstimate(t *testing.T) {
	assert.Equal(t, constants.PollSmallJobInterval, pollInterval(&models.Job{TotalRows: 10}))
	assert.Equal(t, constants.PollMediumJobInterval, pollInterval(&models.Job{TotalRows: 500}))
	assert.Equal(t, constants.PollLargeJobInterval, pollInterval(&models.Job{TotalRows: 5000}))
}
