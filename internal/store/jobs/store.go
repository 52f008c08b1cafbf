// Package jobs tracks bulk-upload jobs client-side and polls the job-status
// endpoint until each job reaches a terminal state. Each job owns its own
// timer; the next poll is scheduled only after the previous one resolves, so
// cadence is per-job and best-effort. Job records live in memory only.
package jobs

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/store/events"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/logger"
)

// Store is the job store. Safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	jobs      map[string]*models.Job
	timers    map[string]*time.Timer
	intervals map[string]time.Duration // current interval, doubled on poll failure
	closed    bool

	jobsSvc *api.JobsService
	predSvc *api.PredictionsService
	bus     *events.Bus
	log     logger.Logger
}

// NewStore builds the job store and wires it to reset on logout.
func NewStore(jobsSvc *api.JobsService, predSvc *api.PredictionsService, bus *events.Bus, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Store{
		jobs:      make(map[string]*models.Job),
		timers:    make(map[string]*time.Timer),
		intervals: make(map[string]time.Duration),
		jobsSvc:   jobsSvc,
		predSvc:   predSvc,
		bus:       bus,
		log:       log.WithComponent("job-store"),
	}
	if bus != nil {
		bus.Subscribe(constants.EventAuthLogout, func(events.Event) { s.Reset() })
		bus.Subscribe(constants.EventSessionExpired, func(events.Event) { s.Reset() })
	}
	return s
}

// StartBulkUpload submits a spreadsheet for async scoring, registers the job
// the moment the server issues an id, and begins polling.
func (s *Store) StartBulkUpload(ctx context.Context, typ constants.PredictionType, fileName string, file io.Reader, access constants.OrganizationAccess) (*models.Job, error) {
	resp, err := s.predSvc.BulkUploadAsync(ctx, typ, fileName, file, access)
	if err != nil {
		return nil, err
	}
	job := &models.Job{
		ID:               resp.JobID,
		FileName:         fileName,
		Type:             typ,
		Status:           constants.JobStatusPending,
		TotalRows:        resp.TotalRows,
		EstimatedMinutes: resp.EstimatedMinutes,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	s.Track(job)
	return job, nil
}

// Track registers a job and schedules its first poll.
func (s *Store) Track(job *models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	copied := *job
	s.jobs[job.ID] = &copied
	s.intervals[job.ID] = pollInterval(&copied)
	s.scheduleLocked(job.ID, initialDelay(&copied))
}

// Jobs returns a snapshot of every tracked job, newest first.
func (s *Store) Jobs() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Job returns a snapshot of one job.
func (s *Store) Job(id string) (models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return *j, true
}

// Cancel asks the server to stop the job and halts local polling.
func (s *Store) Cancel(ctx context.Context, id string) error {
	if err := s.jobsSvc.Cancel(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked(id)
	if j, ok := s.jobs[id]; ok && !j.Terminal() {
		j.Status = constants.JobStatusFailed
		j.Message = "cancelled"
		j.UpdatedAt = time.Now()
	}
	return nil
}

// Retry resubmits a failed job and resumes polling under the same id.
func (s *Store) Retry(ctx context.Context, id string) error {
	job, err := s.jobsSvc.Retry(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	s.jobs[id] = &copied
	s.intervals[id] = pollInterval(&copied)
	s.scheduleLocked(id, initialDelay(&copied))
	return nil
}

// UpdateFromAPI folds a polled snapshot into the tracked job. Status moves
// only forward through the monotonic state machine; a stale regression from
// the server is ignored. Returns true while the job still needs polling.
func (s *Store) UpdateFromAPI(snap *models.Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[snap.ID]
	if !ok {
		return false
	}

	if snap.Status != job.Status {
		if job.Status.CanTransitionTo(snap.Status) {
			job.Status = snap.Status
		} else {
			s.log.Debug(context.Background(), "ignoring stale status transition",
				logger.Fields{"job_id": snap.ID, "from": job.Status, "to": snap.Status})
		}
	}
	if snap.Progress > job.Progress {
		job.Progress = snap.Progress
	}
	if snap.TotalRows > 0 {
		job.TotalRows = snap.TotalRows
	}
	job.ProcessedRows = snap.ProcessedRows
	job.FailedRows = snap.FailedRows
	if snap.Message != "" {
		job.Message = snap.Message
	}
	if len(snap.Results) > 0 {
		job.Results = snap.Results
	}
	job.UpdatedAt = time.Now()

	if job.Terminal() {
		s.stopTimerLocked(snap.ID)
		return false
	}
	return true
}

// Close stops scheduling new polls. Requests already in flight are allowed to
// finish; the status GET is idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id := range s.timers {
		s.stopTimerLocked(id)
	}
}

// Reset drops every tracked job and its timers. Runs on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.stopTimerLocked(id)
	}
	s.jobs = make(map[string]*models.Job)
	s.intervals = make(map[string]time.Duration)
}

// ================================================================================
// Polling
// ================================================================================

func (s *Store) scheduleLocked(id string, delay time.Duration) {
	if s.closed {
		return
	}
	job, ok := s.jobs[id]
	if !ok || job.Terminal() {
		return
	}
	s.stopTimerLocked(id)
	s.timers[id] = time.AfterFunc(delay, func() { s.poll(id) })
}

func (s *Store) stopTimerLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Store) poll(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultHTTPTimeout)
	defer cancel()

	snap, err := s.jobsSvc.Get(ctx, id)
	if err != nil {
		// Poll failures back off by doubling, they never abort the job.
		s.mu.Lock()
		s.intervals[id] *= 2
		next := s.intervals[id]
		s.scheduleLocked(id, next)
		s.mu.Unlock()
		s.log.Warn(ctx, "job poll failed, backing off",
			logger.Fields{"job_id": id, "next_poll": next.String(), "error": err.Error()})
		return
	}

	keepPolling := s.UpdateFromAPI(snap)
	if !keepPolling {
		s.onTerminal(ctx, id)
		return
	}

	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		s.intervals[id] = pollInterval(job)
	}
	s.scheduleLocked(id, s.intervals[id])
	s.mu.Unlock()
}

// onTerminal runs once when a job finishes: completed jobs pull their result
// rows, and either outcome means the prediction lists changed server-side.
func (s *Store) onTerminal(ctx context.Context, id string) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	completed := ok && job.Status == constants.JobStatusCompleted
	haveResults := ok && len(job.Results) > 0
	s.mu.Unlock()
	if !ok {
		return
	}

	if completed && !haveResults {
		details, err := s.jobsSvc.Details(ctx, id)
		if err != nil {
			s.log.Warn(ctx, "failed to fetch job results",
				logger.Fields{"job_id": id, "error": err.Error()})
		} else {
			s.mu.Lock()
			if j, ok := s.jobs[id]; ok {
				j.Results = details.Results
				j.ProcessedRows = details.ProcessedRows
				j.FailedRows = details.FailedRows
			}
			s.mu.Unlock()
		}
	}

	s.log.Info(ctx, "job finished", logger.Fields{"job_id": id, "status": job.Status})
	if completed && s.bus != nil {
		s.bus.Publish(constants.EventPredictionsChanged, nil)
	}
}

// ================================================================================
// Interval selection
// ================================================================================

// initialDelay is the wait before the first poll: a third of the server's
// completion estimate when one exists (floor 5s), otherwise the row-count
// heuristic interval.
func initialDelay(job *models.Job) time.Duration {
	if est := job.EstimatedDuration(); est > 0 {
		d := est / constants.PollEstimateInitialDivisor
		if d < constants.PollMinInitialDelay {
			d = constants.PollMinInitialDelay
		}
		return d
	}
	return rowHeuristicInterval(job.TotalRows)
}

// pollInterval is the steady-state poll cadence: a quarter of the server's
// completion estimate when one exists (floor 10s), otherwise the row-count
// heuristic.
func pollInterval(job *models.Job) time.Duration {
	if est := job.EstimatedDuration(); est > 0 {
		d := est / constants.PollEstimateIntervalDivisor
		if d < constants.PollMinInterval {
			d = constants.PollMinInterval
		}
		return d
	}
	return rowHeuristicInterval(job.TotalRows)
}

func rowHeuristicInterval(rows int) time.Duration {
	switch {
	case rows < constants.SmallJobRows:
		return constants.PollSmallJobInterval
	case rows < constants.MediumJobRows:
		return constants.PollMediumJobInterval
	default:
		return constants.PollLargeJobInterval
	}
}
