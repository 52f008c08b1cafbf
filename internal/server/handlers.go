package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accunode/accunode-go/internal/store/jobs"
	"github.com/accunode/accunode-go/internal/store/predictions"
	"github.com/accunode/accunode-go/internal/transport"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
)

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"auth":   string(r.authStore.State()),
	})
}

// handleSession reports who syncd is signed in as.
func (r *Router) handleSession(c *gin.Context) {
	sess := r.authStore.Session()
	if sess == nil || !sess.Valid() {
		c.JSON(http.StatusUnauthorized, transport.ToEnvelope(nil,
			errors.NewAuthError("not authenticated")))
		return
	}
	c.JSON(http.StatusOK, transport.ToEnvelope(gin.H{
		"user":       sess.User,
		"expires_at": sess.ExpiresAt,
		"filter":     r.predStore.ActiveFilter(),
	}, nil))
}

// handlePredictions serves the filtered view of one prediction type.
// ?type=annual|quarterly (default annual), ?sort=probability|period.
func (r *Router) handlePredictions(c *gin.Context) {
	typ, err := predictionType(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, transport.ToEnvelope(nil, err))
		return
	}

	if err := r.predStore.Fetch(c.Request.Context(), typ, predictions.FetchOptions{}); err != nil {
		c.JSON(httpStatus(err), transport.ToEnvelope(nil, err))
		return
	}

	var items interface{}
	switch c.Query("sort") {
	case "probability":
		items = r.predStore.SortedByProbability(typ)
	case "period":
		items = r.predStore.SortedByPeriod(typ)
	default:
		items = r.predStore.Filtered(typ)
	}
	c.JSON(http.StatusOK, transport.ToEnvelope(gin.H{
		"type":   typ,
		"filter": r.predStore.ActiveFilter(),
		"items":  items,
	}, nil))
}

// handlePredictionsRefresh forces a refetch past the cache window.
func (r *Router) handlePredictionsRefresh(c *gin.Context) {
	typ, err := predictionType(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, transport.ToEnvelope(nil, err))
		return
	}
	opts := predictions.FetchOptions{Force: true, IncludeSystem: c.Query("system") == "true"}
	if err := r.predStore.Fetch(c.Request.Context(), typ, opts); err != nil {
		c.JSON(httpStatus(err), transport.ToEnvelope(nil, err))
		return
	}
	c.JSON(http.StatusOK, transport.ToEnvelope(gin.H{"refreshed": true}, nil))
}

// handleSetFilter switches the active data filter. Super-admins are pinned to
// the system filter regardless of the requested value.
func (r *Router) handleSetFilter(c *gin.Context) {
	var body struct {
		Filter string `json:"filter" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, transport.ToEnvelope(nil,
			errors.NewValidationError("filter", "required")))
		return
	}
	filter := constants.DataFilter(body.Filter)
	switch filter {
	case constants.FilterPersonal, constants.FilterOrganization, constants.FilterSystem, constants.FilterAll:
	default:
		c.JSON(http.StatusBadRequest, transport.ToEnvelope(nil,
			errors.NewValidationError("filter", "must be personal, organization, system, or all")))
		return
	}
	r.predStore.SetDataFilter(filter)
	c.JSON(http.StatusOK, transport.ToEnvelope(gin.H{"filter": r.predStore.ActiveFilter()}, nil))
}

func (r *Router) handleJobs(c *gin.Context) {
	c.JSON(http.StatusOK, transport.ToEnvelope(gin.H{"items": r.jobStore.Jobs()}, nil))
}

func (r *Router) handleJob(c *gin.Context) {
	job, ok := r.jobStore.Job(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, transport.ToEnvelope(nil,
			errors.NewValidationError("job_id", "unknown job")))
		return
	}
	c.JSON(http.StatusOK, transport.ToEnvelope(job, nil))
}

// handleJobResults streams a finished job's results as a CSV attachment.
func (r *Router) handleJobResults(c *gin.Context) {
	id := c.Param("id")
	job, ok := r.jobStore.Job(id)
	if !ok {
		c.JSON(http.StatusNotFound, transport.ToEnvelope(nil,
			errors.NewValidationError("job_id", "unknown job")))
		return
	}
	if len(job.Results) == 0 {
		c.JSON(http.StatusConflict, transport.ToEnvelope(nil,
			errors.NewValidationError("job_id", "job has no results yet")))
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "job-"+id+".csv"))
	c.Status(http.StatusOK)
	if err := jobs.WriteResultsCSV(c.Writer, job.Results); err != nil {
		r.log.Error(c.Request.Context(), "csv stream failed", err)
	}
}

func (r *Router) handleDashboard(c *gin.Context) {
	force := c.Query("force") == "true"
	stats, err := r.statStore.Fetch(c.Request.Context(), force)
	if err != nil {
		c.JSON(httpStatus(err), transport.ToEnvelope(nil, err))
		return
	}
	c.JSON(http.StatusOK, transport.ToEnvelope(stats, nil))
}

// ================================================================================
// Helpers
// ================================================================================

func predictionType(c *gin.Context) (constants.PredictionType, error) {
	switch c.DefaultQuery("type", string(constants.PredictionAnnual)) {
	case string(constants.PredictionAnnual):
		return constants.PredictionAnnual, nil
	case string(constants.PredictionQuarterly):
		return constants.PredictionQuarterly, nil
	default:
		return "", errors.NewValidationError("type", "must be annual or quarterly")
	}
}

// httpStatus maps a store error onto the status syncd should answer with.
func httpStatus(err error) int {
	switch {
	case errors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsNetwork(err):
		return http.StatusBadGateway
	default:
		if app, ok := errors.As(err); ok && app.HTTPStatus > 0 {
			return app.HTTPStatus
		}
		return http.StatusInternalServerError
	}
}
