package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quentin/tickvault/internal/domain"
	"github.com/quentin/tickvault/internal/repository"
)

// JobsHandler exposes the job store read surface to operators. Formatting
// beyond plain JSON listing is left to external tooling.
type JobsHandler struct {
	jobs *repository.JobRepository
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(jobs *repository.JobRepository) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// ListByState returns jobs in the state given by the "state" query
// parameter (case-insensitive). An unknown state yields 400 naming the
// rejected value.
func (h *JobsHandler) ListByState(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter: state"})
		return
	}

	jobs, err := h.jobs.ListByState(c.Request.Context(), state)
	if err != nil {
		var inv *domain.InvalidStatusError
		if errors.As(err, &inv) {
			c.JSON(http.StatusBadRequest, gin.H{"error": inv.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// History returns job records newest first, optionally filtered by the
// "symbol" query parameter.
func (h *JobsHandler) History(c *gin.Context) {
	jobs, err := h.jobs.History(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// Get returns one job by ID.
func (h *JobsHandler) Get(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	c.JSON(http.StatusOK, job)
}
