package handler

import (
	"errors"
	"io"
	"net/http"

	"ledger-reconciliation-backend/internal/ingest"
	"ledger-reconciliation-backend/internal/models"
	"ledger-reconciliation-backend/internal/services/audit"
	"ledger-reconciliation-backend/internal/services/ledger"
	service "ledger-reconciliation-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReconciliationHandler is a thin transport layer: it translates multipart
// uploads and JSON payloads into engine calls. All semantics live in the
// services.
type ReconciliationHandler struct {
	service      *service.Service
	loader       *ledger.Loader
	previewLimit int
}

func NewReconciliationHandler(s *service.Service, l *ledger.Loader, previewLimit int) *ReconciliationHandler {
	if previewLimit <= 0 {
		previewLimit = 20
	}
	return &ReconciliationHandler{service: s, loader: l, previewLimit: previewLimit}
}

// actorFrom reads the caller identity forwarded by the (out-of-scope) auth
// layer.
func actorFrom(c *gin.Context) audit.Actor {
	name := c.GetHeader("X-Actor-Name")
	if name == "" {
		name = "system"
	}
	role := c.GetHeader("X-Actor-Role")
	if role == "" {
		role = "admin"
	}
	return audit.Actor{Name: name, Role: role}
}

// Preview returns the file headers and a handful of sample rows without
// creating a job.
func (h *ReconciliationHandler) Preview(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	headers, sample, err := ingest.Preview(file, h.previewLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read CSV file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": header.Filename,
		"headers":  headers,
		"preview":  sample,
	})
}

// Upload submits a reconciliation job and returns immediately; callers poll
// the status endpoint for results.
func (h *ReconciliationHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}

	outcome, err := h.service.Submit(fileBytes, header.Filename, c.PostForm("mapping"), actorFrom(c))
	if err != nil {
		if errors.Is(err, service.ErrEmptyFile) || errors.Is(err, service.ErrBadMapping) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if outcome.Cached {
		c.JSON(http.StatusOK, gin.H{
			"message":  "Cached Result",
			"job_id":   outcome.JobID.String(),
			"status":   outcome.Status,
			"isCached": true,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Processing started",
		"job_id":   outcome.JobID.String(),
		"status":   outcome.Status,
		"isCached": false,
	})
}

func (h *ReconciliationHandler) GetJobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID"})
		return
	}

	status, err := h.service.GetStatus(jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if status.Status != models.JobCompleted {
		c.JSON(http.StatusOK, gin.H{"status": status.Status})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status.Status,
		"data":         status.Results,
		"totalRecords": status.TotalRecords,
	})
}

// GetLatest returns the most recent completed job with its results.
func (h *ReconciliationHandler) GetLatest(c *gin.Context) {
	latest, err := h.service.LatestCompleted()
	if err != nil {
		if errors.Is(err, service.ErrNoCompletedJobs) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no records found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":       latest.JobID.String(),
		"filename":     latest.Filename,
		"uploadedBy":   latest.UploadedBy,
		"data":         latest.Results,
		"totalRecords": latest.TotalRecords,
		"status":       latest.Status,
	})
}

// UpdateResult applies a manual correction to one result row.
func (h *ReconciliationHandler) UpdateResult(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result ID"})
		return
	}

	var payload service.Correction
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	res, err := h.service.CorrectResult(resultID, payload, actorFrom(c))
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// SystemUpload replaces the entire ledger from a master file. The loader
// streams straight from the multipart reader.
func (h *ReconciliationHandler) SystemUpload(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	count, err := h.loader.Reload(file, actorFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "System Records Updated Successfully",
		"count":   count,
	})
}
