package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"micrositepilot/pkg/models"
	"micrositepilot/pkg/pipeline"
	"micrositepilot/pkg/storage"
)

type Handlers struct {
	pipeline  *pipeline.Manager
	jobs      storage.JobStore
	sites     storage.SiteRegistry
	uploadDir string
	log       *logrus.Logger
}

func NewHandlers(p *pipeline.Manager, jobs storage.JobStore, sites storage.SiteRegistry, uploadDir string, log *logrus.Logger) *Handlers {
	return &Handlers{
		pipeline:  p,
		jobs:      jobs,
		sites:     sites,
		uploadDir: uploadDir,
		log:       log,
	}
}

// jobEnvelope is the response shape for job state: success when the
// whole workflow including deployment went through, partial_success
// when the site was generated but deployment failed or was skipped
// with a configured token, error on pipeline failure.
type jobEnvelope struct {
	Status            string      `json:"status"`
	Message           string      `json:"message"`
	Job               *models.Job `json:"job,omitempty"`
	WorkflowCompleted bool        `json:"workflow_completed"`
}

// UploadHandler accepts a multipart audio upload and queues a
// microsite generation job. Non-audio uploads are rejected. The upload
// is persisted to a temporary file which the pipeline removes when the
// run finishes.
func (h *Handlers) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Audio file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		h.respondError(w, http.StatusBadRequest, "Only audio files are supported")
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		h.log.WithError(err).Error("Failed to create upload directory")
		h.respondError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	tempPath := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(header.Filename)))
	dst, err := os.Create(tempPath)
	if err != nil {
		h.log.WithError(err).Error("Failed to create upload file")
		h.respondError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(tempPath)
		h.log.WithError(err).Error("Failed to write upload file")
		h.respondError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	dst.Close()

	job := models.NewJob(models.PathSource(tempPath, format), header.Filename)
	job.CleanupSource = true

	h.log.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"filename": header.Filename,
		"size":     header.Size,
		"format":   format,
	}).Info("Upload received, submitting job")

	if err := h.pipeline.Submit(job); err != nil {
		os.Remove(tempPath)
		h.respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("Failed to submit job: %v", err))
		return
	}

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
		"status": "submitted",
	})
}

// GetJobHandler returns the current state of a job wrapped in the
// success / partial_success / error envelope.
func (h *Handlers) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	job, err := h.jobs.GetJob(jobID)
	if err != nil {
		if err == storage.ErrJobNotFound {
			h.respondError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, envelopeFor(job))
}

func envelopeFor(job *models.Job) jobEnvelope {
	switch {
	case job.Status == models.StatusFailed:
		return jobEnvelope{
			Status:            "error",
			Message:           fmt.Sprintf("Workflow failed: %s", job.Error),
			Job:               job,
			WorkflowCompleted: false,
		}
	case job.Status != models.StatusCompleted:
		return jobEnvelope{
			Status:            "processing",
			Message:           fmt.Sprintf("Job is %s", job.Status),
			Job:               job,
			WorkflowCompleted: false,
		}
	case job.Deployment != nil && job.Deployment.Success:
		return jobEnvelope{
			Status:            "success",
			Message:           "Audio successfully transcribed, microsite generated, and deployed",
			Job:               job,
			WorkflowCompleted: true,
		}
	default:
		return jobEnvelope{
			Status:            "partial_success",
			Message:           "Workflow completed but deployment may have failed",
			Job:               job,
			WorkflowCompleted: true,
		}
	}
}

// ListSitesHandler returns every microsite in the registry, newest
// first.
func (h *Handlers) ListSitesHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.sites.ListSites()
	if err != nil {
		h.log.WithError(err).Error("Failed to list sites")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"sites": records,
		"count": len(records),
	})
}

func (h *Handlers) GetSiteHandler(w http.ResponseWriter, r *http.Request) {
	siteID := mux.Vars(r)["id"]

	record, err := h.sites.GetSite(siteID)
	if err != nil {
		if err == storage.ErrSiteNotFound {
			h.respondError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// ServeSiteContentHandler serves the persisted HTML of a generated
// microsite straight from disk. No pipeline stage re-runs.
func (h *Handlers) ServeSiteContentHandler(w http.ResponseWriter, r *http.Request) {
	siteID := mux.Vars(r)["id"]

	record, err := h.sites.GetSite(siteID)
	if err != nil {
		if err == storage.ErrSiteNotFound {
			h.respondError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	content, err := os.ReadFile(record.Path)
	if err != nil {
		h.log.WithError(err).WithField("site_id", siteID).Error("Failed to read site content")
		h.respondError(w, http.StatusInternalServerError, "Site content unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

// HealthHandler reports service sub-statuses.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	uploadDirOK := true
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		uploadDirOK = false
	}

	status := "healthy"
	code := http.StatusOK
	if !uploadDirOK {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	h.respondJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]string{
			"pipeline":         "operational",
			"upload_directory": operational(uploadDirOK),
		},
	})
}

func operational(ok bool) string {
	if ok {
		return "operational"
	}
	return "error"
}

func (h *Handlers) respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, code int, message string) {
	h.respondJSON(w, code, map[string]interface{}{
		"status":  "error",
		"message": message,
	})
}
