package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"micrositepilot/pkg/cache"
	"micrositepilot/pkg/genai"
	"micrositepilot/pkg/models"
	"micrositepilot/pkg/retry"
)

// ErrTranscriptionUnavailable is the terminal transcription failure
// signal: every attempt failed or came back empty. Callers must not
// retry past it.
var ErrTranscriptionUnavailable = fmt.Errorf("transcription unavailable")

// runJob drives one job through every stage. The first stage failure
// is terminal; nothing after it runs. Only transcription retries, and
// only within transcribe itself.
func (m *Manager) runJob(ctx context.Context, job *models.Job) {
	log := m.log.WithField("job_id", job.ID)
	log.Info("Pipeline run started")

	if job.CleanupSource && job.Source.Kind == models.SourcePath {
		defer os.Remove(job.Source.Path)
	}

	m.setStatus(job.ID, models.StatusResolving)
	audioBytes, err := m.resolver.Resolve(ctx, job.Source)
	if err != nil {
		m.fail(job.ID, "resolve", err)
		return
	}

	transcription, err := m.transcribe(ctx, job, audioBytes)
	if err != nil {
		m.fail(job.ID, "transcription", err)
		return
	}
	m.update(job.ID, func(j *models.Job) { j.Transcription = &transcription })

	m.setStatus(job.ID, models.StatusExtracting)
	summary, summaryJSON, err := m.extract(ctx, transcription)
	if err != nil {
		m.fail(job.ID, "extraction", err)
		return
	}
	m.update(job.ID, func(j *models.Job) { j.Summary = &summary })

	m.setStatus(job.ID, models.StatusRendering)
	site, err := m.render(ctx, summaryJSON, transcription)
	if err != nil {
		m.fail(job.ID, "rendering", err)
		return
	}

	m.setStatus(job.ID, models.StatusPublishing)
	m.publishSite(ctx, job, summary, site)
}

// transcribe returns a cached transcription when one exists for this
// source; otherwise it runs the model with bounded retries and caches
// the first non-empty success. A cache hit never triggers a model call.
func (m *Manager) transcribe(ctx context.Context, job *models.Job, audioBytes []byte) (models.Transcription, error) {
	log := m.log.WithField("job_id", job.ID)
	key := cache.KeyFor(job.Source)

	if m.cfg.UseTranscriptionCache && key != "" {
		if cached, ok := m.cache.Get(key); ok {
			log.Info("Using cached transcription")
			return cached, nil
		}
	}

	m.setStatus(job.ID, models.StatusTranscribing)

	format := job.Source.Format
	if format == "" {
		format = "wav"
	}

	attempt := 0
	text, err := retry.Do(ctx, m.cfg.TranscriptionAttempts,
		func(ctx context.Context) (string, error) {
			attempt++
			out, err := m.invoker.Invoke(ctx, genai.Request{
				Model:       m.modelCfg.TranscriptionModel,
				Instruction: genai.TranscriptionInstruction,
				Input:       "Transcribe this audio exactly as heard",
				Audio:       &genai.AudioPart{Data: audioBytes, Format: format},
			})
			if err != nil || strings.TrimSpace(out) == "" {
				log.WithField("attempt", attempt).WithError(err).Warn("Transcription attempt failed")
			}
			return out, err
		},
		func(out string) bool { return strings.TrimSpace(out) != "" },
	)
	if err != nil {
		log.WithField("attempts", attempt).Error("Transcription failed on every attempt")
		return models.Transcription{}, fmt.Errorf("%w after %d attempts", ErrTranscriptionUnavailable, m.cfg.TranscriptionAttempts)
	}

	log.WithField("attempts", attempt).Info("Transcription succeeded")
	transcription := models.Transcription{Text: strings.TrimSpace(text)}
	if key != "" {
		m.cache.Put(key, transcription)
	}
	return transcription, nil
}

// extract runs the extraction model over the transcription and parses
// its (fence-stripped) JSON output. The normalized JSON string is
// returned alongside the parsed summary for the rendering stage.
func (m *Manager) extract(ctx context.Context, transcription models.Transcription) (models.DemoSummary, string, error) {
	raw, err := m.invoker.Invoke(ctx, genai.Request{
		Model:       m.modelCfg.ExtractionModel,
		Instruction: genai.ExtractionInstruction,
		Input:       transcription.Text,
	})
	if err != nil {
		return models.DemoSummary{}, "", fmt.Errorf("extraction model call failed: %w", err)
	}

	normalized := StripCodeFence(raw)

	var summary models.DemoSummary
	if err := json.Unmarshal([]byte(normalized), &summary); err != nil {
		return models.DemoSummary{}, "", fmt.Errorf("extraction output is not valid JSON: %w", err)
	}
	return summary, normalized, nil
}

// render asks the model for the microsite HTML, feeding it both the
// structured summary JSON and the raw transcription.
func (m *Manager) render(ctx context.Context, summaryJSON string, transcription models.Transcription) (string, error) {
	input := fmt.Sprintf("Extracted demo data:\n%s\n\nRaw transcription:\n%s", summaryJSON, transcription.Text)

	raw, err := m.invoker.Invoke(ctx, genai.Request{
		Model:       m.modelCfg.RenderingModel,
		Instruction: genai.RenderingInstruction,
		Input:       input,
	})
	if err != nil {
		return "", fmt.Errorf("rendering model call failed: %w", err)
	}

	site := StripCodeFence(raw)
	if strings.TrimSpace(site) == "" {
		return "", fmt.Errorf("rendering produced empty output")
	}
	return site, nil
}

// publishSite persists the site to disk, deploys it when a hosting
// token is configured, records the result in the site registry, and
// completes the job. A failed deploy does not fail the job; a failed
// disk write does.
func (m *Manager) publishSite(ctx context.Context, job *models.Job, summary models.DemoSummary, site string) {
	log := m.log.WithField("job_id", job.ID)

	path, err := m.pub.Persist(site)
	if err != nil {
		m.fail(job.ID, "publish", err)
		return
	}

	title := strings.TrimSpace(summary.ProductName + " " + summary.ProspectCompany)
	if title == "" {
		title = "demo recap"
	}

	var deployment *models.DeploymentResult
	if m.pub.DeployEnabled() {
		result := m.pub.Deploy(ctx, title, path)
		deployment = &result
	} else {
		log.Info("No hosting token configured, skipping deployment")
	}

	record := &models.SiteRecord{
		ID:         uuid.New().String(),
		JobID:      job.ID,
		Title:      title,
		Path:       path,
		Deployment: deployment,
		CreatedAt:  time.Now(),
	}
	if err := m.sites.PutSite(record); err != nil {
		log.WithError(err).Warn("Failed to record site in registry")
	}

	m.update(job.ID, func(j *models.Job) {
		j.Status = models.StatusCompleted
		j.SitePath = path
		j.Deployment = deployment
		j.CompletedAt = time.Now()
	})
	log.WithField("site_path", path).Info("Pipeline run completed")
}

func (m *Manager) setStatus(jobID string, status models.JobStatus) {
	if err := m.jobs.UpdateJobStatus(jobID, status); err != nil {
		m.log.WithError(err).WithField("job_id", jobID).Warn("Failed to update job status")
	}
}

func (m *Manager) update(jobID string, fn func(*models.Job)) {
	if err := m.jobs.UpdateJob(jobID, fn); err != nil {
		m.log.WithError(err).WithField("job_id", jobID).Warn("Failed to update job")
	}
}

func (m *Manager) fail(jobID, reason string, err error) {
	m.log.WithError(err).WithFields(map[string]interface{}{
		"job_id": jobID,
		"stage":  reason,
	}).Error("Pipeline run failed")

	m.update(jobID, func(j *models.Job) {
		j.Status = models.StatusFailed
		j.Error = fmt.Sprintf("%s: %v", reason, err)
		j.CompletedAt = time.Now()
	})
}
