package models

import (
	"time"

	"github.com/google/uuid"
)

// AudioSourceKind tags the variant held by an AudioSource.
type AudioSourceKind int

const (
	SourceNone AudioSourceKind = iota
	SourcePath
	SourceURL
	SourceBytes
)

// AudioSource is a tagged reference to the input recording: a local
// path, a remote URL, or raw bytes. Resolution to bytes happens once,
// in pkg/audio.
type AudioSource struct {
	Kind   AudioSourceKind
	Path   string
	URL    string
	Bytes  []byte
	Format string // audio format tag, e.g. "wav", "mp3"
}

func PathSource(path, format string) AudioSource {
	return AudioSource{Kind: SourcePath, Path: path, Format: format}
}

func URLSource(url, format string) AudioSource {
	return AudioSource{Kind: SourceURL, URL: url, Format: format}
}

func BytesSource(data []byte, format string) AudioSource {
	return AudioSource{Kind: SourceBytes, Bytes: data, Format: format}
}

// Transcription is the verbatim timestamped text of the call. Segments
// follow the "[HH:MM:SS - HH:MM:SS] Speaker: text" convention, one per
// line. Immutable after creation.
type Transcription struct {
	Text string `json:"transcription"`
}

// FeatureDemonstrated is one demonstrated feature with the transcript
// timestamps bracketing its demo.
type FeatureDemonstrated struct {
	Name           string `json:"name"`
	TimestampStart string `json:"timestamp_start"`
	TimestampEnd   string `json:"timestamp_end"`
}

// DemoSummary is the structured information extracted from a
// transcription. Feature timestamps are taken from the model as-is and
// are not bounds-checked against the transcription.
type DemoSummary struct {
	ProductName          string                `json:"product_name"`
	ProspectCompany      string                `json:"prospect_company"`
	SalesRep             string                `json:"sales_rep"`
	SummaryPoints        []string              `json:"summary_points"`
	PainPointsDiscussed  []string              `json:"pain_points_discussed"`
	FeaturesDemonstrated []FeatureDemonstrated `json:"features_demonstrated"`
	NextSteps            []string              `json:"next_steps"`
	UnansweredQuestions  []string              `json:"unanswered_questions"`
}

// DeploymentResult is the outcome of publishing a rendered site to the
// hosting provider. Failures are carried here as data, never as errors.
type DeploymentResult struct {
	Success  bool   `json:"success"`
	SiteID   string `json:"site_id,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	URL      string `json:"url,omitempty"`
	AdminURL string `json:"admin_url,omitempty"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
}

type JobStatus string

const (
	StatusPending      JobStatus = "pending"
	StatusResolving    JobStatus = "resolving"
	StatusTranscribing JobStatus = "transcribing"
	StatusExtracting   JobStatus = "extracting"
	StatusRendering    JobStatus = "rendering"
	StatusPublishing   JobStatus = "publishing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Job is one microsite generation run: a single audio source moving
// through the resolve -> transcribe -> extract -> render -> publish
// sequence. Stage results accumulate on the job as it advances.
type Job struct {
	ID        string      `json:"id"`
	Source    AudioSource `json:"-"`
	// CleanupSource marks a temporary upload file that must be removed
	// once the run finishes, successfully or not.
	CleanupSource bool   `json:"-"`
	Filename      string `json:"filename,omitempty"`
	Status    JobStatus   `json:"status"`
	CreatedAt time.Time   `json:"created_at"`

	Transcription *Transcription    `json:"transcription,omitempty"`
	Summary       *DemoSummary      `json:"summary,omitempty"`
	SitePath      string            `json:"site_path,omitempty"`
	Deployment    *DeploymentResult `json:"deployment,omitempty"`

	CompletedAt time.Time `json:"completed_at,omitempty"`
	Error       string    `json:"error,omitempty"`
}

func NewJob(source AudioSource, filename string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Source:    source,
		Filename:  filename,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// SiteRecord is one row of the persistent site registry: a microsite
// that was generated, where it lives on disk, and how deployment went.
type SiteRecord struct {
	ID         string            `json:"id"`
	JobID      string            `json:"job_id"`
	Title      string            `json:"title"`
	Path       string            `json:"path"`
	Deployment *DeploymentResult `json:"deployment,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
