package storage

import (
	"testing"
	"time"

	"micrositepilot/pkg/models"
)

func TestJobStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	job := models.NewJob(models.PathSource("/tmp/call.wav", "wav"), "call.wav")

	if err := store.StoreJob(job); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetJob(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != job.ID || got.Status != models.StatusPending {
		t.Fatalf("unexpected job: %+v", got)
	}
}

func TestJobStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	job := models.NewJob(models.AudioSource{}, "")
	store.StoreJob(job)

	got, _ := store.GetJob(job.ID)
	got.Status = models.StatusFailed

	again, _ := store.GetJob(job.ID)
	if again.Status != models.StatusPending {
		t.Fatal("mutating a read must not affect the stored job")
	}
}

func TestJobStoreUpdate(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	job := models.NewJob(models.AudioSource{}, "")
	store.StoreJob(job)

	if err := store.UpdateJobStatus(job.ID, models.StatusRendering); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateJob(job.ID, func(j *models.Job) {
		j.SitePath = "/tmp/microsites/demo.html"
	}); err != nil {
		t.Fatal(err)
	}

	got, _ := store.GetJob(job.ID)
	if got.Status != models.StatusRendering || got.SitePath == "" {
		t.Fatalf("updates not applied: %+v", got)
	}
}

func TestJobStoreUnknownJob(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	if _, err := store.GetJob("nope"); err != ErrJobNotFound {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if err := store.UpdateJobStatus("nope", models.StatusFailed); err != ErrJobNotFound {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJobStoreListNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	older := models.NewJob(models.AudioSource{}, "")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := models.NewJob(models.AudioSource{}, "")
	store.StoreJob(older)
	store.StoreJob(newer)

	jobs, err := store.ListJobs()
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 || jobs[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %v", jobs)
	}
}

func TestSiteRegistryRoundTrip(t *testing.T) {
	registry, err := NewSiteRegistry(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer registry.Close()

	record := &models.SiteRecord{
		ID:        "site-1",
		JobID:     "job-1",
		Title:     "Microsite Pilot Acme Corp",
		Path:      "/tmp/microsites/demo_20250101_120000.html",
		CreatedAt: time.Now(),
		Deployment: &models.DeploymentResult{
			Success: true,
			URL:     "https://example.netlify.app",
		},
	}
	if err := registry.PutSite(record); err != nil {
		t.Fatal(err)
	}

	got, err := registry.GetSite("site-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != record.Title || got.Path != record.Path {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Deployment == nil || !got.Deployment.Success {
		t.Fatalf("deployment result lost: %+v", got.Deployment)
	}
}

func TestSiteRegistryUnknownSite(t *testing.T) {
	registry, err := NewSiteRegistry(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer registry.Close()

	if _, err := registry.GetSite("nope"); err != ErrSiteNotFound {
		t.Fatalf("expected ErrSiteNotFound, got %v", err)
	}
}

func TestSiteRegistryListNewestFirst(t *testing.T) {
	registry, err := NewSiteRegistry(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer registry.Close()

	now := time.Now()
	registry.PutSite(&models.SiteRecord{ID: "older", CreatedAt: now.Add(-time.Hour)})
	registry.PutSite(&models.SiteRecord{ID: "newer", CreatedAt: now})

	records, err := registry.ListSites()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ID != "newer" {
		t.Fatalf("expected newest first, got %v", records)
	}
}
