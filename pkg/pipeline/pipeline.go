package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"micrositepilot/pkg/audio"
	"micrositepilot/pkg/cache"
	"micrositepilot/pkg/config"
	"micrositepilot/pkg/genai"
	"micrositepilot/pkg/models"
	"micrositepilot/pkg/publish"
	"micrositepilot/pkg/storage"
)

// Manager owns the microsite generation pipeline: a fixed pool of
// workers each running one job at a time through the resolve ->
// transcribe -> extract -> render -> publish sequence. Stages within a
// run are strictly sequential; concurrent runs share only the
// transcription cache.
type Manager struct {
	cfg      config.PipelineConfig
	modelCfg config.ModelConfig
	jobs     storage.JobStore
	sites    storage.SiteRegistry
	resolver *audio.Resolver
	cache    *cache.TranscriptCache
	invoker  genai.Invoker
	pub      *publish.Publisher
	log      *logrus.Logger

	jobsCh chan *models.Job
	pool   *WorkerPool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(
	cfg config.PipelineConfig,
	modelCfg config.ModelConfig,
	jobs storage.JobStore,
	sites storage.SiteRegistry,
	invoker genai.Invoker,
	pub *publish.Publisher,
	log *logrus.Logger,
) *Manager {
	return &Manager{
		cfg:      cfg,
		modelCfg: modelCfg,
		jobs:     jobs,
		sites:    sites,
		resolver: audio.NewResolver(),
		cache:    cache.New(),
		invoker:  invoker,
		pub:      pub,
		log:      log,

		jobsCh: make(chan *models.Job, cfg.QueueSize),
	}
}

func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.log.Info("Pipeline manager starting")

	m.pool = NewWorkerPool(m.cfg.Workers, m.runJob)
	m.pool.Start(m.ctx)

	m.wg.Add(1)
	go m.runDispatch()

	return nil
}

func (m *Manager) Stop() {
	m.log.Info("Pipeline manager stopping")
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.log.Info("Pipeline manager stopped")
}

// Submit queues a job for processing. It never blocks: a full queue or
// a shutting-down pipeline is reported as an error.
func (m *Manager) Submit(job *models.Job) error {
	if err := m.jobs.StoreJob(job); err != nil {
		return err
	}

	select {
	case m.jobsCh <- job:
		m.log.WithField("job_id", job.ID).Info("Job submitted to pipeline")
		return nil
	case <-m.ctx.Done():
		return fmt.Errorf("pipeline is shutting down")
	default:
		return fmt.Errorf("pipeline queue is full")
	}
}

func (m *Manager) runDispatch() {
	defer m.wg.Done()

	for {
		select {
		case job := <-m.jobsCh:
			m.pool.Submit(job)
		case <-m.ctx.Done():
			return
		}
	}
}
