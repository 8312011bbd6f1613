package pipeline

import (
	"context"
	"sync"

	"micrositepilot/pkg/models"
)

type WorkerPool struct {
	workers    int
	taskQueue  chan *models.Job
	workerFunc func(context.Context, *models.Job)
	wg         sync.WaitGroup
}

func NewWorkerPool(workers int, workerFunc func(context.Context, *models.Job)) *WorkerPool {
	return &WorkerPool{
		workers:    workers,
		taskQueue:  make(chan *models.Job, workers*2),
		workerFunc: workerFunc,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

func (wp *WorkerPool) Submit(job *models.Job) {
	wp.taskQueue <- job
}

func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context) {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.taskQueue:
			if !ok {
				return
			}
			wp.workerFunc(ctx, job)

		case <-ctx.Done():
			return
		}
	}
}
