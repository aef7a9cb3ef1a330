package infrastructure

import (
	"context"
	"fmt"
	"sync"
)

// Task représente une unité de travail (typiquement le parsing d'une marque)
type Task func(ctx context.Context) error

// WorkerPool gère un pool de workers pour traiter des tâches en parallèle
// Avec un seul worker l'exécution est strictement séquentielle, dans l'ordre de soumission
type WorkerPool struct {
	workerCount int
	tasks       chan Task
	mu          sync.Mutex
	errs        []error
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewWorkerPool crée un nouveau pool de workers
func NewWorkerPool(ctx context.Context, workerCount int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		tasks:       make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// worker est la routine d'exécution des tâches
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task, ok := <-wp.tasks:
			if !ok {
				return
			}
			if err := wp.run(task); err != nil {
				wp.mu.Lock()
				wp.errs = append(wp.errs, err)
				wp.mu.Unlock()
			}
		}
	}
}

// run exécute une tâche en convertissant un panic en erreur
func (wp *WorkerPool) run(task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task(wp.ctx)
}

// Start démarre les workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit soumet une tâche au pool
func (wp *WorkerPool) Submit(task Task) error {
	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is stopped")
	case wp.tasks <- task:
		return nil
	}
}

// Wait ferme le canal de tâches et attend la fin de toutes les tâches soumises
func (wp *WorkerPool) Wait() []error {
	close(wp.tasks)
	wp.wg.Wait()
	wp.cancel()
	return wp.Errors()
}

// Stop arrête le pool immédiatement; les tâches en attente sont abandonnées
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
}

// Errors retourne les erreurs collectées
func (wp *WorkerPool) Errors() []error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return append([]error{}, wp.errs...)
}

// RunAll exécute toutes les tâches sur un pool éphémère et retourne les erreurs
func RunAll(ctx context.Context, workers int, tasks []Task) []error {
	wp := NewWorkerPool(ctx, workers)
	wp.Start()
	for _, t := range tasks {
		if err := wp.Submit(t); err != nil {
			wp.Stop()
			return append(wp.Errors(), err)
		}
	}
	return wp.Wait()
}
