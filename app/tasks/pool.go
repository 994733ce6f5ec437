package tasks

import (
	"context"
	"log/slog"
	"sync"
)

// Pool runs a batch of tasks on a fixed number of workers.
type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Run executes every task and waits for all of them. errs[i] is the result
// of tasks[i]. Tasks not yet started when ctx is cancelled fail with the
// context's error.
func (p *Pool) Run(ctx context.Context, tasks []TaskInterface) []error {
	errs := make([]error, len(tasks))
	queue := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range queue {
				errs[idx] = p.executeTask(ctx, workerID, tasks[idx])
			}
		}(i)
	}

	for idx := range tasks {
		queue <- idx
	}
	close(queue)

	wg.Wait()

	return errs
}

func (p *Pool) executeTask(ctx context.Context, workerID int, task TaskInterface) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	task.Start()
	err := task.Execute(ctx)

	if err != nil {
		slog.Debug("Task failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration(), "error", err)
		return err
	}

	slog.Debug("Task completed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration())
	return nil
}
