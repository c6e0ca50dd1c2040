package dispatch

import (
	"context"
	"errors"
)

// ErrQueueFull is returned when the in-memory queue's buffer is exhausted.
var ErrQueueFull = errors.New("task queue full")

// Memory is a channel-backed queue for tests and single-process runs.
type Memory struct {
	tasks chan Task
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Memory{tasks: make(chan Task, capacity)}
}

func (m *Memory) Enqueue(_ context.Context, task Task) error {
	select {
	case m.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (m *Memory) Dequeue(ctx context.Context) (Task, error) {
	select {
	case task := <-m.tasks:
		return task, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// TryDequeue pops a task without blocking. Tests use it to drain the queue
// deterministically.
func (m *Memory) TryDequeue() (Task, bool) {
	select {
	case task := <-m.tasks:
		return task, true
	default:
		return Task{}, false
	}
}

// Len reports the number of queued tasks.
func (m *Memory) Len() int { return len(m.tasks) }
