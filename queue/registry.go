package queue

import "slices"

// pendingQueue is the FIFO of tasks not yet admitted in a run. It is built
// from a snapshot of the executor's registry, so total is fixed for the run.
// It has no lock of its own; the scheduler owns it and guards it with its
// state mutex.
type pendingQueue[R any] struct {
	tasks []Task[R]
	total int
}

func newPendingQueue[R any](registry []Task[R]) *pendingQueue[R] {
	tasks := slices.Clone(registry)
	return &pendingQueue[R]{
		tasks: tasks,
		total: len(tasks),
	}
}

// pop removes the head task. Its index is total minus the number of tasks
// still queued before the pop, so indices grow strictly in pop order.
func (q *pendingQueue[R]) pop() (task Task[R], index int, ok bool) {
	if len(q.tasks) == 0 {
		return nil, 0, false
	}

	index = q.total - len(q.tasks)
	task = q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return task, index, true
}

// drain empties the queue and returns the indices of the tasks it held.
func (q *pendingQueue[R]) drain() []int {
	indices := make([]int, 0, len(q.tasks))
	for {
		_, idx, ok := q.pop()
		if !ok {
			return indices
		}
		indices = append(indices, idx)
	}
}

func (q *pendingQueue[R]) len() int {
	return len(q.tasks)
}
