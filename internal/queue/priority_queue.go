package queue

import (
	"container/heap"
	"sync"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
)

// DispatchJob is one reminder notification waiting for delivery on one channel
type DispatchJob struct {
	ID       string
	Priority domain.Priority
	Channel  domain.NotificationMethod
	Reminder *domain.Reminder
	DueAt    time.Time
	Index    int // Index in the heap
}

// dispatchJobHeap implements heap.Interface
type dispatchJobHeap []*DispatchJob

func (h dispatchJobHeap) Len() int { return len(h) }

func (h dispatchJobHeap) Less(i, j int) bool {
	// Higher priority rank first; ties go to the longest overdue
	if h[i].Priority.Rank() != h[j].Priority.Rank() {
		return h[i].Priority.Rank() > h[j].Priority.Rank()
	}
	return h[i].DueAt.Before(h[j].DueAt)
}

func (h dispatchJobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index = i
	h[j].Index = j
}

func (h *dispatchJobHeap) Push(x interface{}) {
	n := len(*h)
	job := x.(*DispatchJob)
	job.Index = n
	*h = append(*h, job)
}

func (h *dispatchJobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil // Avoid memory leak
	job.Index = -1
	*h = old[0 : n-1]
	return job
}

// PriorityQueue is a thread-safe priority queue for dispatch jobs
type PriorityQueue struct {
	jobs   dispatchJobHeap
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

// NewPriorityQueue creates a new priority queue
func NewPriorityQueue() *PriorityQueue {
	pq := &PriorityQueue{
		jobs: make(dispatchJobHeap, 0),
	}
	pq.cond = sync.NewCond(&pq.mu)
	heap.Init(&pq.jobs)
	return pq
}

// Push adds a job to the queue. Pushes after Close are dropped.
func (pq *PriorityQueue) Push(job *DispatchJob) {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	if pq.closed {
		return
	}

	heap.Push(&pq.jobs, job)
	pq.cond.Signal() // Wake up a waiting worker
}

// Pop removes and returns the highest priority job. Blocks while the queue
// is empty; returns nil once the queue is closed and drained.
func (pq *PriorityQueue) Pop() *DispatchJob {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	for pq.jobs.Len() == 0 {
		if pq.closed {
			return nil
		}
		pq.cond.Wait()
	}

	return heap.Pop(&pq.jobs).(*DispatchJob)
}

// TryPop tries to pop a job without blocking
// Returns nil if queue is empty
func (pq *PriorityQueue) TryPop() *DispatchJob {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	if pq.jobs.Len() == 0 {
		return nil
	}

	return heap.Pop(&pq.jobs).(*DispatchJob)
}

// Close wakes all blocked workers so they can drain and exit
func (pq *PriorityQueue) Close() {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	pq.closed = true
	pq.cond.Broadcast()
}

// Len returns the number of jobs in the queue
func (pq *PriorityQueue) Len() int {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	return pq.jobs.Len()
}

// IsEmpty returns true if the queue is empty
func (pq *PriorityQueue) IsEmpty() bool {
	return pq.Len() == 0
}
