package queue

import (
	"testing"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
)

func TestPriorityQueueOrdering(t *testing.T) {
	pq := NewPriorityQueue()
	now := time.Now()

	pq.Push(&DispatchJob{ID: "low", Priority: domain.PriorityLow, DueAt: now})
	pq.Push(&DispatchJob{ID: "urgent", Priority: domain.PriorityUrgent, DueAt: now})
	pq.Push(&DispatchJob{ID: "medium", Priority: domain.PriorityMedium, DueAt: now})
	pq.Push(&DispatchJob{ID: "high", Priority: domain.PriorityHigh, DueAt: now})

	want := []string{"urgent", "high", "medium", "low"}
	for _, id := range want {
		job := pq.TryPop()
		if job == nil {
			t.Fatalf("Expected job %s, queue was empty", id)
		}
		if job.ID != id {
			t.Errorf("Expected job %s, got %s", id, job.ID)
		}
	}

	if !pq.IsEmpty() {
		t.Error("Expected queue to be empty")
	}
}

func TestPriorityQueueTiesGoToOldest(t *testing.T) {
	pq := NewPriorityQueue()
	now := time.Now()

	pq.Push(&DispatchJob{ID: "newer", Priority: domain.PriorityHigh, DueAt: now})
	pq.Push(&DispatchJob{ID: "older", Priority: domain.PriorityHigh, DueAt: now.Add(-time.Hour)})

	if job := pq.TryPop(); job.ID != "older" {
		t.Errorf("Expected oldest due job first, got %s", job.ID)
	}
}

func TestPriorityQueueTryPopEmpty(t *testing.T) {
	pq := NewPriorityQueue()
	if job := pq.TryPop(); job != nil {
		t.Errorf("Expected nil from empty queue, got %v", job)
	}
}

func TestPriorityQueueCloseUnblocksPop(t *testing.T) {
	pq := NewPriorityQueue()

	done := make(chan *DispatchJob)
	go func() {
		done <- pq.Pop()
	}()

	pq.Close()

	select {
	case job := <-done:
		if job != nil {
			t.Errorf("Expected nil from closed queue, got %v", job)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Pop did not return after Close")
	}
}

func TestPriorityQueuePushAfterCloseDropped(t *testing.T) {
	pq := NewPriorityQueue()
	pq.Close()

	pq.Push(&DispatchJob{ID: "late", Priority: domain.PriorityLow, DueAt: time.Now()})

	if pq.Len() != 0 {
		t.Errorf("Expected push after close to be dropped, len = %d", pq.Len())
	}
}
