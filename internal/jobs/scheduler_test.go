package jobs

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestValidateDetectsCycle(t *testing.T) {
	g := &Graph{Nodes: []Node{
		{Deps: []int{1}},
		{Deps: []int{0}},
	}}
	if err := g.Validate(); err == nil {
		t.Fatal("expected cycle detection error")
	}
}

func TestValidateAcceptsDAG(t *testing.T) {
	g := &Graph{Nodes: []Node{
		{Run: func(int) {}},
		{Run: func(int) {}, Deps: []int{0}},
		{Run: func(int) {}, Deps: []int{0}},
	}}
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunsAllTasksRespectingDependencies(t *testing.T) {
	var mu sync.Mutex
	var order []int
	record := func(id int) Task {
		return func(int) {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
		}
	}

	g := &Graph{Nodes: []Node{
		{Run: record(0)},
		{Run: record(1), Deps: []int{0}},
		{Run: record(2), Deps: []int{0}},
		{Run: record(3), Deps: []int{1, 2}},
	}}

	s := New(4)
	h := s.Submit(g)
	s.WaitHelp(h)

	if len(order) != 4 {
		t.Fatalf("ran %d tasks, want 4", len(order))
	}
	pos := map[int]int{}
	for i, id := range order {
		pos[id] = i
	}
	if pos[0] > pos[1] || pos[0] > pos[2] {
		t.Fatalf("task 0 must run before its dependents: %v", order)
	}
	if pos[1] > pos[3] || pos[2] > pos[3] {
		t.Fatalf("task 3 must run after both its dependencies: %v", order)
	}
}

func TestIndependentTasksRunConcurrently(t *testing.T) {
	var running int32
	var maxConcurrent int32
	task := func(int) {
		cur := atomic.AddInt32(&running, 1)
		for {
			prev := atomic.LoadInt32(&maxConcurrent)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxConcurrent, prev, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	}

	g := &Graph{Nodes: []Node{{Run: task}, {Run: task}, {Run: task}, {Run: task}}}
	s := New(4)
	h := s.Submit(g)
	s.WaitHelp(h)

	if atomic.LoadInt32(&maxConcurrent) < 2 {
		t.Fatalf("expected at least 2 tasks to overlap, max concurrency was %d", maxConcurrent)
	}
}

// TestExclusiveTaskRunsAlone checks that no normal task ever overlaps the
// exclusive task. Normal tasks legitimately overlap with
// each other (see TestIndependentTasksRunConcurrently); only overlap with
// the exclusive task's RWMutex-guarded window is a violation.
func TestExclusiveTaskRunsAlone(t *testing.T) {
	var normalRunning int32
	var exclusiveActive int32
	var violated int32

	normal := func(int) {
		atomic.AddInt32(&normalRunning, 1)
		deadline := time.Now().Add(5 * time.Millisecond)
		for time.Now().Before(deadline) {
			if atomic.LoadInt32(&exclusiveActive) != 0 {
				atomic.StoreInt32(&violated, 1)
			}
			time.Sleep(time.Millisecond)
		}
		atomic.AddInt32(&normalRunning, -1)
	}
	exclusive := func(int) {
		atomic.StoreInt32(&exclusiveActive, 1)
		deadline := time.Now().Add(20 * time.Millisecond)
		for time.Now().Before(deadline) {
			if atomic.LoadInt32(&normalRunning) != 0 {
				atomic.StoreInt32(&violated, 1)
			}
			time.Sleep(time.Millisecond)
		}
		atomic.StoreInt32(&exclusiveActive, 0)
	}

	nodes := []Node{{Run: exclusive, Exclusive: true}}
	for i := 0; i < 6; i++ {
		nodes = append(nodes, Node{Run: normal})
	}
	g := &Graph{Nodes: nodes}
	s := New(6)
	h := s.Submit(g)
	s.WaitHelp(h)

	if atomic.LoadInt32(&violated) != 0 {
		t.Fatal("a normal task overlapped the exclusive task's run window")
	}
}
