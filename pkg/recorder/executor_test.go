package recorder

import (
	"sync"
	"testing"
)

func TestSerialExecutor_PreservesOrder(t *testing.T) {
	exec := NewSerialExecutor()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		exec.Async(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	exec.Close()

	if len(got) != 50 {
		t.Fatalf("expected 50 calls, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: got %d", i, v)
		}
	}
}

func TestSerialExecutor_CloseDropsLateWork(t *testing.T) {
	exec := NewSerialExecutor()
	exec.Close()

	// Must not panic or block
	exec.Async(func() {
		t.Error("callback ran after Close")
	})

	// Close is idempotent
	exec.Close()
}
