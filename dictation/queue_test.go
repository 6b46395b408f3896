package dictation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestQueueOrder(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		if n := q.Push(fmt.Sprint(i)); n != i+1 {
			t.Fatalf("Push returned len %d, want %d", n, i+1)
		}
	}
	for i := 0; i < 5; i++ {
		got, ok := q.Pop(context.Background(), time.Millisecond)
		if !ok || got != fmt.Sprint(i) {
			t.Fatalf("Pop = %q,%v want %d", got, ok, i)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d", q.Len())
	}
}

func TestQueuePopTimeout(t *testing.T) {
	q := NewQueue()
	start := time.Now()
	if _, ok := q.Pop(context.Background(), 30*time.Millisecond); ok {
		t.Fatal("Pop on empty queue returned ok")
	}
	if d := time.Since(start); d < 30*time.Millisecond {
		t.Errorf("returned after %s", d)
	}
}

func TestQueuePopWakesOnPush(t *testing.T) {
	q := NewQueue()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push("late")
	}()
	got, ok := q.Pop(context.Background(), 2*time.Second)
	if !ok || got != "late" {
		t.Errorf("Pop = %q,%v", got, ok)
	}
}

func TestQueuePopCancelled(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := q.Pop(ctx, time.Second); ok {
		t.Error("Pop on cancelled ctx returned ok")
	}
}

func TestQueueConcurrent(t *testing.T) {
	q := NewQueue()
	const n = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(fmt.Sprint(i))
		}
	}()

	for i := 0; i < n; i++ {
		got, ok := q.Pop(context.Background(), time.Second)
		if !ok {
			t.Fatalf("Pop %d timed out", i)
		}
		if got != fmt.Sprint(i) {
			t.Fatalf("Pop %d = %q", i, got)
		}
	}
	wg.Wait()
}
