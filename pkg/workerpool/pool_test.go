package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunExecutesAllIndices(t *testing.T) {
	p := New(Config{Workers: 4})
	results := make([]int, 100)

	err := p.Run(context.Background(), len(results), func(_ context.Context, i int) error {
		results[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for i, v := range results {
		if v != i*i {
			t.Errorf("results[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestRunPropagatesError(t *testing.T) {
	p := New(Config{Workers: 2})
	sentinel := errors.New("boom")

	err := p.Run(context.Background(), 10, func(_ context.Context, i int) error {
		if i == 5 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Run error = %v, want wrapping %v", err, sentinel)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	p := New(Config{Workers: 2})

	err := p.Run(context.Background(), 4, func(_ context.Context, i int) error {
		if i == 2 {
			panic("unexpected")
		}
		return nil
	})

	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("expected *TaskError, got %v", err)
	}
}

func TestRunIsConcurrencySafe(t *testing.T) {
	p := New(Config{Workers: 8})
	var counter int64

	err := p.Run(context.Background(), 1000, func(_ context.Context, _ int) error {
		atomic.AddInt64(&counter, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counter != 1000 {
		t.Errorf("counter = %d, want 1000", counter)
	}
}

func TestRunZeroTasksIsNoop(t *testing.T) {
	p := New(Config{Workers: 4})
	if err := p.Run(context.Background(), 0, func(context.Context, int) error {
		t.Fatal("fn should not be called")
		return nil
	}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
