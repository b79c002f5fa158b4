package batch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunKeepsOrder(t *testing.T) {
	items := []string{"c", "bb", "a"}
	results, err := Run(context.Background(), items, 2, func(_ context.Context, s string) (int, error) {
		time.Sleep(time.Duration(len(s)) * time.Millisecond)
		return len(s), nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, want := range []int{1, 2, 1} {
		if results[i].Index != i || results[i].Value != want {
			t.Errorf("results[%d] = %+v, want value %d", i, results[i], want)
		}
	}
}

func TestRunCollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	results, err := Run(context.Background(), []int{1, 2, 3, 4}, 0, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		if n%2 == 0 {
			return 0, boom
		}
		return n * 10, nil
	})
	if calls.Load() != 4 {
		t.Errorf("fn called %d times, want 4", calls.Load())
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "item 1") || !strings.Contains(err.Error(), "item 3") {
		t.Errorf("Run() error = %q, want failing indexes named", err)
	}
	if results[0].Value != 10 || results[2].Value != 30 {
		t.Errorf("successful results lost: %+v", results)
	}
}

func TestRunLimit(t *testing.T) {
	var active, peak atomic.Int32
	_, err := Run(context.Background(), make([]int, 12), 3, func(context.Context, int) (struct{}, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Run(ctx, []int{1, 2}, 1, func(context.Context, int) (int, error) {
		t.Error("fn should not run after cancellation")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}
