package ratelimit

import (
	"context"
	"testing"

	"github.com/zanix-dev/auth-core/storage"
)

func TestCheckLocalFixedWindow(t *testing.T) {
	local := storage.NewMemoryCache()
	ctx := context.Background()

	opts := Options{Key: "user-1", MaxRequests: 2, WindowSeconds: 60, Local: local}

	first, err := Check(ctx, opts)
	if err != nil {
		t.Fatalf("check 1: %v", err)
	}
	if first.Count != 1 || !first.CanContinue {
		t.Fatalf("first = %+v, want count=1 canContinue=true", first)
	}

	second, err := Check(ctx, opts)
	if err != nil {
		t.Fatalf("check 2: %v", err)
	}
	if second.Count != 2 || !second.CanContinue {
		t.Fatalf("second = %+v, want count=2 canContinue=true", second)
	}

	third, err := Check(ctx, opts)
	if err != nil {
		t.Fatalf("check 3: %v", err)
	}
	if third.CanContinue {
		t.Fatalf("third = %+v, want canContinue=false", third)
	}
}

func TestCheckLocalFailedAttemptsResetAtCeiling(t *testing.T) {
	local := storage.NewMemoryCache()
	ctx := context.Background()

	opts := Options{Key: "user-2", MaxRequests: 1, WindowSeconds: 60, MaxFailedAttempts: 2, Local: local}

	if _, err := Check(ctx, opts); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r1, err := Check(ctx, opts)
	if err != nil {
		t.Fatalf("over 1: %v", err)
	}
	if r1.FailedAttempts != 1 {
		t.Fatalf("failedAttempts = %d, want 1", r1.FailedAttempts)
	}

	r2, err := Check(ctx, opts)
	if err != nil {
		t.Fatalf("over 2: %v", err)
	}
	if r2.FailedAttempts != 2 {
		t.Fatalf("failedAttempts = %d, want 2", r2.FailedAttempts)
	}

	r3, err := Check(ctx, opts)
	if err != nil {
		t.Fatalf("over 3: %v", err)
	}
	if r3.FailedAttempts != 0 {
		t.Fatalf("failedAttempts = %d, want reset to 0 at ceiling", r3.FailedAttempts)
	}
}

func TestPlanLookup(t *testing.T) {
	cases := []struct {
		plan string
		idx  int64
		want int64
	}{
		{plan: "", idx: 3, want: 3},
		{plan: "0:10;1:50;2:200", idx: 1, want: 50},
		{plan: "0:10;1:50;2:200", idx: 9, want: 9},
	}

	for _, c := range cases {
		got := PlanLookup(c.plan, c.idx)
		if got != c.want {
			t.Fatalf("PlanLookup(%q, %d) = %d, want %d", c.plan, c.idx, got, c.want)
		}
	}
}
