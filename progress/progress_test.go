package progress

import (
	"context"
	"testing"
)

func TestSuccessIncrementsProcessed(t *testing.T) {
	r := New(4, false)
	ctx := context.Background()
	r.Success(ctx, "SPIRV", "a.hlsl", "main", "")
	r.Success(ctx, "SPIRV", "b.hlsl", "main", "")
	if got := r.processedTaskCount.Load(); got != 2 {
		t.Errorf("processedTaskCount = %d, want 2", got)
	}
}

func TestFailWithoutContinueTerminates(t *testing.T) {
	r := New(1, false)
	r.Fail(context.Background(), "a.hlsl", "main", "", "compile error")
	if !r.Terminated() {
		t.Errorf("Terminated() = false, want true")
	}
	if r.FailedCount() != 1 {
		t.Errorf("FailedCount() = %d, want 1", r.FailedCount())
	}
}

func TestFailWithContinueDoesNotTerminate(t *testing.T) {
	r := New(1, true)
	r.Fail(context.Background(), "a.hlsl", "main", "", "compile error")
	if r.Terminated() {
		t.Errorf("Terminated() = true, want false")
	}
	if r.FailedCount() != 1 {
		t.Errorf("FailedCount() = %d, want 1", r.FailedCount())
	}
}

func TestRequestCancel(t *testing.T) {
	r := New(1, false)
	if r.Terminated() {
		t.Fatalf("Terminated() = true before RequestCancel")
	}
	r.RequestCancel()
	if !r.Terminated() {
		t.Errorf("Terminated() = false after RequestCancel, want true")
	}
}

func TestPercentZeroTasks(t *testing.T) {
	r := New(0, false)
	if got := r.percent(); got != 100 {
		t.Errorf("percent() with zero tasks = %v, want 100", got)
	}
}
