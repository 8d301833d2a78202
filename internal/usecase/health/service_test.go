package health

import (
	"context"
	"errors"
	"testing"
)

type pingFn func(ctx context.Context) error

func (f pingFn) Ping(ctx context.Context) error { return f(ctx) }

type checkFn func(ctx context.Context) error

func (f checkFn) HealthCheck(ctx context.Context) error { return f(ctx) }

func ok(_ context.Context) error   { return nil }
func fail(_ context.Context) error { return errors.New("down") }

func TestCheck_AllHealthy(t *testing.T) {
	s := New(pingFn(ok), checkFn(ok))
	report := s.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("expected ok, got %s", report.Status)
	}
	if report.Checks["database"] != CheckOK || report.Checks["embedding"] != CheckOK {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_DatabaseDownIsUnhealthy(t *testing.T) {
	s := New(pingFn(fail), checkFn(ok))
	report := s.Check(context.Background())

	if report.Status != Unhealthy {
		t.Errorf("expected error status, got %s", report.Status)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_EmbeddingDownIsDegraded(t *testing.T) {
	s := New(pingFn(ok), checkFn(fail))
	report := s.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("expected degraded, got %s", report.Status)
	}
}

func TestCheck_NilEmbeddingSkipped(t *testing.T) {
	s := New(pingFn(ok), nil)
	report := s.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("expected ok, got %s", report.Status)
	}
	if _, present := report.Checks["embedding"]; present {
		t.Error("embedding check should be absent")
	}
}
