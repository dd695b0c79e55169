package core

import "testing"

func TestApplyOptions_DefaultsFillZeroFields(t *testing.T) {
	cfg := applyOptions(nil)
	if cfg.IdleMisses != defaultIdleMisses {
		t.Fatalf("IdleMisses = %d, want %d", cfg.IdleMisses, defaultIdleMisses)
	}
	if cfg.IdleSleep != defaultIdleSleep {
		t.Fatalf("IdleSleep = %d, want %d", cfg.IdleSleep, defaultIdleSleep)
	}
	if cfg.Logger == nil || cfg.Metrics == nil || cfg.Clock == nil || cfg.PanicHandler == nil {
		t.Fatal("applyOptions should fill every collaborator with a default")
	}
}

func TestApplyOptions_ExplicitOptionsOverrideDefaults(t *testing.T) {
	cfg := applyOptions([]Option{
		WithWorkers(7),
		WithStartIndex(1),
		WithIdleBackoff(3, 42),
		WithLogger(NewNoOpLogger()),
	})
	if cfg.Workers != 7 {
		t.Fatalf("Workers = %d, want 7", cfg.Workers)
	}
	if cfg.StartIndex != 1 {
		t.Fatalf("StartIndex = %d, want 1", cfg.StartIndex)
	}
	if cfg.IdleMisses != 3 || cfg.IdleSleep != 42 {
		t.Fatalf("IdleMisses/IdleSleep = %d/%d, want 3/42", cfg.IdleMisses, cfg.IdleSleep)
	}
	if _, ok := cfg.Logger.(*NoOpLogger); !ok {
		t.Fatalf("Logger = %T, want *NoOpLogger", cfg.Logger)
	}
}

func TestWithMetricsAndClock(t *testing.T) {
	clock := RealClock()
	cfg := applyOptions([]Option{
		WithMetrics(NilMetrics{}),
		WithClock(clock),
	})
	if _, ok := cfg.Metrics.(NilMetrics); !ok {
		t.Fatalf("Metrics = %T, want NilMetrics", cfg.Metrics)
	}
	if cfg.Clock != clock {
		t.Fatal("Clock should be the exact collaborator passed to WithClock")
	}
}
