package telemetry

import (
	"testing"
	"time"
)

// fakeNow returns a clock function that advances only when told to.
func fakeNow() (func() time.Time, func(time.Duration)) {
	t := time.Unix(0, 0)
	return func() time.Time { return t }, func(d time.Duration) { t = t.Add(d) }
}

func TestPerfCollector_PhaseTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	now, advance := fakeNow()
	pc.now = now

	for i := 0; i < 4; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseVelocity)
		advance(300 * time.Microsecond)
		pc.StartPhase(PhasePosition)
		advance(100 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()
	if stats.AvgStep != 400*time.Microsecond {
		t.Errorf("expected 400µs average step, got %v", stats.AvgStep)
	}
	if stats.PhaseAvg[PhaseVelocity] != 300*time.Microsecond {
		t.Errorf("expected 300µs velocity pass, got %v", stats.PhaseAvg[PhaseVelocity])
	}
	if pct := stats.PhasePct[PhasePosition]; pct != 25 {
		t.Errorf("expected position pass at 25%%, got %v", pct)
	}
	if stats.StepsPerSecond != 2500 {
		t.Errorf("expected 2500 steps/s, got %v", stats.StepsPerSecond)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	now, advance := fakeNow()
	pc.now = now

	// Two slow steps then three fast ones; the slow ones roll out.
	for _, d := range []time.Duration{time.Millisecond, time.Millisecond, 10 * time.Microsecond, 20 * time.Microsecond, 30 * time.Microsecond} {
		pc.StartStep()
		pc.StartPhase(PhaseSwap)
		advance(d)
		pc.EndStep()
	}

	if pc.Samples() != 3 {
		t.Fatalf("expected 3 samples, got %d", pc.Samples())
	}
	stats := pc.Stats()
	if stats.MaxStep != 30*time.Microsecond {
		t.Errorf("expected max 30µs, got %v", stats.MaxStep)
	}
	if stats.MinStep != 10*time.Microsecond {
		t.Errorf("expected min 10µs, got %v", stats.MinStep)
	}
	if stats.AvgStep != 20*time.Microsecond {
		t.Errorf("expected avg 20µs, got %v", stats.AvgStep)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgStep != 0 {
		t.Error("expected zero avg step for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	now, advance := fakeNow()
	pc.now = now

	pc.RecordFrame()
	advance(20 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 20*time.Millisecond {
		t.Errorf("expected 20ms frame, got %v", stats.FrameDuration)
	}
	if stats.FPS != 50 {
		t.Errorf("expected 50 FPS, got %v", stats.FPS)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{
		AvgStep:  1500 * time.Microsecond,
		PhasePct: map[string]float64{PhaseVelocity: 70, PhaseSwap: 1},
	}
	row := s.ToCSV(42)
	if row.WindowEnd != 42 || row.AvgStepUS != 1500 {
		t.Errorf("unexpected row %+v", row)
	}
	if row.VelocityPct != 70 || row.SwapPct != 1 || row.PositionPct != 0 {
		t.Errorf("phase percentages not carried: %+v", row)
	}
}
