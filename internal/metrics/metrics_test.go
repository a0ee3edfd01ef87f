package metrics

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"
)

type fixedSampler struct{ mem, cpu float64 }

func (f fixedSampler) Sample(int) (float64, float64) { return f.mem, f.cpu }

func TestFrameRing(t *testing.T) {
	r := NewFrameRing(4)
	if got := r.Snapshot(10); len(got) != 0 {
		t.Fatalf("empty ring snapshot = %v", got)
	}

	for i := 1; i <= 6; i++ {
		r.Push(float64(i))
	}
	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}

	tests := []struct {
		n    int
		want []float64
	}{
		{2, []float64{5, 6}},
		{4, []float64{3, 4, 5, 6}},
		{9, []float64{3, 4, 5, 6}},
	}
	for _, tc := range tests {
		got := r.Snapshot(tc.n)
		if len(got) != len(tc.want) {
			t.Fatalf("Snapshot(%d) = %v, want %v", tc.n, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("Snapshot(%d) = %v, want %v", tc.n, got, tc.want)
				break
			}
		}
	}

	r.Reset()
	if r.Len() != 0 {
		t.Errorf("Len() after Reset = %d", r.Len())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		fps      int
		variance float64
		quality  Quality
		stable   Stability
	}{
		{29, 0, QualityLow, StabilityUnstable},
		{30, 0, QualityMedium, StabilityMarginal},
		{44, 0, QualityMedium, StabilityMarginal},
		{45, 0, QualityHigh, StabilityStable},
		{60, 100, QualityHigh, StabilityStable},
		{60, 101, QualityMedium, StabilityMarginal},
		{20, 500, QualityLow, StabilityUnstable},
	}
	for _, tc := range tests {
		q, s := Classify(tc.fps, tc.variance)
		if q != tc.quality || s != tc.stable {
			t.Errorf("Classify(%d, %v) = %s/%s, want %s/%s", tc.fps, tc.variance, q, s, tc.quality, tc.stable)
		}
	}
}

func TestFPSFromFrameTime(t *testing.T) {
	tests := []struct {
		avg    float64
		maxFPS int
		want   int
	}{
		{16.67, 60, 60},
		{10, 60, 60},
		{10, 120, 100},
		{33.3, 60, 30},
		{0, 60, 60},
	}
	for _, tc := range tests {
		if got := FPSFromFrameTime(tc.avg, tc.maxFPS); got != tc.want {
			t.Errorf("FPSFromFrameTime(%v, %d) = %d, want %d", tc.avg, tc.maxFPS, got, tc.want)
		}
	}
}

func TestVariance(t *testing.T) {
	if got := Variance([]float64{2, 4, 4, 4, 5, 5, 7, 9}); got != 4 {
		t.Errorf("Variance = %v, want 4", got)
	}
	if got := Variance(nil); got != 0 {
		t.Errorf("Variance(nil) = %v", got)
	}

	jitter := []float64{100, 1, 31, 1, 31, 1, 31, 1, 31, 1, 31}
	if got := PacingVariance(jitter[2:]); got != 0 {
		t.Errorf("PacingVariance(9 frames) = %v, want 0", got)
	}
	if got := PacingVariance(jitter); got != 225 {
		t.Errorf("PacingVariance = %v, want 225 over the last 10", got)
	}
}

func TestReporterTick(t *testing.T) {
	r := NewReporter(WithSampler(fixedSampler{mem: 40, cpu: 12}))

	if got := r.Tick(); got != DefaultSnapshot() {
		t.Errorf("Tick() without frames = %+v, want default", got)
	}

	var seen []Snapshot
	r.OnUpdate(func(s Snapshot) { seen = append(seen, s) })

	for i := 0; i < 60; i++ {
		r.RecordFrame(25)
	}
	r.RecordFrame(0)
	r.RecordFrame(-3)

	snap := r.Tick()
	want := Snapshot{FPS: 40, Memory: 40, CPU: 12, FrameTimeMs: 25, Stability: StabilityMarginal, Quality: QualityMedium}
	if snap != want {
		t.Errorf("Tick() = %+v, want %+v", snap, want)
	}
	if r.Latest() != want {
		t.Errorf("Latest() = %+v", r.Latest())
	}
	if len(seen) != 1 {
		t.Errorf("callback ran %d times, want 1", len(seen))
	}
}

func TestReporterJitterDowngrades(t *testing.T) {
	r := NewReporter(WithSampler(fixedSampler{}))
	for i := 0; i < 50; i++ {
		r.RecordFrame(16)
	}
	// Last ten alternate 1 and 31: mean 16, variance 225.
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			r.RecordFrame(1)
		} else {
			r.RecordFrame(31)
		}
	}
	snap := r.Tick()
	if snap.Quality != QualityMedium || snap.Stability != StabilityMarginal {
		t.Errorf("jittery frames classified %s/%s", snap.Quality, snap.Stability)
	}
}

func TestReporterShortHistorySkipsVariance(t *testing.T) {
	tests := []struct {
		name      string
		frames    []float64
		quality   Quality
		stability Stability
	}{
		{"three jittery frames", []float64{5, 30, 5}, QualityHigh, StabilityStable},
		{"two slow frames", []float64{10, 40}, QualityMedium, StabilityMarginal},
		{"nine jittery frames", []float64{1, 31, 1, 31, 1, 31, 1, 31, 16}, QualityHigh, StabilityStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReporter(WithSampler(fixedSampler{}))
			for _, dt := range tt.frames {
				r.RecordFrame(dt)
			}
			snap := r.Tick()
			if snap.Quality != tt.quality || snap.Stability != tt.stability {
				t.Errorf("Tick() = %s/%s, want %s/%s", snap.Quality, snap.Stability, tt.quality, tt.stability)
			}
		})
	}
}

func TestReporterStartStop(t *testing.T) {
	r := NewReporter(WithSampler(fixedSampler{}), WithInterval(5*time.Millisecond))
	got := make(chan Snapshot, 16)
	r.OnUpdate(func(s Snapshot) {
		select {
		case got <- s:
		default:
		}
	})
	r.RecordFrame(16.67)

	r.Start(context.Background())
	r.Start(context.Background())
	if !r.Running() {
		t.Fatal("Running() = false after Start")
	}

	select {
	case s := <-got:
		if s.FPS != 60 {
			t.Errorf("snapshot FPS = %d, want 60", s.FPS)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	r.Stop()
	r.Stop()
	if r.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestReporterStopsOnContextCancel(t *testing.T) {
	r := NewReporter(WithSampler(fixedSampler{}), WithInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on cancel")
	}
	r.Stop()
}

func TestSyntheticSampler(t *testing.T) {
	s := NewSyntheticSampler()
	s.now = func() time.Time { return time.UnixMilli(0) }

	tests := []struct {
		fps            int
		memory         float64
		cpuLo, cpuHigh float64
	}{
		{60, 45, 12, 20},
		{40, 45, 27, 35},
		{20, 65, 37, 45},
	}
	for _, tc := range tests {
		mem, cpu := s.Sample(tc.fps)
		if mem != tc.memory {
			t.Errorf("Sample(%d) memory = %v, want %v", tc.fps, mem, tc.memory)
		}
		if cpu < tc.cpuLo || cpu > tc.cpuHigh {
			t.Errorf("Sample(%d) cpu = %v, want in [%v,%v]", tc.fps, cpu, tc.cpuLo, tc.cpuHigh)
		}
	}
}

func TestRuntimeSampler(t *testing.T) {
	s := NewRuntimeSampler()
	mem, cpu := s.Sample(60)
	if mem < 0 {
		t.Errorf("heap = %v MB, want >= 0", mem)
	}
	if cpu < 0 || cpu > 100 || math.IsNaN(cpu) {
		t.Errorf("cpu = %v, want in [0,100]", cpu)
	}
}

func TestSessionSummary(t *testing.T) {
	now := time.Unix(100, 0)
	s := newSessionClock(func() time.Time { return now })

	for _, fps := range []int{60, 50, 40} {
		s.Add(Snapshot{FPS: fps, Memory: float64(fps), CPU: 100 - float64(fps)})
	}
	now = now.Add(3 * time.Second)

	got := s.Summary()
	want := Summary{
		AvgFPS: 50, PeakFPS: 60, MinFPS: 40,
		PeakMemory: 60, PeakCPU: 60, Samples: 3,
		Duration: 3 * time.Second, Grade: "A", Stability: "moderate",
	}
	if got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}

	for i := 0; i < 80; i++ {
		s.Add(Snapshot{FPS: i})
	}
	h := s.History()
	if len(h) != 50 || h[len(h)-1].FPS != 79 {
		t.Errorf("history len %d, last %+v", len(h), h[len(h)-1])
	}

	s.Reset()
	if got := s.Summary(); got.Samples != 0 || got.Duration != 0 {
		t.Errorf("Summary() after Reset = %+v", got)
	}
}

func TestSummaryJSON(t *testing.T) {
	data, err := json.Marshal(Summary{AvgFPS: 58.5, Duration: 75*time.Second + 900*time.Millisecond, Grade: "A+"})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["duration"] != 75.0 {
		t.Errorf("duration = %v, want 75 seconds", decoded["duration"])
	}
	if decoded["avgFps"] != 58.5 || decoded["grade"] != "A+" {
		t.Errorf("summary = %s", data)
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{60, "A+"}, {55, "A+"}, {54.9, "A"}, {45, "A"},
		{44, "B"}, {35, "B"}, {34, "C"}, {25, "C"}, {24.9, "D"},
	}
	for _, tc := range tests {
		if got := Grade(tc.avg); got != tc.want {
			t.Errorf("Grade(%v) = %q, want %q", tc.avg, got, tc.want)
		}
	}

	if SessionStability(56) != "stable" || SessionStability(55) != "moderate" || SessionStability(30) != "unstable" {
		t.Error("SessionStability boundaries wrong")
	}
}
