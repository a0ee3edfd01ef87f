package metrics

import (
	"math"
	"math/rand/v2"
	"runtime"
	rtmetrics "runtime/metrics"
	"sync"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/config"
)

// Sampler supplies the memory (MB) and CPU (%) figures of a snapshot.
type Sampler interface {
	Sample(fps int) (memoryMB, cpuPct float64)
}

// NewSampler returns the sampler named in settings, runtime by default.
func NewSampler(name string) Sampler {
	if name == config.SamplerSynthetic {
		return NewSyntheticSampler()
	}
	return NewRuntimeSampler()
}

const (
	heapMetric = "/memory/classes/heap/objects:bytes"
	cpuMetric  = "/cpu/classes/user:cpu-seconds"
)

// RuntimeSampler reads the live heap and the process user CPU share since
// the previous sample.
type RuntimeSampler struct {
	mu       sync.Mutex
	samples  []rtmetrics.Sample
	lastCPU  float64
	lastWall time.Time
	now      func() time.Time
}

func NewRuntimeSampler() *RuntimeSampler {
	s := &RuntimeSampler{
		samples: []rtmetrics.Sample{{Name: heapMetric}, {Name: cpuMetric}},
		now:     time.Now,
	}
	rtmetrics.Read(s.samples)
	s.lastCPU = floatValue(s.samples[1])
	s.lastWall = s.now()
	return s
}

func (s *RuntimeSampler) Sample(int) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rtmetrics.Read(s.samples)
	memory := floatValue(s.samples[0]) / (1 << 20)

	cpu := floatValue(s.samples[1])
	wall := s.now()
	elapsed := wall.Sub(s.lastWall).Seconds() * float64(runtime.GOMAXPROCS(0))
	var pct float64
	if elapsed > 0 {
		pct = (cpu - s.lastCPU) / elapsed * 100
	}
	s.lastCPU, s.lastWall = cpu, wall

	return round1(memory), round1(math.Max(0, math.Min(100, pct)))
}

func floatValue(s rtmetrics.Sample) float64 {
	switch s.Value.Kind() {
	case rtmetrics.KindUint64:
		return float64(s.Value.Uint64())
	case rtmetrics.KindFloat64:
		return s.Value.Float64()
	default:
		return 0
	}
}

// SyntheticSampler produces the plausible-looking figures the browser
// studio displayed: a slow memory sine and noisy CPU, both worse when the
// frame rate drops.
type SyntheticSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewSyntheticSampler() *SyntheticSampler {
	seed := uint64(time.Now().UnixNano())
	return &SyntheticSampler{
		rng: rand.New(rand.NewPCG(seed, seed>>1)),
		now: time.Now,
	}
}

func (s *SyntheticSampler) Sample(fps int) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := float64(s.now().UnixMilli())
	memory := 45 + math.Sin(ms*0.001)*10
	if fps < 30 {
		memory += 20
	}
	memory = math.Max(20, memory)

	penalty := 0.0
	switch {
	case fps < 30:
		penalty = 25
	case fps < 45:
		penalty = 15
	}
	cpu := math.Min(100, 12+s.rng.Float64()*8+penalty)

	return round1(memory), round1(cpu)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
