package motion

import (
	"sync"
	"time"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface check.
var _ domain.MotionSensor = (*Simulator)(nil)

// DefaultSimInterval matches the platform's "normal" sensor rate.
const DefaultSimInterval = 200 * time.Millisecond

// Readings the simulator emits: a phone lying flat, and one hard jolt.
var (
	restingReading = [3]float64{0, 0, 9.81}
	joltReading    = [3]float64{25, 18, 30}
)

// SimOption configures the Simulator.
type SimOption func(*Simulator)

// WithSimInterval sets the sample period.
func WithSimInterval(d time.Duration) SimOption {
	return func(s *Simulator) { s.interval = d }
}

// WithSimClock sets the time source used to stamp samples.
func WithSimClock(now func() time.Time) SimOption {
	return func(s *Simulator) { s.now = now }
}

// Simulator is a fake accelerometer. It reports a resting phone every
// interval; Shake makes the next sample a jolt.
type Simulator struct {
	interval time.Duration
	now      func() time.Time
	log      *logger.Logger

	mu   sync.Mutex
	jolt bool
	stop chan struct{}
	done chan struct{}
}

// NewSimulator creates an idle simulator.
func NewSimulator(log *logger.Logger, opts ...SimOption) *Simulator {
	s := &Simulator{
		interval: DefaultSimInterval,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements domain.MotionSensor.
func (s *Simulator) Name() string { return "simulated accelerometer" }

// Register starts emitting samples to l. The simulator never loses its
// stream, so lost is not called.
func (s *Simulator) Register(l domain.MotionListener, _ domain.SensorLostFunc) error {
	s.Unregister()

	stop, done := make(chan struct{}), make(chan struct{})
	s.mu.Lock()
	s.stop, s.done = stop, done
	s.mu.Unlock()

	go s.run(l, stop, done)
	s.log.Debug("simulator started (every %s)", s.interval)
	return nil
}

// Unregister stops the emitter and waits for it to exit.
func (s *Simulator) Unregister() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.log.Debug("simulator stopped")
}

// Shake makes the next emitted sample a jolt.
func (s *Simulator) Shake() {
	s.mu.Lock()
	s.jolt = true
	s.mu.Unlock()
}

func (s *Simulator) run(l domain.MotionListener, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l(s.next())
		}
	}
}

func (s *Simulator) next() domain.MotionSample {
	s.mu.Lock()
	r := restingReading
	if s.jolt {
		r = joltReading
		s.jolt = false
	}
	s.mu.Unlock()
	return domain.MotionSample{X: r[0], Y: r[1], Z: r[2], At: s.now()}
}
