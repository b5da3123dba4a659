// Package shake turns a raw accelerometer stream into discrete shake events.
//
// For every sample the detector checks whether more than the minimum
// interval has passed since the last accepted sample. If so the sample is
// accepted, and its speed proxy
//
//	speed = |a| * scale / elapsed_ms
//
// is compared against the threshold. Samples inside the interval are
// ignored entirely, so two events can never be closer than the interval.
package shake

import (
	"time"

	"github.com/hammamikhairi/springbreak/internal/domain"
)

// Defaults tuned for a phone held in one hand.
const (
	DefaultThreshold   = 800.0
	DefaultMinInterval = 100 * time.Millisecond
	DefaultScale       = 10000.0
)

// Option configures the detector.
type Option func(*Detector)

// WithThreshold sets the speed above which a shake fires.
func WithThreshold(v float64) Option {
	return func(d *Detector) { d.threshold = v }
}

// WithMinInterval sets the gate between accepted samples.
func WithMinInterval(iv time.Duration) Option {
	return func(d *Detector) { d.minInterval = iv }
}

// WithScale sets the constant the magnitude/elapsed ratio is multiplied by.
func WithScale(v float64) Option {
	return func(d *Detector) { d.scale = v }
}

// Detector is not safe for concurrent use; feed it from one goroutine.
type Detector struct {
	threshold   float64
	minInterval time.Duration
	scale       float64

	primed bool
	last   time.Time

	onShake func(speed float64)
}

// New creates a detector. onShake may be nil when only Observe's return
// value is needed.
func New(onShake func(speed float64), opts ...Option) *Detector {
	d := &Detector{
		threshold:   DefaultThreshold,
		minInterval: DefaultMinInterval,
		scale:       DefaultScale,
		onShake:     onShake,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Threshold returns the configured speed threshold.
func (d *Detector) Threshold() float64 { return d.threshold }

// MinInterval returns the configured gate.
func (d *Detector) MinInterval() time.Duration { return d.minInterval }

// Reset forgets the last accepted timestamp. The next sample only
// establishes a new baseline.
func (d *Detector) Reset() {
	d.primed = false
	d.last = time.Time{}
}

// LastAccepted returns the timestamp of the last sample that passed the
// interval gate, and false before any sample has been seen.
func (d *Detector) LastAccepted() (time.Time, bool) {
	return d.last, d.primed
}

// Observe feeds one sample and reports whether it raised a shake event.
func (d *Detector) Observe(s domain.MotionSample) bool {
	if !d.primed {
		d.primed = true
		d.last = s.At
		return false
	}

	elapsed := s.At.Sub(d.last)
	if elapsed <= d.minInterval {
		return false
	}
	d.last = s.At

	speed := Speed(s.Magnitude(), elapsed, d.scale)
	if speed <= d.threshold {
		return false
	}

	if d.onShake != nil {
		d.onShake(speed)
	}
	return true
}

// Speed computes the detector's speed proxy for a magnitude observed
// elapsed after the previous accepted sample.
func Speed(magnitude float64, elapsed time.Duration, scale float64) float64 {
	ms := float64(elapsed) / float64(time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return magnitude * scale / ms
}
