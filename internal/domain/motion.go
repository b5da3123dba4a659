package domain

import (
	"math"
	"time"
)

// MotionSample is one 3-axis accelerometer reading. At is the time the
// sample was received, not the sensor's own clock.
type MotionSample struct {
	X, Y, Z float64
	At      time.Time
}

// Magnitude returns the Euclidean norm of the acceleration vector.
func (s MotionSample) Magnitude() float64 {
	return math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
}

// MotionListener receives samples from a MotionSensor. Sensors call it from
// their own goroutine and it must not block.
type MotionListener func(MotionSample)

// SensorLostFunc is told when a registered sensor stops delivering, either
// because it could not connect or because the stream dropped. Sensors call
// it at most once per registration, from their own goroutine. A call can
// race with Unregister, so callers check the registration is still current.
type SensorLostFunc func(err error)
