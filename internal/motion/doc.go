// Package motion provides accelerometer sources: a SensorServer-style
// WebSocket stream from a phone and a simulator for desktops without one.
// Both deliver samples on their own goroutine; callers re-post them onto
// the dispatch loop.
package motion
