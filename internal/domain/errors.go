package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrUnknownLanguage   = errors.New("unknown language")
	ErrNoSelection       = errors.New("no language selected")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrSpeechUnavailable = errors.New("speech recognition unavailable")
	ErrSpeechPending     = errors.New("speech request already pending")
	ErrSpeechCancelled   = errors.New("speech request cancelled")
	ErrSensorUnavailable = errors.New("accelerometer unavailable")
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrPlaybackReleased  = errors.New("playback already released")
	ErrClipNotFound      = errors.New("greeting clip not found")
	ErrMapViewerMissing  = errors.New("no map viewer available")
)
