// Package domain defines the core types and interfaces for the shake-to-travel
// screen. All other packages depend on domain; domain depends on nothing.
package domain

import "context"

// Notifier delivers short user-visible notices (toasts). Implementations
// can draw them on screen, print them, or raise desktop notifications.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// TextField is the editable field dictated text is written into.
type TextField interface {
	SetText(text string)
}

// SpeechRequest describes one transcription request.
type SpeechRequest struct {
	ID       string
	Locale   string // BCP 47, e.g. "fr-FR"
	FreeForm bool
	Prompt   string
}

// Recognizer is the speech-to-text service. Recognize blocks until the
// utterance is transcribed, ctx is cancelled, or the service fails. A nil
// or empty slice means nothing was heard.
type Recognizer interface {
	Available() bool
	Recognize(ctx context.Context, req SpeechRequest) ([]string, error)
}

// MotionSensor delivers a continuous accelerometer stream to one listener.
// Register and Unregister must be paired with screen visibility. Neither
// may block on the network: remote sensors connect in the background and
// report failures through lost. No sample is delivered after Unregister
// returns.
type MotionSensor interface {
	Name() string
	Register(listener MotionListener, lost SensorLostFunc) error
	Unregister()
}

// Greeting identifies a short audio clip and how to synthesize it if the
// clip resource is missing.
type Greeting struct {
	Resource string // clip resource name, e.g. "french_bonjour"
	Phrase   string // spoken text, e.g. "Bonjour"
	Locale   string
	Voice    string
}

// Playback is one live audio instance. Release must be called exactly once;
// later calls return ErrPlaybackReleased.
type Playback interface {
	Release() error
}

// AudioPlayer starts playback asynchronously and returns immediately.
type AudioPlayer interface {
	Play(ctx context.Context, g Greeting) (Playback, error)
}

// MapViewer hands a coordinate to an external map application.
// There is no callback once the viewer takes over.
type MapViewer interface {
	Open(ctx context.Context, at Coordinate) error
}

// Dispatcher serializes callbacks onto the single UI dispatch sequence.
// Post returns false if the sequence has stopped and fn will never run.
type Dispatcher interface {
	Post(fn func()) bool
}
