// Package speech bridges the screen to a speech-to-text service: it issues
// one transcription request at a time and writes the result into the text
// field.
package speech

import (
	"context"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface check.
var _ domain.Recognizer = (*NoOp)(nil)

// NoOp is the recognizer used when no speech engine is installed. It
// reports itself unavailable so every prompt surfaces a notice.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op recognizer.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Available always returns false.
func (n *NoOp) Available() bool { return false }

// Recognize always fails with ErrSpeechUnavailable.
func (n *NoOp) Recognize(ctx context.Context, req domain.SpeechRequest) ([]string, error) {
	n.log.Debug("speech no-op: would transcribe %s", req.Locale)
	return nil, domain.ErrSpeechUnavailable
}
