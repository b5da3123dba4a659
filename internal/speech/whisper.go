package speech

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface check.
var _ domain.Recognizer = (*Whisper)(nil)

// WhisperOption configures the Whisper recognizer.
type WhisperOption func(*Whisper)

// WithRecordDuration sets how long each dictation clip lasts.
func WithRecordDuration(d time.Duration) WhisperOption {
	return func(w *Whisper) { w.recordDuration = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) WhisperOption {
	return func(w *Whisper) { w.tempDir = dir }
}

// Whisper records one clip from the default microphone and transcribes it
// with a local whisper.cpp build.
//
// The model picks the spoken language itself; the requested locale is only
// logged. A multilingual model (ggml-small, ggml-medium) is needed for
// anything other than English.
type Whisper struct {
	whisperBin     string
	modelPath      string
	tempDir        string
	recordDuration time.Duration
	log            *logger.Logger

	mu sync.Mutex // one recording at a time
}

// NewWhisper creates a recognizer.
//
//   - whisperBin: path to the whisper-cli executable
//   - modelPath:  path to the GGML model file
func NewWhisper(whisperBin, modelPath string, log *logger.Logger, opts ...WhisperOption) *Whisper {
	w := &Whisper{
		whisperBin:     whisperBin,
		modelPath:      modelPath,
		tempDir:        DefaultTempDir,
		recordDuration: DefaultRecordDuration,
		log:            log,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := os.MkdirAll(w.tempDir, 0o755); err != nil {
		log.Error("whisper: creating temp dir %s: %v", w.tempDir, err)
	}
	return w
}

// Available reports whether both the binary and the model can be found.
func (w *Whisper) Available() bool {
	if _, err := exec.LookPath(w.whisperBin); err != nil {
		w.log.Debug("whisper: binary %q not found: %v", w.whisperBin, err)
		return false
	}
	if _, err := os.Stat(w.modelPath); err != nil {
		w.log.Debug("whisper: model %q not found: %v", w.modelPath, err)
		return false
	}
	return true
}

// Recognize records for the configured duration and returns at most one
// candidate. Cancelling ctx stops the recording and yields
// ErrSpeechCancelled.
func (w *Whisper) Recognize(ctx context.Context, req domain.SpeechRequest) ([]string, error) {
	if !w.Available() {
		return nil, domain.ErrSpeechUnavailable
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := w.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		w.whisperBin,
		w.modelPath,
		w.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		w.log.Error("whisper: transcriber init failed: %v", err)
		return nil, domain.ErrSpeechUnavailable
	}

	w.log.Info("whisper: recording %s for request %s (locale=%s)", w.recordDuration, req.ID, req.Locale)
	if err := t.Start(); err != nil {
		w.log.Error("whisper: recording start failed: %v", err)
		return nil, domain.ErrSpeechUnavailable
	}

	select {
	case <-time.After(w.recordDuration):
	case <-ctx.Done():
		t.Stop()
		wg.Wait()
		return nil, domain.ErrSpeechCancelled
	}

	t.Stop()
	wg.Wait()

	text := cleanTranscription(result)
	w.log.Debug("whisper: heard %q (raw %q)", text, result)
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}
