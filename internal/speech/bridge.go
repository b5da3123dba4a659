package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/language"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// BridgeOption configures the Bridge.
type BridgeOption func(*Bridge)

// WithPrompt overrides the prompt shown while listening.
func WithPrompt(p string) BridgeOption {
	return func(b *Bridge) { b.prompt = p }
}

// WithIDGenerator overrides how request IDs are minted.
func WithIDGenerator(fn func() string) BridgeOption {
	return func(b *Bridge) { b.newID = fn }
}

// WithListeningFunc registers a callback fired on the dispatch loop
// whenever a request starts or finishes.
func WithListeningFunc(fn func(listening bool)) BridgeOption {
	return func(b *Bridge) { b.onListening = fn }
}

// Bridge runs speech requests against a Recognizer and writes the first
// candidate into the text field.
//
// Prompt and Close must be called from the dispatch loop. Recognition runs
// on its own goroutine and the result is posted back to the loop, tagged
// with the request ID; results whose ID no longer matches are dropped.
type Bridge struct {
	rec        domain.Recognizer
	field      domain.TextField
	notifier   domain.Notifier
	dispatcher domain.Dispatcher
	log        *logger.Logger

	prompt      string
	newID       func() string
	onListening func(bool)

	pending string // request ID in flight, "" when idle
	cancel  context.CancelFunc
	closed  bool
}

// NewBridge creates a speech bridge.
func NewBridge(rec domain.Recognizer, field domain.TextField, notifier domain.Notifier, dispatcher domain.Dispatcher, log *logger.Logger, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		rec:        rec,
		field:      field,
		notifier:   notifier,
		dispatcher: dispatcher,
		log:        log,
		prompt:     DefaultPrompt,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pending reports whether a request is in flight.
func (b *Bridge) Pending() bool { return b.pending != "" }

// Prompt starts a free-form transcription in info's locale and returns the
// request ID. Only one request may be in flight; a second call fails with
// ErrSpeechPending. A missing recognizer is reported to the user on every
// attempt and fails with ErrSpeechUnavailable.
func (b *Bridge) Prompt(ctx context.Context, info language.Info) (string, error) {
	if b.closed {
		return "", fmt.Errorf("prompting speech: %w", domain.ErrInvalidTransition)
	}
	if b.pending != "" {
		b.log.Debug("rejecting prompt for %s: %s still pending", info.Locale, b.pending)
		return "", domain.ErrSpeechPending
	}
	if b.rec == nil || !b.rec.Available() {
		b.notify(ctx, domain.MsgSpeechUnsupported)
		return "", domain.ErrSpeechUnavailable
	}

	req := domain.SpeechRequest{
		ID:       b.newID(),
		Locale:   info.Locale,
		FreeForm: true,
		Prompt:   b.prompt,
	}

	reqCtx, cancel := context.WithCancel(ctx)
	b.pending = req.ID
	b.cancel = cancel
	b.setListening(true)

	b.log.Info("speech request %s started (locale=%s)", req.ID, req.Locale)
	b.notify(ctx, req.Prompt)

	go func() {
		candidates, err := b.rec.Recognize(reqCtx, req)
		if !b.dispatcher.Post(func() { b.deliver(ctx, req.ID, candidates, err) }) {
			b.log.Debug("speech request %s finished after dispatch stopped", req.ID)
		}
	}()

	return req.ID, nil
}

// Close cancels any in-flight request. Late results are ignored.
func (b *Bridge) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.pending != "" {
		b.log.Debug("speech request %s abandoned on close", b.pending)
		b.pending = ""
	}
}

// deliver handles a finished request on the dispatch loop.
func (b *Bridge) deliver(ctx context.Context, id string, candidates []string, err error) {
	if b.closed || id != b.pending {
		b.log.Debug("dropping stale speech result %s", id)
		return
	}
	b.pending = ""
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.setListening(false)

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSpeechCancelled), errors.Is(err, context.Canceled):
		b.log.Info("speech request %s cancelled", id)
		return
	case errors.Is(err, domain.ErrSpeechUnavailable):
		b.notify(ctx, domain.MsgSpeechUnsupported)
		return
	default:
		b.log.Error("speech request %s: %v", id, err)
		b.alert(ctx, domain.MsgSpeechFailed)
		return
	}

	text := ""
	if len(candidates) > 0 {
		text = candidates[0]
	}
	b.log.Info("speech request %s done (%d candidates)", id, len(candidates))
	b.field.SetText(text)
}

func (b *Bridge) setListening(v bool) {
	if b.onListening != nil {
		b.onListening(v)
	}
}

func (b *Bridge) notify(ctx context.Context, msg string) {
	if b.notifier == nil {
		return
	}
	if err := b.notifier.Notify(ctx, msg); err != nil {
		b.log.Warn("notify: %v", err)
	}
}

func (b *Bridge) alert(ctx context.Context, msg string) {
	if b.notifier == nil {
		return
	}
	if err := b.notifier.NotifyUrgent(ctx, msg); err != nil {
		b.log.Warn("notify: %v", err)
	}
}
