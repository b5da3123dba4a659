package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.AudioPlayer = (*Player)(nil)
	_ domain.Playback    = (*playback)(nil)
	_ voice              = (*oto.Player)(nil)
)

// ClipSource resolves a greeting to WAV bytes. *ClipStore implements it.
type ClipSource interface {
	Load(ctx context.Context, g domain.Greeting) ([]byte, error)
}

// voice is one playing PCM stream.
type voice interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// pollInterval is how often a playing voice is checked for completion.
const pollInterval = 10 * time.Millisecond

// Player plays greeting clips through oto. Each Play returns its own
// handle; the caller decides when an older one is released.
type Player struct {
	clips    ClipSource
	newVoice func(io.Reader) voice
	log      *logger.Logger
}

// NewPlayer creates an audio player. Initializes the system audio context.
// Returns an error if the audio device is unavailable.
func NewPlayer(clips ClipSource, log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return newPlayer(clips, func(r io.Reader) voice { return ctx.NewPlayer(r) }, log), nil
}

func newPlayer(clips ClipSource, newVoice func(io.Reader) voice, log *logger.Logger) *Player {
	return &Player{clips: clips, newVoice: newVoice, log: log}
}

// Play starts g in the background and returns its handle immediately.
// Load and decode failures are logged; the handle is still valid.
func (p *Player) Play(ctx context.Context, g domain.Greeting) (domain.Playback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &playback{
		resource: g.Resource,
		cancel:   cancel,
		done:     make(chan struct{}),
		log:      p.log,
	}
	go h.run(ctx, p, g)
	return h, nil
}

// playback is the handle for one started greeting.
type playback struct {
	resource string
	cancel   context.CancelFunc
	done     chan struct{}
	log      *logger.Logger

	mu       sync.Mutex
	active   voice // nil until the PCM is ready, and after it finishes
	released bool
}

func (h *playback) run(ctx context.Context, p *Player, g domain.Greeting) {
	defer close(h.done)

	wav, err := p.clips.Load(ctx, g)
	if err != nil {
		if ctx.Err() == nil {
			h.log.Warn("greeting %s unavailable: %v", g.Resource, err)
		}
		return
	}
	pcm, err := playablePCM(wav)
	if err != nil {
		h.log.Warn("greeting %s not playable: %v", g.Resource, err)
		return
	}

	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	v := p.newVoice(bytes.NewReader(pcm))
	h.active = v
	h.mu.Unlock()

	v.Play()
	h.log.Debug("playing greeting %s (%d bytes of PCM)", g.Resource, len(pcm))

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for v.IsPlaying() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	h.mu.Lock()
	finished := h.active == v
	if finished {
		h.active = nil
	}
	h.mu.Unlock()
	if finished {
		if err := v.Close(); err != nil {
			h.log.Warn("closing greeting %s: %v", g.Resource, err)
		}
	}
}

// Release stops the greeting if it is still playing and frees its stream.
// A second call returns domain.ErrPlaybackReleased.
func (h *playback) Release() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return domain.ErrPlaybackReleased
	}
	h.released = true
	v := h.active
	h.active = nil
	h.mu.Unlock()

	h.cancel()
	if v == nil {
		return nil
	}
	v.Pause()
	h.log.Debug("greeting %s released", h.resource)
	return v.Close()
}
