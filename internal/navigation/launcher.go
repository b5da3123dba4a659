// Package navigation turns a shake into a trip: it picks a random city for
// the selected language, plays that language's greeting and opens the map.
package navigation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/language"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Selection reports the current language choice. *language.Selector
// implements it.
type Selection interface {
	Current() (language.Info, bool)
}

// Option configures the Launcher.
type Option func(*Launcher)

// WithRand sets the random source used to pick destinations.
func WithRand(r *rand.Rand) Option {
	return func(l *Launcher) { l.rng = r }
}

// WithLaunchFunc registers a callback fired after each successful launch.
func WithLaunchFunc(fn func(language.Info, domain.Coordinate)) Option {
	return func(l *Launcher) { l.onLaunch = fn }
}

// Launcher handles shake events. It must only be used from the dispatch
// loop; at most one greeting is alive at a time.
type Launcher struct {
	selection Selection
	player    domain.AudioPlayer
	viewer    domain.MapViewer
	notifier  domain.Notifier
	log       *logger.Logger
	rng       *rand.Rand
	onLaunch  func(language.Info, domain.Coordinate)

	current domain.Playback
}

// New creates a Launcher. player may be nil when there is no audio device.
func New(selection Selection, player domain.AudioPlayer, viewer domain.MapViewer, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Launcher {
	l := &Launcher{
		selection: selection,
		player:    player,
		viewer:    viewer,
		notifier:  notifier,
		log:       log,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Trigger launches a trip for the selected language. Without a selection
// the user is asked to pick one and ErrNoSelection is returned; nothing is
// played or opened. Greeting failures are logged only.
func (l *Launcher) Trigger(ctx context.Context) (domain.Coordinate, error) {
	info, ok := l.selection.Current()
	if !ok {
		l.notify(ctx, domain.MsgSelectLanguage)
		return domain.Coordinate{}, domain.ErrNoSelection
	}
	if len(info.Coordinates) == 0 {
		return domain.Coordinate{}, fmt.Errorf("%s has no destinations: %w", info.Name, domain.ErrInvalidCoordinate)
	}

	dest := info.Coordinates[l.rng.IntN(len(info.Coordinates))]
	l.log.Info("shake: %s -> %s", info.Name, dest)

	l.playGreeting(ctx, info)

	if l.viewer == nil {
		l.alert(ctx, domain.MsgNoMapViewer)
		return dest, domain.ErrMapViewerMissing
	}
	if err := l.viewer.Open(ctx, dest); err != nil {
		l.log.Error("opening map at %s: %v", dest.Query(), err)
		l.alert(ctx, domain.MsgNoMapViewer)
		return dest, fmt.Errorf("opening map: %w", err)
	}

	if l.onLaunch != nil {
		l.onLaunch(info, dest)
	}
	return dest, nil
}

// Release frees the live greeting, if any. Safe to call repeatedly.
func (l *Launcher) Release() {
	if l.current == nil {
		return
	}
	if err := l.current.Release(); err != nil {
		l.log.Debug("releasing greeting: %v", err)
	}
	l.current = nil
}

func (l *Launcher) playGreeting(ctx context.Context, info language.Info) {
	l.Release()
	if l.player == nil {
		l.log.Debug("no audio player, skipping greeting %s", info.Clip)
		return
	}

	pb, err := l.player.Play(ctx, info.Greeting())
	if err != nil {
		l.log.Warn("greeting %s: %v", info.Clip, err)
		return
	}
	l.current = pb
}

func (l *Launcher) notify(ctx context.Context, msg string) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Notify(ctx, msg); err != nil {
		l.log.Warn("notify: %v", err)
	}
}

func (l *Launcher) alert(ctx context.Context, msg string) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.NotifyUrgent(ctx, msg); err != nil {
		l.log.Warn("notify: %v", err)
	}
}
