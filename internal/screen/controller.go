// Package screen implements the shake-to-travel screen's lifecycle state
// machine. It owns the language list, the accelerometer subscription and
// the shake detector, and hands taps and shakes to the speech bridge and
// the navigation launcher.
package screen

import (
	"context"
	"errors"
	"fmt"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/language"
	"github.com/hammamikhairi/springbreak/internal/logger"
	"github.com/hammamikhairi/springbreak/internal/shake"
)

// Speech is the dictation side of the screen. *speech.Bridge implements it.
type Speech interface {
	Prompt(ctx context.Context, info language.Info) (string, error)
	Pending() bool
	Close()
}

// Navigator handles shakes. *navigation.Launcher implements it.
type Navigator interface {
	Trigger(ctx context.Context) (domain.Coordinate, error)
	Release()
}

// nonBlockingPoster is implemented by dispatchers that can refuse work
// instead of blocking. Sensor samples use it so a full queue drops samples
// rather than stalling the sensor goroutine.
type nonBlockingPoster interface {
	TryPost(fn func()) bool
}

// Services are the controller's collaborators. Sensor may be nil.
type Services struct {
	Selector   *language.Selector
	Speech     Speech
	Navigator  Navigator
	Sensor     domain.MotionSensor
	Notifier   domain.Notifier
	Dispatcher domain.Dispatcher
}

// Option configures the Controller.
type Option func(*Controller)

// WithDetectorOptions tunes the shake detector.
func WithDetectorOptions(opts ...shake.Option) Option {
	return func(c *Controller) { c.detectorOpts = append(c.detectorOpts, opts...) }
}

// WithStatusFunc registers a callback that receives a status snapshot
// after every change. It runs on the dispatch loop.
func WithStatusFunc(fn func(domain.ScreenStatus)) Option {
	return func(c *Controller) { c.onStatus = fn }
}

// Controller drives one screen from Start to Stop. Every method must be
// called from the dispatch loop.
type Controller struct {
	svc          Services
	log          *logger.Logger
	detector     *shake.Detector
	detectorOpts []shake.Option
	onStatus     func(domain.ScreenStatus)

	ctx         context.Context
	stage       domain.Stage
	options     []string
	subscribed  bool
	generation  uint64
	sensorNoted bool
	destination *domain.Coordinate
}

// New creates an idle controller.
func New(svc Services, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		svc:   svc,
		log:   log,
		ctx:   context.Background(),
		stage: domain.StageIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.detector = shake.New(c.onShake, c.detectorOpts...)
	return c
}

// Start builds the option list and checks for an accelerometer. ctx is
// used for everything the screen does until Stop.
func (c *Controller) Start(ctx context.Context) error {
	if c.stage != domain.StageIdle {
		return c.invalid("start")
	}
	c.ctx = ctx
	c.options = language.Names()
	c.stage = domain.StageCreated

	if c.svc.Sensor == nil {
		c.noteSensorMissing()
	} else {
		c.log.Info("using %s", c.svc.Sensor.Name())
	}
	c.log.Info("screen created with %d languages", len(c.options))
	c.publish()
	return nil
}

// Options returns the labels shown in the list, in display order.
func (c *Controller) Options() []string {
	return append([]string(nil), c.options...)
}

// Foreground subscribes to the accelerometer. The shake baseline starts
// over so time spent in the background never counts as a shake.
func (c *Controller) Foreground() error {
	if c.stage != domain.StageCreated && c.stage != domain.StagePaused {
		return c.invalid("foreground")
	}
	c.stage = domain.StageResumed
	c.detector.Reset()
	c.subscribe()
	c.publish()
	return nil
}

// Background drops the accelerometer subscription.
func (c *Controller) Background() error {
	if c.stage != domain.StageResumed {
		return c.invalid("background")
	}
	c.unsubscribe()
	c.stage = domain.StagePaused
	c.publish()
	return nil
}

// Stop releases everything the screen holds. The controller cannot be
// restarted.
func (c *Controller) Stop() error {
	if !c.stage.Active() {
		return c.invalid("stop")
	}
	c.unsubscribe()
	if c.svc.Speech != nil {
		c.svc.Speech.Close()
	}
	if c.svc.Navigator != nil {
		c.svc.Navigator.Release()
	}
	c.stage = domain.StageDestroyed
	c.log.Info("screen destroyed")
	c.publish()
	return nil
}

// Tap selects the language at index and starts dictation in it.
func (c *Controller) Tap(index int) error {
	if !c.stage.Active() {
		return c.invalid("tap")
	}
	if index < 0 || index >= len(c.options) {
		return fmt.Errorf("tap %d: %w", index, domain.ErrUnknownLanguage)
	}

	info, err := c.svc.Selector.Select(c.options[index])
	if err != nil {
		return err
	}
	c.publish()

	if c.svc.Speech == nil {
		return nil
	}
	_, err = c.svc.Speech.Prompt(c.ctx, info)
	switch {
	case err == nil:
		c.publish()
	case errors.Is(err, domain.ErrSpeechPending):
		c.notify(domain.MsgSpeechBusy)
	case errors.Is(err, domain.ErrSpeechUnavailable):
		// Already reported by the bridge.
	default:
		return fmt.Errorf("prompting speech: %w", err)
	}
	return nil
}

// Refresh republishes the status, e.g. after a dictation finishes.
func (c *Controller) Refresh() { c.publish() }

// Status returns a snapshot of the screen.
func (c *Controller) Status() domain.ScreenStatus {
	st := domain.ScreenStatus{
		Stage:      c.stage,
		Selected:   c.svc.Selector.Name(),
		Subscribed: c.subscribed,
	}
	if c.svc.Speech != nil {
		st.Listening = c.svc.Speech.Pending()
	}
	if c.destination != nil {
		d := *c.destination
		st.Destination = &d
	}
	return st
}

// ── Sensor ──────────────────────────────────────────────────────

func (c *Controller) subscribe() {
	if c.svc.Sensor == nil {
		return
	}
	c.generation++
	gen := c.generation
	err := c.svc.Sensor.Register(func(s domain.MotionSample) {
		c.post(func() { c.onSample(gen, s) })
	}, func(err error) {
		c.svc.Dispatcher.Post(func() { c.onSensorLost(gen, err) })
	})
	if err != nil {
		c.log.Warn("registering %s: %v", c.svc.Sensor.Name(), err)
		c.noteSensorMissing()
		return
	}
	c.subscribed = true
	c.log.Debug("accelerometer subscribed (generation %d)", gen)
}

func (c *Controller) unsubscribe() {
	if !c.subscribed {
		return
	}
	// Bump first so samples already queued from this subscription are
	// dropped.
	c.generation++
	c.svc.Sensor.Unregister()
	c.subscribed = false
	c.log.Debug("accelerometer unsubscribed")
}

func (c *Controller) post(fn func()) {
	if nb, ok := c.svc.Dispatcher.(nonBlockingPoster); ok {
		if !nb.TryPost(fn) {
			c.log.Debug("dispatch queue full, dropping sample")
		}
		return
	}
	c.svc.Dispatcher.Post(fn)
}

func (c *Controller) onSample(gen uint64, s domain.MotionSample) {
	if gen != c.generation || c.stage != domain.StageResumed {
		return
	}
	c.detector.Observe(s)
}

// onSensorLost handles a sensor that failed to connect or dropped its
// stream. The subscription is gone; the next Foreground tries again.
func (c *Controller) onSensorLost(gen uint64, err error) {
	if gen != c.generation || !c.subscribed {
		return
	}
	c.log.Warn("%s lost: %v", c.svc.Sensor.Name(), err)
	c.generation++
	c.subscribed = false
	c.noteSensorMissing()
	c.publish()
}

func (c *Controller) onShake(speed float64) {
	c.log.Info("shake detected (speed %.0f)", speed)
	if c.svc.Navigator == nil {
		return
	}
	dest, err := c.svc.Navigator.Trigger(c.ctx)
	if err != nil {
		c.log.Debug("shake not handled: %v", err)
		return
	}
	c.destination = &dest
	c.publish()
}

// ── Helpers ─────────────────────────────────────────────────────

func (c *Controller) noteSensorMissing() {
	if c.sensorNoted {
		return
	}
	c.sensorNoted = true
	if c.svc.Notifier == nil {
		return
	}
	if err := c.svc.Notifier.NotifyUrgent(c.ctx, domain.MsgNoSensor); err != nil {
		c.log.Warn("notify: %v", err)
	}
}

func (c *Controller) notify(msg string) {
	if c.svc.Notifier == nil {
		return
	}
	if err := c.svc.Notifier.Notify(c.ctx, msg); err != nil {
		c.log.Warn("notify: %v", err)
	}
}

func (c *Controller) invalid(op string) error {
	return fmt.Errorf("%s while %s: %w", op, c.stage, domain.ErrInvalidTransition)
}

func (c *Controller) publish() {
	if c.onStatus != nil {
		c.onStatus(c.Status())
	}
}
