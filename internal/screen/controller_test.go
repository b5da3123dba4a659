package screen

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hammamikhairi/springbreak/internal/dispatch"
	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/language"
	"github.com/hammamikhairi/springbreak/internal/logger"
	"github.com/hammamikhairi/springbreak/internal/navigation"
)

func testLogger() *logger.Logger {
	return logger.New(logger.LevelOff, nil)
}

// inlineDispatcher runs callbacks immediately. Tests drive the controller
// from a single goroutine, so this preserves the loop's ordering.
type inlineDispatcher struct{}

func (inlineDispatcher) Post(fn func()) bool {
	fn()
	return true
}

// fakeSensor keeps every listener and loss callback it was given.
type fakeSensor struct {
	listeners    []domain.MotionListener
	losses       []domain.SensorLostFunc
	registered   bool
	unregistered int
	err          error
}

func (s *fakeSensor) Name() string { return "fake accelerometer" }

func (s *fakeSensor) Register(l domain.MotionListener, lost domain.SensorLostFunc) error {
	if s.err != nil {
		return s.err
	}
	s.listeners = append(s.listeners, l)
	s.losses = append(s.losses, lost)
	s.registered = true
	return nil
}

func (s *fakeSensor) Unregister() {
	s.registered = false
	s.unregistered++
}

func (s *fakeSensor) latest() domain.MotionListener {
	return s.listeners[len(s.listeners)-1]
}

type fakeSpeech struct {
	prompts []string
	pending bool
	err     error
	closed  bool
}

func (s *fakeSpeech) Prompt(_ context.Context, info language.Info) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.prompts = append(s.prompts, info.Locale)
	return "req", nil
}

func (s *fakeSpeech) Pending() bool { return s.pending }
func (s *fakeSpeech) Close()        { s.closed = true }

type fakeNavigator struct {
	triggers int
	releases int
	dest     domain.Coordinate
}

func (n *fakeNavigator) Trigger(context.Context) (domain.Coordinate, error) {
	n.triggers++
	return n.dest, nil
}

func (n *fakeNavigator) Release() { n.releases++ }

type collectingNotifier struct {
	messages []string
	urgent   []string
}

func (n *collectingNotifier) Notify(_ context.Context, msg string) error {
	n.messages = append(n.messages, msg)
	return nil
}

func (n *collectingNotifier) NotifyUrgent(ctx context.Context, msg string) error {
	n.urgent = append(n.urgent, msg)
	return n.Notify(ctx, msg)
}

func (n *collectingNotifier) count(msg string) int {
	c := 0
	for _, m := range n.messages {
		if m == msg {
			c++
		}
	}
	return c
}

type fixture struct {
	ctrl     *Controller
	sensor   *fakeSensor
	speech   *fakeSpeech
	nav      *fakeNavigator
	notifier *collectingNotifier
	statuses []domain.ScreenStatus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sensor:   &fakeSensor{},
		speech:   &fakeSpeech{},
		nav:      &fakeNavigator{dest: domain.Coordinate{Lat: 48.8566, Lon: 2.3522}},
		notifier: &collectingNotifier{},
	}
	f.ctrl = New(Services{
		Selector:   language.NewSelector(testLogger()),
		Speech:     f.speech,
		Navigator:  f.nav,
		Sensor:     f.sensor,
		Notifier:   f.notifier,
		Dispatcher: inlineDispatcher{},
	}, testLogger(), WithStatusFunc(func(s domain.ScreenStatus) {
		f.statuses = append(f.statuses, s)
	}))
	return f
}

func (f *fixture) resume(t *testing.T) {
	t.Helper()
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.ctrl.Foreground(); err != nil {
		t.Fatalf("Foreground: %v", err)
	}
}

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func resting(at time.Duration) domain.MotionSample {
	return domain.MotionSample{Z: 9.81, At: t0.Add(at)}
}

func jolt(at time.Duration) domain.MotionSample {
	return domain.MotionSample{X: 25, Y: 18, Z: 30, At: t0.Add(at)}
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)

	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := f.ctrl.Options(); len(got) != 4 || got[0] != "English" || got[3] != "Chinese" {
		t.Errorf("options = %v", got)
	}
	if f.sensor.registered {
		t.Error("sensor registered before Foreground")
	}

	f.ctrl.Foreground()
	if !f.sensor.registered || !f.ctrl.Status().Subscribed {
		t.Error("sensor not registered after Foreground")
	}

	f.ctrl.Background()
	if f.sensor.registered || f.ctrl.Status().Subscribed {
		t.Error("sensor still registered after Background")
	}

	f.ctrl.Foreground()
	if len(f.sensor.listeners) != 2 {
		t.Errorf("registered %d times, want 2", len(f.sensor.listeners))
	}

	if err := f.ctrl.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if f.sensor.registered {
		t.Error("sensor registered after Stop")
	}
	if !f.speech.closed {
		t.Error("speech bridge not closed on Stop")
	}
	if f.nav.releases != 1 {
		t.Errorf("playback released %d times, want 1", f.nav.releases)
	}
	if got := f.ctrl.Status().Stage; got != domain.StageDestroyed {
		t.Errorf("stage = %s, want destroyed", got)
	}
	if len(f.statuses) == 0 {
		t.Error("no status published")
	}
}

func TestStopFromCreatedDoesNotUnregister(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start(context.Background())
	f.ctrl.Stop()
	if f.sensor.unregistered != 0 {
		t.Errorf("Unregister called %d times, want 0", f.sensor.unregistered)
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		prep func(*Controller)
		op   func(*Controller) error
	}{
		{"foreground before start", func(*Controller) {}, (*Controller).Foreground},
		{"background before start", func(*Controller) {}, (*Controller).Background},
		{"stop before start", func(*Controller) {}, (*Controller).Stop},
		{"tap before start", func(*Controller) {}, func(c *Controller) error { return c.Tap(0) }},
		{"start twice", func(c *Controller) { c.Start(context.Background()) },
			func(c *Controller) error { return c.Start(context.Background()) }},
		{"background while created", func(c *Controller) { c.Start(context.Background()) }, (*Controller).Background},
		{"foreground while resumed", func(c *Controller) {
			c.Start(context.Background())
			c.Foreground()
		}, (*Controller).Foreground},
		{"stop twice", func(c *Controller) {
			c.Start(context.Background())
			c.Stop()
		}, (*Controller).Stop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.prep(f.ctrl)
			if err := tt.op(f.ctrl); !errors.Is(err, domain.ErrInvalidTransition) {
				t.Errorf("err = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestMissingSensorNoticeOnce(t *testing.T) {
	notes := &collectingNotifier{}
	c := New(Services{
		Selector:   language.NewSelector(testLogger()),
		Notifier:   notes,
		Dispatcher: inlineDispatcher{},
	}, testLogger())

	c.Start(context.Background())
	c.Foreground()
	c.Background()
	c.Foreground()

	if n := notes.count(domain.MsgNoSensor); n != 1 {
		t.Errorf("sensor notice shown %d times, want 1", n)
	}
	if c.Status().Subscribed {
		t.Error("subscribed without a sensor")
	}
}

func TestSensorRegisterFailure(t *testing.T) {
	f := newFixture(t)
	f.sensor.err = domain.ErrSensorUnavailable
	f.resume(t)

	if f.notifier.count(domain.MsgNoSensor) != 1 {
		t.Errorf("notices = %q", f.notifier.messages)
	}
	if f.ctrl.Status().Subscribed {
		t.Error("subscribed after failed Register")
	}
	if err := f.ctrl.Background(); err != nil {
		t.Fatalf("Background: %v", err)
	}
	if f.sensor.unregistered != 0 {
		t.Error("Unregister called without a registration")
	}
}

func TestShakeTriggersNavigation(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	l := f.sensor.latest()

	l(resting(0))
	l(resting(200 * time.Millisecond))
	if f.nav.triggers != 0 {
		t.Fatalf("resting phone triggered %d launches", f.nav.triggers)
	}

	l(jolt(400 * time.Millisecond))
	if f.nav.triggers != 1 {
		t.Fatalf("triggers = %d, want 1", f.nav.triggers)
	}
	st := f.ctrl.Status()
	if st.Destination == nil || *st.Destination != f.nav.dest {
		t.Errorf("destination = %v, want %v", st.Destination, f.nav.dest)
	}

	// Within the gate: ignored.
	l(jolt(450 * time.Millisecond))
	if f.nav.triggers != 1 {
		t.Errorf("triggers = %d after gated sample, want 1", f.nav.triggers)
	}
}

func TestFirstSampleAfterForegroundOnlyPrimes(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	f.sensor.latest()(resting(0))

	f.ctrl.Background()
	f.ctrl.Foreground()
	l := f.sensor.latest()

	// Long after the last baseline: would be a huge speed if it counted.
	l(jolt(10 * time.Second))
	if f.nav.triggers != 0 {
		t.Errorf("first sample after resume triggered a launch")
	}
	l(jolt(10*time.Second + 200*time.Millisecond))
	if f.nav.triggers != 1 {
		t.Errorf("triggers = %d, want 1", f.nav.triggers)
	}
}

func TestStaleSamplesDropped(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	old := f.sensor.latest()

	f.ctrl.Background()
	old(resting(0))
	old(jolt(200 * time.Millisecond))
	if f.nav.triggers != 0 {
		t.Fatal("sample delivered while paused triggered a launch")
	}

	f.ctrl.Foreground()
	old(resting(0))
	old(jolt(200 * time.Millisecond))
	if f.nav.triggers != 0 {
		t.Fatal("sample from an old subscription triggered a launch")
	}

	cur := f.sensor.latest()
	cur(resting(0))
	cur(jolt(200 * time.Millisecond))
	if f.nav.triggers != 1 {
		t.Errorf("triggers = %d, want 1", f.nav.triggers)
	}
}

func TestTap(t *testing.T) {
	f := newFixture(t)
	f.resume(t)

	if err := f.ctrl.Tap(2); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if got := f.ctrl.Status().Selected; got != "French" {
		t.Errorf("selected = %q, want French", got)
	}
	if len(f.speech.prompts) != 1 || f.speech.prompts[0] != "fr-FR" {
		t.Errorf("prompts = %v", f.speech.prompts)
	}

	if err := f.ctrl.Tap(4); !errors.Is(err, domain.ErrUnknownLanguage) {
		t.Errorf("Tap(4) err = %v, want ErrUnknownLanguage", err)
	}
	if got := f.ctrl.Status().Selected; got != "French" {
		t.Errorf("bad tap changed selection to %q", got)
	}
}

func TestTapWhileListening(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	f.speech.err = domain.ErrSpeechPending

	if err := f.ctrl.Tap(1); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if f.ctrl.Status().Selected != "Spanish" {
		t.Error("selection not updated while dictation pending")
	}
	if f.notifier.count(domain.MsgSpeechBusy) != 1 {
		t.Errorf("notices = %q", f.notifier.messages)
	}
}

func TestTapWithoutRecognizer(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	f.speech.err = domain.ErrSpeechUnavailable

	if err := f.ctrl.Tap(0); err != nil {
		t.Errorf("Tap: %v", err)
	}
	if f.ctrl.Status().Selected != "English" {
		t.Error("selection lost when speech is unavailable")
	}
}

// ── End to end with the real launcher ──────────────────────────

type recordingViewer struct {
	opened []domain.Coordinate
}

func (v *recordingViewer) Open(_ context.Context, c domain.Coordinate) error {
	v.opened = append(v.opened, c)
	return nil
}

type nopPlayback struct{}

func (nopPlayback) Release() error { return nil }

type countingPlayer struct {
	plays int
}

func (p *countingPlayer) Play(context.Context, domain.Greeting) (domain.Playback, error) {
	p.plays++
	return nopPlayback{}, nil
}

func TestShakeWithoutSelection(t *testing.T) {
	sel := language.NewSelector(testLogger())
	viewer, player, notes := &recordingViewer{}, &countingPlayer{}, &collectingNotifier{}
	sensor := &fakeSensor{}
	nav := navigation.New(sel, player, viewer, notes, testLogger(),
		navigation.WithRand(rand.New(rand.NewPCG(7, 7))))

	c := New(Services{
		Selector:   sel,
		Speech:     &fakeSpeech{},
		Navigator:  nav,
		Sensor:     sensor,
		Notifier:   notes,
		Dispatcher: inlineDispatcher{},
	}, testLogger())
	c.Start(context.Background())
	c.Foreground()

	l := sensor.latest()
	l(resting(0))
	l(jolt(200 * time.Millisecond))

	if len(viewer.opened) != 0 || player.plays != 0 {
		t.Fatalf("opened %d maps, played %d clips without a selection", len(viewer.opened), player.plays)
	}
	if notes.count(domain.MsgSelectLanguage) != 1 {
		t.Errorf("notices = %q", notes.messages)
	}

	c.Tap(3)
	l(jolt(400 * time.Millisecond))
	if len(viewer.opened) != 1 || player.plays != 1 {
		t.Fatalf("opened %d maps, played %d clips, want 1/1", len(viewer.opened), player.plays)
	}
	found := false
	for _, want := range language.Chinese.Info().Coordinates {
		if viewer.opened[0] == want {
			found = true
		}
	}
	if !found {
		t.Errorf("destination %v is not a Chinese city", viewer.opened[0])
	}
}

// ── Sensor loss ────────────────────────────────────────────────

func TestSensorLostClearsSubscription(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	l := f.sensor.latest()
	lost := f.sensor.losses[len(f.sensor.losses)-1]

	lost(domain.ErrSensorUnavailable)
	lost(domain.ErrSensorUnavailable)

	st := f.ctrl.Status()
	if st.Subscribed {
		t.Error("still subscribed after the stream was lost")
	}
	if n := f.notifier.count(domain.MsgNoSensor); n != 1 {
		t.Errorf("sensor notice shown %d times, want 1", n)
	}
	if len(f.notifier.urgent) != 1 {
		t.Errorf("urgent notices = %q", f.notifier.urgent)
	}

	// Samples still in flight from the lost stream are ignored.
	l(resting(0))
	l(jolt(200 * time.Millisecond))
	if f.nav.triggers != 0 {
		t.Error("shake handled from a lost stream")
	}

	// Background skips Unregister; the next Foreground dials again.
	if err := f.ctrl.Background(); err != nil {
		t.Fatalf("Background: %v", err)
	}
	if f.sensor.unregistered != 0 {
		t.Errorf("Unregister called %d times after loss", f.sensor.unregistered)
	}
	if err := f.ctrl.Foreground(); err != nil {
		t.Fatalf("Foreground: %v", err)
	}
	if !f.ctrl.Status().Subscribed || len(f.sensor.listeners) != 2 {
		t.Error("not resubscribed on Foreground")
	}
}

func TestStaleSensorLossIgnored(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	oldLost := f.sensor.losses[0]

	f.ctrl.Background()
	f.ctrl.Foreground()
	oldLost(domain.ErrSensorUnavailable)

	if !f.ctrl.Status().Subscribed {
		t.Error("loss from an old registration dropped the current one")
	}
	if f.notifier.count(domain.MsgNoSensor) != 0 {
		t.Errorf("notices = %q", f.notifier.messages)
	}
}

// ── On the real dispatch loop ──────────────────────────────────

// streamingSensor emits samples as fast as it can from its own goroutine
// until Unregister, which waits for the emitter to exit.
type streamingSensor struct {
	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	emitted atomic.Int64
}

func (s *streamingSensor) Name() string { return "streaming accelerometer" }

func (s *streamingSensor) Register(l domain.MotionListener, _ domain.SensorLostFunc) error {
	stop, done := make(chan struct{}), make(chan struct{})
	s.mu.Lock()
	s.stop, s.done = stop, done
	s.mu.Unlock()
	go func() {
		defer close(done)
		at := t0
		for {
			select {
			case <-stop:
				return
			default:
			}
			at = at.Add(time.Millisecond)
			l(domain.MotionSample{Z: 9.81, At: at})
			s.emitted.Add(1)
		}
	}()
	return nil
}

func (s *streamingSensor) Unregister() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// rejectCounter wraps a loop and counts refused TryPosts.
type rejectCounter struct {
	*dispatch.Loop
	rejected atomic.Int64
}

func (r *rejectCounter) TryPost(fn func()) bool {
	ok := r.Loop.TryPost(fn)
	if !ok {
		r.rejected.Add(1)
	}
	return ok
}

func TestFullQueueDropsSamplesWithoutStalling(t *testing.T) {
	loop := &rejectCounter{Loop: dispatch.New(testLogger(), dispatch.WithQueueSize(2))}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	sensor := &streamingSensor{}
	c := New(Services{
		Selector:   language.NewSelector(testLogger()),
		Sensor:     sensor,
		Dispatcher: loop,
	}, testLogger())

	loop.Sync(func() {
		c.Start(ctx)
		c.Foreground()
	})

	// Hold the loop so the sensor fills the queue.
	loop.Sync(func() {
		deadline := time.Now().Add(2 * time.Second)
		for loop.rejected.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	})
	if loop.rejected.Load() == 0 {
		t.Fatal("no sample was dropped while the loop was busy")
	}

	finished := make(chan error, 1)
	go func() {
		var err error
		loop.Sync(func() { err = c.Background() })
		finished <- err
	}()
	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("Background: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Background stalled behind a full queue")
	}

	n := sensor.emitted.Load()
	time.Sleep(10 * time.Millisecond)
	if sensor.emitted.Load() != n {
		t.Error("sensor still emitting after Background")
	}
}
