package motion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface check.
var _ domain.MotionSensor = (*WebSocket)(nil)

// AccelerometerType is the sensor type SensorServer expects in the query.
const AccelerometerType = "android.sensor.accelerometer"

// DefaultHandshakeTimeout bounds the background connect started by Register.
const DefaultHandshakeTimeout = 3 * time.Second

// sensorFrame is one SensorServer message.
type sensorFrame struct {
	Values    []float64 `json:"values"`
	Timestamp int64     `json:"timestamp"` // ns since phone boot, unused
	Accuracy  int       `json:"accuracy"`
}

var errShortFrame = errors.New("sensor frame has fewer than 3 values")

// parseFrame decodes a frame and stamps it with at. The phone's boot-relative
// timestamp can't be compared with local time, so arrival time is used.
func parseFrame(data []byte, at time.Time) (domain.MotionSample, error) {
	var f sensorFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return domain.MotionSample{}, fmt.Errorf("decoding sensor frame: %w", err)
	}
	if len(f.Values) < 3 {
		return domain.MotionSample{}, errShortFrame
	}
	return domain.MotionSample{X: f.Values[0], Y: f.Values[1], Z: f.Values[2], At: at}, nil
}

// SensorURL builds the SensorServer accelerometer endpoint for host
// (e.g. "192.168.1.20:8080").
func SensorURL(host string) string {
	u := url.URL{
		Scheme:   "ws",
		Host:     host,
		Path:     "/sensor/connect",
		RawQuery: url.Values{"type": {AccelerometerType}}.Encode(),
	}
	return u.String()
}

// WebSocketOption configures the WebSocket sensor.
type WebSocketOption func(*WebSocket)

// WithHandshakeTimeout sets the dial timeout.
func WithHandshakeTimeout(d time.Duration) WebSocketOption {
	return func(w *WebSocket) { w.dialer.HandshakeTimeout = d }
}

// WithClock sets the time source used to stamp samples.
func WithClock(now func() time.Time) WebSocketOption {
	return func(w *WebSocket) { w.now = now }
}

// WebSocket streams accelerometer samples from a phone running
// SensorServer. A connection is held only while a listener is registered.
type WebSocket struct {
	url    string
	dialer *websocket.Dialer
	now    func() time.Time
	log    *logger.Logger

	mu   sync.Mutex
	sess *session
}

// session is one registration: a dial, then a read loop.
type session struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	conn    *websocket.Conn
	stopped bool
}

// attach records the dialled connection. It reports false if the session
// was stopped while dialling.
func (s *session) attach(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.conn = conn
	return true
}

// stop marks the session finished and hands back its connection, if any.
func (s *session) stop() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return s.conn
}

// fail stops the session from the read side. It reports false if
// Unregister got there first.
func (s *session) fail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.stopped = true
	return true
}

// deliver runs fn unless the session has been stopped. Holding the lock
// across fn is what keeps samples from arriving after Unregister.
func (s *session) deliver(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	fn()
	return true
}

// NewWebSocket creates a sensor reading from url. Nothing is dialled
// until Register.
func NewWebSocket(url string, log *logger.Logger, opts ...WebSocketOption) *WebSocket {
	w := &WebSocket{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout},
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements domain.MotionSensor.
func (w *WebSocket) Name() string { return "sensor stream " + w.url }

// Register starts connecting in the background and returns at once.
// Samples go to l; a failed dial or a dropped stream goes to lost, which
// can race with Unregister. An existing registration is dropped first.
func (w *WebSocket) Register(l domain.MotionListener, lost domain.SensorLostFunc) error {
	w.Unregister()

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{cancel: cancel, done: make(chan struct{})}
	w.mu.Lock()
	w.sess = s
	w.mu.Unlock()

	go w.run(ctx, s, l, lost)
	return nil
}

// Unregister stops delivery and closes the stream in the background. No
// sample is delivered after it returns.
func (w *WebSocket) Unregister() {
	w.mu.Lock()
	s := w.sess
	w.sess = nil
	w.mu.Unlock()

	if s == nil {
		return
	}
	conn := s.stop()
	s.cancel()
	go func() {
		if conn != nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		}
		<-s.done
		w.log.Debug("sensor stream closed")
	}()
}

func (w *WebSocket) run(ctx context.Context, s *session, l domain.MotionListener, lost domain.SensorLostFunc) {
	defer close(s.done)

	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		if s.fail() {
			w.report(lost, fmt.Errorf("connecting to %s: %w: %v", w.url, domain.ErrSensorUnavailable, err))
		}
		return
	}
	if !s.attach(conn) {
		conn.Close()
		return
	}
	w.log.Info("sensor stream connected: %s", w.url)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.fail() {
				conn.Close()
				w.report(lost, fmt.Errorf("sensor stream lost: %w: %v", domain.ErrSensorUnavailable, err))
			}
			return
		}

		sample, err := parseFrame(data, w.now())
		if err != nil {
			w.log.Debug("skipping sensor frame: %v", err)
			continue
		}
		if !s.deliver(func() { l(sample) }) {
			return
		}
	}
}

func (w *WebSocket) report(lost domain.SensorLostFunc, err error) {
	w.log.Warn("%v", err)
	if lost != nil {
		lost(err)
	}
}
