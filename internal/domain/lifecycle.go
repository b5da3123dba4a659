package domain

// Stage is the screen's lifecycle position.
type Stage int

const (
	StageIdle Stage = iota
	StageCreated
	StageResumed
	StagePaused
	StageDestroyed
)

// String returns a human-readable stage.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCreated:
		return "created"
	case StageResumed:
		return "resumed"
	case StagePaused:
		return "paused"
	case StageDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Active reports whether the screen still accepts user input.
func (s Stage) Active() bool {
	return s == StageCreated || s == StageResumed || s == StagePaused
}

// ScreenStatus is a snapshot pushed to the host after every state change.
type ScreenStatus struct {
	Stage       Stage
	Selected    string // empty when nothing is selected
	Subscribed  bool   // accelerometer listener registered
	Listening   bool   // speech request in flight
	Destination *Coordinate
}
