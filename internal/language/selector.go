package language

import (
	"fmt"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Selector holds the screen's selection state: one language or none.
// It is mutated only from the dispatch loop and is not safe for concurrent
// use.
type Selector struct {
	current *Info
	log     *logger.Logger
}

// NewSelector creates an empty selection.
func NewSelector(log *logger.Logger) *Selector {
	return &Selector{log: log}
}

// Select makes name the current language. Names outside the list are
// rejected and leave the selection unchanged.
func (s *Selector) Select(name string) (Info, error) {
	l, ok := Parse(name)
	if !ok {
		return Info{}, fmt.Errorf("selecting %q: %w", name, domain.ErrUnknownLanguage)
	}
	info := l.Info()
	s.current = &info
	s.log.Debug("selected %s (%s)", info.Name, info.Locale)
	return info, nil
}

// Current returns the selected language, if any.
func (s *Selector) Current() (Info, bool) {
	if s.current == nil {
		return Info{}, false
	}
	return s.current.clone(), true
}

// Name returns the selected display name or "".
func (s *Selector) Name() string {
	if s.current == nil {
		return ""
	}
	return s.current.Name
}
