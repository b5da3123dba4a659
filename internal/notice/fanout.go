package notice

import (
	"context"
	"errors"

	"github.com/hammamikhairi/springbreak/internal/domain"
)

// Compile-time interface check.
var _ domain.Notifier = Fanout(nil)

// Fanout sends every notice to all of its notifiers. Each notifier is
// tried even if an earlier one fails; the failures are joined.
type Fanout []domain.Notifier

// Notify implements domain.Notifier.
func (f Fanout) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyUrgent implements domain.Notifier.
func (f Fanout) NotifyUrgent(ctx context.Context, message string) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifyUrgent(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
