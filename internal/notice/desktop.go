package notice

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*Desktop)(nil)

// AppName titles desktop notifications.
const AppName = "Spring Break"

// maxToastRunes caps the body of a desktop notification.
const maxToastRunes = 100

// sendFunc matches beeep.Notify and beeep.Alert.
type sendFunc func(title, message, appIcon string) error

// Desktop shows notices as OS notifications through beeep. Urgent notices
// also play the system alert sound.
type Desktop struct {
	log    *logger.Logger
	notify sendFunc
	alert  sendFunc
}

// NewDesktop creates a desktop notifier.
func NewDesktop(log *logger.Logger) *Desktop {
	return &Desktop{log: log, notify: beeep.Notify, alert: beeep.Alert}
}

// Notify shows a desktop notification.
func (d *Desktop) Notify(ctx context.Context, message string) error {
	return d.send(d.notify, message)
}

// NotifyUrgent shows a desktop notification with an alert sound.
func (d *Desktop) NotifyUrgent(ctx context.Context, message string) error {
	return d.send(d.alert, message)
}

func (d *Desktop) send(fn sendFunc, message string) error {
	if err := fn(AppName, truncate(message, maxToastRunes), ""); err != nil {
		d.log.Debug("desktop notification failed: %v", err)
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
