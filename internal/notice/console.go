// Package notice delivers short user-facing messages, the desktop
// equivalent of a toast: printed lines, desktop notifications, or both.
package notice

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*Console)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of fmt.Printf.
type PrintFunc func(format string, a ...any)

// Console writes notices with ANSI formatting.
type Console struct {
	log     *logger.Logger
	printFn PrintFunc
}

// NewConsole creates a console notifier.
// If printFn is nil, fmt.Printf is used.
func NewConsole(log *logger.Logger, printFn PrintFunc) *Console {
	if printFn == nil {
		printFn = func(format string, a ...any) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &Console{log: log, printFn: printFn}
}

// Notify prints a normal notice.
func (n *Console) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.printFn("%s%s%s%s", cyan, bold, message, reset)
	return nil
}

// NotifyUrgent prints an urgent notice in bold red.
func (n *Console) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.printFn("%s%s%s%s", red, bold, message, reset)
	return nil
}
