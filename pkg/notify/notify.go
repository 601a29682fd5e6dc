// Package notify delivers best-effort desktop notifications.
//
// Delivery goes through the notify-send command. Failures never reach
// reconciliation logic: callers log the returned error and move on.
package notify

import (
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/applinker/pkg/errors"
	"github.com/arthur-debert/applinker/pkg/logging"
)

// sendTimeout bounds how long a single notify-send invocation may take.
const sendTimeout = 5 * time.Second

// Notifier delivers a notification about a link change.
type Notifier interface {
	Notify(ctx context.Context, summary, body string) error
}

// runFunc executes an external command. Split out so tests can stub the
// notify-send invocation.
type runFunc func(ctx context.Context, name string, args ...string) error

// Desktop sends notifications via the notify-send command.
type Desktop struct {
	durationMS int
	appName    string
	run        runFunc
	log        zerolog.Logger
}

// NewDesktop creates a Desktop notifier showing each notification for
// durationMS milliseconds.
func NewDesktop(durationMS int, logger zerolog.Logger) *Desktop {
	return &Desktop{
		durationMS: durationMS,
		appName:    "applinker",
		run:        runCommand,
		log:        logging.Component(logger, "notify"),
	}
}

// Notify sends one desktop notification. The error is informational only;
// notification failure must never affect reconciliation.
func (d *Desktop) Notify(ctx context.Context, summary, body string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	d.log.Debug().Str("summary", summary).Msg("sending notification")
	err := d.run(ctx, "notify-send",
		"-a", d.appName,
		"-t", strconv.Itoa(d.durationMS),
		summary, body)
	if err != nil {
		return errors.Wrap(err, errors.ErrNotifySend, "notify-send failed")
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Disabled is a Notifier that does nothing, used when notifications are
// turned off.
type Disabled struct{}

// Notify implements Notifier as a no-op.
func (Disabled) Notify(context.Context, string, string) error {
	return nil
}
