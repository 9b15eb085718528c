// Package watch polls a booking by PNR and reports status transitions,
// e.g. a waiting-list booking getting confirmed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/railbook/railbook/internal/api/rail"
	"github.com/railbook/railbook/internal/notify"
)

// BookingFetcher fetches one booking. Satisfied by *rail.Client.
type BookingFetcher interface {
	GetBookingByPNR(ctx context.Context, pnr string) (*rail.Booking, error)
}

type Watcher struct {
	api      BookingFetcher
	notifier *notify.Notifier // nil disables notifications
	logger   *logrus.Logger
	interval time.Duration

	mu         sync.Mutex
	lastStatus map[string]string
}

func NewWatcher(api BookingFetcher, notifier *notify.Notifier, logger *logrus.Logger, interval time.Duration) *Watcher {
	return &Watcher{
		api:        api,
		notifier:   notifier,
		logger:     logger,
		interval:   interval,
		lastStatus: make(map[string]string),
	}
}

// Check fetches the booking once and reports whether its status changed
// since the previous check. The first check primes the state and never
// counts as a change.
func (w *Watcher) Check(ctx context.Context, pnr string) (status string, changed bool, err error) {
	booking, err := w.api.GetBookingByPNR(ctx, pnr)
	if err != nil {
		return "", false, fmt.Errorf("fetching booking: %w", err)
	}

	w.mu.Lock()
	previous, seen := w.lastStatus[pnr]
	w.lastStatus[pnr] = booking.Status
	w.mu.Unlock()

	w.logger.WithFields(logrus.Fields{
		"pnr":    pnr,
		"status": booking.Status,
	}).Info("booking status")

	if !seen || previous == booking.Status {
		return booking.Status, false, nil
	}

	if w.notifier != nil {
		if err := w.notifier.SendStatusChange(pnr, previous, booking.Status); err != nil {
			return booking.Status, true, fmt.Errorf("sending status notification: %w", err)
		}
	}
	return booking.Status, true, nil
}

// Run polls the booking until the context is cancelled, the booking
// reaches a terminal status, or the credential is rejected. Other fetch
// errors are logged and retried on the next tick.
func (w *Watcher) Run(ctx context.Context, pnr string) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		status, _, err := w.Check(ctx, pnr)
		if err != nil {
			// The session is already torn down at this point; polling
			// on unauthenticated would loop forever.
			if errors.Is(err, rail.ErrUnauthorized) {
				return err
			}
			w.logger.WithFields(logrus.Fields{
				"pnr":   pnr,
				"error": err,
			}).Error("status check failed")
		} else if status == rail.StatusCancelled {
			w.logger.WithField("pnr", pnr).Info("booking cancelled, stopping watch")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
