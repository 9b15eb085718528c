// Package workflow holds the booking pipeline state machine: search,
// train selection, passenger entry, payment, confirmation. The flow is
// an explicit in-memory context threaded between stages; it is never
// persisted and a fresh search resets it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/railbook/railbook/internal/api/rail"
)

// Stage identifies where in the booking pipeline a flow currently is.
type Stage int

const (
	StageSearch Stage = iota
	StagePassengers
	StagePayment
	StageConfirmed
)

func (s Stage) String() string {
	switch s {
	case StageSearch:
		return "search"
	case StagePassengers:
		return "passengers"
	case StagePayment:
		return "payment"
	case StageConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

var (
	// ErrLoginRequired blocks train selection without a session.
	// Selection is refused outright, not queued for after login.
	ErrLoginRequired = errors.New("login required to book tickets")

	// ErrClassUnavailable rejects selecting a class with no seats;
	// waiting-list classes are displayed but not bookable here.
	ErrClassUnavailable = errors.New("selected class has no available seats")

	// ErrNoBookingData means a stage was entered without the state the
	// previous stage should have carried forward.
	ErrNoBookingData = errors.New("no booking data found")
)

// BookingCreator issues the booking-creation request. Satisfied by
// *rail.Client.
type BookingCreator interface {
	CreateBooking(ctx context.Context, req rail.CreateBookingRequest) (*rail.Booking, error)
}

// Flow is the cross-stage booking context.
type Flow struct {
	stage    Stage
	Criteria Criteria
	Train    *rail.Train
	Draft    *Draft
	Card     Card
	Booking  *rail.Booking
}

// New returns a flow at the search stage.
func New() *Flow {
	return &Flow{stage: StageSearch}
}

func (f *Flow) Stage() Stage { return f.stage }

// Reset discards all carried state and returns to the search stage.
func (f *Flow) Reset() {
	*f = Flow{stage: StageSearch}
}

// StartSearch validates the criteria and records them. An incomplete
// search fails here so no backend call is ever issued for it.
func (f *Flow) StartSearch(c Criteria) error {
	f.Reset()
	if err := c.Validate(); err != nil {
		return err
	}
	f.Criteria = c
	return nil
}

// SelectTrain moves to passenger entry with the chosen train and class.
// Requires an authenticated session and a class with seats available.
func (f *Flow) SelectTrain(t *rail.Train, class string, authenticated bool) error {
	if f.stage != StageSearch {
		return fmt.Errorf("cannot select a train from the %s stage", f.stage)
	}
	if !authenticated {
		return ErrLoginRequired
	}
	if t == nil {
		return ErrNoBookingData
	}
	if info, ok := t.Classes[class]; !ok || info.AvailableSeats <= 0 {
		return ErrClassUnavailable
	}

	f.Train = t
	f.Draft = NewDraft()
	f.Draft.SetClass(class)
	f.stage = StagePassengers
	return nil
}

// Fare is the client-side estimate for the current draft.
func (f *Flow) Fare() int {
	if f.Draft == nil {
		return 0
	}
	return f.Draft.Fare(f.Train)
}

// ProceedToPayment validates the passenger list and moves to payment.
func (f *Flow) ProceedToPayment() error {
	if f.stage != StagePassengers || f.Draft == nil || f.Train == nil {
		return ErrNoBookingData
	}
	if err := f.Draft.Validate(); err != nil {
		return err
	}
	f.stage = StagePayment
	return nil
}

// SubmitPayment validates the card, waits out the simulated gateway
// delay, then issues the booking-creation request. On failure the draft
// and card state stay intact so the user can retry or go back; on
// success the flow carries the server-issued booking into confirmation.
func (f *Flow) SubmitPayment(ctx context.Context, api BookingCreator, delay time.Duration) (*rail.Booking, error) {
	if f.stage != StagePayment || f.Draft == nil || f.Train == nil {
		return nil, ErrNoBookingData
	}
	if err := f.Card.Validate(); err != nil {
		return nil, err
	}

	// Simulated gateway latency.
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	booking, err := api.CreateBooking(ctx, rail.CreateBookingRequest{
		TrainID:    f.Train.ID,
		TravelDate: f.Criteria.Date,
		Class:      f.Draft.Class,
		Passengers: f.Draft.Passengers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	f.Booking = booking
	f.stage = StageConfirmed
	return booking, nil
}

// Confirmation returns the server-issued booking, or ErrNoBookingData
// when the flow never completed payment. No re-fetch by PNR is
// attempted.
func (f *Flow) Confirmation() (*rail.Booking, error) {
	if f.stage != StageConfirmed || f.Booking == nil {
		return nil, ErrNoBookingData
	}
	return f.Booking, nil
}
