package workflow

import (
	"errors"
	"fmt"

	"github.com/railbook/railbook/internal/api/rail"
)

var (
	// ErrIncompleteCriteria blocks a search before any backend call.
	ErrIncompleteCriteria = errors.New("source, destination and date are all required")

	// ErrLastPassenger enforces the at-least-one-passenger invariant
	// inside the mutation rather than in the presentation layer.
	ErrLastPassenger = errors.New("a booking needs at least one passenger")

	ErrNoSuchPassenger = errors.New("no such passenger")

	// ErrIncompleteDraft is the aggregate validation failure; it does
	// not identify which passenger or field is missing.
	ErrIncompleteDraft = errors.New("all passenger details are required")

	// ErrIncompleteCard is the aggregate payment validation failure.
	ErrIncompleteCard = errors.New("all payment details are required")
)

// Criteria is one search request: route and travel date.
type Criteria struct {
	Source      string
	Destination string
	Date        string
}

// Validate fails fast on any empty field so an incomplete search never
// reaches the backend.
func (c Criteria) Validate() error {
	if c.Source == "" || c.Destination == "" || c.Date == "" {
		return ErrIncompleteCriteria
	}
	return nil
}

// Gender values accepted for a passenger.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// DefaultClass is the class a fresh draft starts with.
const DefaultClass = "SL"

// Draft accumulates the class choice and passenger list between train
// selection and payment.
type Draft struct {
	Class      string
	Passengers []rail.Passenger
}

// NewDraft returns a draft with one blank passenger and the default
// class, the state passenger entry always starts from.
func NewDraft() *Draft {
	return &Draft{
		Class:      DefaultClass,
		Passengers: []rail.Passenger{{Gender: GenderMale}},
	}
}

// AddPassenger appends a blank passenger. No upper bound is enforced;
// seat availability is the backend's call.
func (d *Draft) AddPassenger() {
	d.Passengers = append(d.Passengers, rail.Passenger{Gender: GenderMale})
}

// RemovePassenger removes the passenger at index i. Removing the last
// remaining passenger is refused.
func (d *Draft) RemovePassenger(i int) error {
	if i < 0 || i >= len(d.Passengers) {
		return fmt.Errorf("%w: index %d", ErrNoSuchPassenger, i)
	}
	if len(d.Passengers) == 1 {
		return ErrLastPassenger
	}
	d.Passengers = append(d.Passengers[:i], d.Passengers[i+1:]...)
	return nil
}

// UpdatePassenger mutates one field of one passenger in place.
func (d *Draft) UpdatePassenger(i int, field, value string) error {
	if i < 0 || i >= len(d.Passengers) {
		return fmt.Errorf("%w: index %d", ErrNoSuchPassenger, i)
	}
	switch field {
	case "name":
		d.Passengers[i].Name = value
	case "age":
		d.Passengers[i].Age = value
	case "gender":
		d.Passengers[i].Gender = value
	default:
		return fmt.Errorf("unknown passenger field %q", field)
	}
	return nil
}

// SetClass switches the selected class.
func (d *Draft) SetClass(code string) {
	d.Class = code
}

// Fare is the client-side estimate: unit fare times passenger count,
// exact integer math. A class absent from the train's map prices at 0.
// The server-computed totalFare on the returned booking stays
// authoritative; this value is never reconciled against it.
func (d *Draft) Fare(t *rail.Train) int {
	if t == nil {
		return 0
	}
	return t.Classes[d.Class].Fare * len(d.Passengers)
}

// Validate checks that every passenger has a name, age and gender. Age
// is not checked for being numeric or plausible at this stage; the
// backend owns that.
func (d *Draft) Validate() error {
	if len(d.Passengers) == 0 {
		return ErrIncompleteDraft
	}
	for _, p := range d.Passengers {
		if p.Name == "" || p.Age == "" || p.Gender == "" {
			return ErrIncompleteDraft
		}
	}
	return nil
}

// Input length caps for card entry, matching the payment form limits.
const (
	maxCardNumberLen = 19
	maxExpiryLen     = 5
	maxCVVLen        = 3
)

// Card holds simulated payment details. Only non-emptiness and length
// caps are checked; there is no Luhn, expiry or CVV format validation
// because no real gateway sits behind this.
type Card struct {
	CardNumber string
	CardHolder string
	ExpiryDate string
	CVV        string
}

func (c Card) Validate() error {
	if c.CardNumber == "" || c.CardHolder == "" || c.ExpiryDate == "" || c.CVV == "" {
		return ErrIncompleteCard
	}
	if len(c.CardNumber) > maxCardNumberLen {
		return fmt.Errorf("card number must be at most %d characters", maxCardNumberLen)
	}
	if len(c.ExpiryDate) > maxExpiryLen {
		return fmt.Errorf("expiry date must be at most %d characters", maxExpiryLen)
	}
	if len(c.CVV) > maxCVVLen {
		return fmt.Errorf("cvv must be at most %d characters", maxCVVLen)
	}
	return nil
}
