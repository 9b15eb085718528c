package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/railbook/railbook/internal/api/rail"
	"github.com/railbook/railbook/internal/render"
	"github.com/railbook/railbook/internal/workflow"
)

// BookCmd drives the full booking pipeline interactively: search, train
// and class selection, passenger entry, simulated card payment,
// confirmation.
type BookCmd struct {
	From string `help:"Source station." required:""`
	To   string `help:"Destination station." required:""`
	Date string `help:"Travel date (YYYY-MM-DD)." required:""`
}

func (c *BookCmd) Run(app *App) error {
	ctx := context.Background()
	in := app.stdin

	flow := workflow.New()
	criteria := workflow.Criteria{Source: c.From, Destination: c.To, Date: c.Date}
	if err := flow.StartSearch(criteria); err != nil {
		return err
	}

	trains, err := app.api.SearchTrains(ctx, criteria.Source, criteria.Destination, criteria.Date)
	if err != nil {
		return fmt.Errorf("searching trains: %w", err)
	}
	if len(trains) == 0 {
		render.Notice("No trains found for this route.")
		return nil
	}
	render.Trains(os.Stdout, trains)
	fmt.Println()

	train, class, err := chooseTrain(in, trains)
	if err != nil {
		return err
	}

	sess, err := app.store.Current()
	if err != nil {
		return err
	}
	if err := flow.SelectTrain(train, class, sess != nil); err != nil {
		if errors.Is(err, workflow.ErrLoginRequired) {
			render.Notice("Please login to book tickets.")
		}
		return err
	}

	if err := enterPassengers(in, flow); err != nil {
		return err
	}
	if err := flow.ProceedToPayment(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Payment Details")
	card, err := readCard(in)
	if err != nil {
		return err
	}
	flow.Card = card
	render.FareSummary(os.Stdout, len(flow.Draft.Passengers), flow.Fare())
	if !confirm(in, "Pay now?") {
		render.Notice("Payment aborted. Booking was not created.")
		return nil
	}

	fmt.Println("Processing payment...")
	booking, err := flow.SubmitPayment(ctx, app.api, time.Duration(app.cfg.PaymentDelay))
	if err != nil {
		return paymentError(err)
	}

	fmt.Println()
	render.Confirmation(os.Stdout, booking)

	if app.notifier != nil {
		if err := app.notifier.SendBookingConfirmed(booking); err != nil {
			app.logger.WithField("error", err).Warn("confirmation notification failed")
		}
	}
	return nil
}

func chooseTrain(in *bufio.Reader, trains []rail.Train) (*rail.Train, string, error) {
	idx, err := promptInt(in, fmt.Sprintf("Select train [1-%d]: ", len(trains)), 1, len(trains))
	if err != nil {
		return nil, "", err
	}
	train := &trains[idx-1]

	class, err := promptLine(in, "Select class (e.g. SL, 3A): ")
	if err != nil {
		return nil, "", err
	}
	return train, strings.ToUpper(class), nil
}

func enterPassengers(in *bufio.Reader, flow *workflow.Flow) error {
	draft := flow.Draft
	for i := 0; ; i++ {
		fmt.Printf("\nPassenger %d\n", i+1)
		name, err := promptLine(in, "  Full name: ")
		if err != nil {
			return err
		}
		if err := draft.UpdatePassenger(i, "name", name); err != nil {
			return err
		}
		age, err := promptLine(in, "  Age: ")
		if err != nil {
			return err
		}
		if err := draft.UpdatePassenger(i, "age", age); err != nil {
			return err
		}
		gender, err := promptLine(in, "  Gender [Male/Female/Other] (Male): ")
		if err != nil {
			return err
		}
		if gender != "" {
			if err := draft.UpdatePassenger(i, "gender", gender); err != nil {
				return err
			}
		}

		render.FareSummary(os.Stdout, len(draft.Passengers), flow.Fare())
		if !confirm(in, "Add another passenger?") {
			return nil
		}
		draft.AddPassenger()
	}
}

func readCard(in *bufio.Reader) (workflow.Card, error) {
	var card workflow.Card
	fields := []struct {
		label string
		dst   *string
	}{
		{"  Card number: ", &card.CardNumber},
		{"  Card holder name: ", &card.CardHolder},
		{"  Expiry date (MM/YY): ", &card.ExpiryDate},
		{"  CVV: ", &card.CVV},
	}
	for _, f := range fields {
		value, err := promptLine(in, f.label)
		if err != nil {
			return workflow.Card{}, err
		}
		*f.dst = value
	}
	return card, nil
}

// paymentError keeps the server's message when it sent one and falls
// back to a generic notice otherwise.
func paymentError(err error) error {
	var apiErr *rail.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		return errors.New("payment failed")
	}
	return err
}

// promptLine reads one trimmed line. A read failure with nothing
// entered, typically stdin closing mid-flow, is surfaced instead of
// masquerading as an empty answer.
func promptLine(in *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", fmt.Errorf("input closed: %w", err)
	}
	return line, nil
}

func promptInt(in *bufio.Reader, label string, min, max int) (int, error) {
	for attempt := 0; attempt < 3; attempt++ {
		raw, err := promptLine(in, label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(raw)
		if err == nil && n >= min && n <= max {
			return n, nil
		}
		render.Notice("Enter a number between %d and %d.", min, max)
	}
	return 0, fmt.Errorf("no valid selection made")
}
