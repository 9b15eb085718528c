package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/railbook/railbook/internal/api/rail"
	"github.com/railbook/railbook/internal/render"
	"github.com/railbook/railbook/internal/session"
	"github.com/railbook/railbook/internal/ticket"
	"github.com/railbook/railbook/internal/watch"
	"github.com/railbook/railbook/internal/workflow"
)

type RegisterCmd struct {
	Name     string `help:"Full name." required:""`
	Email    string `help:"Email address." required:""`
	Password string `help:"Password." required:""`
}

func (c *RegisterCmd) Run(app *App) error {
	resp, err := app.api.Register(context.Background(), rail.RegisterRequest{
		Name:     c.Name,
		Email:    c.Email,
		Password: c.Password,
	})
	if err != nil {
		return err
	}
	if err := saveSession(app, resp); err != nil {
		return err
	}
	fmt.Printf("Account created. Logged in as %s.\n", resp.User.Name)
	return nil
}

type LoginCmd struct {
	Email    string `help:"Email address." required:""`
	Password string `help:"Password." required:""`
}

func (c *LoginCmd) Run(app *App) error {
	resp, err := app.api.Login(context.Background(), rail.LoginRequest{
		Email:    c.Email,
		Password: c.Password,
	})
	if err != nil {
		return err
	}
	if err := saveSession(app, resp); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s.\n", resp.User.Name)
	return nil
}

func saveSession(app *App, resp *rail.AuthResponse) error {
	return app.store.Save(session.Session{
		Token: resp.Token,
		User:  session.User{Name: resp.User.Name, Role: resp.User.Role},
	})
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(app *App) error {
	if err := app.store.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out successfully.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(app *App) error {
	sess, err := app.store.Current()
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	user, err := app.api.Profile(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", user.Name, user.Role)
	return nil
}

type SearchCmd struct {
	From string `help:"Source station." required:""`
	To   string `help:"Destination station." required:""`
	Date string `help:"Travel date (YYYY-MM-DD)." required:""`
}

func (c *SearchCmd) Run(app *App) error {
	flow := workflow.New()
	criteria := workflow.Criteria{Source: c.From, Destination: c.To, Date: c.Date}
	if err := flow.StartSearch(criteria); err != nil {
		return err
	}

	trains, err := app.api.SearchTrains(context.Background(), criteria.Source, criteria.Destination, criteria.Date)
	if err != nil {
		return fmt.Errorf("searching trains: %w", err)
	}
	if len(trains) == 0 {
		render.Notice("No trains found for this route.")
		return nil
	}
	render.Trains(os.Stdout, trains)
	return nil
}

type BookingsCmd struct {
	List   BookingsListCmd   `cmd:"" help:"List your bookings."`
	Show   BookingsShowCmd   `cmd:"" help:"Show one booking by PNR."`
	Cancel BookingsCancelCmd `cmd:"" help:"Cancel a booking by PNR."`
	Ticket BookingsTicketCmd `cmd:"" help:"Write an e-ticket PDF for a booking."`
	Watch  BookingsWatchCmd  `cmd:"" help:"Poll a booking and alert on status changes."`
}

type BookingsListCmd struct{}

func (c *BookingsListCmd) Run(app *App) error {
	sess, err := app.store.Current()
	if err != nil {
		return err
	}
	if sess == nil {
		return errors.New("please login to view bookings")
	}

	bookings, err := app.api.ListBookings(context.Background())
	if err != nil {
		return fmt.Errorf("fetching bookings: %w", err)
	}
	if len(bookings) == 0 {
		fmt.Println("No bookings found.")
		return nil
	}
	render.Bookings(os.Stdout, bookings)
	return nil
}

type BookingsShowCmd struct {
	PNR string `arg:"" help:"Booking PNR."`
}

func (c *BookingsShowCmd) Run(app *App) error {
	booking, err := app.api.GetBookingByPNR(context.Background(), c.PNR)
	if err != nil {
		return fmt.Errorf("fetching booking: %w", err)
	}
	render.Booking(os.Stdout, booking)
	return nil
}

type BookingsCancelCmd struct {
	PNR string `arg:"" help:"Booking PNR."`
	Yes bool   `help:"Skip the confirmation prompt."`
}

func (c *BookingsCancelCmd) Run(app *App) error {
	ctx := context.Background()

	booking, err := app.api.GetBookingByPNR(ctx, c.PNR)
	if err != nil {
		return fmt.Errorf("fetching booking: %w", err)
	}
	// Only confirmed bookings expose cancellation.
	if booking.Status != rail.StatusConfirmed {
		return fmt.Errorf("booking %s is %s and cannot be cancelled", c.PNR, booking.Status)
	}

	if !c.Yes && !confirm(app.stdin, fmt.Sprintf("Are you sure you want to cancel booking %s?", c.PNR)) {
		render.Notice("Cancellation aborted.")
		return nil
	}

	if err := app.api.CancelBooking(ctx, c.PNR); err != nil {
		return fmt.Errorf("cancelling booking: %w", err)
	}
	fmt.Println("Booking cancelled successfully.")

	if app.notifier != nil {
		if err := app.notifier.SendBookingCancelled(c.PNR); err != nil {
			app.logger.WithField("error", err).Warn("cancellation notification failed")
		}
	}

	// Always re-fetch rather than patching locally; the server-confirmed
	// list is the source of truth.
	bookings, err := app.api.ListBookings(ctx)
	if err != nil {
		return fmt.Errorf("refreshing bookings: %w", err)
	}
	if len(bookings) == 0 {
		fmt.Println("No bookings found.")
		return nil
	}
	render.Bookings(os.Stdout, bookings)
	return nil
}

type BookingsTicketCmd struct {
	PNR    string `arg:"" help:"Booking PNR."`
	Output string `short:"o" help:"Output path (defaults to eticket-<PNR>.pdf)."`
}

func (c *BookingsTicketCmd) Run(app *App) error {
	booking, err := app.api.GetBookingByPNR(context.Background(), c.PNR)
	if err != nil {
		return fmt.Errorf("fetching booking: %w", err)
	}

	data, filename, err := ticket.Build(booking)
	if err != nil {
		return err
	}
	if c.Output != "" {
		filename = c.Output
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing e-ticket: %w", err)
	}
	fmt.Printf("E-ticket written to %s\n", filename)
	return nil
}

type BookingsWatchCmd struct {
	PNR      string        `arg:"" help:"Booking PNR."`
	Interval time.Duration `help:"Poll interval (defaults to config watch_interval)."`
}

func (c *BookingsWatchCmd) Run(app *App) error {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Duration(app.cfg.WatchInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		app.logger.WithField("signal", sig).Info("received signal, stopping watch")
		cancel()
	}()

	watcher := watch.NewWatcher(app.api, app.notifier, app.logger, interval)
	if err := watcher.Run(ctx, c.PNR); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type TrainsCmd struct {
	List TrainsListCmd `cmd:"" help:"List all trains."`
	Show TrainsShowCmd `cmd:"" help:"Show one train by id."`
	Add  TrainsAddCmd  `cmd:"" help:"Create a train from a JSON spec (admin only)."`
}

type TrainsListCmd struct{}

func (c *TrainsListCmd) Run(app *App) error {
	trains, err := app.api.ListTrains(context.Background())
	if err != nil {
		return fmt.Errorf("fetching trains: %w", err)
	}
	if len(trains) == 0 {
		fmt.Println("No trains found.")
		return nil
	}
	render.Trains(os.Stdout, trains)
	return nil
}

type TrainsShowCmd struct {
	ID string `arg:"" help:"Train id."`
}

func (c *TrainsShowCmd) Run(app *App) error {
	train, err := app.api.GetTrain(context.Background(), c.ID)
	if err != nil {
		return fmt.Errorf("fetching train: %w", err)
	}
	render.Trains(os.Stdout, []rail.Train{*train})
	return nil
}

type TrainsAddCmd struct {
	File string `short:"f" help:"Path to a JSON train spec." required:"" type:"path"`
}

func (c *TrainsAddCmd) Run(app *App) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("reading train spec: %w", err)
	}
	var train rail.Train
	if err := json.Unmarshal(data, &train); err != nil {
		return fmt.Errorf("parsing train spec: %w", err)
	}

	created, err := app.api.AddTrain(context.Background(), train)
	if err != nil {
		return fmt.Errorf("creating train: %w", err)
	}
	fmt.Printf("Train %s (#%s) created.\n", created.TrainName, created.TrainNumber)
	return nil
}

func confirm(in *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := in.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	if err != nil && answer == "" {
		return false
	}
	return answer == "y" || answer == "yes"
}
