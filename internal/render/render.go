// Package render writes user-facing output: train results, booking
// lists, confirmation blocks and transient notices. Diagnostics go
// through logrus; everything here is for the person at the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/railbook/railbook/internal/api/rail"
)

// Notice prints a transient user-visible message to stderr, the
// terminal stand-in for a toast.
func Notice(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Trains renders search results with per-class fare and availability.
func Trains(w io.Writer, trains []rail.Train) {
	for i, t := range trains {
		fmt.Fprintf(w, "[%d] %s (#%s)  %s -> %s  %s\n",
			i+1, t.TrainName, t.TrainNumber, t.Source, t.Destination, t.Duration)

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, class := range sortedClasses(t.Classes) {
			info := t.Classes[class]
			availability := "Waiting List"
			if info.AvailableSeats > 0 {
				availability = fmt.Sprintf("Available: %d", info.AvailableSeats)
			}
			fmt.Fprintf(tw, "    %s\t₹%d\t%s\n", class, info.Fare, availability)
		}
		tw.Flush()
		if i < len(trains)-1 {
			fmt.Fprintln(w)
		}
	}
}

// Bookings renders the user's booking list with route, date, class,
// passengers, fare and status.
func Bookings(w io.Writer, bookings []rail.Booking) {
	for i, b := range bookings {
		Booking(w, &b)
		if i < len(bookings)-1 {
			fmt.Fprintln(w, strings.Repeat("-", 40))
		}
	}
}

// Booking renders one booking in full.
func Booking(w io.Writer, b *rail.Booking) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "PNR:\t%s\t[%s]\n", b.PNR, b.Status)
	fmt.Fprintf(tw, "Train:\t%s (#%s)\n", b.TrainName, b.TrainNumber)
	fmt.Fprintf(tw, "Route:\t%s -> %s\n", b.Source, b.Destination)
	fmt.Fprintf(tw, "Date:\t%s\n", b.TravelDate)
	fmt.Fprintf(tw, "Class:\t%s\n", b.Class)
	fmt.Fprintf(tw, "Total Fare:\t₹%d\n", b.TotalFare)
	tw.Flush()
	fmt.Fprintln(w, "Passengers:")
	for _, p := range b.Passengers {
		fmt.Fprintf(w, "  %s (%syrs, %s)\n", p.Name, p.Age, p.Gender)
	}
}

// Confirmation renders the post-payment success block.
func Confirmation(w io.Writer, b *rail.Booking) {
	fmt.Fprintln(w, "Booking Confirmed!")
	fmt.Fprintln(w)
	Booking(w, b)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Please save your PNR number for future reference.")
}

// FareSummary shows the client-side fare estimate during passenger
// entry and payment.
func FareSummary(w io.Writer, passengers, fare int) {
	fmt.Fprintf(w, "Total Fare (%d passengers): ₹%d\n", passengers, fare)
}

func sortedClasses(classes map[string]rail.ClassInfo) []string {
	out := make([]string, 0, len(classes))
	for class := range classes {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}
