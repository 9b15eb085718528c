package ticket

import (
	"bytes"
	"testing"

	"github.com/railbook/railbook/internal/api/rail"
)

func TestBuildETicket(t *testing.T) {
	booking := &rail.Booking{
		PNR:         "PNR1234",
		TrainName:   "Rajdhani Express",
		TrainNumber: "12951",
		Source:      "Delhi",
		Destination: "Mumbai",
		TravelDate:  "2025-01-01",
		Class:       "SL",
		Passengers: []rail.Passenger{
			{Name: "Asha", Age: "34", Gender: "Female"},
			{Name: "Ravi", Age: "36", Gender: "Male"},
		},
		TotalFare: 1000,
		Status:    rail.StatusConfirmed,
	}

	data, filename, err := Build(booking)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Build returned empty pdf")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a pdf: %q", data[:8])
	}
	if filename != "eticket-PNR1234.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestBuildRequiresPNR(t *testing.T) {
	if _, _, err := Build(nil); err == nil {
		t.Fatal("expected error for nil booking")
	}
	if _, _, err := Build(&rail.Booking{}); err == nil {
		t.Fatal("expected error for booking without PNR")
	}
}
