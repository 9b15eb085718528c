// Package ticket renders a local e-ticket PDF from a confirmed booking.
package ticket

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/railbook/railbook/internal/api/rail"
)

// Build renders an A4 e-ticket for the booking and returns the PDF
// bytes with a suggested filename.
func Build(b *rail.Booking) ([]byte, string, error) {
	if b == nil || b.PNR == "" {
		return nil, "", fmt.Errorf("booking has no PNR")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+b.PNR, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"PNR        : " + b.PNR,
		fmt.Sprintf("Train      : %s (#%s)", b.TrainName, b.TrainNumber),
		fmt.Sprintf("Route      : %s -> %s", b.Source, b.Destination),
		"Date       : " + b.TravelDate,
		"Class      : " + b.Class,
		"Status     : " + b.Status,
		fmt.Sprintf("Total Fare : INR %d", b.TotalFare),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passengers")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for i, p := range b.Passengers {
		pdf.Cell(0, 6, fmt.Sprintf("%d) %s, %s yrs, %s", i+1, p.Name, p.Age, p.Gender))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Generated %s. Carry a valid photo ID for every passenger.",
		time.Now().Format("2006-01-02 15:04")), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("rendering e-ticket pdf: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("eticket-%s.pdf", b.PNR), nil
}
