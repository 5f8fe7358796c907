// Package eticket renders a printable PDF for a booked ticket.
package eticket

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/qr"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Render builds the e-ticket PDF for t and returns it with a download file
// name. Departure times are printed in loc. The QR image is embedded when
// the ticket carries a valid PNG data URL.
func Render(t model.TicketDetail, loc *time.Location) ([]byte, string, error) {
	if loc == nil {
		loc = time.UTC
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+t.BookingReference, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUS E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	for _, s := range lines(t, loc) {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	if png, err := qr.DecodeDataURL(t.QRCode); err == nil {
		name := "qr-" + t.BookingReference
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		pdf.ImageOptions(name, 140, 30, 50, 50, false, opts, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This e-ticket is valid for one passenger. Show the QR code to the conductor when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render e-ticket: %w", err)
	}
	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", t.BookingReference, unsafeFilename.ReplaceAllString(t.PassengerName, "_"))
	return buf.Bytes(), filename, nil
}

func lines(t model.TicketDetail, loc *time.Location) []string {
	out := []string{
		"Booking Reference : " + t.BookingReference,
		"Passenger         : " + t.PassengerName,
		"Phone             : " + t.PassengerPhone,
		"From / To         : " + t.FromStop + " -> " + t.ToStop,
		fmt.Sprintf("Fare              : %.2f", t.Fare),
		"Status            : " + string(t.Status),
	}
	if t.Trip != nil {
		out = append(out, "Departure         : "+t.Trip.ScheduledDeparture.In(loc).Format("2006-01-02 15:04"))
		if t.Trip.Route != nil {
			out = append(out, fmt.Sprintf("Route             : %s (%s)", t.Trip.Route.Name, t.Trip.Route.Code))
		}
		if t.Trip.Bus != nil {
			out = append(out, "Bus               : "+t.Trip.Bus.RegistrationNumber+" "+t.Trip.Bus.Model)
		}
	}
	return out
}
