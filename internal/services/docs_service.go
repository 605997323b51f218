package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders pass e-tickets and daily boarding tickets as PDF.
type DocsService struct {
	Passes    PassStore
	Routes    RouteStore
	Bookings  BookingStore
	Buses     BusStore
	RequestID string
	Loader    func(ctx context.Context, passID int64) (passDocData, error)
}

type passDocData struct {
	Pass       models.Pass
	RouteStart string
	RouteEnd   string
}

func (s DocsService) GeneratePassTicket(ctx context.Context, passID int64) ([]byte, string, error) {
	data, err := s.loadPassDocData(ctx, passID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_pass_ticket", fmt.Sprintf("pass_id=%d ticket=%s", passID, data.Pass.TicketID))
	return buildPassTicketPDF(data)
}

// GenerateBookingTicket renders the daily ticket shown when boarding.
func (s DocsService) GenerateBookingTicket(ctx context.Context, bookingID int64) ([]byte, string, error) {
	b, err := loadBooking(ctx, s.Bookings, bookingID)
	if err != nil {
		return nil, "", err
	}
	view := buildBookingView(ctx, s.Routes, s.Buses, b, nil)
	utils.LogEvent(s.RequestID, "docs", "generate_booking_ticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildBookingTicketPDF(view)
}

func (s DocsService) loadPassDocData(ctx context.Context, passID int64) (passDocData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, passID)
	}
	var out passDocData
	if passID <= 0 {
		return out, domain.ValidationError{Field: "passId", Msg: "is required"}
	}
	p, err := s.Passes.GetByID(ctx, passID)
	if err != nil {
		if isNoRows(err) {
			return out, domain.NotFoundError{Resource: "pass", Reason: domain.ReasonPassNotFound}
		}
		return out, domain.Wrap("failed to load pass", err)
	}
	out.Pass = p
	if s.Routes != nil {
		if r, err := s.Routes.GetByID(ctx, p.RouteID); err == nil {
			out.RouteStart, out.RouteEnd = r.StartPoint, r.EndPoint
		}
	}
	return out, nil
}

func buildPassTicketPDF(d passDocData) ([]byte, string, error) {
	p := d.Pass
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shuttle Pass", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "SHUTTLE PASS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Ticket ID      : %s", safe(p.TicketID, "-")),
		fmt.Sprintf("Route          : %s (%s -> %s)", safe(p.RouteNo, "-"), safe(d.RouteStart, "-"), safe(d.RouteEnd, "-")),
		fmt.Sprintf("Pickup         : %s at %s", safe(p.PickupLocation, "-"), safe(p.PickupSlot, "-")),
		fmt.Sprintf("Drop           : %s at %s", safe(p.DropLocation, "-"), safe(p.DropSlot, "-")),
		fmt.Sprintf("Valid          : %s to %s (%d days)", utils.FormatDate(p.StartDate), utils.FormatDate(p.EndDate), p.DurationDays),
		fmt.Sprintf("Amount         : %s", utils.FormatRupees(p.Price)),
		fmt.Sprintf("Status         : %s", safe(p.Status, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Reserve a seat for each travel day and scan the bus QR code when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("PASS_%s.pdf", safeFilenamePart(p.TicketID))
	return buf.Bytes(), filename, nil
}

func buildBookingTicketPDF(v BookingView) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ride Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RIDE TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking        : #%d", v.ID),
		fmt.Sprintf("Date           : %s", v.Date),
		fmt.Sprintf("Route          : %s (%s -> %s)", safe(v.RouteNo, "-"), safe(v.RouteStart, "-"), safe(v.RouteEnd, "-")),
		fmt.Sprintf("Pickup / Drop  : %s -> %s", safe(v.PickupLocation, "-"), safe(v.DropLocation, "-")),
		fmt.Sprintf("Status         : %s", v.Status),
	}
	for _, leg := range []*LegView{v.Pickup, v.Drop} {
		if leg == nil {
			continue
		}
		seat := "assigned at boarding"
		if leg.SeatNo != nil {
			seat = fmt.Sprintf("%d", *leg.SeatNo)
		}
		bus := "-"
		if leg.Bus != nil {
			bus = fmt.Sprintf("%s (%s, %s)", leg.Bus.RegNumber, safe(leg.Bus.DriverName, "-"), safe(leg.Bus.DriverContact, "-"))
		}
		lines = append(lines,
			fmt.Sprintf("%-15s: %s, seat %s", strings.ToUpper(string(leg.TripType)), leg.Slot, seat),
			fmt.Sprintf("%-15s: %s", "Bus", bus),
		)
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Generated "+time.Now().Format("2006-01-02 15:04")+". Valid for one rider.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("TICKET_%d_%s.pdf", v.ID, safeFilenamePart(v.Date)), nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
