package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"shuttle/internal/domain/models"
)

func TestDocsServiceGeneratePassTicket(t *testing.T) {
	loader := func(ctx context.Context, id int64) (passDocData, error) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		return passDocData{
			Pass: models.Pass{
				ID:             id,
				RouteNo:        "R1",
				PickupLocation: "Gate 2",
				DropLocation:   "Tech Park",
				PickupSlot:     "09:00",
				DropSlot:       "18:00",
				StartDate:      start,
				EndDate:        start.AddDate(0, 0, 30),
				DurationDays:   30,
				Price:          2500,
				Status:         models.PassActive,
				TicketID:       "R1-001-00001",
			},
			RouteStart: "Society",
			RouteEnd:   "Tech Park",
		}, nil
	}

	svc := DocsService{Loader: loader}
	pdf, filename, err := svc.GeneratePassTicket(context.Background(), 1)
	if err != nil {
		t.Fatalf("GeneratePassTicket returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "PASS_R1-001-00001.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServiceGenerateBookingTicket(t *testing.T) {
	st := newMemStore()
	st.addRoute(models.Route{ID: 1, RouteNo: "R1", StartPoint: "Society", EndPoint: "Tech Park"})
	st.addBus(models.Bus{ID: 3, RegNumber: "KA01AB1234", SeatingCapacity: 2, DriverName: "Ravi"})
	seat := 2
	bus := int64(3)
	st.bookings[5] = models.Booking{
		ID: 5, RiderID: 7, Date: testDate, RouteID: 1,
		Pickup: models.Leg{Slot: "09:00", BusID: &bus, SeatNo: &seat, Boarded: true},
		Status: "boarded",
	}

	svc := DocsService{Bookings: memBookings{st}, Routes: memRoutes{st}, Buses: memBuses{st}}
	pdf, filename, err := svc.GenerateBookingTicket(context.Background(), 5)
	if err != nil {
		t.Fatalf("GenerateBookingTicket returned error: %v", err)
	}
	if len(pdf) == 0 || filename != "TICKET_5_2024-01-10.pdf" {
		t.Fatalf("unexpected output: %d bytes, %q", len(pdf), filename)
	}
}
