package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
)

func reserveFor(t *testing.T, f *fixture, rider int64, in ReserveInput) BookingView {
	t.Helper()
	f.rider(rider)
	in.RiderID = rider
	in.Date = "2024-01-10"
	v, err := f.reservation().Reserve(context.Background(), in)
	if err != nil {
		t.Fatalf("reserve for rider %d failed: %v", rider, err)
	}
	return v
}

func TestBoardingAssignsDistinctSeatsConcurrently(t *testing.T) {
	f := newFixture(2)
	f.schedule("09:00", domain.TripPickup, 2, f.bus.ID)
	a := reserveFor(t, f, 1, ReserveInput{PickupSlot: "09:00"})
	b := reserveFor(t, f, 2, ReserveInput{PickupSlot: "09:00"})
	svc := f.boarding()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		seats []int
	)
	for _, v := range []BookingView{a, b} {
		wg.Add(1)
		go func(v BookingView) {
			defer wg.Done()
			res, err := svc.ConfirmBoarding(context.Background(), v.RiderID, v.ID, qr(f.bus.RegNumber))
			if err != nil {
				t.Errorf("booking %d: boarding failed: %v", v.ID, err)
				return
			}
			mu.Lock()
			seats = append(seats, res.SeatNo)
			mu.Unlock()
		}(v)
	}
	wg.Wait()

	sort.Ints(seats)
	if len(seats) != 2 || seats[0] != 1 || seats[1] != 2 {
		t.Fatalf("expected seats [1 2], got %v", seats)
	}
	if got := f.st.booking(a.ID); got.Status != domain.BookingBoarded || !got.Pickup.Boarded {
		t.Fatalf("booking not marked boarded: %+v", got)
	}
}

func TestBoardingIsIdempotent(t *testing.T) {
	f := newFixture(10)
	f.schedule("09:00", domain.TripPickup, 10, f.bus.ID)
	v := reserveFor(t, f, 1, ReserveInput{PickupSlot: "09:00"})
	svc := f.boarding()

	first, err := svc.ConfirmBoarding(context.Background(), 1, v.ID, qr(f.bus.RegNumber))
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	second, err := svc.ConfirmBoarding(context.Background(), 1, v.ID, qr(f.bus.RegNumber))
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if !second.AlreadyBoarded || second.SeatNo != first.SeatNo {
		t.Fatalf("expected already boarded on seat %d, got %+v", first.SeatNo, second)
	}
}

func TestBoardingRejections(t *testing.T) {
	f := newFixture(10)
	f.schedule("09:00", domain.TripPickup, 10, f.bus.ID)
	other := f.st.addBus(models.Bus{RegNumber: "KA05MN9999", SeatingCapacity: 30})
	v := reserveFor(t, f, 1, ReserveInput{PickupSlot: "09:00"})
	svc := f.boarding()

	cases := []struct {
		name      string
		rider     int64
		bookingID int64
		token     string
		reason    string
	}{
		{"malformed token", 1, v.ID, "hello", domain.ReasonBadToken},
		{"unknown bus", 1, v.ID, qr("KA99ZZ0000"), domain.ReasonBusNotFound},
		{"wrong rider", 2, v.ID, qr(f.bus.RegNumber), domain.ReasonNoPendingReservation},
		{"wrong bus", 1, v.ID, qr(other.RegNumber), domain.ReasonBusMismatch},
	}
	for _, tc := range cases {
		_, err := svc.ConfirmBoarding(context.Background(), tc.rider, tc.bookingID, tc.token)
		if domain.ReasonOf(err) != tc.reason {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.reason, err)
		}
	}
	if got := f.st.booking(v.ID); got.Pickup.SeatNo != nil {
		t.Fatalf("rejected scans must not assign a seat")
	}
}

func TestBoardingRetriesAfterSeatConflict(t *testing.T) {
	f := newFixture(3)
	f.schedule("09:00", domain.TripPickup, 3, f.bus.ID)
	v := reserveFor(t, f, 1, ReserveInput{PickupSlot: "09:00"})
	rival := reserveFor(t, f, 2, ReserveInput{PickupSlot: "09:00"})

	raced := false
	f.st.beforeClaim = func(bookingID int64, tt domain.TripType, seat int) {
		if raced || bookingID != v.ID {
			return
		}
		raced = true
		f.st.mu.Lock()
		b := f.st.bookings[rival.ID]
		b.Pickup.SeatNo = &seat
		b.Pickup.Boarded = true
		f.st.bookings[rival.ID] = b
		f.st.mu.Unlock()
	}
	svc := f.boarding()
	svc.Picker = func(pool []int) int { return pool[0] }

	res, err := svc.ConfirmBoarding(context.Background(), 1, v.ID, qr(f.bus.RegNumber))
	if err != nil {
		t.Fatalf("boarding failed: %v", err)
	}
	if res.SeatNo != 2 {
		t.Fatalf("expected retry to land on seat 2, got %d", res.SeatNo)
	}
}

func TestBoardingGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture(3)
	f.schedule("09:00", domain.TripPickup, 3, f.bus.ID)
	v := reserveFor(t, f, 1, ReserveInput{PickupSlot: "09:00"})
	rival := reserveFor(t, f, 2, ReserveInput{PickupSlot: "09:00"})
	one := 1
	f.st.mu.Lock()
	b := f.st.bookings[rival.ID]
	b.Pickup.SeatNo = &one
	f.st.bookings[rival.ID] = b
	f.st.mu.Unlock()

	svc := f.boarding()
	svc.ClaimAttempts = 3
	svc.Picker = func([]int) int { return 1 }

	_, err := svc.ConfirmBoarding(context.Background(), 1, v.ID, qr(f.bus.RegNumber))
	if domain.ReasonOf(err) != domain.ReasonSeatRaceLost {
		t.Fatalf("expected seat_race_lost, got %v", err)
	}
}

func TestBoardingNoSeatsLeft(t *testing.T) {
	f := newFixture(1)
	f.schedule("09:00", domain.TripPickup, 2, f.bus.ID)
	a := reserveFor(t, f, 1, ReserveInput{PickupSlot: "09:00"})
	b := reserveFor(t, f, 2, ReserveInput{PickupSlot: "09:00"})
	svc := f.boarding()

	if _, err := svc.ConfirmBoarding(context.Background(), 1, a.ID, qr(f.bus.RegNumber)); err != nil {
		t.Fatalf("first boarding failed: %v", err)
	}
	_, err := svc.ConfirmBoarding(context.Background(), 2, b.ID, qr(f.bus.RegNumber))
	if domain.ReasonOf(err) != domain.ReasonNoSeatsLeft {
		t.Fatalf("expected no_seats_left, got %v", err)
	}
}

func TestBoardingSameBusBothLegs(t *testing.T) {
	f := newFixture(10)
	pickup := f.schedule("09:00", domain.TripPickup, 10, f.bus.ID)
	f.schedule("18:00", domain.TripDrop, 10, f.bus.ID)
	v := reserveFor(t, f, 1, ReserveInput{PickupSlot: "09:00", DropSlot: "18:00"})
	svc := f.boarding()

	res, err := svc.ConfirmBoarding(context.Background(), 1, v.ID, qr(f.bus.RegNumber))
	if err != nil || res.TripType != domain.TripPickup {
		t.Fatalf("expected pickup leg first, got %+v err=%v", res, err)
	}
	if got := f.st.booking(v.ID); got.Status != domain.BookingReserved {
		t.Fatalf("booking should stay reserved until both legs board, got %s", got.Status)
	}

	if _, err := f.closure().CloseTrip(context.Background(), pickup.ID); err != nil {
		t.Fatalf("closing pickup failed: %v", err)
	}
	res, err = svc.ConfirmBoarding(context.Background(), 1, v.ID, qr(f.bus.RegNumber))
	if err != nil || res.TripType != domain.TripDrop || res.AlreadyBoarded {
		t.Fatalf("expected fresh drop boarding, got %+v err=%v", res, err)
	}
	if got := f.st.booking(v.ID); got.Status != domain.BookingBoarded {
		t.Fatalf("expected boarded after both legs, got %s", got.Status)
	}
}

func TestFreeSeats(t *testing.T) {
	got := freeSeats(5, []int{2, 4, 9})
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
