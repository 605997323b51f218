package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestCounterNextUsesLastInsertID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("ON DUPLICATE KEY UPDATE value=LAST_INSERT_ID\\(value\\+1\\)").
		WithArgs("route:R1").
		WillReturnResult(sqlmock.NewResult(4, 2))

	n, err := CounterRepo{DB: db}.Next(context.Background(), "route:R1")
	if err != nil {
		t.Fatalf("next error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
}

func TestBusFindByRegNumberIsCaseInsensitive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	cols := []string{"id", "reg_number", "operator_name", "make_model", "seating_capacity", "seat_layout",
		"driver_name", "driver_contact", "password_hash", "qr_token", "status", "created_at"}
	mock.ExpectQuery("WHERE UPPER\\(reg_number\\)=\\?").
		WithArgs("KA01AB1234").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "KA01AB1234", "Metro", "Tata", 30, "2x2",
			"Ravi", "9999", "hash", nil, "active", time.Now()))

	bus, err := BusRepo{DB: db}.FindByRegNumber(context.Background(), " ka01ab1234 ")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if bus.ID != 3 || bus.SeatingCapacity != 30 || bus.QRToken != "" {
		t.Fatalf("unexpected bus: %+v", bus)
	}

	mock.ExpectQuery("WHERE UPPER\\(reg_number\\)=\\?").
		WithArgs("NOPE1").
		WillReturnRows(sqlmock.NewRows(cols))
	if _, err := (BusRepo{DB: db}).FindByRegNumber(context.Background(), "nope1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestBusCreateDuplicateReg(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO buses").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err = BusRepo{DB: db}.Create(context.Background(), models.Bus{RegNumber: "ka01"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestScheduleUpsertCreatesNewTuple(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, status FROM bus_schedules .* FOR UPDATE").
		WithArgs(int64(1), "2024-01-10", "09:00", "pickup").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO bus_schedules").
		WithArgs("2024-01-10", int64(1), "09:00", "pickup", int64(3), nil, 2, "Scheduled").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	id, err := ScheduleRepo{DB: db}.Upsert(context.Background(), models.Schedule{
		Date: travelDate, RouteID: 1, Slot: " 09:00 ", TripType: domain.TripPickup,
		BusID: 3, TotalSeats: 2, Status: domain.ScheduleScheduled,
	})
	if err != nil {
		t.Fatalf("upsert error: %v", err)
	}
	if id != 10 {
		t.Fatalf("expected id 10, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestScheduleUpsertMovesUnseatedBookingsToNewBus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, status FROM bus_schedules .* FOR UPDATE").
		WithArgs(int64(1), "2024-01-10", "09:00", "drop").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(10, "Active"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM daily_bookings\\s+WHERE route_id=\\? AND travel_date=\\? AND drop_slot=\\?").
		WithArgs(int64(1), "2024-01-10", "09:00").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectQuery("WHERE drop_schedule_id=\\? AND drop_seat_no IS NOT NULL\\s+AND drop_bus_id<>\\?").
		WithArgs(int64(10), int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("UPDATE daily_bookings SET drop_bus_id=\\?\\s+WHERE drop_schedule_id=\\? AND drop_seat_no IS NULL").
		WithArgs(int64(6), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO bus_schedules").
		WithArgs("2024-01-10", int64(1), "09:00", "drop", int64(6), nil, 2, "Scheduled").
		WillReturnResult(sqlmock.NewResult(10, 2))
	mock.ExpectCommit()

	id, err := ScheduleRepo{DB: db}.Upsert(context.Background(), models.Schedule{
		Date: travelDate, RouteID: 1, Slot: "09:00", TripType: domain.TripDrop,
		BusID: 6, TotalSeats: 2, Status: domain.ScheduleScheduled,
	})
	if err != nil {
		t.Fatalf("upsert error: %v", err)
	}
	if id != 10 {
		t.Fatalf("expected existing id 10, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestScheduleUpsertRefusals(t *testing.T) {
	sched := models.Schedule{
		Date: travelDate, RouteID: 1, Slot: "09:00", TripType: domain.TripPickup,
		BusID: 6, TotalSeats: 2, Status: domain.ScheduleScheduled,
	}
	lock := func(mock sqlmock.Sqlmock, status string) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, status FROM bus_schedules .* FOR UPDATE").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(10, status))
	}
	cases := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
		want   error
	}{
		{"started trip", func(mock sqlmock.Sqlmock) {
			lock(mock, "Trip Started")
		}, ErrScheduleClosed},
		{"capacity below bookings", func(mock sqlmock.Sqlmock) {
			lock(mock, "Active")
			mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM daily_bookings").
				WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
		}, ErrCapacityBelowBooked},
		{"seat held on old bus", func(mock sqlmock.Sqlmock) {
			lock(mock, "Scheduled")
			mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM daily_bookings").
				WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
			mock.ExpectQuery("pickup_seat_no IS NOT NULL").
				WithArgs(int64(10), int64(6)).
				WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		}, ErrSeatsAssigned},
	}
	for _, tc := range cases {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock init error: %v", err)
		}
		tc.expect(mock)
		mock.ExpectRollback()

		if _, err := (ScheduleRepo{DB: db}).Upsert(context.Background(), sched); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s: unmet expectations: %v", tc.name, err)
		}
		db.Close()
	}
}

func TestScheduleUpdateStatusDetectsConcurrentMove(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	end := time.Now()
	mock.ExpectExec("UPDATE bus_schedules SET status=\\?, end_time=\\? WHERE id=\\? AND status=\\?").
		WithArgs("Trip Completed", end, int64(10), "Trip Started").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ScheduleRepo{DB: db}.UpdateStatus(context.Background(), 10, domain.ScheduleTripStarted, domain.ScheduleTripCompleted, nil, &end)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
}

func TestPassCreateExpiresPreviousActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE passes SET status=\\? WHERE rider_id=\\? AND status=\\?").
		WithArgs("Expired", int64(7), "Active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO passes").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	id, err := PassRepo{DB: db}.Create(context.Background(), models.Pass{
		RiderID: 7, Status: models.PassActive, StartDate: travelDate, EndDate: travelDate.AddDate(0, 0, 30),
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if id != 5 {
		t.Fatalf("expected id 5, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPassActiveForRiderSkipsLapsedPasses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("WHERE rider_id=\\? AND status=\\? AND end_date>=\\?").
		WithArgs(int64(4), "Active", "2024-01-10").
		WillReturnError(sql.ErrNoRows)

	if _, err := (PassRepo{DB: db}).ActiveForRider(context.Background(), 4, travelDate); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
