package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
	"shuttle/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

type BusService struct {
	Buses     BusStore
	Now       func() time.Time
	RequestID string
}

type OnboardBusInput struct {
	RegNumber       string `json:"regNumber"`
	OperatorName    string `json:"operatorName"`
	MakeModel       string `json:"makeModel"`
	SeatingCapacity int    `json:"seatingCapacity"`
	SeatLayout      string `json:"seatLayout"`
	DriverName      string `json:"driverName"`
	DriverContact   string `json:"driverContact"`
	Password        string `json:"password"`
}

// Onboard registers a bus with a hashed driver password and a fresh QR
// token. Without an explicit password the default is <last 4 of reg>@bus.
func (s BusService) Onboard(ctx context.Context, in OnboardBusInput) (models.Bus, error) {
	reg := strings.ToUpper(strings.Join(strings.Fields(in.RegNumber), ""))
	if reg == "" {
		return models.Bus{}, domain.ValidationError{Field: "regNumber", Msg: "is required"}
	}
	if !utils.ValidRegNumber(reg) {
		return models.Bus{}, domain.ValidationError{Field: "regNumber", Msg: "must be letters and digits only"}
	}
	if in.SeatingCapacity <= 0 {
		return models.Bus{}, domain.ValidationError{Field: "seatingCapacity", Msg: "must be positive"}
	}

	password := in.Password
	if password == "" {
		password = defaultBusPassword(reg)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Bus{}, domain.Wrap("failed to hash password", err)
	}

	bus := models.Bus{
		RegNumber:       reg,
		OperatorName:    strings.TrimSpace(in.OperatorName),
		MakeModel:       strings.TrimSpace(in.MakeModel),
		SeatingCapacity: in.SeatingCapacity,
		SeatLayout:      utils.FirstNonEmpty(in.SeatLayout, "2x2"),
		DriverName:      strings.TrimSpace(in.DriverName),
		DriverContact:   strings.TrimSpace(in.DriverContact),
		PasswordHash:    string(hash),
		QRToken:         utils.NewBusQRToken(reg, nowOr(s.Now)),
		Status:          "active",
	}
	id, err := s.Buses.Create(ctx, bus)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "registration number already onboarded", Reason: domain.ReasonAlreadyExists, Err: err}
		}
		return models.Bus{}, domain.Wrap("failed to save bus", err)
	}
	bus.ID = id
	bus.CreatedAt = nowOr(s.Now)
	utils.LogEvent(s.RequestID, "bus", "onboard", fmt.Sprintf("bus_id=%d reg=%s", id, reg))
	return bus, nil
}

func defaultBusPassword(reg string) string {
	if len(reg) > 4 {
		reg = reg[len(reg)-4:]
	}
	return reg + "@bus"
}

func (s BusService) List(ctx context.Context) ([]models.Bus, error) {
	list, err := s.Buses.List(ctx)
	if err != nil {
		return nil, domain.Wrap("failed to list buses", err)
	}
	return list, nil
}

func (s BusService) Get(ctx context.Context, id int64) (models.Bus, error) {
	bus, err := s.Buses.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return bus, domain.NotFoundError{Resource: "bus", Reason: domain.ReasonBusNotFound}
		}
		return bus, domain.Wrap("failed to load bus", err)
	}
	return bus, nil
}
