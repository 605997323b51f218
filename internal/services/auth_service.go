package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// AuthService issues and verifies HS256 tokens.
type AuthService struct {
	Buses     BusStore
	Secret    []byte
	Now       func() time.Time
	RequestID string
}

type DriverLogin struct {
	Token string            `json:"token"`
	Bus   models.BusSummary `json:"bus"`
}

// LoginDriver authenticates a driver by bus registration number.
func (s AuthService) LoginDriver(ctx context.Context, regNumber, password string) (DriverLogin, error) {
	invalid := domain.AuthorizationError{Msg: "invalid registration number or password", Reason: domain.ReasonInvalidCredentials}
	if strings.TrimSpace(regNumber) == "" || password == "" {
		return DriverLogin{}, domain.ValidationError{Field: "regNumber", Msg: "registration number and password are required"}
	}
	bus, err := s.Buses.FindByRegNumber(ctx, regNumber)
	if err != nil {
		if isNoRows(err) {
			return DriverLogin{}, invalid
		}
		return DriverLogin{}, domain.Wrap("failed to load bus", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(bus.PasswordHash), []byte(password)); err != nil {
		return DriverLogin{}, invalid
	}
	token, err := s.IssueToken(domain.RequestContext{BusID: bus.ID, Role: domain.RoleDriver}, bus.RegNumber)
	if err != nil {
		return DriverLogin{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "driver_login", fmt.Sprintf("bus_id=%d", bus.ID))
	return DriverLogin{Token: token, Bus: bus.Summary()}, nil
}

// IssueToken signs claims for rc. subject is informational only.
func (s AuthService) IssueToken(rc domain.RequestContext, subject string) (string, error) {
	now := nowOr(s.Now)
	claims := jwt.MapClaims{
		"role": rc.Role,
		"sub":  subject,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	if rc.UserID > 0 {
		claims["user_id"] = rc.UserID
	}
	if rc.BusID > 0 {
		claims["bus_id"] = rc.BusID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", domain.Wrap("failed to sign token", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the identity.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	var rc domain.RequestContext
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return nowOr(s.Now) }))
	if err != nil || !token.Valid {
		return rc, domain.AuthorizationError{Msg: "invalid token", Reason: domain.ReasonInvalidCredentials, Err: err}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return rc, domain.AuthorizationError{Msg: "invalid token claims", Reason: domain.ReasonInvalidCredentials}
	}
	rc.Role, _ = claims["role"].(string)
	if v, ok := claims["user_id"].(float64); ok {
		rc.UserID = int64(v)
	}
	if v, ok := claims["bus_id"].(float64); ok {
		rc.BusID = int64(v)
	}
	if rc.Role == "" {
		return rc, domain.AuthorizationError{Msg: "token carries no role", Reason: domain.ReasonInvalidCredentials}
	}
	return rc, nil
}
