package handler

import (
	"math"
	"time"

	"github.com/teghlab/otp-lab/internal/domain"
)

// UserDTO is the JSON representation of a user. It has no password field.
type UserDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zipCode"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Address:   u.Address,
		City:      u.City,
		ZipCode:   u.ZipCode,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// SessionUserDTO is the JSON representation of the signed-in user.
type SessionUserDTO struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// OTPDTO is the JSON representation of a live OTP record.
type OTPDTO struct {
	Email     string `json:"email"`
	OTP       string `json:"otp"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
}

func toOTPDTOs(otps []domain.OTP) []OTPDTO {
	dtos := make([]OTPDTO, len(otps))
	for i, o := range otps {
		dtos[i] = OTPDTO{
			Email:     o.Email,
			OTP:       o.Code,
			CreatedAt: o.CreatedAt.Format(time.RFC3339),
			ExpiresAt: o.ExpiresAt.Format(time.RFC3339),
		}
	}
	return dtos
}

// OTPLookupDTO answers GET /otp/{email}. ExpiresIn is whole seconds, rounded up.
type OTPLookupDTO struct {
	Email     string `json:"email"`
	OTP       string `json:"otp"`
	ExpiresIn int    `json:"expiresIn"`
}

func toOTPLookupDTO(o *domain.OTP, remaining time.Duration) OTPLookupDTO {
	return OTPLookupDTO{
		Email:     o.Email,
		OTP:       o.Code,
		ExpiresIn: int(math.Ceil(remaining.Seconds())),
	}
}
