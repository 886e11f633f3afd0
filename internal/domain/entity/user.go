package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account of the identity collaborator
type User struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	Role         Role            `json:"role"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"` // meaningful for lecturers only
	IsActive     bool            `json:"is_active"`
	PasswordHash string          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IsLecturer returns true if the user submits claims
func (u *User) IsLecturer() bool {
	return u.Role == RoleLecturer
}

// NormalizeRate zeroes the hourly rate for every role but Lecturer
func (u *User) NormalizeRate() {
	if !u.IsLecturer() {
		u.HourlyRate = decimal.Zero
	}
}

// Caller identifies who invokes a service operation
type Caller struct {
	UserID int64
	Role   Role
}

// Is reports whether the caller holds the role
func (c Caller) Is(role Role) bool {
	return c.Role == role
}
