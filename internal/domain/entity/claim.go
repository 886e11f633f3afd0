package entity

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Claim field limits
const (
	MaxNotesLength = 500
)

var (
	// MaxHoursWorked is the inclusive upper bound for hours on one claim
	MaxHoursWorked = decimal.NewFromInt(1000)
	// MinHourlyRate is the inclusive lower bound for the hourly rate
	MinHourlyRate = decimal.NewFromInt(1)
	// MaxHourlyRate is the inclusive upper bound for the hourly rate
	MaxHourlyRate = decimal.NewFromInt(1000)
)

// Claim is a lecturer's request for payment of worked hours
type Claim struct {
	ID             int64                `json:"id"`
	OwnerID        int64                `json:"owner_id"`
	HoursWorked    decimal.Decimal      `json:"hours_worked"`
	HourlyRate     decimal.Decimal      `json:"hourly_rate"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	Notes          string               `json:"notes,omitempty"`
	SubmissionDate time.Time            `json:"submission_date"`
	Status         ClaimStatus          `json:"status"`
	Documents      []SupportingDocument `json:"documents"`
}

// NewClaim validates the input and returns a PENDING claim with its total computed
func NewClaim(ownerID int64, hoursWorked, hourlyRate decimal.Decimal, notes string) (*Claim, error) {
	verr := &ValidationError{}
	if ownerID <= 0 {
		verr.Add("owner_id", "owner is required")
	}
	validateAmounts(verr, hoursWorked, hourlyRate)
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		verr.Add("notes", "notes must be at most 500 characters")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	claim := &Claim{
		OwnerID:        ownerID,
		HoursWorked:    hoursWorked,
		HourlyRate:     hourlyRate,
		Notes:          notes,
		SubmissionDate: time.Now().UTC(),
		Status:         StatusPending,
		Documents:      []SupportingDocument{},
	}
	claim.RecalculateTotal()
	return claim, nil
}

// RecalculateTotal returns hours_worked * hourly_rate without touching the claim
func RecalculateTotal(c *Claim) decimal.Decimal {
	return c.HoursWorked.Mul(c.HourlyRate)
}

// RecalculateTotal stores hours_worked * hourly_rate in TotalAmount; idempotent
func (c *Claim) RecalculateTotal() decimal.Decimal {
	c.TotalAmount = RecalculateTotal(c)
	return c.TotalAmount
}

// IsOwnedBy reports whether the user submitted the claim
func (c *Claim) IsOwnedBy(userID int64) bool {
	return c.OwnerID == userID
}

func validateAmounts(verr *ValidationError, hours, rate decimal.Decimal) {
	if !hours.IsPositive() || hours.GreaterThan(MaxHoursWorked) {
		verr.Add("hours_worked", "hours worked must be greater than 0 and at most 1000")
	}
	if rate.LessThan(MinHourlyRate) || rate.GreaterThan(MaxHourlyRate) {
		verr.Add("hourly_rate", "hourly rate must be between 1 and 1000")
	}
}

// ClaimWithLecturer pairs a claim with its owner's display name for queues and reports
type ClaimWithLecturer struct {
	Claim
	LecturerName string `json:"lecturer_name"`
}

// StatusSummary aggregates claims sharing one status
type StatusSummary struct {
	Status      ClaimStatus     `json:"status"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
