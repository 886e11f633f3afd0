// Package report assembles the HR claims report and renders it as a workbook.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// ClaimReport lists every claim with per-status totals
type ClaimReport struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	Claims      []*entity.ClaimWithLecturer `json:"claims"`
	Summary     []entity.StatusSummary      `json:"summary"`
	TotalCount  int                         `json:"total_count"`
	TotalAmount decimal.Decimal             `json:"total_amount"`
}

// New builds a report and computes its grand totals from the summary
func New(claims []*entity.ClaimWithLecturer, summary []entity.StatusSummary, now time.Time) *ClaimReport {
	r := &ClaimReport{
		GeneratedAt: now,
		Claims:      claims,
		Summary:     summary,
		TotalAmount: decimal.Zero,
	}
	for _, s := range summary {
		r.TotalCount += s.Count
		r.TotalAmount = r.TotalAmount.Add(s.TotalAmount)
	}
	return r
}
