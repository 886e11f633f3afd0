package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/lecturer-claims/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StatusSummaryResponse is one row of the per-status totals
type StatusSummaryResponse struct {
	Status      string `json:"status"`
	Count       int    `json:"count"`
	TotalAmount string `json:"total_amount"`
}

// ClaimReportResponse is the HR claims report
type ClaimReportResponse struct {
	GeneratedAt string                  `json:"generated_at"`
	Claims      []ClaimResponse         `json:"claims"`
	Summary     []StatusSummaryResponse `json:"summary"`
	TotalCount  int                     `json:"total_count"`
	TotalAmount string                  `json:"total_amount"`
}

// ClaimsReport handles GET /api/reports/claims
func (h *Handlers) ClaimsReport(c *gin.Context) {
	r, err := h.services.Reports.ClaimsReport(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toReportResponse(r))
}

// ClaimsWorkbook handles GET /api/reports/claims.xlsx
func (h *Handlers) ClaimsWorkbook(c *gin.Context) {
	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.services.Reports.ExportClaims(c.Request.Context(), &buf); err != nil {
		writeError(c, h.logger, err)
		return
	}

	name := fmt.Sprintf("claims-report-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func toReportResponse(r *report.ClaimReport) ClaimReportResponse {
	summary := make([]StatusSummaryResponse, 0, len(r.Summary))
	for _, s := range r.Summary {
		summary = append(summary, StatusSummaryResponse{
			Status:      s.Status.String(),
			Count:       s.Count,
			TotalAmount: money(s.TotalAmount),
		})
	}
	return ClaimReportResponse{
		GeneratedAt: r.GeneratedAt.UTC().Format(time.RFC3339),
		Claims:      toQueueResponses(r.Claims),
		Summary:     summary,
		TotalCount:  r.TotalCount,
		TotalAmount: money(r.TotalAmount),
	}
}
