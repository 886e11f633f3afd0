package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	version  string
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, version string, logger *zap.Logger) *Handlers {
	return &Handlers{
		services: services,
		version:  version,
		logger:   logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ClaimResponse is a claim as rendered by the API; money is fixed to two places
type ClaimResponse struct {
	ID             int64              `json:"id"`
	OwnerID        int64              `json:"owner_id"`
	LecturerName   string             `json:"lecturer_name,omitempty"`
	HoursWorked    string             `json:"hours_worked"`
	HourlyRate     string             `json:"hourly_rate"`
	TotalAmount    string             `json:"total_amount"`
	Notes          string             `json:"notes,omitempty"`
	SubmissionDate string             `json:"submission_date"`
	Status         entity.ClaimStatus `json:"status"`
	Documents      []DocumentResponse `json:"documents"`
	DocumentError  string             `json:"document_error,omitempty"`
}

// DocumentResponse is supporting document metadata; the storage path is not exposed
type DocumentResponse struct {
	ID         int64  `json:"id"`
	ClaimID    int64  `json:"claim_id"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	UploadDate string `json:"upload_date"`
}

// UserResponse is an account as rendered by the API
type UserResponse struct {
	ID         int64       `json:"id"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	Role       entity.Role `json:"role"`
	HourlyRate string      `json:"hourly_rate"`
	IsActive   bool        `json:"is_active"`
	CreatedAt  string      `json:"created_at"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// pathID parses a positive integer path parameter; it writes the 400 itself
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "validation failed",
			Fields:  []entity.FieldError{{Field: name, Message: "must be a positive integer"}},
		})
		return 0, false
	}
	return id, true
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toClaimResponse(claim *entity.Claim) ClaimResponse {
	docs := make([]DocumentResponse, 0, len(claim.Documents))
	for i := range claim.Documents {
		docs = append(docs, toDocumentResponse(&claim.Documents[i]))
	}
	return ClaimResponse{
		ID:             claim.ID,
		OwnerID:        claim.OwnerID,
		HoursWorked:    claim.HoursWorked.String(),
		HourlyRate:     money(claim.HourlyRate),
		TotalAmount:    money(claim.TotalAmount),
		Notes:          claim.Notes,
		SubmissionDate: claim.SubmissionDate.Format(time.RFC3339),
		Status:         claim.Status,
		Documents:      docs,
	}
}

func toClaimResponses(claims []*entity.Claim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, toClaimResponse(c))
	}
	return out
}

func toQueueResponses(claims []*entity.ClaimWithLecturer) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for _, c := range claims {
		resp := toClaimResponse(&c.Claim)
		resp.LecturerName = c.LecturerName
		out = append(out, resp)
	}
	return out
}

func toDocumentResponse(doc *entity.SupportingDocument) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		ClaimID:    doc.ClaimID,
		FileName:   doc.FileName,
		FileSize:   doc.FileSize,
		UploadDate: doc.UploadDate.Format(time.RFC3339),
	}
}

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		HourlyRate: money(u.HourlyRate),
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}
