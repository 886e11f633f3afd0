package http

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/service"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// SubmitClaimRequest is accepted as JSON or as multipart form fields
type SubmitClaimRequest struct {
	HoursWorked *decimal.Decimal `json:"hours_worked" form:"hours_worked" binding:"required"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate" form:"hourly_rate"`
	Notes       string           `json:"notes" form:"notes" binding:"max=500"`
}

// DecisionRequest carries a reviewer's verdict
type DecisionRequest struct {
	Decision entity.Decision `json:"decision" binding:"required"`
}

// SubmitClaim handles POST /api/claims. A multipart request may carry an
// "upload" file; if attaching it fails the claim is still created.
func (h *Handlers) SubmitClaim(c *gin.Context) {
	var req SubmitClaimRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}

	caller := callerFrom(c)
	ctx := c.Request.Context()

	claim, err := h.services.Claims.Submit(ctx, caller, service.SubmitClaimInput{
		HoursWorked: *req.HoursWorked,
		HourlyRate:  req.HourlyRate,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var documentError string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("upload")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			documentError = "upload could not be read"
		default:
			if _, docErr := h.attach(ctx, caller, claim.ID, fileHeader); docErr != nil {
				documentError = describeDocumentError(docErr)
				h.logger.Info("Claim created without its document",
					zap.Int64("claim_id", claim.ID),
					zap.Error(docErr))
			}
		}
	}

	// reload so the response lists any attached document
	if stored, err := h.services.Claims.Get(ctx, caller, claim.ID); err == nil {
		claim = stored
	}

	resp := toClaimResponse(claim)
	resp.DocumentError = documentError
	ok(c, http.StatusCreated, resp)
}

// ListMyClaims handles GET /api/claims/mine
func (h *Handlers) ListMyClaims(c *gin.Context) {
	claims, err := h.services.Claims.ListMine(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toClaimResponses(claims))
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	claim, err := h.services.Claims.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toClaimResponse(claim))
}

// ClaimHistory handles GET /api/claims/:id/history
func (h *Handlers) ClaimHistory(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	history, err := h.services.Claims.History(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, history)
}

// AttachDocument handles POST /api/claims/:id/documents
func (h *Handlers) AttachDocument(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	fileHeader, err := c.FormFile("upload")
	if err != nil {
		writeError(c, h.logger, entity.NewValidationError("upload", "a file is required"))
		return
	}

	doc, err := h.attach(c.Request.Context(), callerFrom(c), id, fileHeader)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusCreated, toDocumentResponse(doc))
}

// DownloadDocument handles GET /api/claims/:id/documents/:docID
func (h *Handlers) DownloadDocument(c *gin.Context) {
	claimID, valid := pathID(c, "id")
	if !valid {
		return
	}
	docID, valid := pathID(c, "docID")
	if !valid {
		return
	}

	content, err := h.services.Documents.Open(c.Request.Context(), callerFrom(c), claimID, docID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	contentType := mime.TypeByExtension(entity.DocumentExtension(content.Document.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": content.Document.FileName,
	}))
	c.Data(http.StatusOK, contentType, content.Content)
}

// CoordinatorQueue handles GET /api/queue/coordinator
func (h *Handlers) CoordinatorQueue(c *gin.Context) {
	claims, err := h.services.Claims.CoordinatorQueue(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toQueueResponses(claims))
}

// ManagerQueue handles GET /api/queue/manager
func (h *Handlers) ManagerQueue(c *gin.Context) {
	claims, err := h.services.Claims.ManagerQueue(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toQueueResponses(claims))
}

// CoordinatorDecision handles POST /api/claims/:id/coordinator-decision
func (h *Handlers) CoordinatorDecision(c *gin.Context) {
	h.decide(c, h.services.Claims.CoordinatorDecide)
}

// ManagerDecision handles POST /api/claims/:id/manager-decision
func (h *Handlers) ManagerDecision(c *gin.Context) {
	h.decide(c, h.services.Claims.ManagerDecide)
}

type decideFunc func(ctx context.Context, caller entity.Caller, id int64, decision entity.Decision) (*entity.Claim, error)

func (h *Handlers) decide(c *gin.Context, fn decideFunc) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	if !req.Decision.IsValid() {
		writeError(c, h.logger, entity.NewValidationError("decision", "must be APPROVE or REJECT"))
		return
	}

	claim, err := fn(c.Request.Context(), callerFrom(c), id, req.Decision)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toClaimResponse(claim))
}

func (h *Handlers) attach(ctx context.Context, caller entity.Caller, claimID int64, fh *multipart.FileHeader) (*entity.SupportingDocument, error) {
	// reject on metadata before opening the upload
	if err := entity.ValidateDocument(fh.Filename, fh.Size); err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, entity.NewValidationError("upload", "upload could not be read")
	}
	defer f.Close()

	return h.services.Documents.Attach(ctx, caller, claimID, fh.Filename, fh.Size, f)
}

// describeDocumentError is the client-facing reason an attachment failed
func describeDocumentError(err error) string {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, entity.ErrForbidden):
		return "forbidden"
	}
	return "document could not be stored"
}
