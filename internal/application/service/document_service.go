package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/domain/event"
)

// DocumentService attaches supporting documents to claims and serves them back
type DocumentService interface {
	Attach(ctx context.Context, caller entity.Caller, claimID int64, fileName string, fileSize int64, content io.Reader) (*entity.SupportingDocument, error)
	Open(ctx context.Context, caller entity.Caller, claimID, docID int64) (*entity.DocumentContent, error)
}

type documentServiceImpl struct {
	claimRepo    port.ClaimRepository
	documentRepo port.DocumentRepository
	storage      port.FileStorage
	events       port.EventPublisher
	logger       *zap.Logger
	newName      func(ext string) string
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	claimRepo port.ClaimRepository,
	documentRepo port.DocumentRepository,
	storage port.FileStorage,
	logger *zap.Logger,
	opts ...DocumentServiceOption,
) DocumentService {
	s := &documentServiceImpl{
		claimRepo:    claimRepo,
		documentRepo: documentRepo,
		storage:      storage,
		logger:       logger,
		newName: func(ext string) string {
			return uuid.NewString() + ext
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach validates the upload, stores its content and records it on the claim.
// The claim itself is never modified; a failed attachment leaves it as it was.
func (s *documentServiceImpl) Attach(ctx context.Context, caller entity.Caller, claimID int64, fileName string, fileSize int64, content io.Reader) (*entity.SupportingDocument, error) {
	if err := entity.ValidateDocument(fileName, fileSize); err != nil {
		return nil, err
	}

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.IsOwnedBy(caller.UserID) {
		return nil, fmt.Errorf("%w: only the claim owner may attach documents", entity.ErrForbidden)
	}

	// a declared size cannot be trusted, so read one byte past the limit
	data, err := io.ReadAll(io.LimitReader(content, entity.MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := entity.ValidateDocument(fileName, int64(len(data))); err != nil {
		return nil, err
	}

	path, err := s.storage.Save(ctx, s.newName(entity.DocumentExtension(fileName)), data)
	if err != nil {
		s.logger.Error("Failed to store document", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, err
	}

	doc := &entity.SupportingDocument{
		ClaimID:    claimID,
		FileName:   filepath.Base(fileName),
		FilePath:   path,
		FileSize:   int64(len(data)),
		UploadDate: time.Now().UTC(),
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			s.logger.Error("Failed to remove orphaned document",
				zap.String("path", path),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Document attached",
		zap.Int64("claim_id", claimID),
		zap.Int64("document_id", doc.ID),
		zap.Int64("size", doc.FileSize))
	publish(ctx, s.events, s.logger, event.NewEvent(event.TypeDocumentAttached, claimID, caller.UserID, map[string]string{
		event.KeyDocumentID: strconv.FormatInt(doc.ID, 10),
		event.KeyFileName:   doc.FileName,
	}))
	return doc, nil
}

// Open returns a document's metadata and content
func (s *documentServiceImpl) Open(ctx context.Context, caller entity.Caller, claimID, docID int64) (*entity.DocumentContent, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := checkReadable(caller, claim); err != nil {
		return nil, err
	}

	doc, err := s.documentRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.ClaimID != claimID {
		return nil, fmt.Errorf("document %d on claim %d: %w", docID, claimID, entity.ErrNotFound)
	}

	content, err := s.storage.Read(ctx, doc.FilePath)
	if err != nil {
		s.logger.Error("Failed to read document", zap.Int64("document_id", docID), zap.Error(err))
		return nil, err
	}
	return &entity.DocumentContent{Document: *doc, Content: content}, nil
}
