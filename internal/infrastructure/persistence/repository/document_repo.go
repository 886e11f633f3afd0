package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
)

const documentColumns = `id, claim_id, file_name, file_path, file_size, upload_date`

// DocumentRepository implements port.DocumentRepository
type DocumentRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sqlite.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new supporting document record
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.SupportingDocument) error {
	query := `
		INSERT INTO supporting_documents (
			claim_id, file_name, file_path, file_size, upload_date
		) VALUES (?, ?, ?, ?, ?)
	`

	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now().UTC()
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		doc.ClaimID,
		doc.FileName,
		doc.FilePath,
		doc.FileSize,
		doc.UploadDate,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Int64("claim_id", doc.ClaimID), zap.Error(err))
		return storageError("failed to create document", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storageError("failed to get last insert id", err)
	}

	doc.ID = id
	return nil
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*entity.SupportingDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM supporting_documents WHERE id = ?`

	doc, err := scanDocument(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get document by ID", zap.Int64("id", id), zap.Error(err))
		return nil, storageError("failed to get document", err)
	}
	return doc, nil
}

// ListByClaimID retrieves a claim's documents in upload order
func (r *DocumentRepository) ListByClaimID(ctx context.Context, claimID int64) ([]entity.SupportingDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM supporting_documents WHERE claim_id = ? ORDER BY id ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, storageError("failed to list documents", err)
	}
	defer rows.Close()

	docs := []entity.SupportingDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, storageError("failed to scan document", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func scanDocument(s scanner) (*entity.SupportingDocument, error) {
	var d entity.SupportingDocument
	err := s.Scan(
		&d.ID,
		&d.ClaimID,
		&d.FileName,
		&d.FilePath,
		&d.FileSize,
		&d.UploadDate,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
