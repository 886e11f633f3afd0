package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
)

const claimColumns = `id, owner_id, hours_worked, hourly_rate, total_amount, notes, submission_date, status`

// ClaimRepository implements port.ClaimRepository
type ClaimRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sqlite.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	claim.RecalculateTotal()

	query := `
		INSERT INTO claims (
			owner_id, hours_worked, hourly_rate, total_amount,
			notes, submission_date, status
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		claim.OwnerID,
		claim.HoursWorked,
		claim.HourlyRate,
		claim.TotalAmount,
		claim.Notes,
		claim.SubmissionDate,
		claim.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.Int64("owner_id", claim.OwnerID), zap.Error(err))
		return storageError("failed to create claim", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storageError("failed to get last insert id", err)
	}

	claim.ID = id
	if claim.Documents == nil {
		claim.Documents = []entity.SupportingDocument{}
	}
	return nil
}

// GetByID retrieves a claim by ID with its documents
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	claim, err := scanClaim(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.Int64("id", id), zap.Error(err))
		return nil, storageError("failed to get claim", err)
	}

	if err := r.attachDocuments(ctx, []*entity.Claim{claim}); err != nil {
		return nil, err
	}
	return claim, nil
}

// ListByOwner retrieves a lecturer's claims, newest first
func (r *ClaimRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE owner_id = ? ORDER BY submission_date DESC, id DESC`
	return r.list(ctx, query, ownerID)
}

// ListByStatus retrieves claims in one status, oldest first so queues are worked in order
func (r *ClaimRepository) ListByStatus(ctx context.Context, status entity.ClaimStatus) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE status = ? ORDER BY submission_date ASC, id ASC`
	return r.list(ctx, query, status)
}

// ListAll retrieves every claim, newest first
func (r *ClaimRepository) ListAll(ctx context.Context) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims ORDER BY submission_date DESC, id DESC`
	return r.list(ctx, query)
}

// UpdateStatus performs a compare-and-swap on the status column
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id int64, expected, next entity.ClaimStatus) error {
	exec := r.db.Executor(ctx)

	result, err := exec.ExecContext(ctx,
		`UPDATE claims SET status = ? WHERE id = ? AND status = ?`, next, id, expected)
	if err != nil {
		r.logger.Error("Failed to update status",
			zap.Int64("id", id),
			zap.String("status", next.String()),
			zap.Error(err))
		return storageError("failed to update status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageError("failed to read affected rows", err)
	}
	if affected == 1 {
		return nil
	}

	var current entity.ClaimStatus
	err = exec.QueryRowContext(ctx, `SELECT status FROM claims WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("claim %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return storageError("failed to read claim status", err)
	}
	return fmt.Errorf("%w: claim %d is %s, expected %s", entity.ErrInvalidTransition, id, current, expected)
}

// SummarizeByStatus returns count and amount per status in pipeline order.
// Amounts are summed in Go to keep decimal precision.
func (r *ClaimRepository) SummarizeByStatus(ctx context.Context) ([]entity.StatusSummary, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `SELECT status, total_amount FROM claims`)
	if err != nil {
		r.logger.Error("Failed to summarize claims", zap.Error(err))
		return nil, storageError("failed to summarize claims", err)
	}
	defer rows.Close()

	byStatus := make(map[entity.ClaimStatus]*entity.StatusSummary, len(entity.AllStatuses))
	for _, s := range entity.AllStatuses {
		byStatus[s] = &entity.StatusSummary{Status: s, TotalAmount: decimal.Zero}
	}

	for rows.Next() {
		var status entity.ClaimStatus
		var amount decimal.Decimal
		if err := rows.Scan(&status, &amount); err != nil {
			return nil, storageError("failed to scan summary row", err)
		}
		sum, ok := byStatus[status]
		if !ok {
			continue
		}
		sum.Count++
		sum.TotalAmount = sum.TotalAmount.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate summary rows", err)
	}

	summaries := make([]entity.StatusSummary, 0, len(entity.AllStatuses))
	for _, s := range entity.AllStatuses {
		summaries = append(summaries, *byStatus[s])
	}
	return summaries, nil
}

func (r *ClaimRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Claim, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, storageError("failed to list claims", err)
	}
	defer rows.Close()

	claims := []*entity.Claim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, storageError("failed to scan claim", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate claims", err)
	}

	if err := r.attachDocuments(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// documentBatchSize keeps each IN list well below SQLite's host parameter limit
const documentBatchSize = 500

// attachDocuments loads every claim's documents, one query per batch of claims
func (r *ClaimRepository) attachDocuments(ctx context.Context, claims []*entity.Claim) error {
	byID := make(map[int64]*entity.Claim, len(claims))
	for _, c := range claims {
		c.Documents = []entity.SupportingDocument{}
		byID[c.ID] = c
	}

	for start := 0; start < len(claims); start += documentBatchSize {
		end := min(start+documentBatchSize, len(claims))
		if err := r.loadDocumentBatch(ctx, claims[start:end], byID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ClaimRepository) loadDocumentBatch(ctx context.Context, batch []*entity.Claim, byID map[int64]*entity.Claim) error {
	placeholders := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch))
	for _, c := range batch {
		placeholders = append(placeholders, "?")
		args = append(args, c.ID)
	}

	query := `SELECT ` + documentColumns + ` FROM supporting_documents
		WHERE claim_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY id ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to load documents", zap.Int("claims", len(batch)), zap.Error(err))
		return storageError("failed to load documents", err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return storageError("failed to scan document", err)
		}
		if c, ok := byID[doc.ClaimID]; ok {
			c.Documents = append(c.Documents, *doc)
		}
	}
	if err := rows.Err(); err != nil {
		return storageError("failed to iterate documents", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(s scanner) (*entity.Claim, error) {
	var c entity.Claim
	err := s.Scan(
		&c.ID,
		&c.OwnerID,
		&c.HoursWorked,
		&c.HourlyRate,
		&c.TotalAmount,
		&c.Notes,
		&c.SubmissionDate,
		&c.Status,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, entity.ErrStorage, err)
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
