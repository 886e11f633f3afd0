package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit-trail row
func (r *HistoryRepository) Create(ctx context.Context, history *entity.ClaimHistory) error {
	query := `
		INSERT INTO claim_history (
			claim_id, actor_id, previous_status, new_status, action, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		history.ClaimID,
		history.ActorID,
		history.PreviousStatus,
		history.NewStatus,
		history.Action,
		history.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create history", zap.Int64("claim_id", history.ClaimID), zap.Error(err))
		return storageError("failed to create history", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storageError("failed to get last insert id", err)
	}

	history.ID = id
	return nil
}

// ListByClaimID retrieves a claim's audit trail, oldest first
func (r *HistoryRepository) ListByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error) {
	query := `
		SELECT id, claim_id, actor_id, previous_status, new_status, action, created_at
		FROM claim_history
		WHERE claim_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, storageError("failed to get history", err)
	}
	defer rows.Close()

	histories := []*entity.ClaimHistory{}
	for rows.Next() {
		var h entity.ClaimHistory
		if err := rows.Scan(
			&h.ID,
			&h.ClaimID,
			&h.ActorID,
			&h.PreviousStatus,
			&h.NewStatus,
			&h.Action,
			&h.CreatedAt,
		); err != nil {
			return nil, storageError("failed to scan history", err)
		}
		histories = append(histories, &h)
	}

	return histories, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
