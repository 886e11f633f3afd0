package port

import (
	"context"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// ClaimRepository is the sole point of persistence for claims
type ClaimRepository interface {
	// Create recalculates the total, inserts the claim and sets its ID
	Create(ctx context.Context, claim *entity.Claim) error

	// GetByID returns the claim with its documents, or entity.ErrNotFound
	GetByID(ctx context.Context, id int64) (*entity.Claim, error)

	// ListByOwner returns the owner's claims, newest submission first
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Claim, error)

	// ListByStatus returns claims in the given status, oldest submission first
	ListByStatus(ctx context.Context, status entity.ClaimStatus) ([]*entity.Claim, error)

	// ListAll returns every claim, newest submission first
	ListAll(ctx context.Context) ([]*entity.Claim, error)

	// UpdateStatus moves the claim from expected to next. It returns
	// entity.ErrNotFound when the claim is missing and
	// entity.ErrInvalidTransition when its status is no longer expected.
	UpdateStatus(ctx context.Context, id int64, expected, next entity.ClaimStatus) error

	// SummarizeByStatus aggregates count and amount per status
	SummarizeByStatus(ctx context.Context) ([]entity.StatusSummary, error)
}

// DocumentRepository persists supporting document metadata
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.SupportingDocument) error
	GetByID(ctx context.Context, id int64) (*entity.SupportingDocument, error)
	ListByClaimID(ctx context.Context, claimID int64) ([]entity.SupportingDocument, error)
}

// HistoryRepository persists the claim audit trail
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.ClaimHistory) error
	ListByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error)
}

// UserRepository persists accounts of the identity collaborator
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetActive(ctx context.Context, id int64, active bool) error
	// NamesByID resolves display names for a set of user IDs
	NamesByID(ctx context.Context, ids []int64) (map[int64]string, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
