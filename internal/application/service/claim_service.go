package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/domain/event"
	"github.com/garyjia/lecturer-claims/internal/domain/workflow"
)

// SubmitClaimInput is a lecturer's claim request. A nil HourlyRate falls
// back to the lecturer's profile rate.
type SubmitClaimInput struct {
	HoursWorked decimal.Decimal
	HourlyRate  *decimal.Decimal
	Notes       string
}

// ClaimService drives the claim lifecycle
type ClaimService interface {
	Submit(ctx context.Context, caller entity.Caller, input SubmitClaimInput) (*entity.Claim, error)
	Get(ctx context.Context, caller entity.Caller, id int64) (*entity.Claim, error)
	ListMine(ctx context.Context, caller entity.Caller) ([]*entity.Claim, error)
	History(ctx context.Context, caller entity.Caller, id int64) ([]*entity.ClaimHistory, error)
	CoordinatorQueue(ctx context.Context) ([]*entity.ClaimWithLecturer, error)
	ManagerQueue(ctx context.Context) ([]*entity.ClaimWithLecturer, error)
	CoordinatorDecide(ctx context.Context, caller entity.Caller, id int64, decision entity.Decision) (*entity.Claim, error)
	ManagerDecide(ctx context.Context, caller entity.Caller, id int64, decision entity.Decision) (*entity.Claim, error)
}

type claimServiceImpl struct {
	claimRepo   port.ClaimRepository
	historyRepo port.HistoryRepository
	userRepo    port.UserRepository
	txManager   port.TransactionManager
	events      port.EventPublisher
	logger      *zap.Logger
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claimRepo port.ClaimRepository,
	historyRepo port.HistoryRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
	opts ...ClaimServiceOption,
) ClaimService {
	s := &claimServiceImpl{
		claimRepo:   claimRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and stores a new PENDING claim for the calling lecturer
func (s *claimServiceImpl) Submit(ctx context.Context, caller entity.Caller, input SubmitClaimInput) (*entity.Claim, error) {
	owner, err := s.activeUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !owner.IsLecturer() {
		return nil, fmt.Errorf("%w: only lecturers submit claims", entity.ErrForbidden)
	}

	rate := owner.HourlyRate
	if input.HourlyRate != nil {
		rate = *input.HourlyRate
	}

	claim, err := entity.NewClaim(owner.ID, input.HoursWorked, rate, input.Notes)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Create(txCtx, claim); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}

		history := &entity.ClaimHistory{
			ClaimID:   claim.ID,
			ActorID:   caller.UserID,
			NewStatus: claim.Status,
			Action:    entity.ActionSubmit,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit claim", zap.Int64("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Claim submitted",
		zap.Int64("claim_id", claim.ID),
		zap.Int64("user_id", caller.UserID),
		zap.String("total_amount", claim.TotalAmount.StringFixed(2)))
	publish(ctx, s.events, s.logger, event.ClaimSubmitted(claim, caller.UserID))
	return claim, nil
}

// Get returns a claim; lecturers may only read their own
func (s *claimServiceImpl) Get(ctx context.Context, caller entity.Caller, id int64) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkReadable(caller, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// ListMine returns the caller's claims, newest first
func (s *claimServiceImpl) ListMine(ctx context.Context, caller entity.Caller) ([]*entity.Claim, error) {
	return s.claimRepo.ListByOwner(ctx, caller.UserID)
}

// History returns the claim's audit trail
func (s *claimServiceImpl) History(ctx context.Context, caller entity.Caller, id int64) ([]*entity.ClaimHistory, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByClaimID(ctx, id)
}

// CoordinatorQueue lists PENDING claims, oldest first
func (s *claimServiceImpl) CoordinatorQueue(ctx context.Context) ([]*entity.ClaimWithLecturer, error) {
	return s.queue(ctx, workflow.RequiredStatus(workflow.StageCoordinator))
}

// ManagerQueue lists COORDINATOR_APPROVED claims, oldest first
func (s *claimServiceImpl) ManagerQueue(ctx context.Context) ([]*entity.ClaimWithLecturer, error) {
	return s.queue(ctx, workflow.RequiredStatus(workflow.StageManager))
}

// CoordinatorDecide approves or rejects a PENDING claim
func (s *claimServiceImpl) CoordinatorDecide(ctx context.Context, caller entity.Caller, id int64, decision entity.Decision) (*entity.Claim, error) {
	return s.decide(ctx, caller, id, decision, workflow.StageCoordinator)
}

// ManagerDecide approves or rejects a COORDINATOR_APPROVED claim
func (s *claimServiceImpl) ManagerDecide(ctx context.Context, caller entity.Caller, id int64, decision entity.Decision) (*entity.Claim, error) {
	return s.decide(ctx, caller, id, decision, workflow.StageManager)
}

// decide reads, transitions and writes inside one transaction. The
// conditional update makes a concurrent decision on the same claim fail
// with ErrInvalidTransition instead of overwriting it.
func (s *claimServiceImpl) decide(ctx context.Context, caller entity.Caller, id int64, decision entity.Decision, stage workflow.Stage) (*entity.Claim, error) {
	if _, err := s.activeUser(ctx, caller); err != nil {
		s.logger.Info("Decision refused",
			zap.Int64("claim_id", id),
			zap.Int64("user_id", caller.UserID),
			zap.Error(err))
		return nil, err
	}

	var decided *entity.Claim
	var previous entity.ClaimStatus

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		claim, err := s.claimRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		next, err := decideStage(claim, stage, decision)
		if err != nil {
			return err
		}

		if err := s.claimRepo.UpdateStatus(txCtx, id, claim.Status, next.Status); err != nil {
			return err
		}

		history := &entity.ClaimHistory{
			ClaimID:        id,
			ActorID:        caller.UserID,
			PreviousStatus: claim.Status,
			NewStatus:      next.Status,
			Action:         historyAction(stage),
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}

		decided = next
		previous = claim.Status
		return nil
	})
	if err != nil {
		if isClientError(err) {
			s.logger.Info("Decision refused",
				zap.Int64("claim_id", id),
				zap.Int64("user_id", caller.UserID),
				zap.String("decision", string(decision)),
				zap.Error(err))
		} else {
			s.logger.Error("Failed to record decision",
				zap.Int64("claim_id", id),
				zap.Int64("user_id", caller.UserID),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Claim decided",
		zap.Int64("claim_id", id),
		zap.Int64("user_id", caller.UserID),
		zap.String("status", decided.Status.String()))
	publish(ctx, s.events, s.logger, event.ClaimDecided(decided, previous, caller.UserID))
	return decided, nil
}

func (s *claimServiceImpl) queue(ctx context.Context, status entity.ClaimStatus) ([]*entity.ClaimWithLecturer, error) {
	claims, err := s.claimRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return withLecturerNames(ctx, s.userRepo, claims)
}

// activeUser loads the caller's account and refuses deactivated ones
func (s *claimServiceImpl) activeUser(ctx context.Context, caller entity.Caller) (*entity.User, error) {
	return activeAccount(ctx, s.userRepo, caller)
}

func activeAccount(ctx context.Context, users port.UserRepository, caller entity.Caller) (*entity.User, error) {
	user, err := users.GetByID(ctx, caller.UserID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user %d", entity.ErrUnauthenticated, caller.UserID)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", entity.ErrForbidden)
	}
	return user, nil
}

func decideStage(claim *entity.Claim, stage workflow.Stage, decision entity.Decision) (*entity.Claim, error) {
	if stage == workflow.StageManager {
		return workflow.ManagerDecide(claim, decision)
	}
	return workflow.CoordinatorDecide(claim, decision)
}

func historyAction(stage workflow.Stage) string {
	if stage == workflow.StageManager {
		return entity.ActionManagerDecision
	}
	return entity.ActionCoordinatorDecision
}

// checkReadable restricts lecturers to their own claims
func checkReadable(caller entity.Caller, claim *entity.Claim) error {
	if caller.Is(entity.RoleLecturer) && !claim.IsOwnedBy(caller.UserID) {
		return fmt.Errorf("%w: claim %d belongs to another lecturer", entity.ErrForbidden, claim.ID)
	}
	return nil
}

// withLecturerNames attaches owner display names with one lookup
func withLecturerNames(ctx context.Context, users port.UserRepository, claims []*entity.Claim) ([]*entity.ClaimWithLecturer, error) {
	ids := make([]int64, 0, len(claims))
	for _, c := range claims {
		ids = append(ids, c.OwnerID)
	}

	names, err := users.NamesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.ClaimWithLecturer, 0, len(claims))
	for _, c := range claims {
		out = append(out, &entity.ClaimWithLecturer{Claim: *c, LecturerName: names[c.OwnerID]})
	}
	return out, nil
}

func isClientError(err error) bool {
	return errors.Is(err, entity.ErrValidation) ||
		errors.Is(err, entity.ErrNotFound) ||
		errors.Is(err, entity.ErrInvalidTransition) ||
		errors.Is(err, entity.ErrForbidden)
}
