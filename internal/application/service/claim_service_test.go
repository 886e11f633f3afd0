package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/domain/event"
)

func TestClaimService_Submit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	lecturer := e.user(t, "lee@uni.test", entity.RoleLecturer, 500)

	t.Run("explicit rate", func(t *testing.T) {
		claim := e.submit(t, lecturer, 8, 450)
		assert.Equal(t, entity.StatusPending, claim.Status)
		assert.Equal(t, "3600.00", claim.TotalAmount.StringFixed(2))
		assert.Equal(t, lecturer.UserID, claim.OwnerID)

		history, err := e.claims.History(ctx, lecturer, claim.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, entity.ActionSubmit, history[0].Action)
		assert.Equal(t, entity.StatusPending, history[0].NewStatus)
	})

	t.Run("profile rate by default", func(t *testing.T) {
		claim, err := e.claims.Submit(ctx, lecturer, SubmitClaimInput{HoursWorked: decimal.NewFromInt(2)})
		require.NoError(t, err)
		assert.Equal(t, "1000.00", claim.TotalAmount.StringFixed(2))
	})

	t.Run("validation lists fields", func(t *testing.T) {
		rate := decimal.NewFromInt(0)
		_, err := e.claims.Submit(ctx, lecturer, SubmitClaimInput{HoursWorked: decimal.NewFromInt(-1), HourlyRate: &rate})
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
	})

	t.Run("non lecturer", func(t *testing.T) {
		hr := e.user(t, "hr@uni.test", entity.RoleHR, 0)
		_, err := e.claims.Submit(ctx, hr, SubmitClaimInput{HoursWorked: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("deactivated lecturer", func(t *testing.T) {
		gone := e.user(t, "gone@uni.test", entity.RoleLecturer, 300)
		require.NoError(t, e.userRepo.SetActive(ctx, gone.UserID, false))
		_, err := e.claims.Submit(ctx, gone, SubmitClaimInput{HoursWorked: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("unknown caller", func(t *testing.T) {
		_, err := e.claims.Submit(ctx, entity.Caller{UserID: 999, Role: entity.RoleLecturer}, SubmitClaimInput{HoursWorked: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	})
}

func TestClaimService_GetRestrictsLecturers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "a@uni.test", entity.RoleLecturer, 500)
	other := e.user(t, "b@uni.test", entity.RoleLecturer, 500)
	coordinator := e.user(t, "c@uni.test", entity.RoleCoordinator, 0)
	claim := e.submit(t, owner, 1, 100)

	_, err := e.claims.Get(ctx, owner, claim.ID)
	assert.NoError(t, err)
	_, err = e.claims.Get(ctx, coordinator, claim.ID)
	assert.NoError(t, err)

	_, err = e.claims.Get(ctx, other, claim.ID)
	assert.ErrorIs(t, err, entity.ErrForbidden)
	_, err = e.claims.History(ctx, other, claim.ID)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = e.claims.Get(ctx, coordinator, 4040)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	mine, err := e.claims.ListMine(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestClaimService_Pipeline(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	lecturer := e.user(t, "lee@uni.test", entity.RoleLecturer, 500)
	coordinator := e.user(t, "coord@uni.test", entity.RoleCoordinator, 0)
	manager := e.user(t, "boss@uni.test", entity.RoleManager, 0)

	claim := e.submit(t, lecturer, 8, 450)

	queue, err := e.claims.CoordinatorQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "User lee@uni.test", queue[0].LecturerName)

	// manager cannot act before the coordinator
	_, err = e.claims.ManagerDecide(ctx, manager, claim.ID, entity.DecisionApprove)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	decided, err := e.claims.CoordinatorDecide(ctx, coordinator, claim.ID, entity.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCoordinatorApproved, decided.Status)

	queue, err = e.claims.CoordinatorQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)
	managerQueue, err := e.claims.ManagerQueue(ctx)
	require.NoError(t, err)
	require.Len(t, managerQueue, 1)

	decided, err = e.claims.ManagerDecide(ctx, manager, claim.ID, entity.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusManagerRejected, decided.Status)

	for _, d := range []entity.Decision{entity.DecisionApprove, entity.DecisionReject} {
		_, err = e.claims.CoordinatorDecide(ctx, coordinator, claim.ID, d)
		assert.ErrorIs(t, err, entity.ErrInvalidTransition)
		_, err = e.claims.ManagerDecide(ctx, manager, claim.ID, d)
		assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	}

	stored, err := e.claims.Get(ctx, lecturer, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusManagerRejected, stored.Status)
	assert.Equal(t, "3600.00", stored.TotalAmount.StringFixed(2))

	history, err := e.claims.History(ctx, lecturer, claim.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, entity.StatusPending, history[1].PreviousStatus)
	assert.Equal(t, coordinator.UserID, history[1].ActorID)
	assert.Equal(t, entity.ActionManagerDecision, history[2].Action)
	assert.Equal(t, entity.StatusManagerRejected, history[2].NewStatus)
}

func TestClaimService_DecideErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	lecturer := e.user(t, "lee@uni.test", entity.RoleLecturer, 500)
	coordinator := e.user(t, "coord@uni.test", entity.RoleCoordinator, 0)
	claim := e.submit(t, lecturer, 1, 100)

	_, err := e.claims.CoordinatorDecide(ctx, coordinator, claim.ID, entity.Decision("MAYBE"))
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = e.claims.CoordinatorDecide(ctx, coordinator, 31337, entity.DecisionApprove)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	history, err := e.claims.History(ctx, coordinator, claim.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "failed decisions leave no history")
}

func TestClaimService_ConcurrentCoordinatorsOneWins(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	lecturer := e.user(t, "lee@uni.test", entity.RoleLecturer, 500)
	first := e.user(t, "c1@uni.test", entity.RoleCoordinator, 0)
	second := e.user(t, "c2@uni.test", entity.RoleCoordinator, 0)

	for round := 0; round < 5; round++ {
		claim := e.submit(t, lecturer, 1, 100)

		results := make([]error, 2)
		var g errgroup.Group
		g.Go(func() error {
			_, results[0] = e.claims.CoordinatorDecide(ctx, first, claim.ID, entity.DecisionApprove)
			return nil
		})
		g.Go(func() error {
			_, results[1] = e.claims.CoordinatorDecide(ctx, second, claim.ID, entity.DecisionReject)
			return nil
		})
		require.NoError(t, g.Wait())

		var wins, lost int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, entity.ErrInvalidTransition):
				lost++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, lost)

		stored, err := e.claimRepo.GetByID(ctx, claim.ID)
		require.NoError(t, err)
		if results[0] == nil {
			assert.Equal(t, entity.StatusCoordinatorApproved, stored.Status)
		} else {
			assert.Equal(t, entity.StatusCoordinatorRejected, stored.Status)
		}

		history, err := e.history.ListByClaimID(ctx, claim.ID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	}
}

// failingHistory makes the second write of a transaction fail
type failingHistory struct {
	err error
}

func (f *failingHistory) Create(ctx context.Context, history *entity.ClaimHistory) error {
	return f.err
}

func (f *failingHistory) ListByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error) {
	return nil, nil
}

func TestClaimService_DecisionRollsBackWithHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	lecturer := e.user(t, "lee@uni.test", entity.RoleLecturer, 500)
	coordinator := e.user(t, "coord@uni.test", entity.RoleCoordinator, 0)
	claim := e.submit(t, lecturer, 1, 100)

	boom := errors.New("disk full")
	svc := NewClaimService(e.claimRepo, &failingHistory{err: boom}, e.userRepo, e.db, zap.NewNop())

	_, err := svc.CoordinatorDecide(ctx, coordinator, claim.ID, entity.DecisionApprove)
	assert.ErrorIs(t, err, boom)

	stored, err := e.claimRepo.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
}

func TestClaimService_PublishesCommittedEvents(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	lecturer := e.user(t, "ev@uni.test", entity.RoleLecturer, 500)
	coordinator := e.user(t, "evc@uni.test", entity.RoleCoordinator, 0)

	claim := e.submit(t, lecturer, 8, 450)
	submitted := e.events.ofType(event.TypeClaimSubmitted)
	require.Len(t, submitted, 1)
	assert.Equal(t, claim.ID, submitted[0].ClaimID)
	assert.Equal(t, "3600.00", submitted[0].Get(event.KeyTotalAmount))

	_, err := e.claims.CoordinatorDecide(ctx, coordinator, claim.ID, entity.DecisionReject)
	require.NoError(t, err)

	// refused decisions publish nothing
	_, err = e.claims.CoordinatorDecide(ctx, coordinator, claim.ID, entity.DecisionApprove)
	require.ErrorIs(t, err, entity.ErrInvalidTransition)

	decided := e.events.ofType(event.TypeClaimDecided)
	require.Len(t, decided, 1)
	assert.Equal(t, coordinator.UserID, decided[0].ActorID)
	assert.Equal(t, "PENDING", decided[0].Get(event.KeyPreviousStatus))
	assert.Equal(t, "COORDINATOR_REJECTED", decided[0].Get(event.KeyStatus))
}

func TestClaimService_DeactivatedDeciderRefused(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	lecturer := e.user(t, "lee@uni.test", entity.RoleLecturer, 500)
	coordinator := e.user(t, "coord@uni.test", entity.RoleCoordinator, 0)
	claim := e.submit(t, lecturer, 8, 450)

	_, err := e.users.SetActive(ctx, coordinator.UserID, false)
	require.NoError(t, err)

	_, err = e.claims.CoordinatorDecide(ctx, coordinator, claim.ID, entity.DecisionApprove)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	stored, err := e.claimRepo.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Empty(t, e.events.ofType(event.TypeClaimDecided))
}
