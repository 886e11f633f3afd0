package workflow

import (
	"context"
	"fmt"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// claimRules is the two-gate approval pipeline. Statuses without rules are terminal.
var claimRules = func() StateMachineBuilder {
	b := NewBuilder()

	b.Configure(entity.StatusPending).
		Permit(TriggerCoordinatorApprove, entity.StatusCoordinatorApproved).
		Permit(TriggerCoordinatorReject, entity.StatusCoordinatorRejected)

	b.Configure(entity.StatusCoordinatorApproved).
		Permit(TriggerManagerApprove, entity.StatusManagerApproved).
		Permit(TriggerManagerReject, entity.StatusManagerRejected)

	return b
}()

// NewClaimMachine returns a machine for the approval pipeline positioned at status
func NewClaimMachine(status entity.ClaimStatus) (StateMachine, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, status)
	}
	return claimRules.Build(status), nil
}

// Next returns the status reached by the stage's decision from current.
// It enforces the state precondition only; who may decide is checked by authz.
func Next(current entity.ClaimStatus, stage Stage, decision entity.Decision) (entity.ClaimStatus, error) {
	trigger, err := TriggerFor(stage, decision)
	if err != nil {
		return "", err
	}
	m, err := NewClaimMachine(current)
	if err != nil {
		return "", err
	}
	if err := m.Fire(context.Background(), trigger); err != nil {
		return "", err
	}
	return m.State(), nil
}

// CoordinatorDecide moves a PENDING claim to COORDINATOR_APPROVED or COORDINATOR_REJECTED.
// The claim is returned as a copy; the argument is left untouched on every path.
func CoordinatorDecide(claim *entity.Claim, decision entity.Decision) (*entity.Claim, error) {
	return decide(claim, StageCoordinator, decision)
}

// ManagerDecide moves a COORDINATOR_APPROVED claim to MANAGER_APPROVED or MANAGER_REJECTED.
func ManagerDecide(claim *entity.Claim, decision entity.Decision) (*entity.Claim, error) {
	return decide(claim, StageManager, decision)
}

// RequiredStatus is the status a claim must hold for the stage to decide it
func RequiredStatus(stage Stage) entity.ClaimStatus {
	if stage == StageManager {
		return entity.StatusCoordinatorApproved
	}
	return entity.StatusPending
}

func decide(claim *entity.Claim, stage Stage, decision entity.Decision) (*entity.Claim, error) {
	next, err := Next(claim.Status, stage, decision)
	if err != nil {
		return nil, err
	}
	decided := *claim
	decided.Status = next
	return &decided, nil
}
