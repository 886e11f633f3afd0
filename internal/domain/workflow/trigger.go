package workflow

import "github.com/garyjia/lecturer-claims/internal/domain/entity"

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerCoordinatorApprove Trigger = "COORDINATOR_APPROVE"
	TriggerCoordinatorReject  Trigger = "COORDINATOR_REJECT"
	TriggerManagerApprove     Trigger = "MANAGER_APPROVE"
	TriggerManagerReject      Trigger = "MANAGER_REJECT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// Stage is one of the two review gates a claim passes through
type Stage string

const (
	StageCoordinator Stage = "COORDINATOR"
	StageManager     Stage = "MANAGER"
)

// TriggerFor maps a stage and decision to the trigger that fires it
func TriggerFor(stage Stage, decision entity.Decision) (Trigger, error) {
	if !decision.IsValid() {
		return "", entity.NewValidationError("decision", "decision must be APPROVE or REJECT")
	}
	switch stage {
	case StageCoordinator:
		if decision == entity.DecisionApprove {
			return TriggerCoordinatorApprove, nil
		}
		return TriggerCoordinatorReject, nil
	case StageManager:
		if decision == entity.DecisionApprove {
			return TriggerManagerApprove, nil
		}
		return TriggerManagerReject, nil
	}
	return "", entity.NewValidationError("stage", "unknown review stage")
}
