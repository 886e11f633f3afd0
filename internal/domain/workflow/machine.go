package workflow

import (
	"context"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// StateMachine tracks the current claim status and validates transitions
type StateMachine interface {
	// State returns the current state
	State() entity.ClaimStatus

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger
}
