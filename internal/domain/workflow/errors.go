package workflow

import (
	"errors"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

var (
	// ErrInvalidTransition is returned when a state transition is not allowed
	ErrInvalidTransition = entity.ErrInvalidTransition

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")
)
