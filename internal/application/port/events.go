package port

import (
	"context"

	"github.com/garyjia/lecturer-claims/internal/domain/event"
)

// EventPublisher receives events after their transaction committed
type EventPublisher interface {
	Dispatch(ctx context.Context, evt *event.Event) error
}
