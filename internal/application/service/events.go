package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/event"
)

// ClaimServiceOption configures a ClaimService
type ClaimServiceOption func(*claimServiceImpl)

// WithClaimEvents publishes claim.submitted and claim.decided
func WithClaimEvents(p port.EventPublisher) ClaimServiceOption {
	return func(s *claimServiceImpl) {
		s.events = p
	}
}

// DocumentServiceOption configures a DocumentService
type DocumentServiceOption func(*documentServiceImpl)

// WithDocumentEvents publishes document.attached
func WithDocumentEvents(p port.EventPublisher) DocumentServiceOption {
	return func(s *documentServiceImpl) {
		s.events = p
	}
}

// publish hands a committed event to subscribers. The state change already
// happened, so a failing subscriber is logged and not returned.
func publish(ctx context.Context, p port.EventPublisher, logger *zap.Logger, evt *event.Event) {
	if p == nil {
		return
	}
	if err := p.Dispatch(ctx, evt); err != nil {
		logger.Warn("Event subscriber failed",
			zap.String("event_type", evt.Type.String()),
			zap.Int64("claim_id", evt.ClaimID),
			zap.Error(err))
	}
}
