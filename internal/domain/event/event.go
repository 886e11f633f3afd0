package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// Payload keys
const (
	KeyPreviousStatus = "previous_status"
	KeyStatus         = "status"
	KeyTotalAmount    = "total_amount"
	KeyDocumentID     = "document_id"
	KeyFileName       = "file_name"
)

// Event is a fact about a claim that already happened and was committed
type Event struct {
	ID        string            `json:"id"`
	Type      Type              `json:"type"`
	ClaimID   int64             `json:"claim_id"`
	ActorID   int64             `json:"actor_id"`
	Payload   map[string]string `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewEvent creates a new domain event with a generated ID and timestamp
func NewEvent(eventType Type, claimID, actorID int64, payload map[string]string) *Event {
	if payload == nil {
		payload = map[string]string{}
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ClaimID:   claimID,
		ActorID:   actorID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ClaimSubmitted describes a newly stored claim
func ClaimSubmitted(claim *entity.Claim, actorID int64) *Event {
	return NewEvent(TypeClaimSubmitted, claim.ID, actorID, map[string]string{
		KeyStatus:      claim.Status.String(),
		KeyTotalAmount: claim.TotalAmount.StringFixed(2),
	})
}

// ClaimDecided describes a committed approval step
func ClaimDecided(claim *entity.Claim, previous entity.ClaimStatus, actorID int64) *Event {
	return NewEvent(TypeClaimDecided, claim.ID, actorID, map[string]string{
		KeyPreviousStatus: previous.String(),
		KeyStatus:         claim.Status.String(),
		KeyTotalAmount:    claim.TotalAmount.StringFixed(2),
	})
}

// WithPayload returns a copy of the event with key set; e is not modified
func (e *Event) WithPayload(key, value string) *Event {
	payload := make(map[string]string, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	cp := *e
	cp.Payload = payload
	return &cp
}

// Get returns a payload value or ""
func (e *Event) Get(key string) string {
	return e.Payload[key]
}
