package entity

import "time"

// ClaimHistory is one audit-trail row for a claim
type ClaimHistory struct {
	ID             int64       `json:"id"`
	ClaimID        int64       `json:"claim_id"`
	ActorID        int64       `json:"actor_id"`
	PreviousStatus ClaimStatus `json:"previous_status,omitempty"`
	NewStatus      ClaimStatus `json:"new_status"`
	Action         string      `json:"action"`
	CreatedAt      time.Time   `json:"created_at"`
}
