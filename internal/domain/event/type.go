package event

// Type identifies the type of domain event
type Type string

const (
	TypeClaimSubmitted   Type = "claim.submitted"
	TypeClaimDecided     Type = "claim.decided"
	TypeDocumentAttached Type = "document.attached"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeClaimSubmitted, TypeClaimDecided, TypeDocumentAttached:
		return true
	default:
		return false
	}
}
