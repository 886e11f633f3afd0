package entity

// ClaimStatus is the position of a claim in the approval pipeline
type ClaimStatus string

// Status constants for Claim
const (
	StatusPending             ClaimStatus = "PENDING"
	StatusCoordinatorApproved ClaimStatus = "COORDINATOR_APPROVED"
	StatusCoordinatorRejected ClaimStatus = "COORDINATOR_REJECTED"
	StatusManagerApproved     ClaimStatus = "MANAGER_APPROVED"
	StatusManagerRejected     ClaimStatus = "MANAGER_REJECTED"
)

var validStatuses = map[ClaimStatus]bool{
	StatusPending:             true,
	StatusCoordinatorApproved: true,
	StatusCoordinatorRejected: true,
	StatusManagerApproved:     true,
	StatusManagerRejected:     true,
}

var terminalStatuses = map[ClaimStatus]bool{
	StatusCoordinatorRejected: true,
	StatusManagerApproved:     true,
	StatusManagerRejected:     true,
}

// AllStatuses lists statuses in pipeline order
var AllStatuses = []ClaimStatus{
	StatusPending,
	StatusCoordinatorApproved,
	StatusCoordinatorRejected,
	StatusManagerApproved,
	StatusManagerRejected,
}

// IsValid returns true if the status is a known claim status
func (s ClaimStatus) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no further transition is defined from the status
func (s ClaimStatus) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s ClaimStatus) String() string {
	return string(s)
}

// Role is the single role held by a user account
type Role string

// Role constants
const (
	RoleHR          Role = "HR"
	RoleLecturer    Role = "Lecturer"
	RoleCoordinator Role = "Coordinator"
	RoleManager     Role = "Manager"
)

// IsValid returns true if the role is one of the four known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleHR, RoleLecturer, RoleCoordinator, RoleManager:
		return true
	}
	return false
}

// Decision is a reviewer's verdict on a claim
type Decision string

// Decision constants
const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// IsValid returns true for APPROVE and REJECT
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// History action constants
const (
	ActionSubmit              = "SUBMIT"
	ActionCoordinatorDecision = "COORDINATOR_DECISION"
	ActionManagerDecision     = "MANAGER_DECISION"
)
