// Package authz decides which roles may invoke which operations.
package authz

import "github.com/garyjia/lecturer-claims/internal/domain/entity"

// Operation names one guarded use case
type Operation string

// Operations exposed through the API
const (
	OpViewProfile       Operation = "profile.view"
	OpSubmitClaim       Operation = "claim.submit"
	OpListOwnClaims     Operation = "claim.list_own"
	OpViewClaim         Operation = "claim.view"
	OpViewHistory       Operation = "claim.history"
	OpAttachDocument    Operation = "document.attach"
	OpDownloadDocument  Operation = "document.download"
	OpCoordinatorQueue  Operation = "queue.coordinator"
	OpCoordinatorDecide Operation = "claim.coordinator_decide"
	OpManagerQueue      Operation = "queue.manager"
	OpManagerDecide     Operation = "claim.manager_decide"
	OpManageUsers       Operation = "user.manage"
	OpViewReports       Operation = "report.view"
)

var everyone = []entity.Role{entity.RoleHR, entity.RoleLecturer, entity.RoleCoordinator, entity.RoleManager}

var policy = map[Operation][]entity.Role{
	OpViewProfile:       everyone,
	OpSubmitClaim:       {entity.RoleLecturer},
	OpListOwnClaims:     {entity.RoleLecturer},
	OpViewClaim:         everyone,
	OpViewHistory:       everyone,
	OpAttachDocument:    {entity.RoleLecturer},
	OpDownloadDocument:  everyone,
	OpCoordinatorQueue:  {entity.RoleCoordinator},
	OpCoordinatorDecide: {entity.RoleCoordinator},
	OpManagerQueue:      {entity.RoleManager},
	OpManagerDecide:     {entity.RoleManager},
	OpManageUsers:       {entity.RoleHR},
	OpViewReports:       {entity.RoleHR},
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func Allowed(role entity.Role, op Operation) bool {
	for _, r := range policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Operations returns every operation with a policy entry
func Operations() []Operation {
	ops := make([]Operation, 0, len(policy))
	for op := range policy {
		ops = append(ops, op)
	}
	return ops
}
