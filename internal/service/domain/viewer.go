package domain

import "github.com/qs-lzh/troupe/internal/model"

// Viewer is the authenticated user a request acts for.
type Viewer struct {
	Username string
	Role     model.UserRole
}

func (v Viewer) IsOrganizer() bool {
	return v.Role == model.RoleOrganizer
}

// DeleteResult reports a cascading delete. Warning is set when assignments were lost.
type DeleteResult struct {
	Message             string
	Warning             string
	RemovedRoles        int
	RemovedApplications int
}
