package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleEngineer      Role = "ENGINEER"
	RoleSubcontractor Role = "SUBCONTRACTOR"
	RoleViewer        Role = "VIEWER"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool         { return p.Role == RoleAdmin }
func (p Principal) IsEngineer() bool      { return p.Role == RoleEngineer }
func (p Principal) IsSubcontractor() bool { return p.Role == RoleSubcontractor }
func (p Principal) IsViewer() bool        { return p.Role == RoleViewer }

// CanEditPlanning reports whether the principal may trigger schedule
// recomputation or issue certifications.
func (p Principal) CanEditPlanning() bool {
	return p.Role == RoleAdmin || p.Role == RoleEngineer
}
