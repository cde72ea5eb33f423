// Package session owns the persisted portal session: one JSON slot on disk
// holding the authenticated identity and its bearer token.
package session

// Role is the portal role attached to a session.
type Role string

const (
	// RoleUser is a regular portal user.
	RoleUser Role = "user"
	// RoleManager can administer users, tracks, videos and documents.
	RoleManager Role = "manager"
)

// Session is the authenticated identity held by the client. It is either
// fully populated and persisted, or absent; no partial state survives a
// load.
type Session struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Token string `json:"token"`
}

// Valid reports whether the session carries every required field.
func (s *Session) Valid() bool {
	return s != nil && s.ID != "" && s.Name != "" && s.Email != "" && s.Token != ""
}

// IsManager reports whether the session holds the manager role.
func (s *Session) IsManager() bool {
	return s != nil && s.Role == RoleManager
}

// ResolveRole collapses the backend's inconsistent role shape — sometimes a
// `roles` list, sometimes a singular `role` — into one Role. The first list
// entry wins, then the singular field, then the plain user role. Called
// exactly once, at session construction; nothing downstream re-derives it.
func ResolveRole(roles []string, role string) Role {
	if len(roles) > 0 && roles[0] != "" {
		return Role(roles[0])
	}
	if role != "" {
		return Role(role)
	}
	return RoleUser
}
