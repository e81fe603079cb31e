package orchestrator

// Role grants a principal capabilities beyond its own sessions.
type Role string

// Role constants.
const (
	// RoleUser may only operate on sessions it owns.
	RoleUser Role = "user"
	// RoleAdmin may read and cancel any session.
	RoleAdmin Role = "admin"
)

// Principal identifies who is making a request.
type Principal struct {
	ID   string
	Role Role
}

// mayAccess reports whether the principal may operate on a session owned
// by ownerID.
func (p Principal) mayAccess(ownerID string) bool {
	return p.Role == RoleAdmin || p.ID == ownerID
}
