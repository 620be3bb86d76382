package domain

// Role represents a user role in the system
type Role string

const (
	RoleMember    Role = "MEMBER"
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

// ValidRole reports whether the given string is a known role
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleMember, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller identity, passed explicitly into
// every operation that needs it (audit stamping, role-conditional
// registration). A nil Actor means the call is unauthenticated.
type Actor struct {
	UserID   uint
	Username string
	Role     Role
}

// IsAdmin reports whether the actor holds the ADMIN role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Name returns the actor's username, or "" for an anonymous caller
func (a *Actor) Name() string {
	if a == nil {
		return ""
	}
	return a.Username
}
