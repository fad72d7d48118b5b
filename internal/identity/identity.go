package identity

// Role gates write access on resources. Values mirror the user records kept
// by the hosted data service.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
	RoleUser       Role = "user"
)

// CanMutate reports whether the role may create, update, or delete
// resources. Everyone else is read-only.
func (r Role) CanMutate() bool {
	return r == RoleAdmin || r == RoleInstructor
}

// Identity is the resolved result of introspecting a session token. It
// contains facts only, is rebuilt on every request, and is never cached.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
