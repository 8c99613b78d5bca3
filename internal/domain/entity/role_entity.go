package entity

// Role is the authorization role stored on a user record.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsAdmin reports whether the role grants administrative rights.
func (r Role) IsAdmin() bool { return r == RoleAdmin }
