package domain

// Role is the privilege level stored on a user record.
// Invariant: an absent or unknown stored value is treated as RoleUser; only the
// exact stored value "admin" grants RoleAdmin.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// RoleFromStored maps the raw role column of a user record to a Role.
func RoleFromStored(raw string) Role {
	if raw == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
