package models

import (
	"time"

	"bistro/pkg/domain"
)

// User is the persisted user record. Role holds the raw stored value; an empty
// value means a plain user.
type User struct {
	ID        domain.UserID `json:"_id"`
	Name      string        `json:"name,omitempty"`
	Email     string        `json:"email"`
	PhotoURL  string        `json:"photoURL,omitempty"`
	Role      string        `json:"role,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ResolvedRole applies the stored-role rule: only "admin" is admin.
func (u *User) ResolvedRole() domain.Role {
	if u == nil {
		return domain.RoleUser
	}
	return domain.RoleFromStored(u.Role)
}
