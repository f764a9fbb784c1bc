package entity

// Role represents an authorization level.
// Closed set; new accounts always start as RoleMember.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleAdmin:
		return true
	}
	return false
}

// Satisfies reports whether r grants at least the access of required.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	return r == RoleAdmin && required.Valid()
}

// Identity is what the authorization gate attaches to a request.
type Identity struct {
	SubjectID string `json:"userId"`
	Role      Role   `json:"role"`
}
