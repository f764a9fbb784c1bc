package entity

import (
	"time"
)

// User is the aggregate root for the member domain.
// PasswordHash holds a bcrypt digest and is never serialized.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Department   string
	StudentID    string
	Year         string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the only shape of a user that leaves the service.
type PublicProfile struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Role       Role       `json:"role"`
	Department string     `json:"department,omitempty"`
	StudentID  string     `json:"studentId,omitempty"`
	Year       string     `json:"year,omitempty"`
	IsActive   bool       `json:"isActive"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		Department: u.Department,
		StudentID:  u.StudentID,
		Year:       u.Year,
		IsActive:   u.IsActive,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Identity returns the token subject for u.
func (u *User) Identity() Identity {
	return Identity{SubjectID: u.ID, Role: u.Role}
}

// ProfilePatch lists the only fields a member may change about themselves.
// Nil means "leave unchanged".
type ProfilePatch struct {
	FirstName  *string
	LastName   *string
	Department *string
	Year       *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Department == nil && p.Year == nil
}

// Apply copies the set fields onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Year != nil {
		u.Year = *p.Year
	}
}
