package entity

import (
	"time"
)

// User is the aggregate root for the profile domain.
// Password holds a bcrypt hash and is never serialised; Login is only
// exposed to the owner (see PublicUser for the redacted view).
type User struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Login      string     `json:"login,omitempty"`
	Password   string     `json:"-"`
	Email      string     `json:"email,omitempty"`
	Name       string     `json:"name,omitempty"`
	Lastname   string     `json:"lastname,omitempty"`
	Patronymic string     `json:"patronymic,omitempty"`
	Birthday   *time.Time `json:"birthday,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Avatar     *string    `json:"avatar"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PublicUser is a User with credential fields stripped.
type PublicUser struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Name       string     `json:"name,omitempty"`
	Lastname   string     `json:"lastname,omitempty"`
	Patronymic string     `json:"patronymic,omitempty"`
	Birthday   *time.Time `json:"birthday,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Avatar     *string    `json:"avatar"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Public returns the redacted view of u.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:         u.ID,
		Role:       u.Role,
		Name:       u.Name,
		Lastname:   u.Lastname,
		Patronymic: u.Patronymic,
		Birthday:   u.Birthday,
		Phone:      u.Phone,
		Avatar:     u.Avatar,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ProfilePatch lists the only fields a profile update may touch.
// A nil pointer leaves the stored value unchanged.
type ProfilePatch struct {
	Name       *string
	Lastname   *string
	Patronymic *string
	Birthday   *time.Time
	Phone      *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Lastname == nil && p.Patronymic == nil && p.Birthday == nil && p.Phone == nil
}

// Apply writes the non-nil patch fields onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Lastname != nil {
		u.Lastname = *p.Lastname
	}
	if p.Patronymic != nil {
		u.Patronymic = *p.Patronymic
	}
	if p.Birthday != nil {
		b := *p.Birthday
		u.Birthday = &b
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
}
