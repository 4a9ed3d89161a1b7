package user

import (
	"time"

	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	userDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/user"
	"github.com/google/uuid"
)

const (
	MaxNameLength  = 200
	MaxEmailLength = 200
)

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	Status        bool       `json:"status"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}

// NewUser returns an unsaved, active user with a fresh id.
func NewUser(name, email, roleID string) *User {
	return &User{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  email,
		Role:   roleID,
		Status: true,
	}
}

func (u *User) IsActiveUser() bool {
	return u.Status
}

func ToDataModel(u *User) userDatamodel.User {
	out := userDatamodel.User{
		ID:     datamodel.ID(u.ID),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
	if u.LastUpdatedAt != nil {
		out.LastUpdatedAt = datamodel.FormatTimestamp(*u.LastUpdatedAt)
	}
	return out
}

func FromDataModel(u userDatamodel.User) *User {
	out := &User{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
	if t := datamodel.ParseTimestamp(u.LastUpdatedAt); !t.IsZero() {
		out.LastUpdatedAt = &t
	}
	return out
}

func FromDataModels(items []userDatamodel.User) []*User {
	out := make([]*User, len(items))
	for i, u := range items {
		out[i] = FromDataModel(u)
	}
	return out
}
