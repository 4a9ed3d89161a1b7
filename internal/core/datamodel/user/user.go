package user

import "github.com/frahmantamala/access-admin/internal/core/datamodel"

type User struct {
	ID            datamodel.ID `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Role          string       `json:"role"`
	Status        bool         `json:"status"`
	LastUpdatedAt string       `json:"lastUpdatedAt,omitempty"`
}
