package role

import "github.com/frahmantamala/access-admin/internal/core/datamodel"

type Role struct {
	ID            datamodel.ID `json:"id"`
	RoleName      string       `json:"roleName"`
	Permissions   []string     `json:"permissions"`
	LastUpdatedAt string       `json:"lastUpdatedAt,omitempty"`
}
