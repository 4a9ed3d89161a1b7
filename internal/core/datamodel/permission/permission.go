package permission

import "github.com/frahmantamala/access-admin/internal/core/datamodel"

type Permission struct {
	ID             datamodel.ID `json:"id"`
	PermissionName string       `json:"permissionName"`
	Description    string       `json:"description"`
	LastUpdatedAt  string       `json:"lastUpdatedAt,omitempty"`
}
