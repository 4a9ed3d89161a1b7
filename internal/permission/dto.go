package permission

import (
	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	"github.com/frahmantamala/access-admin/internal/transport"
)

type SavePermissionRequest struct {
	ID             string `json:"id,omitempty"`
	PermissionName string `json:"permissionName"`
	Description    string `json:"description"`
}

// ToPermission builds the candidate. A non-empty id overrides the body id.
func (r SavePermissionRequest) ToPermission(id string) *Permission {
	if id == "" {
		id = r.ID
	}
	return &Permission{
		ID:             id,
		PermissionName: r.PermissionName,
		Description:    r.Description,
	}
}

// Columns are the permission table columns.
func Columns() []transport.Column[*Permission] {
	return []transport.Column[*Permission]{
		{Header: "Permission Name", Accessor: "permissionName", Value: func(p *Permission) interface{} { return p.PermissionName }},
		{Header: "Description", Accessor: "description", Value: func(p *Permission) interface{} { return p.Description }},
		{Header: "Last Updated", Accessor: "lastUpdatedAt", Value: func(p *Permission) interface{} {
			if p.LastUpdatedAt == nil {
				return ""
			}
			return datamodel.FormatTimestamp(*p.LastUpdatedAt)
		}},
	}
}
