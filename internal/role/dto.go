package role

import (
	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	"github.com/frahmantamala/access-admin/internal/transport"
)

type SaveRoleRequest struct {
	ID          string   `json:"id,omitempty"`
	RoleName    string   `json:"roleName"`
	Permissions []string `json:"permissions"`
}

// ToRole builds the candidate. A non-empty id overrides the body id.
func (r SaveRoleRequest) ToRole(id string) *Role {
	if id == "" {
		id = r.ID
	}
	permissions := r.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return &Role{
		ID:          id,
		RoleName:    r.RoleName,
		Permissions: permissions,
	}
}

// Columns are the role table columns. The "Created At" label is kept from
// the console even though the cell holds the last save time.
func Columns() []transport.Column[*Role] {
	return []transport.Column[*Role]{
		{Header: "Role Name", Accessor: "roleName", Value: func(r *Role) interface{} { return r.RoleName }},
		{Header: "Created At", Accessor: "lastUpdatedAt", Value: func(r *Role) interface{} {
			if r.LastUpdatedAt == nil {
				return ""
			}
			return datamodel.FormatTimestamp(*r.LastUpdatedAt)
		}},
		{Header: "Permission Count", Accessor: "permissionCount", Value: func(r *Role) interface{} { return r.PermissionCount() }},
	}
}
