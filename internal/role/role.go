package role

import (
	"time"

	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	"github.com/google/uuid"
)

type Role struct {
	ID            string     `json:"id"`
	RoleName      string     `json:"roleName"`
	Permissions   []string   `json:"permissions"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}

// NewRole returns an unsaved role with a fresh id. A role needs at least one
// permission before it can be saved.
func NewRole(name string, permissions ...string) *Role {
	if permissions == nil {
		permissions = []string{}
	}
	return &Role{
		ID:          uuid.NewString(),
		RoleName:    name,
		Permissions: permissions,
	}
}

func (r *Role) PermissionCount() int {
	return len(r.Permissions)
}

// normalizePermissions drops repeated names, keeping first occurrences.
func normalizePermissions(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func ToDataModel(r *Role) roleDatamodel.Role {
	permissions := make([]string, len(r.Permissions))
	copy(permissions, r.Permissions)

	out := roleDatamodel.Role{
		ID:          datamodel.ID(r.ID),
		RoleName:    r.RoleName,
		Permissions: permissions,
	}
	if r.LastUpdatedAt != nil {
		out.LastUpdatedAt = datamodel.FormatTimestamp(*r.LastUpdatedAt)
	}
	return out
}

func FromDataModel(r roleDatamodel.Role) *Role {
	permissions := make([]string, len(r.Permissions))
	copy(permissions, r.Permissions)

	out := &Role{
		ID:          r.ID.String(),
		RoleName:    r.RoleName,
		Permissions: permissions,
	}
	if t := datamodel.ParseTimestamp(r.LastUpdatedAt); !t.IsZero() {
		out.LastUpdatedAt = &t
	}
	return out
}

func FromDataModels(items []roleDatamodel.Role) []*Role {
	out := make([]*Role, len(items))
	for i, r := range items {
		out[i] = FromDataModel(r)
	}
	return out
}
