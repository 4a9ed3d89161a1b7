package permission

import (
	"time"

	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	permissionDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/permission"
	"github.com/google/uuid"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

type Permission struct {
	ID             string     `json:"id"`
	PermissionName string     `json:"permissionName"`
	Description    string     `json:"description"`
	LastUpdatedAt  *time.Time `json:"lastUpdatedAt,omitempty"`
}

// NewPermission returns an unsaved permission with a fresh id.
func NewPermission(name, description string) *Permission {
	return &Permission{
		ID:             uuid.NewString(),
		PermissionName: name,
		Description:    description,
	}
}

func ToDataModel(p *Permission) permissionDatamodel.Permission {
	out := permissionDatamodel.Permission{
		ID:             datamodel.ID(p.ID),
		PermissionName: p.PermissionName,
		Description:    p.Description,
	}
	if p.LastUpdatedAt != nil {
		out.LastUpdatedAt = datamodel.FormatTimestamp(*p.LastUpdatedAt)
	}
	return out
}

func FromDataModel(p permissionDatamodel.Permission) *Permission {
	out := &Permission{
		ID:             p.ID.String(),
		PermissionName: p.PermissionName,
		Description:    p.Description,
	}
	if t := datamodel.ParseTimestamp(p.LastUpdatedAt); !t.IsZero() {
		out.LastUpdatedAt = &t
	}
	return out
}

func FromDataModels(items []permissionDatamodel.Permission) []*Permission {
	out := make([]*Permission, len(items))
	for i, p := range items {
		out[i] = FromDataModel(p)
	}
	return out
}
