// Package kvstore binds permissions to the "permissions" key of a key/value
// store.
package kvstore

import (
	"time"

	"github.com/frahmantamala/access-admin/internal/core/collection"
	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	permissionDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/permission"
	"github.com/frahmantamala/access-admin/internal/storage"
)

type PermissionRepository = collection.Store[permissionDatamodel.Permission]

// NewPermissionRepository returns the permission collection. Permissions
// saved by older clients without an id get one on load.
func NewPermissionRepository(kv storage.KV, opts ...collection.Option[permissionDatamodel.Permission]) *PermissionRepository {
	base := []collection.Option[permissionDatamodel.Permission]{
		collection.WithStamp(func(p permissionDatamodel.Permission, t time.Time) permissionDatamodel.Permission {
			p.LastUpdatedAt = datamodel.FormatTimestamp(t)
			return p
		}),
		collection.WithBackfill(func(p permissionDatamodel.Permission, id string) permissionDatamodel.Permission {
			p.ID = datamodel.ID(id)
			return p
		}),
	}
	return collection.New(kv, storage.KeyPermissions, permissionID, append(base, opts...)...)
}

func permissionID(p permissionDatamodel.Permission) string {
	return p.ID.String()
}
