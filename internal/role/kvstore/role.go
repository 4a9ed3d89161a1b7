// Package kvstore binds roles to the "roles" key of a key/value store.
package kvstore

import (
	"time"

	"github.com/frahmantamala/access-admin/internal/core/collection"
	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/access-admin/internal/storage"
)

type RoleRepository = collection.Store[roleDatamodel.Role]

func NewRoleRepository(kv storage.KV, opts ...collection.Option[roleDatamodel.Role]) *RoleRepository {
	base := []collection.Option[roleDatamodel.Role]{
		collection.WithStamp(func(r roleDatamodel.Role, t time.Time) roleDatamodel.Role {
			if r.Permissions == nil {
				r.Permissions = []string{}
			}
			r.LastUpdatedAt = datamodel.FormatTimestamp(t)
			return r
		}),
		collection.WithBackfill(func(r roleDatamodel.Role, id string) roleDatamodel.Role {
			r.ID = datamodel.ID(id)
			return r
		}),
	}
	return collection.New(kv, storage.KeyRoles, roleID, append(base, opts...)...)
}

func roleID(r roleDatamodel.Role) string {
	return r.ID.String()
}
