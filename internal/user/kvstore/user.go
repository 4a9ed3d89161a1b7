// Package kvstore binds users to the "users" key of a key/value store.
package kvstore

import (
	"time"

	"github.com/frahmantamala/access-admin/internal/core/collection"
	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	userDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/access-admin/internal/storage"
)

type UserRepository = collection.Store[userDatamodel.User]

func NewUserRepository(kv storage.KV, opts ...collection.Option[userDatamodel.User]) *UserRepository {
	base := []collection.Option[userDatamodel.User]{
		collection.WithStamp(func(u userDatamodel.User, t time.Time) userDatamodel.User {
			u.LastUpdatedAt = datamodel.FormatTimestamp(t)
			return u
		}),
		collection.WithBackfill(func(u userDatamodel.User, id string) userDatamodel.User {
			u.ID = datamodel.ID(id)
			return u
		}),
	}
	return collection.New(kv, storage.KeyUsers, userID, append(base, opts...)...)
}

func userID(u userDatamodel.User) string {
	return u.ID.String()
}
