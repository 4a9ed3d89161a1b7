package role_test

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/access-admin/internal"
	permissionDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/access-admin/internal/core/events"
	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/permission"
	permissionKV "github.com/frahmantamala/access-admin/internal/permission/kvstore"
	"github.com/frahmantamala/access-admin/internal/role"
	roleKV "github.com/frahmantamala/access-admin/internal/role/kvstore"
	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/frahmantamala/access-admin/internal/user"
	userKV "github.com/frahmantamala/access-admin/internal/user/kvstore"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// interleaved runs during after reading its source, standing in for a
// request that lands between a reference check and the write it guards.
type interleaved[T any] struct {
	source interface {
		All(ctx context.Context) ([]T, error)
	}
	during func()
}

func (s interleaved[T]) All(ctx context.Context) ([]T, error) {
	items, err := s.source.All(ctx)
	s.during()
	return items, err
}

// inBackground starts fn and returns once it is running, leaving a channel
// closed when fn returns.
func inBackground(fn func()) <-chan struct{} {
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		defer close(done)
		fn()
	}()
	<-started
	return done
}

var _ = Describe("Role Service", func() {
	var (
		ctx         context.Context
		kv          storage.KV
		lg          *slog.Logger
		checker     *integrity.Checker
		permRepo    *permissionKV.PermissionRepository
		roleRepo    *roleKV.RoleRepository
		userRepo    *userKV.UserRepository
		service     *role.Service
		users       *user.Service
		permissions *permission.Service
	)

	build := func(mode string) {
		checker = integrity.NewChecker(mode, lg)
		permRepo = permissionKV.NewPermissionRepository(kv)
		roleRepo = roleKV.NewRoleRepository(kv)
		userRepo = userKV.NewUserRepository(kv)
		service = role.NewService(roleRepo, permRepo, userRepo, checker, lg)
		users = user.NewService(userRepo, roleRepo, checker, lg)

		permissions = permission.NewService(permRepo, roleRepo, checker, events.NewEventBus(lg), lg)
	}

	BeforeEach(func() {
		ctx = context.Background()
		lg = quietLogger()
		kv = newKV()
		build(internal.IntegrityModeBlock)

		for _, name := range []string{"READ", "WRITE"} {
			_, err := permissions.Save(ctx, permission.NewPermission(name, name+" access"))
			Expect(err).NotTo(HaveOccurred())
		}
	})

	Describe("Save", func() {
		It("persists a role whose permissions exist", func() {
			items, err := service.Save(ctx, role.NewRole("Editor", "READ", "WRITE"))
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].LastUpdatedAt).NotTo(BeNil())

			stored, err := roleKV.NewRoleRepository(kv).Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored[0].Permissions).To(Equal([]string{"READ", "WRITE"}))
		})

		It("rejects a role with no permissions and leaves storage untouched", func() {
			_, err := service.Save(ctx, role.NewRole("Empty"))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.FieldMessages()).To(HaveKeyWithValue("permissions", "At least one permission must be selected."))

			_, found, err := kv.Get(ctx, storage.KeyRoles)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})

		It("refuses permissions that do not exist", func() {
			_, err := service.Save(ctx, role.NewRole("Ghost", "READ", "DELETE"))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeReferenceIntegrity))
			Expect(appErr.Code).To(Equal(internal.ErrCodeDanglingReference))
			Expect(appErr.Message).To(ContainSubstring("DELETE"))
			details := appErr.Details.(integrity.Details)
			Expect(details.References).To(HaveLen(1))
			Expect(details.References[0].Target).To(Equal("DELETE"))
		})

		It("saves dangling permissions in warn mode", func() {
			build(internal.IntegrityModeWarn)

			items, err := service.Save(ctx, role.NewRole("Ghost", "DELETE"))
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})

		It("drops repeated permission names", func() {
			items, err := service.Save(ctx, role.NewRole("Reader", "READ", "READ"))
			Expect(err).NotTo(HaveOccurred())
			Expect(items[0].Permissions).To(Equal([]string{"READ"}))
		})

		It("is idempotent for the same role", func() {
			r := role.NewRole("Reader", "READ")
			_, err := service.Save(ctx, r)
			Expect(err).NotTo(HaveOccurred())
			items, err := service.Save(ctx, r)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].ID).To(Equal(r.ID))
		})
	})

	Describe("Delete", func() {
		It("refuses to delete a role assigned to a user", func() {
			r := role.NewRole("Reader", "READ")
			_, err := service.Save(ctx, r)
			Expect(err).NotTo(HaveOccurred())
			_, err = users.Save(ctx, user.NewUser("Ann", "ann@example.com", r.ID))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Delete(ctx, r.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeReferencedByOthers))

			items, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})

		It("deletes an unassigned role", func() {
			r := role.NewRole("Reader", "READ")
			_, err := service.Save(ctx, r)
			Expect(err).NotTo(HaveOccurred())

			items, err := service.Delete(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("treats an unknown id as a no-op", func() {
			items, err := service.Delete(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})

	Describe("concurrent edits", func() {
		consistent := func() {
			report, err := integrity.NewService(userRepo, roleRepo, permRepo, lg).Report(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Dangling).To(BeEmpty())
		}

		It("refuses a permission delete that arrives between a role's check and its write", func() {
			perms, err := permissions.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			var readID string
			for _, p := range perms {
				if p.PermissionName == "READ" {
					readID = p.ID
				}
			}
			Expect(readID).NotTo(BeEmpty())

			var deleteErr error
			var done <-chan struct{}
			source := interleaved[permissionDatamodel.Permission]{source: permRepo, during: func() {
				done = inBackground(func() { _, deleteErr = permissions.Delete(ctx, readID) })
			}}
			guarded := role.NewService(roleRepo, source, userRepo, checker, lg)

			_, err = guarded.Save(ctx, role.NewRole("Admin", "READ"))
			Expect(err).NotTo(HaveOccurred())
			Eventually(done).Should(BeClosed())

			appErr, ok := internal.IsAppError(deleteErr)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeReferencedByOthers))
			consistent()
		})

		It("refuses a role delete that arrives between a user's check and its write", func() {
			r := role.NewRole("Reader", "READ")
			_, err := service.Save(ctx, r)
			Expect(err).NotTo(HaveOccurred())

			var deleteErr error
			var done <-chan struct{}
			source := interleaved[roleDatamodel.Role]{source: roleRepo, during: func() {
				done = inBackground(func() { _, deleteErr = service.Delete(ctx, r.ID) })
			}}
			guarded := user.NewService(userRepo, source, checker, lg)

			_, err = guarded.Save(ctx, user.NewUser("Ann", "ann@example.com", r.ID))
			Expect(err).NotTo(HaveOccurred())
			Eventually(done).Should(BeClosed())

			appErr, ok := internal.IsAppError(deleteErr)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeReferencedByOthers))
			consistent()
		})
	})

	Describe("HandlePermissionRenamed", func() {
		It("rewrites the old name and merges duplicates", func() {
			_, err := service.Save(ctx, role.NewRole("Both", "READ", "WRITE"))
			Expect(err).NotTo(HaveOccurred())

			err = service.HandlePermissionRenamed(ctx, events.NewPermissionRenamedEvent("p", "READ", "WRITE"))
			Expect(err).NotTo(HaveOccurred())

			items, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items[0].Permissions).To(Equal([]string{"WRITE"}))
		})

		It("rejects other event types", func() {
			err := service.HandlePermissionRenamed(ctx, events.BaseEvent{Type: "other"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Table", func() {
		It("computes the permission count column", func() {
			_, err := service.Save(ctx, role.NewRole("Editor", "READ", "WRITE"))
			Expect(err).NotTo(HaveOccurred())

			table, err := service.Table(ctx)
			Expect(err).NotTo(HaveOccurred())
			headers := make([]string, len(table.Columns))
			for i, c := range table.Columns {
				headers[i] = c.Header
			}
			Expect(headers).To(Equal([]string{"Role Name", "Created At", "Permission Count"}))
			Expect(table.Rows[0]).To(HaveKeyWithValue("permissionCount", 2))
		})
	})
})
