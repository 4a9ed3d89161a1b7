package user_test

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/access-admin/internal/integrity"
	roleKV "github.com/frahmantamala/access-admin/internal/role/kvstore"
	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/frahmantamala/access-admin/internal/user"
	userKV "github.com/frahmantamala/access-admin/internal/user/kvstore"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User Service", func() {
	var (
		ctx      context.Context
		kv       storage.KV
		lg       *slog.Logger
		userRepo *userKV.UserRepository
		service  *user.Service
	)

	build := func(mode string) {
		userRepo = userKV.NewUserRepository(kv)
		service = user.NewService(userRepo, roleKV.NewRoleRepository(kv), integrity.NewChecker(mode, lg), lg)
	}

	BeforeEach(func() {
		ctx = context.Background()
		lg = quietLogger()
		kv = newKV()

		_, err := roleKV.NewRoleRepository(kv).Upsert(ctx, roleDatamodel.Role{
			ID:          datamodel.ID("r1"),
			RoleName:    "Admin",
			Permissions: []string{"READ"},
		})
		Expect(err).NotTo(HaveOccurred())

		build(internal.IntegrityModeBlock)
	})

	Describe("Save", func() {
		It("stamps and persists a user with an existing role", func() {
			items, err := service.Save(ctx, user.NewUser("Ann", "ann@example.com", "r1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].LastUpdatedAt).NotTo(BeNil())
			Expect(items[0].Status).To(BeTrue())
		})

		It("refuses a role id that does not exist", func() {
			_, err := service.Save(ctx, user.NewUser("Ann", "ann@example.com", "nope"))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeReferenceIntegrity))
			Expect(appErr.StatusCode).To(Equal(409))

			_, found, err := kv.Get(ctx, storage.KeyUsers)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})

		It("accepts a missing role in warn mode", func() {
			build(internal.IntegrityModeWarn)

			items, err := service.Save(ctx, user.NewUser("Ann", "ann@example.com", "nope"))
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})

		It("returns validation messages for an invalid user", func() {
			_, err := service.Save(ctx, &user.User{Name: "Ann", Email: "bad", Role: "r1"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.FieldMessages()).To(Equal(map[string]string{"email": "Enter a valid email address."}))
		})
	})

	Describe("Load", func() {
		It("reads legacy numeric ids as text", func() {
			Expect(kv.Set(ctx, storage.KeyUsers,
				[]byte(`[{"id":3,"name":"Bob","email":"bob@example.com","role":"r1","status":false}]`))).To(Succeed())

			items, err := service.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].ID).To(Equal("3"))
			Expect(items[0].Status).To(BeFalse())
		})
	})

	Describe("ToggleStatus", func() {
		var ann *user.User

		BeforeEach(func() {
			ann = user.NewUser("Ann", "ann@example.com", "r1")
			_, err := service.Save(ctx, ann)
			Expect(err).NotTo(HaveOccurred())
		})

		It("flips the status and persists immediately", func() {
			items, err := service.ToggleStatus(ctx, ann.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(items[0].Status).To(BeFalse())

			stored, err := userKV.NewUserRepository(kv).Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored[0].Status).To(BeFalse())

			items, err = service.ToggleStatus(ctx, ann.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(items[0].Status).To(BeTrue())
		})

		It("reports an unknown id as not found", func() {
			_, err := service.ToggleStatus(ctx, "missing")
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the user and treats unknown ids as a no-op", func() {
			ann := user.NewUser("Ann", "ann@example.com", "r1")
			_, err := service.Save(ctx, ann)
			Expect(err).NotTo(HaveOccurred())

			items, err := service.Delete(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))

			items, err = service.Delete(ctx, ann.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})

	Describe("Table", func() {
		It("shows the role name and status", func() {
			_, err := service.Save(ctx, user.NewUser("Ann", "ann@example.com", "r1"))
			Expect(err).NotTo(HaveOccurred())

			table, err := service.Table(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Columns).To(HaveLen(4))
			Expect(table.Columns[0].Header).To(Equal("User Name"))
			Expect(table.Rows[0]).To(HaveKeyWithValue("role", "Admin"))
			Expect(table.Rows[0]).To(HaveKeyWithValue("status", true))
		})
	})
})
