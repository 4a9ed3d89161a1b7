package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func useConfigDir(dir string) {
	previous := configPath
	configPath = dir
	DeferCleanup(func() { configPath = previous })
}

func writeConfig(dir, body string) {
	Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())
}

var _ = Describe("loadConfig", func() {
	It("falls back to defaults without a config file", func() {
		cfg, err := loadConfig(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Driver).To(Equal(internal.StorageDriverSQLite))
		Expect(cfg.Storage.OpTimeout).To(Equal(5 * time.Second))
		Expect(cfg.Integrity.Mode).To(Equal(internal.IntegrityModeBlock))
		Expect(cfg.Server.Port).To(Equal(8080))
	})

	It("lets the environment override the file", func() {
		dir := GinkgoT().TempDir()
		writeConfig(dir, "integrity:\n  mode: block\n")
		Expect(os.Setenv("ENV_INTEGRITY_MODE", "warn")).To(Succeed())
		DeferCleanup(os.Unsetenv, "ENV_INTEGRITY_MODE")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Integrity.Mode).To(Equal(internal.IntegrityModeWarn))
	})

	It("rejects an invalid configuration", func() {
		dir := GinkgoT().TempDir()
		writeConfig(dir, "storage:\n  driver: mongo\n")

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("unknown driver")))
	})
})

var _ = Describe("seed and export", func() {
	var (
		ctx  context.Context
		deps *Dependencies
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir := GinkgoT().TempDir()
		writeConfig(dir, "observability:\n  logging:\n    level: error\nstorage:\n  source: "+filepath.Join(dir, "admin.db")+"\n")
		useConfigDir(dir)

		var err error
		deps, err = initializeDependencies(ctx)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(deps.Close)
	})

	It("seeds consistent sample data once", func() {
		Expect(seed(ctx, deps)).To(Succeed())
		Expect(seed(ctx, deps)).To(Succeed())

		perms, err := deps.Permissions.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(perms).To(HaveLen(len(seedPermissions)))

		users, err := deps.Users.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(users).To(HaveLen(len(seedUsers)))

		report, err := deps.Integrity.Report(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Consistent).To(BeTrue())
	})

	It("exports every collection from kv_entries", func() {
		Expect(seed(ctx, deps)).To(Succeed())
		Expect(deps.DB).NotTo(BeNil())

		dump, err := exportCollections(ctx, deps)
		Expect(err).NotTo(HaveOccurred())
		Expect(dump).To(HaveKey(storage.KeyUsers))
		Expect(dump).To(HaveKey(storage.KeyRoles))

		var roles []map[string]interface{}
		Expect(json.Unmarshal(dump[storage.KeyRoles], &roles)).To(Succeed())
		Expect(roles).To(HaveLen(len(seedRoles)))
	})

	It("exports a missing collection as an empty array", func() {
		dump, err := exportCollections(ctx, deps)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(dump[storage.KeyPermissions])).To(Equal("[]"))
	})

	It("quotes a corrupt collection instead of failing", func() {
		Expect(deps.KV.Set(ctx, storage.KeyUsers, []byte("{not json"))).To(Succeed())

		dump, err := exportCollections(ctx, deps)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(dump[storage.KeyUsers])).To(Equal(`"{not json"`))
	})

	It("checks stored references without writing anything back", func() {
		stored := `[{"roleName":"Ghost","permissions":["MISSING"]}]`
		Expect(deps.KV.Set(ctx, storage.KeyRoles, []byte(stored))).To(Succeed())

		report, err := scanStored(ctx, deps)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Consistent).To(BeFalse())
		Expect(report.Dangling).To(HaveLen(1))
		Expect(report.Dangling[0].Target).To(Equal("MISSING"))

		raw, found, err := deps.KV.Get(ctx, storage.KeyRoles)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(string(raw)).To(Equal(stored))
	})

	It("fails the check on a corrupt collection", func() {
		Expect(deps.KV.Set(ctx, storage.KeyUsers, []byte("{not json"))).To(Succeed())

		_, err := scanStored(ctx, deps)
		Expect(err).To(MatchError(ContainSubstring(storage.KeyUsers)))
	})

	It("warms up without failing on a corrupt collection", func() {
		Expect(deps.KV.Set(ctx, storage.KeyUsers, []byte("{not json"))).To(Succeed())
		deps.warmUp(ctx)

		_, err := deps.Roles.List(ctx)
		Expect(err).NotTo(HaveOccurred())
	})
})
