package internal_test

import (
	"time"

	"github.com/frahmantamala/access-admin/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	var cfg internal.Config

	BeforeEach(func() {
		cfg = internal.Config{
			Server: internal.ServerConfig{
				Port:              8080,
				AllowedOrigins:    "http://localhost:3000, *",
				ReadHeaderTimeout: time.Second,
				ReadTimeout:       5 * time.Second,
			},
			Storage: internal.StorageConfig{
				Driver: internal.StorageDriverSQLite,
				Source: ":memory:",
			},
			Integrity: internal.IntegrityConfig{Mode: internal.IntegrityModeBlock},
		}
	})

	It("accepts a complete configuration", func() {
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Storage.IsSQL()).To(BeTrue())
	})

	It("collects every invalid section", func() {
		cfg.Server.Port = 0
		cfg.Integrity.Mode = "ignore"
		cfg.Observability.Logging.Format = "xml"

		err := cfg.Validate()
		Expect(err).To(MatchError(ContainSubstring("server config")))
		Expect(err).To(MatchError(ContainSubstring("integrity config")))
		Expect(err).To(MatchError(ContainSubstring("logging config")))
	})

	It("requires a positive rate limit when enabled", func() {
		cfg.Server.RateLimit = internal.RateLimitConfig{Enabled: true}
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("rate_limit")))
	})

	It("treats redis as a non-SQL driver", func() {
		cfg.Storage.Driver = internal.StorageDriverRedis
		cfg.Storage.Source = "localhost:6379"
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Storage.IsSQL()).To(BeFalse())
	})

	It("rejects a negative quota", func() {
		cfg.Storage.QuotaBytes = -1
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("quota_bytes")))
	})
})
