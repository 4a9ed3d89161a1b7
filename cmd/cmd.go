package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clearData  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "access-admin",
	Short: "Access Admin",
	Long:  `Users, roles and permissions store behind the admin console.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.allowed_origins", "http://localhost:3000")
	v.SetDefault("http_server.read_header_timeout", 5*time.Second)
	v.SetDefault("http_server.read_timeout", 15*time.Second)
	v.SetDefault("http_server.write_timeout", 15*time.Second)
	v.SetDefault("http_server.idle_timeout", 60*time.Second)
	v.SetDefault("http_server.secure_headers", true)
	v.SetDefault("http_server.rate_limit.enabled", false)
	v.SetDefault("http_server.rate_limit.requests", 100)
	v.SetDefault("http_server.rate_limit.window", time.Minute)

	v.SetDefault("storage.driver", internal.StorageDriverSQLite)
	v.SetDefault("storage.source", "access-admin.db")
	v.SetDefault("storage.key_prefix", "access-admin")
	v.SetDefault("storage.quota_bytes", 5<<20)
	v.SetDefault("storage.auto_migrate", true)
	v.SetDefault("storage.op_timeout", 5*time.Second)

	v.SetDefault("integrity.mode", internal.IntegrityModeBlock)

	v.SetDefault("observability.logging.level", "")
	v.SetDefault("observability.logging.format", "")
}

// loadConfig reads config.yml from path when present. Every key can be
// overridden from the environment as ENV_<SECTION>_<KEY>, for example
// ENV_STORAGE_DRIVER=redis.
func loadConfig(path string) (*internal.Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing collections before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(checkCmd)
}
