package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/core/collection"
	permissionDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/access-admin/internal/core/events"
	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/permission"
	permissionKV "github.com/frahmantamala/access-admin/internal/permission/kvstore"
	"github.com/frahmantamala/access-admin/internal/role"
	roleKV "github.com/frahmantamala/access-admin/internal/role/kvstore"
	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/frahmantamala/access-admin/internal/storage/gormstore"
	"github.com/frahmantamala/access-admin/internal/storage/redisstore"
	"github.com/frahmantamala/access-admin/internal/user"
	userKV "github.com/frahmantamala/access-admin/internal/user/kvstore"
	"github.com/frahmantamala/access-admin/pkg/logger"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Dependencies is everything a command needs once config is loaded.
type Dependencies struct {
	Config *internal.Config
	Logger *slog.Logger
	KV     storage.KV

	// DB is set for the SQL drivers only, ping for Redis only.
	DB    *sqlx.DB
	ping  func(context.Context) error
	close func() error

	Bus         *events.EventBus
	Checker     *integrity.Checker
	Permissions *permission.Service
	Roles       *role.Service
	Users       *user.Service
	Integrity   *integrity.Service
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Environment, config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	deps := &Dependencies{Config: config, Logger: lg}
	if err := deps.openStorage(ctx); err != nil {
		return nil, err
	}

	permRepo := permissionKV.NewPermissionRepository(deps.KV, collection.WithLogger[permissionDatamodel.Permission](lg))
	roleRepo := roleKV.NewRoleRepository(deps.KV, collection.WithLogger[roleDatamodel.Role](lg))
	userRepo := userKV.NewUserRepository(deps.KV, collection.WithLogger[userDatamodel.User](lg))

	deps.Bus = events.NewEventBus(lg)
	deps.Checker = integrity.NewChecker(config.Integrity.Mode, lg)
	deps.Permissions = permission.NewService(permRepo, roleRepo, deps.Checker, deps.Bus, lg)
	deps.Roles = role.NewService(roleRepo, permRepo, userRepo, deps.Checker, lg)
	deps.Users = user.NewService(userRepo, roleRepo, deps.Checker, lg)
	deps.Integrity = integrity.NewService(userRepo, roleRepo, permRepo, lg)

	deps.Bus.Subscribe(events.EventTypePermissionRenamed, deps.Roles.HandlePermissionRenamed)

	return deps, nil
}

func (d *Dependencies) openStorage(ctx context.Context) error {
	cfg := d.Config.Storage

	var kv storage.KV
	switch {
	case cfg.IsSQL():
		db, err := gormstore.Open(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		store := gormstore.New(db, cfg.OpTimeout)
		if cfg.AutoMigrate {
			if err := store.Migrate(); err != nil {
				_ = sqlDB.Close()
				return fmt.Errorf("failed to migrate storage: %w", err)
			}
		}

		d.DB = sqlx.NewDb(sqlDB, sqlDriverName(cfg.Driver))
		d.close = sqlDB.Close
		kv = store
	case cfg.Driver == internal.StorageDriverRedis:
		client, err := redisstore.Connect(ctx, cfg.Source)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		store := redisstore.New(client, cfg.KeyPrefix)
		d.close = client.Close
		d.ping = store.Ping
		kv = store
	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	d.KV = storage.WithQuota(kv, cfg.QuotaBytes)
	d.Logger.Info("storage ready", "driver", cfg.Driver, "quota_bytes", cfg.QuotaBytes)
	return nil
}

// warmUp loads the three collections concurrently so the first request is
// served from memory. A collection that fails to load is logged and loaded
// again on first use.
func (d *Dependencies) warmUp(ctx context.Context) {
	loaders := map[string]func(context.Context) error{
		storage.KeyPermissions: func(ctx context.Context) error {
			_, err := d.Permissions.Load(ctx)
			return err
		},
		storage.KeyRoles: func(ctx context.Context) error {
			_, err := d.Roles.Load(ctx)
			return err
		},
		storage.KeyUsers: func(ctx context.Context) error {
			_, err := d.Users.Load(ctx)
			return err
		},
	}

	var g errgroup.Group
	for key, load := range loaders {
		g.Go(func() error {
			if err := load(ctx); err != nil {
				d.Logger.Error("collection warm-up failed", "collection", key, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dependencies) Close() {
	if d.close == nil {
		return
	}
	if err := d.close(); err != nil {
		d.Logger.Error("storage close error", "error", err)
	}
}

func sqlDriverName(driver string) string {
	if driver == internal.StorageDriverPostgres {
		return "pgx"
	}
	return "sqlite3"
}
