package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/permission"
	"github.com/frahmantamala/access-admin/internal/role"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/frahmantamala/access-admin/internal/transport/openapi"
	"github.com/frahmantamala/access-admin/internal/transport/rest"
	"github.com/frahmantamala/access-admin/internal/user"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	ctx := context.Background()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	if _, err := openapi.Load(ctx); err != nil {
		deps.Logger.Error("API description is invalid", "error", err)
		os.Exit(1)
	}

	deps.warmUp(ctx)

	router := setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "integrity_mode", deps.Checker.Mode())

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		flushAll(ctx, deps)
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) *chi.Mux {
	base := transport.NewBaseHandler(deps.Logger)
	router := chi.NewRouter()

	health := rest.NewHealthHandler(deps.KV, deps.DB)
	if deps.ping != nil {
		health.WithProbe("redis", deps.ping)
	}

	rest.RegisterAllRoutes(router, deps.Config.Server, deps.Config.Environment, rest.Handlers{
		Health:      health,
		Users:       user.NewHandler(base, deps.Users),
		Roles:       role.NewHandler(base, deps.Roles),
		Permissions: permission.NewHandler(base, deps.Permissions),
		Integrity:   integrity.NewHandler(base, deps.Integrity),
	}, deps.Logger)

	return router
}

// flushAll retries writes that failed while serving, so edits kept in memory
// after a storage error are not lost on shutdown.
func flushAll(ctx context.Context, deps *Dependencies) {
	for name, flush := range map[string]func(context.Context) error{
		"permissions": deps.Permissions.Flush,
		"roles":       deps.Roles.Flush,
		"users":       deps.Users.Flush,
	} {
		if err := flush(ctx); err != nil {
			deps.Logger.Error("unsaved changes lost on shutdown", "collection", name, "error", err)
		}
	}
}
