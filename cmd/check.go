package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	permissionDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/spf13/cobra"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Scan stored collections for dangling references",
	Long: `Report roles listing permissions that do not exist and users assigned to roles that do not exist.

The stored documents are read as they are. Nothing is written back, so records
without an id are reported but not repaired.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		deps, err := initializeDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		report, err := scanStored(ctx, deps)
		if err != nil {
			return fmt.Errorf("integrity scan: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}

		for _, ref := range report.Dangling {
			deps.Logger.Warn("dangling reference", "reference", ref.String())
		}
		if checkStrict && !report.Consistent {
			return fmt.Errorf("%d dangling references", len(report.Dangling))
		}
		return nil
	},
}

// scanStored runs the integrity scan over the raw stored documents. It does
// not go through the collection stores, which backfill ids and persist.
func scanStored(ctx context.Context, deps *Dependencies) (integrity.Report, error) {
	dump, err := exportCollections(ctx, deps)
	if err != nil {
		return integrity.Report{}, err
	}

	var (
		users       []userDatamodel.User
		roles       []roleDatamodel.Role
		permissions []permissionDatamodel.Permission
	)
	for key, dst := range map[string]interface{}{
		storage.KeyUsers:       &users,
		storage.KeyRoles:       &roles,
		storage.KeyPermissions: &permissions,
	} {
		if err := json.Unmarshal(dump[key], dst); err != nil {
			return integrity.Report{}, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return integrity.Scan(users, roles, permissions), nil
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit non-zero when a dangling reference is found")
}
