package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/access-admin/internal/permission"
	"github.com/frahmantamala/access-admin/internal/role"
	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/frahmantamala/access-admin/internal/user"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the collections with sample data",
	Long:  `Seed permissions, roles and users with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		deps, err := initializeDependencies(ctx)
		if err != nil {
			log.Fatalf("failed to initialize: %v", err)
		}
		defer deps.Close()

		if clearData {
			for _, key := range []string{storage.KeyUsers, storage.KeyRoles, storage.KeyPermissions} {
				if err := deps.KV.Delete(ctx, key); err != nil {
					log.Fatalf("failed to clear %s: %v", key, err)
				}
			}
			fmt.Println("Cleared existing collections")
		}

		if err := seed(ctx, deps); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

var seedPermissions = []struct {
	Name string
	Desc string
}{
	{"READ_USERS", "Can view users"},
	{"WRITE_USERS", "Can create and edit users"},
	{"READ_ROLES", "Can view roles"},
	{"WRITE_ROLES", "Can create and edit roles"},
	{"MANAGE_PERMISSIONS", "Can create and edit permissions"},
}

var seedRoles = []struct {
	Name        string
	Permissions []string
}{
	{"Administrator", []string{"READ_USERS", "WRITE_USERS", "READ_ROLES", "WRITE_ROLES", "MANAGE_PERMISSIONS"}},
	{"Viewer", []string{"READ_USERS", "READ_ROLES"}},
}

var seedUsers = []struct {
	Name  string
	Email string
	Role  string
}{
	{"Padil Admin", "padil@mail.com", "Administrator"},
	{"Fadhil", "fadhil@mail.com", "Viewer"},
}

// seed saves missing sample records through the services so validation and
// reference checks apply. Records matched by name are left alone.
func seed(ctx context.Context, deps *Dependencies) error {
	perms, err := deps.Permissions.Load(ctx)
	if err != nil {
		return err
	}
	existingPerms := make(map[string]bool, len(perms))
	for _, p := range perms {
		existingPerms[p.PermissionName] = true
	}
	for _, p := range seedPermissions {
		if existingPerms[p.Name] {
			fmt.Println("permission already exists:", p.Name)
			continue
		}
		if _, err := deps.Permissions.Save(ctx, permission.NewPermission(p.Name, p.Desc)); err != nil {
			return fmt.Errorf("permission %s: %w", p.Name, err)
		}
		fmt.Println("Seeded permission:", p.Name)
	}

	roles, err := deps.Roles.Load(ctx)
	if err != nil {
		return err
	}
	roleIDs := make(map[string]string, len(roles))
	for _, r := range roles {
		roleIDs[r.RoleName] = r.ID
	}
	for _, r := range seedRoles {
		if _, ok := roleIDs[r.Name]; ok {
			fmt.Println("role already exists:", r.Name)
			continue
		}
		created := role.NewRole(r.Name, r.Permissions...)
		if _, err := deps.Roles.Save(ctx, created); err != nil {
			return fmt.Errorf("role %s: %w", r.Name, err)
		}
		roleIDs[r.Name] = created.ID
		fmt.Println("Seeded role:", r.Name)
	}

	users, err := deps.Users.Load(ctx)
	if err != nil {
		return err
	}
	existingUsers := make(map[string]bool, len(users))
	for _, u := range users {
		existingUsers[u.Email] = true
	}
	for _, u := range seedUsers {
		if existingUsers[u.Email] {
			fmt.Println("user already exists:", u.Email)
			continue
		}
		if _, err := deps.Users.Save(ctx, user.NewUser(u.Name, u.Email, roleIDs[u.Role])); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		fmt.Println("Seeded user:", u.Email)
	}

	return nil
}
