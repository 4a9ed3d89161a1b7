// Package integrity finds references between users, roles and permissions
// that point at records which do not exist, and decides whether a save or
// delete that would create one may proceed.
package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/frahmantamala/access-admin/internal"
	permissionDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/user"
	pkglogger "github.com/frahmantamala/access-admin/pkg/logger"
)

const (
	KindRolePermission = "role_permission"
	KindUserRole       = "user_role"
)

// Reference is one link from a source record to a target it names.
type Reference struct {
	Kind       string `json:"kind"`
	SourceID   string `json:"sourceId"`
	SourceName string `json:"sourceName"`
	Field      string `json:"field"`
	Target     string `json:"target"`
}

func (r Reference) String() string {
	return fmt.Sprintf("%s %q (%s) -> %q", r.Kind, r.SourceName, r.SourceID, r.Target)
}

type Details struct {
	References []Reference `json:"references"`
}

type PermissionSource interface {
	All(ctx context.Context) ([]permissionDatamodel.Permission, error)
}

type RoleSource interface {
	All(ctx context.Context) ([]roleDatamodel.Role, error)
}

type UserSource interface {
	All(ctx context.Context) ([]userDatamodel.User, error)
}

// RolePermissions returns the references from role to permission names that
// are not in permissions.
func RolePermissions(role roleDatamodel.Role, permissions []permissionDatamodel.Permission) []Reference {
	known := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		known[p.PermissionName] = struct{}{}
	}

	var refs []Reference
	for _, name := range role.Permissions {
		if _, ok := known[name]; ok {
			continue
		}
		refs = append(refs, Reference{
			Kind:       KindRolePermission,
			SourceID:   role.ID.String(),
			SourceName: role.RoleName,
			Field:      "permissions",
			Target:     name,
		})
	}
	return refs
}

// UserRole returns the reference from user to its role when no role has
// that id. A user without a role has no reference.
func UserRole(user userDatamodel.User, roles []roleDatamodel.Role) []Reference {
	if user.Role == "" {
		return nil
	}
	for _, r := range roles {
		if r.ID.String() == user.Role {
			return nil
		}
	}
	return []Reference{{
		Kind:       KindUserRole,
		SourceID:   user.ID.String(),
		SourceName: user.Name,
		Field:      "role",
		Target:     user.Role,
	}}
}

// RolesUsingPermission lists the references roles hold to a permission name.
func RolesUsingPermission(name string, roles []roleDatamodel.Role) []Reference {
	var refs []Reference
	for _, r := range roles {
		for _, p := range r.Permissions {
			if p == name {
				refs = append(refs, Reference{
					Kind:       KindRolePermission,
					SourceID:   r.ID.String(),
					SourceName: r.RoleName,
					Field:      "permissions",
					Target:     name,
				})
				break
			}
		}
	}
	return refs
}

// UsersAssignedRole lists the references users hold to a role id.
func UsersAssignedRole(roleID string, users []userDatamodel.User) []Reference {
	var refs []Reference
	for _, u := range users {
		if u.Role == roleID {
			refs = append(refs, Reference{
				Kind:       KindUserRole,
				SourceID:   u.ID.String(),
				SourceName: u.Name,
				Field:      "role",
				Target:     roleID,
			})
		}
	}
	return refs
}

type Report struct {
	Consistent bool        `json:"consistent"`
	Dangling   []Reference `json:"dangling"`
}

// Scan checks every stored reference.
func Scan(users []userDatamodel.User, roles []roleDatamodel.Role, permissions []permissionDatamodel.Permission) Report {
	dangling := make([]Reference, 0)
	for _, r := range roles {
		dangling = append(dangling, RolePermissions(r, permissions)...)
	}
	for _, u := range users {
		dangling = append(dangling, UserRole(u, roles)...)
	}
	return Report{Consistent: len(dangling) == 0, Dangling: dangling}
}

// Checker applies the configured integrity mode. Its lock is shared by every
// service that reads one collection to decide a write to another, so a check
// and the write it allows happen without another check-and-write between them.
type Checker struct {
	mu     sync.Mutex
	mode   string
	logger *slog.Logger
}

func NewChecker(mode string, logger *slog.Logger) *Checker {
	if mode == "" {
		mode = internal.IntegrityModeBlock
	}
	if logger == nil {
		logger = pkglogger.LoggerWrapper()
	}
	return &Checker{mode: mode, logger: logger}
}

// Lock is held from the first reference read until the guarded write has
// been made. Event handlers run under the publisher's lock and must not take
// it again.
func (c *Checker) Lock() {
	c.mu.Lock()
}

func (c *Checker) Unlock() {
	c.mu.Unlock()
}

func (c *Checker) Mode() string {
	return c.mode
}

// Enforce returns a reference integrity error describing refs in block
// mode. In warn mode it logs refs and returns nil.
func (c *Checker) Enforce(refs []Reference, message string, code internal.ErrorCode) error {
	if len(refs) == 0 {
		return nil
	}

	if c.mode == internal.IntegrityModeWarn {
		targets := make([]string, len(refs))
		for i, r := range refs {
			targets[i] = r.String()
		}
		c.logger.Warn("reference integrity violation allowed",
			"message", message,
			"code", code,
			"references", strings.Join(targets, "; "))
		return nil
	}

	return internal.NewReferenceIntegrityError(message, code).
		WithDetails(Details{References: refs})
}
