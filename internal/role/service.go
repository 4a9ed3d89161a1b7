package role

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/core/common/validation"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/access-admin/internal/core/events"
	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Load(ctx context.Context) ([]roleDatamodel.Role, error)
	All(ctx context.Context) ([]roleDatamodel.Role, error)
	Upsert(ctx context.Context, r roleDatamodel.Role) ([]roleDatamodel.Role, error)
	Remove(ctx context.Context, id string) ([]roleDatamodel.Role, error)
	UpdateWhere(ctx context.Context, fn func(roleDatamodel.Role) (roleDatamodel.Role, bool)) ([]roleDatamodel.Role, int, error)
	Flush(ctx context.Context) error
}

type Service struct {
	repo        RepositoryAPI
	permissions integrity.PermissionSource
	users       integrity.UserSource
	checker     *integrity.Checker
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, permissions integrity.PermissionSource, users integrity.UserSource, checker *integrity.Checker, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		permissions: permissions,
		users:       users,
		checker:     checker,
		logger:      logger,
	}
}

// Load rereads the role collection from storage.
func (s *Service) Load(ctx context.Context) ([]*Role, error) {
	items, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load roles", "error", err)
	}
	return FromDataModels(items), err
}

func (s *Service) List(ctx context.Context) ([]*Role, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, err
	}
	return FromDataModels(items), nil
}

func (s *Service) Validate(r *Role) validation.Errors {
	return Validate(r)
}

// Save validates r, checks that every permission it names exists and
// inserts or replaces it by id.
func (s *Service) Save(ctx context.Context, r *Role) ([]*Role, error) {
	if errs := Validate(r); !errs.Valid() {
		s.logger.Info("role validation failed", "id", r.ID, "fields", len(errs))
		return nil, errs.ToAppError()
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Permissions = normalizePermissions(r.Permissions)

	s.checker.Lock()
	defer s.checker.Unlock()

	permissions, err := s.permissions.All(ctx)
	if err != nil {
		s.logger.Error("failed to read permissions", "error", err)
		return nil, err
	}

	candidate := ToDataModel(r)
	refs := integrity.RolePermissions(candidate, permissions)
	if len(refs) > 0 {
		missing := make([]string, len(refs))
		for i, ref := range refs {
			missing[i] = ref.Target
		}
		message := fmt.Sprintf("Role %q names permissions that do not exist: %s.", r.RoleName, strings.Join(missing, ", "))
		if err := s.checker.Enforce(refs, message, internal.ErrCodeDanglingReference); err != nil {
			return nil, err
		}
	}

	items, err := s.repo.Upsert(ctx, candidate)
	if err != nil {
		s.logger.Error("failed to save role", "error", err, "id", r.ID)
	} else {
		s.logger.Info("role saved", "id", r.ID, "name", r.RoleName, "permissions", len(r.Permissions))
	}
	return FromDataModels(items), err
}

// Delete removes the role with id. Deleting an unknown id leaves the
// collection untouched. A role still assigned to users is refused in block
// mode.
func (s *Service) Delete(ctx context.Context, id string) ([]*Role, error) {
	s.checker.Lock()
	defer s.checker.Unlock()

	existing, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to read roles", "error", err)
		return nil, err
	}

	var target *roleDatamodel.Role
	for i := range existing {
		if existing[i].ID.String() == id {
			target = &existing[i]
			break
		}
	}
	if target == nil {
		return FromDataModels(existing), nil
	}

	users, err := s.users.All(ctx)
	if err != nil {
		s.logger.Error("failed to read users", "error", err)
		return nil, err
	}
	refs := integrity.UsersAssignedRole(id, users)
	message := fmt.Sprintf("Role %q is still assigned to %d user(s).", target.RoleName, len(refs))
	if err := s.checker.Enforce(refs, message, internal.ErrCodeReferencedByOthers); err != nil {
		return nil, err
	}

	items, err := s.repo.Remove(ctx, id)
	if err == nil {
		s.logger.Info("role deleted", "id", id, "name", target.RoleName)
	}
	return FromDataModels(items), err
}

// HandlePermissionRenamed replaces the old permission name with the new one
// in every role that names it.
func (s *Service) HandlePermissionRenamed(ctx context.Context, event events.Event) error {
	renamed, ok := event.(*events.PermissionRenamedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	_, changed, err := s.repo.UpdateWhere(ctx, func(r roleDatamodel.Role) (roleDatamodel.Role, bool) {
		hit := false
		next := make([]string, len(r.Permissions))
		for i, p := range r.Permissions {
			if p == renamed.OldName {
				p = renamed.NewName
				hit = true
			}
			next[i] = p
		}
		if !hit {
			return r, false
		}
		r.Permissions = normalizePermissions(next)
		return r, true
	})
	if err != nil {
		s.logger.Error("failed to apply permission rename to roles", "error", err,
			"old_name", renamed.OldName, "new_name", renamed.NewName)
		return err
	}

	s.logger.Info("permission rename applied to roles",
		"old_name", renamed.OldName,
		"new_name", renamed.NewName,
		"roles", changed)
	return nil
}

func (s *Service) Table(ctx context.Context) (transport.Table, error) {
	items, err := s.List(ctx)
	if err != nil {
		return transport.Table{}, err
	}
	return transport.RenderTable(Columns(), items, func(r *Role) string { return r.ID }), nil
}

// Flush retries a write that failed earlier.
func (s *Service) Flush(ctx context.Context) error {
	return s.repo.Flush(ctx)
}
