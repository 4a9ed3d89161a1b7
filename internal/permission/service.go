package permission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/core/common/validation"
	permissionDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/permission"
	"github.com/frahmantamala/access-admin/internal/core/events"
	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Load(ctx context.Context) ([]permissionDatamodel.Permission, error)
	All(ctx context.Context) ([]permissionDatamodel.Permission, error)
	Upsert(ctx context.Context, p permissionDatamodel.Permission) ([]permissionDatamodel.Permission, error)
	Remove(ctx context.Context, id string) ([]permissionDatamodel.Permission, error)
	Flush(ctx context.Context) error
}

type Service struct {
	repo      RepositoryAPI
	roles     integrity.RoleSource
	checker   *integrity.Checker
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, roles integrity.RoleSource, checker *integrity.Checker, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		roles:     roles,
		checker:   checker,
		publisher: publisher,
		logger:    logger,
	}
}

// Load rereads the permission collection from storage.
func (s *Service) Load(ctx context.Context) ([]*Permission, error) {
	items, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load permissions", "error", err)
	}
	return FromDataModels(items), err
}

func (s *Service) List(ctx context.Context) ([]*Permission, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, err
	}
	return FromDataModels(items), nil
}

func (s *Service) Validate(p *Permission) validation.Errors {
	return Validate(p)
}

// Save validates p and inserts or replaces it by id. Renaming a permission
// is announced so roles naming the old value follow it.
func (s *Service) Save(ctx context.Context, p *Permission) ([]*Permission, error) {
	if errs := Validate(p); !errs.Valid() {
		s.logger.Info("permission validation failed", "id", p.ID, "fields", len(errs))
		return nil, errs.ToAppError()
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.checker.Lock()
	defer s.checker.Unlock()

	existing, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to read permissions", "error", err)
		return nil, err
	}

	var previous *permissionDatamodel.Permission
	for i := range existing {
		current := existing[i]
		if current.ID.String() == p.ID {
			previous = &current
			continue
		}
		if current.PermissionName == p.PermissionName {
			return nil, internal.NewValidationFieldError("permissionName", "Permission name already exists.", internal.ErrCodeDuplicateName)
		}
	}

	items, saveErr := s.repo.Upsert(ctx, ToDataModel(p))
	if saveErr != nil && !internal.IsErrorType(saveErr, internal.ErrorTypePersistence) {
		s.logger.Error("failed to save permission", "error", saveErr, "id", p.ID)
		return nil, saveErr
	}

	if previous != nil && previous.PermissionName != p.PermissionName {
		s.logger.Info("permission renamed",
			"id", p.ID,
			"old_name", previous.PermissionName,
			"new_name", p.PermissionName)
		event := events.NewPermissionRenamedEvent(p.ID, previous.PermissionName, p.PermissionName)
		if err := s.publisher.PublishSync(ctx, event); err != nil {
			s.logger.Error("failed to propagate permission rename", "error", err, "id", p.ID)
			if saveErr == nil {
				saveErr = err
			}
		}
	}

	if saveErr == nil {
		s.logger.Info("permission saved", "id", p.ID, "name", p.PermissionName, "count", len(items))
	}
	return FromDataModels(items), saveErr
}

// Delete removes the permission with id. Deleting an unknown id leaves the
// collection untouched. A permission that roles still name is refused in
// block mode.
func (s *Service) Delete(ctx context.Context, id string) ([]*Permission, error) {
	s.checker.Lock()
	defer s.checker.Unlock()

	existing, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to read permissions", "error", err)
		return nil, err
	}

	var target *permissionDatamodel.Permission
	for i := range existing {
		if existing[i].ID.String() == id {
			target = &existing[i]
			break
		}
	}
	if target == nil {
		return FromDataModels(existing), nil
	}

	roles, err := s.roles.All(ctx)
	if err != nil {
		s.logger.Error("failed to read roles", "error", err)
		return nil, err
	}
	refs := integrity.RolesUsingPermission(target.PermissionName, roles)
	message := fmt.Sprintf("Permission %q is still assigned to %d role(s).", target.PermissionName, len(refs))
	if err := s.checker.Enforce(refs, message, internal.ErrCodeReferencedByOthers); err != nil {
		return nil, err
	}

	items, err := s.repo.Remove(ctx, id)
	if err == nil {
		s.logger.Info("permission deleted", "id", id, "name", target.PermissionName)
	}
	return FromDataModels(items), err
}

func (s *Service) Table(ctx context.Context) (transport.Table, error) {
	items, err := s.List(ctx)
	if err != nil {
		return transport.Table{}, err
	}
	return transport.RenderTable(Columns(), items, func(p *Permission) string { return p.ID }), nil
}

// Flush retries a write that failed earlier.
func (s *Service) Flush(ctx context.Context) error {
	return s.repo.Flush(ctx)
}
