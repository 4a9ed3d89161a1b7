package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/core/collection"
	"github.com/frahmantamala/access-admin/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Load(ctx context.Context) ([]userDatamodel.User, error)
	All(ctx context.Context) ([]userDatamodel.User, error)
	Upsert(ctx context.Context, u userDatamodel.User) ([]userDatamodel.User, error)
	Remove(ctx context.Context, id string) ([]userDatamodel.User, error)
	Update(ctx context.Context, id string, fn func(userDatamodel.User) (userDatamodel.User, error)) ([]userDatamodel.User, error)
	Flush(ctx context.Context) error
}

type Service struct {
	repo    RepositoryAPI
	roles   integrity.RoleSource
	checker *integrity.Checker
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, roles integrity.RoleSource, checker *integrity.Checker, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		roles:   roles,
		checker: checker,
		logger:  logger,
	}
}

// Load rereads the user collection from storage.
func (s *Service) Load(ctx context.Context) ([]*User, error) {
	items, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load users", "error", err)
	}
	return FromDataModels(items), err
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return FromDataModels(items), nil
}

// Find returns the user with id, or nil when there is none.
func (s *Service) Find(ctx context.Context, id string) (*User, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to read users", "error", err)
		return nil, err
	}
	for _, u := range items {
		if u.ID.String() == id {
			return FromDataModel(u), nil
		}
	}
	return nil, nil
}

func (s *Service) Validate(u *User) validation.Errors {
	return Validate(u)
}

// Save validates u, checks that its role exists and inserts or replaces it
// by id.
func (s *Service) Save(ctx context.Context, u *User) ([]*User, error) {
	if errs := Validate(u); !errs.Valid() {
		s.logger.Info("user validation failed", "id", u.ID, "fields", len(errs))
		return nil, errs.ToAppError()
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	s.checker.Lock()
	defer s.checker.Unlock()

	roles, err := s.roles.All(ctx)
	if err != nil {
		s.logger.Error("failed to read roles", "error", err)
		return nil, err
	}

	candidate := ToDataModel(u)
	refs := integrity.UserRole(candidate, roles)
	message := fmt.Sprintf("Role %q does not exist.", u.Role)
	if err := s.checker.Enforce(refs, message, internal.ErrCodeDanglingReference); err != nil {
		return nil, err
	}

	items, err := s.repo.Upsert(ctx, candidate)
	if err != nil {
		s.logger.Error("failed to save user", "error", err, "id", u.ID)
	} else {
		s.logger.Info("user saved", "id", u.ID, "role", u.Role)
	}
	return FromDataModels(items), err
}

// Delete removes the user with id. Deleting an unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) ([]*User, error) {
	items, err := s.repo.Remove(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete user", "error", err, "id", id)
	}
	return FromDataModels(items), err
}

// ToggleStatus flips the user's active flag and persists at once.
func (s *Service) ToggleStatus(ctx context.Context, id string) ([]*User, error) {
	var toggled *User
	items, err := s.repo.Update(ctx, id, func(u userDatamodel.User) (userDatamodel.User, error) {
		u.Status = !u.Status
		toggled = FromDataModel(u)
		return u, nil
	})
	if errors.Is(err, collection.ErrNotFound) {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("failed to toggle user status", "error", err, "id", id)
		if !internal.IsErrorType(err, internal.ErrorTypePersistence) {
			return nil, err
		}
	}
	if toggled != nil {
		s.logger.Info("user status toggled", "id", id, "active", toggled.IsActiveUser())
	}
	return FromDataModels(items), err
}

func (s *Service) Table(ctx context.Context) (transport.Table, error) {
	items, err := s.List(ctx)
	if err != nil {
		return transport.Table{}, err
	}
	roles, err := s.roles.All(ctx)
	if err != nil {
		s.logger.Error("failed to read roles", "error", err)
		return transport.Table{}, err
	}

	names := make(map[string]string, len(roles))
	for _, r := range roles {
		names[r.ID.String()] = r.RoleName
	}
	roleName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}

	return transport.RenderTable(Columns(roleName), items, func(u *User) string { return u.ID }), nil
}

// Flush retries a write that failed earlier.
func (s *Service) Flush(ctx context.Context) error {
	return s.repo.Flush(ctx)
}
