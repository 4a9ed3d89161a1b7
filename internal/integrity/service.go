package integrity

import (
	"context"
	"log/slog"
)

type Service struct {
	users       UserSource
	roles       RoleSource
	permissions PermissionSource
	logger      *slog.Logger
}

func NewService(users UserSource, roles RoleSource, permissions PermissionSource, logger *slog.Logger) *Service {
	return &Service{
		users:       users,
		roles:       roles,
		permissions: permissions,
		logger:      logger,
	}
}

// Report scans the three collections for dangling references.
func (s *Service) Report(ctx context.Context) (Report, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		s.logger.Error("failed to read users for integrity scan", "error", err)
		return Report{}, err
	}
	roles, err := s.roles.All(ctx)
	if err != nil {
		s.logger.Error("failed to read roles for integrity scan", "error", err)
		return Report{}, err
	}
	permissions, err := s.permissions.All(ctx)
	if err != nil {
		s.logger.Error("failed to read permissions for integrity scan", "error", err)
		return Report{}, err
	}

	report := Scan(users, roles, permissions)
	if !report.Consistent {
		s.logger.Warn("dangling references found", "count", len(report.Dangling))
	}
	return report, nil
}
