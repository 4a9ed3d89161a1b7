package permission

import "github.com/frahmantamala/access-admin/internal/core/common/validation"

// Validate checks a candidate permission and returns one message per
// invalid field.
func Validate(p *Permission) validation.Errors {
	v := validation.NewValidator()
	v.Field("permissionName", p.PermissionName).
		Required("Permission name is required.").
		MaxLength(MaxNameLength, "Permission name cannot exceed 100 characters.")
	v.Field("description", p.Description).
		Required("Description is required.").
		MaxLength(MaxDescriptionLength, "Description cannot exceed 500 characters.")
	return v.Errors()
}
