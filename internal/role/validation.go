package role

import "github.com/frahmantamala/access-admin/internal/core/common/validation"

func Validate(r *Role) validation.Errors {
	v := validation.NewValidator()
	v.Field("roleName", r.RoleName).
		NotBlank("Role name is required.")
	v.Field("permissions", r.Permissions).
		Rule("min=1", "At least one permission must be selected.")
	return v.Errors()
}
