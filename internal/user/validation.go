package user

import "github.com/frahmantamala/access-admin/internal/core/common/validation"

func Validate(u *User) validation.Errors {
	v := validation.NewValidator()
	v.Field("name", u.Name).
		Required("Name is required.").
		MaxLength(MaxNameLength, "Name cannot exceed 200 characters.")
	v.Field("email", u.Email).
		Required("Email is required.").
		MaxLength(MaxEmailLength, "Email cannot exceed 200 characters.").
		Email("Enter a valid email address.")
	v.Field("role", u.Role).
		Required("Role is required.")
	return v.Errors()
}
