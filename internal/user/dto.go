package user

import "github.com/frahmantamala/access-admin/internal/transport"

type SaveUserRequest struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status *bool  `json:"status,omitempty"`
}

// ToUser builds the candidate. A non-empty id overrides the body id and a
// missing status defaults to active, as for a new user.
func (r SaveUserRequest) ToUser(id string) *User {
	if id == "" {
		id = r.ID
	}
	status := true
	if r.Status != nil {
		status = *r.Status
	}
	return &User{
		ID:     id,
		Name:   r.Name,
		Email:  r.Email,
		Role:   r.Role,
		Status: status,
	}
}

// Columns are the user table columns. roleName resolves a role id to the
// name shown in the Role column.
func Columns(roleName func(id string) string) []transport.Column[*User] {
	return []transport.Column[*User]{
		{Header: "User Name", Accessor: "name", Value: func(u *User) interface{} { return u.Name }},
		{Header: "Email", Accessor: "email", Value: func(u *User) interface{} { return u.Email }},
		{Header: "Role", Accessor: "role", Value: func(u *User) interface{} { return roleName(u.Role) }},
		{Header: "Status", Accessor: "status", Value: func(u *User) interface{} { return u.Status }},
	}
}
