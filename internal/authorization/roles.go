package authorization

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
)

var validRoles = map[UserRole]struct{}{
	RoleAdmin:  {},
	RoleEditor: {},
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	_, ok := validRoles[r]
	return ok
}

func (r UserRole) Value() (driver.Value, error) {
	if r == "" {
		return string(RoleEditor), nil
	}
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid user role: %q", r)
	}
	return string(r), nil
}

func (r *UserRole) Scan(value interface{}) error {
	if value == nil {
		*r = RoleEditor
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported type for UserRole: %T", value)
	}

	role, ok := ParseUserRole(raw)
	if !ok {
		return fmt.Errorf("invalid user role: %q", raw)
	}
	*r = role
	return nil
}

type Permission string

const (
	PermissionManageContent    Permission = "manage_content"
	PermissionPublishContent   Permission = "publish_content"
	PermissionModerateComments Permission = "moderate_comments"
	PermissionManageInbox      Permission = "manage_inbox"
	PermissionViewStats        Permission = "view_stats"
)

var rolePermissions = map[UserRole]map[Permission]struct{}{
	RoleAdmin: {
		PermissionManageContent:    {},
		PermissionPublishContent:   {},
		PermissionModerateComments: {},
		PermissionManageInbox:      {},
		PermissionViewStats:        {},
	},
	RoleEditor: {
		PermissionManageContent:    {},
		PermissionModerateComments: {},
	},
}

func RoleHasPermission(role UserRole, permission Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[permission]
	return ok
}

func ParseUserRole(value interface{}) (UserRole, bool) {
	var raw string
	switch v := value.(type) {
	case UserRole:
		raw = string(v)
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return "", false
	}

	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", false
	}
	return role, true
}
