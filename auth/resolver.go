// auth/resolver.go
package auth

import "github.com/bookhive/api/model"

// Resolve returns the user's effective permission set: the union of direct
// permissions and the permissions of every role the user holds. The result
// is a set, so it is deduplicated and independent of input ordering. Pure
// in-memory computation; the user's roles and permissions must already be
// loaded.
func Resolve(user *model.User) map[string]struct{} {
	permissions := make(map[string]struct{})
	for _, p := range user.Permissions {
		permissions[p.Name] = struct{}{}
	}
	for _, role := range user.Roles {
		for _, p := range role.Permissions {
			permissions[p.Name] = struct{}{}
		}
	}
	return permissions
}

// HasAll reports whether the user's effective permission set contains every
// required permission. An empty required list is always satisfied.
func HasAll(user *model.User, required []string) bool {
	if len(required) == 0 {
		return true
	}
	permissions := Resolve(user)
	for _, name := range required {
		if _, ok := permissions[name]; !ok {
			return false
		}
	}
	return true
}

// HasAnyRole reports whether the user holds at least one of the required
// roles. An empty required list is always satisfied.
func HasAnyRole(user *model.User, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, role := range user.Roles {
		for _, name := range required {
			if role.Name == name {
				return true
			}
		}
	}
	return false
}
