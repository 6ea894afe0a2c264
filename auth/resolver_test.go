// auth/resolver_test.go
package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookhive/api/auth"
	"github.com/bookhive/api/model"
)

func permissions(names ...string) []model.Permission {
	out := make([]model.Permission, len(names))
	for i, name := range names {
		out[i] = model.Permission{ID: name, Name: name}
	}
	return out
}

func TestResolveUnion(t *testing.T) {
	user := &model.User{
		ID:          "u1",
		Permissions: permissions("read_user"),
		Roles: []model.Role{
			{Name: "editor", Permissions: permissions("update_user")},
		},
	}

	resolved := auth.Resolve(user)
	assert.Equal(t, map[string]struct{}{
		"read_user":   {},
		"update_user": {},
	}, resolved)
}

func TestResolveDeduplicatesAcrossSources(t *testing.T) {
	user := &model.User{
		Permissions: permissions("read_user", "read_user"),
		Roles: []model.Role{
			{Name: "viewer", Permissions: permissions("read_user")},
			{Name: "editor", Permissions: permissions("read_user", "update_user")},
		},
	}

	resolved := auth.Resolve(user)
	assert.Len(t, resolved, 2)
}

func TestResolveOrderIndependent(t *testing.T) {
	a := &model.User{
		Permissions: permissions("p1", "p2"),
		Roles: []model.Role{
			{Name: "r1", Permissions: permissions("p3")},
			{Name: "r2", Permissions: permissions("p4")},
		},
	}
	b := &model.User{
		Permissions: permissions("p2", "p1"),
		Roles: []model.Role{
			{Name: "r2", Permissions: permissions("p4")},
			{Name: "r1", Permissions: permissions("p3")},
		},
	}

	assert.Equal(t, auth.Resolve(a), auth.Resolve(b))
}

func TestResolveNoRolesNoPermissions(t *testing.T) {
	assert.Empty(t, auth.Resolve(&model.User{ID: "u1"}))
}

func TestHasAllEmptyRequired(t *testing.T) {
	assert.True(t, auth.HasAll(&model.User{}, nil))
	assert.True(t, auth.HasAll(&model.User{}, []string{}))
}

func TestHasAll(t *testing.T) {
	user := &model.User{
		Permissions: permissions("read_user"),
		Roles: []model.Role{
			{Name: "editor", Permissions: permissions("update_user")},
		},
	}

	assert.True(t, auth.HasAll(user, []string{"read_user"}))
	assert.True(t, auth.HasAll(user, []string{"read_user", "update_user"}))
	assert.False(t, auth.HasAll(user, []string{"delete_user"}))
	assert.False(t, auth.HasAll(user, []string{"read_user", "delete_user"}))
}

func TestHasAnyRole(t *testing.T) {
	user := &model.User{
		Roles: []model.Role{{Name: "editor"}},
	}

	assert.True(t, auth.HasAnyRole(user, nil))
	assert.True(t, auth.HasAnyRole(user, []string{"admin", "editor"}))
	assert.False(t, auth.HasAnyRole(user, []string{"admin", "superadmin"}))
}
