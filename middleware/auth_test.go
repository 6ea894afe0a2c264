// middleware/auth_test.go
package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhive/api/auth"
	"github.com/bookhive/api/config"
	bookhive_errors "github.com/bookhive/api/errors"
	logger "github.com/bookhive/api/logging"
	"github.com/bookhive/api/middleware"
	"github.com/bookhive/api/model"
	"github.com/bookhive/api/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLogger()
	defer logger.Sync()
	m.Run()
}

type fakeUserService struct {
	users map[string]*model.User // keyed by email
}

func (f *fakeUserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return nil, bookhive_errors.ErrUserNotFound
}

func (f *fakeUserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return nil, bookhive_errors.ErrUserNotFound
}

func (f *fakeUserService) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return nil, nil
}

func (f *fakeUserService) UpdateUser(ctx context.Context, userID string, update model.UserUpdate) (*model.User, error) {
	return nil, bookhive_errors.ErrUserNotFound
}

func newGuardFixture(t *testing.T, users ...*model.User) (*gin.Engine, *auth.Issuer, *middleware.RequirementTable) {
	t.Helper()

	issuer, err := auth.NewIssuer(auth.ClassAdmin, config.TokenClassConfiguration{
		Secret:     "test-secret",
		Issuer:     "bookhive-admin",
		Audience:   "bookhive-admin-api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)

	userService := &fakeUserService{users: make(map[string]*model.User)}
	for _, user := range users {
		userService.users[user.Email] = user
	}

	table := middleware.NewRequirementTable()

	router := gin.New()
	router.Use(middleware.Guard(issuer, userService, table, util.NewEventBus()))
	router.GET("/users/:id", func(c *gin.Context) {
		user, err := util.GetUserFromContext(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	return router, issuer, table
}

func adminUser() *model.User {
	return &model.User{
		ID:    "u1",
		Email: "admin@bookhive.dev",
		Roles: []model.Role{
			{Name: "admin", Permissions: []model.Permission{{Name: "read_user"}}},
		},
		Permissions: []model.Permission{{Name: "list_user"}},
	}
}

func doRequest(router *gin.Engine, target, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestGuardMissingToken(t *testing.T) {
	router, _, _ := newGuardFixture(t, adminUser())

	w := doRequest(router, "/ping", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestGuardEmptyBearerToken(t *testing.T) {
	router, _, _ := newGuardFixture(t, adminUser())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer ")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuardInvalidToken(t *testing.T) {
	router, _, _ := newGuardFixture(t, adminUser())

	w := doRequest(router, "/ping", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestGuardUnknownSubject(t *testing.T) {
	router, issuer, _ := newGuardFixture(t) // no users registered

	token, err := issuer.IssueAccess(&model.User{ID: "ghost", Email: "ghost@bookhive.dev"})
	require.NoError(t, err)

	// Same generic 401 as a bad signature: no oracle on which step failed
	w := doRequest(router, "/ping", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestGuardNoRequirementDeclared(t *testing.T) {
	user := adminUser()
	router, issuer, _ := newGuardFixture(t, user)

	token, err := issuer.IssueAccess(user)
	require.NoError(t, err)

	w := doRequest(router, "/ping", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardAttachesUser(t *testing.T) {
	user := adminUser()
	router, issuer, table := newGuardFixture(t, user)
	table.Register("GET", "/users/:id", middleware.Requirement{
		Roles:       []string{"admin", "superadmin"},
		Permissions: []string{"read_user"},
	})

	token, err := issuer.IssueAccess(user)
	require.NoError(t, err)

	w := doRequest(router, "/users/42", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1"}`, w.Body.String())
}

func TestGuardMissingRole(t *testing.T) {
	user := adminUser()
	user.Roles = []model.Role{{Name: "editor", Permissions: []model.Permission{{Name: "read_user"}}}}
	router, issuer, table := newGuardFixture(t, user)
	table.Register("GET", "/users/:id", middleware.Requirement{
		Roles: []string{"admin", "superadmin"},
	})

	token, err := issuer.IssueAccess(user)
	require.NoError(t, err)

	w := doRequest(router, "/users/42", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"missing required role"}`, w.Body.String())
}

func TestGuardAnyRoleSuffices(t *testing.T) {
	user := adminUser()
	user.Roles = []model.Role{{Name: "superadmin"}}
	router, issuer, table := newGuardFixture(t, user)
	table.Register("GET", "/users/:id", middleware.Requirement{
		Roles: []string{"admin", "superadmin"},
	})

	token, err := issuer.IssueAccess(user)
	require.NoError(t, err)

	w := doRequest(router, "/users/42", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardMissingPermission(t *testing.T) {
	user := adminUser()
	router, issuer, table := newGuardFixture(t, user)
	table.Register("GET", "/users/:id", middleware.Requirement{
		Permissions: []string{"read_user", "delete_user"},
	})

	token, err := issuer.IssueAccess(user)
	require.NoError(t, err)

	// All declared permissions are required; one missing denies
	w := doRequest(router, "/users/42", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"missing required permission"}`, w.Body.String())
}

func TestGuardBothAxesMustPass(t *testing.T) {
	user := adminUser()
	router, issuer, table := newGuardFixture(t, user)
	table.Register("GET", "/users/:id", middleware.Requirement{
		Roles:       []string{"superadmin"},
		Permissions: []string{"read_user"},
	})

	token, err := issuer.IssueAccess(user)
	require.NoError(t, err)

	w := doRequest(router, "/users/42", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirementTableLookup(t *testing.T) {
	table := middleware.NewRequirementTable()
	table.Register("GET", "/api/v1/users/:id", middleware.Requirement{Roles: []string{"admin"}})

	req, ok := table.Lookup("GET", "/api/v1/users/:id")
	assert.True(t, ok)
	assert.Equal(t, []string{"admin"}, req.Roles)

	_, ok = table.Lookup("DELETE", "/api/v1/users/:id")
	assert.False(t, ok)
}
