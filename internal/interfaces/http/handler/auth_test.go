package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/crm/backend/internal/application/identity"
	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	infraauth "github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTenantRepo is an in-memory identity.TenantRepository keyed by code
type fakeTenantRepo struct {
	tenants map[string]*identity.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: make(map[string]*identity.Tenant)}
}

func (r *fakeTenantRepo) add(t *identity.Tenant) { r.tenants[t.Code] = t }

func (r *fakeTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.Tenant, error) {
	for _, t := range r.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTenantRepo) FindByCode(_ context.Context, code string) (*identity.Tenant, error) {
	if t, ok := r.tenants[code]; ok {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTenantRepo) FindByDomain(_ context.Context, _ string) (*identity.Tenant, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeTenantRepo) FindAll(_ context.Context, _ shared.Filter) ([]identity.Tenant, error) {
	return nil, nil
}

func (r *fakeTenantRepo) FindByStatus(_ context.Context, _ identity.TenantStatus, _ shared.Filter) ([]identity.Tenant, error) {
	return nil, nil
}

func (r *fakeTenantRepo) FindActive(_ context.Context, _ shared.Filter) ([]identity.Tenant, error) {
	return nil, nil
}

func (r *fakeTenantRepo) FindActiveSchemas(_ context.Context) ([]string, error) { return nil, nil }

func (r *fakeTenantRepo) FindUnprovisioned(_ context.Context) ([]identity.Tenant, error) {
	return nil, nil
}

func (r *fakeTenantRepo) Save(_ context.Context, t *identity.Tenant) error {
	r.tenants[t.Code] = t
	return nil
}

func (r *fakeTenantRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeTenantRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

func (r *fakeTenantRepo) CountByStatus(_ context.Context, _ identity.TenantStatus) (int64, error) {
	return 0, nil
}

func (r *fakeTenantRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, ok := r.tenants[code]
	return ok, nil
}

func (r *fakeTenantRepo) ExistsByDomain(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// fakeUserRepo is an in-memory identity.UserRepository
type fakeUserRepo struct {
	users map[uuid.UUID]*identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *fakeUserRepo) add(u *identity.User) { r.users[u.ID] = u }

func (r *fakeUserRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	if u, ok := r.users[id]; ok && u.TenantID == tenantID {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	for _, u := range r.users {
		if u.TenantID == tenantID && u.Username == username {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, _ uuid.UUID, _ string) (*identity.User, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindAll(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]identity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) FindByStatus(_ context.Context, _ uuid.UUID, _ identity.UserStatus, _ shared.Filter) ([]identity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) FindByDepartment(_ context.Context, _, _ uuid.UUID, _ shared.Filter) ([]identity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) FindByTeam(_ context.Context, _, _ uuid.UUID, _ shared.Filter) ([]identity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) FindByRole(_ context.Context, _, _ uuid.UUID, _ shared.Filter) ([]identity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *identity.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

func (r *fakeUserRepo) Count(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return 0, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

// fakeAuthRoleRepo is an in-memory identity.RoleRepository
type fakeAuthRoleRepo struct {
	roles map[uuid.UUID]*identity.Role
}

func newFakeAuthRoleRepo() *fakeAuthRoleRepo {
	return &fakeAuthRoleRepo{roles: make(map[uuid.UUID]*identity.Role)}
}

func (r *fakeAuthRoleRepo) add(role *identity.Role) { r.roles[role.ID] = role }

func (r *fakeAuthRoleRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*identity.Role, error) {
	if role, ok := r.roles[id]; ok && role.TenantID == tenantID {
		return role, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAuthRoleRepo) FindByCode(_ context.Context, _ uuid.UUID, _ string) (*identity.Role, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeAuthRoleRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]identity.Role, error) {
	var out []identity.Role
	for _, id := range ids {
		if role, ok := r.roles[id]; ok && role.TenantID == tenantID {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (r *fakeAuthRoleRepo) FindAll(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]identity.Role, error) {
	return nil, nil
}

func (r *fakeAuthRoleRepo) FindEnabled(_ context.Context, _ uuid.UUID) ([]identity.Role, error) {
	return nil, nil
}

func (r *fakeAuthRoleRepo) Save(_ context.Context, role *identity.Role) error {
	r.roles[role.ID] = role
	return nil
}

func (r *fakeAuthRoleRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

func (r *fakeAuthRoleRepo) Count(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return 0, nil
}

func (r *fakeAuthRoleRepo) ExistsByCode(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

// fakeAuditRepo discards audit entries
type fakeAuditRepo struct{}

func (fakeAuditRepo) Append(_ context.Context, _ *audit.Log) error { return nil }

func (fakeAuditRepo) FindByID(_ context.Context, _, _ uuid.UUID) (*audit.Log, error) {
	return nil, shared.ErrNotFound
}

func (fakeAuditRepo) Search(_ context.Context, _ uuid.UUID, _ audit.Query) ([]audit.Log, error) {
	return nil, nil
}

func (fakeAuditRepo) Count(_ context.Context, _ uuid.UUID, _ audit.Query) (int64, error) {
	return 0, nil
}

func (fakeAuditRepo) PurgeBefore(_ context.Context, _ uuid.UUID, _ time.Time) (int64, error) {
	return 0, nil
}

var (
	_ identity.TenantRepository = (*fakeTenantRepo)(nil)
	_ identity.UserRepository   = (*fakeUserRepo)(nil)
	_ identity.RoleRepository   = (*fakeAuthRoleRepo)(nil)
	_ audit.LogRepository       = fakeAuditRepo{}
)

func testJWTService() *infraauth.JWTService {
	return infraauth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-for-auth-tests",
		RefreshSecret:          "test-refresh-secret-for-auth-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "crm-backend-test",
		MaxRefreshCount:        5,
	})
}

type authFixture struct {
	handler   *AuthHandler
	service   *appidentity.AuthService
	blacklist *infraauth.InMemoryTokenBlacklist
	tenant    *identity.Tenant
	user      *identity.User
	jwt       *infraauth.JWTService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tenantRepo := newFakeTenantRepo()
	userRepo := newFakeUserRepo()
	roleRepo := newFakeAuthRoleRepo()
	blacklist := infraauth.NewInMemoryTokenBlacklist()
	jwtService := testJWTService()

	tenant, err := identity.NewTenant("acme", "Acme Inc")
	require.NoError(t, err)
	tenantRepo.add(tenant)

	role, err := identity.NewRole(tenant.ID, "SALES_REP", "Sales Representative")
	require.NoError(t, err)
	require.NoError(t, role.GrantPermissionByCode("crm.lead.read"))
	require.NoError(t, role.GrantPermissionByCode("crm.lead.write"))
	roleRepo.add(role)

	user, err := identity.NewActiveUser(tenant.ID, "alice", "CorrectHorse9!")
	require.NoError(t, err)
	user.RoleIDs = []uuid.UUID{role.ID}
	userRepo.add(user)

	service := appidentity.NewAuthService(
		tenantRepo, userRepo, roleRepo, fakeAuditRepo{},
		jwtService, blacklist,
		appidentity.DefaultAuthServiceConfig(), zap.NewNop())

	return &authFixture{
		handler:   NewAuthHandler(service),
		service:   service,
		blacklist: blacklist,
		tenant:    tenant,
		user:      user,
		jwt:       jwtService,
	}
}

func performLogin(t *testing.T, f *authFixture, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	f.handler.Login(c)
	return w
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Run("success returns token pair and user info", func(t *testing.T) {
		f := newAuthFixture(t)

		w := performLogin(t, f, map[string]string{
			"tenant_code": "acme",
			"username":    "alice",
			"password":    "CorrectHorse9!",
		})

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool          `json:"success"`
			Data    LoginResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data.Token.AccessToken)
		assert.NotEmpty(t, resp.Data.Token.RefreshToken)
		assert.Equal(t, "alice", resp.Data.User.Username)
		assert.Contains(t, resp.Data.User.Permissions, "crm.lead.read")
	})

	t.Run("wrong password returns unauthorized", func(t *testing.T) {
		f := newAuthFixture(t)

		w := performLogin(t, f, map[string]string{
			"tenant_code": "acme",
			"username":    "alice",
			"password":    "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
	})

	t.Run("unknown tenant returns unauthorized", func(t *testing.T) {
		f := newAuthFixture(t)

		w := performLogin(t, f, map[string]string{
			"tenant_code": "nonexistent",
			"username":    "alice",
			"password":    "CorrectHorse9!",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		f := newAuthFixture(t)

		w := performLogin(t, f, map[string]string{
			"username": "alice",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("repeated failures lock the account", func(t *testing.T) {
		f := newAuthFixture(t)

		for i := 0; i < 5; i++ {
			performLogin(t, f, map[string]string{
				"tenant_code": "acme",
				"username":    "alice",
				"password":    "wrong-password",
			})
		}

		w := performLogin(t, f, map[string]string{
			"tenant_code": "acme",
			"username":    "alice",
			"password":    "CorrectHorse9!",
		})

		assert.NotEqual(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ACCOUNT_LOCKED")
	})
}

func TestAuthHandlerRefreshToken(t *testing.T) {
	f := newAuthFixture(t)

	login, err := f.service.Login(context.Background(), appidentity.LoginInput{
		TenantCode: "acme",
		Username:   "alice",
		Password:   "CorrectHorse9!",
	})
	require.NoError(t, err)

	t.Run("valid refresh token issues new pair", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"refresh_token": login.RefreshToken})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(payload))
		c.Request.Header.Set("Content-Type", "application/json")

		f.handler.RefreshToken(c)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data RefreshTokenResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Data.Token.AccessToken)
	})

	t.Run("garbage refresh token rejected", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"refresh_token": "not-a-token"})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(payload))
		c.Request.Header.Set("Content-Type", "application/json")

		f.handler.RefreshToken(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandlerLogout(t *testing.T) {
	f := newAuthFixture(t)

	login, err := f.service.Login(context.Background(), appidentity.LoginInput{
		TenantCode: "acme",
		Username:   "alice",
		Password:   "CorrectHorse9!",
	})
	require.NoError(t, err)

	claims, err := f.jwt.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	c.Set(middleware.JWTClaimsKey, claims)

	f.handler.Logout(c)

	require.Equal(t, http.StatusOK, w.Code)

	blacklisted, err := f.blacklist.IsBlacklisted(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestAuthHandlerGetCurrentUser(t *testing.T) {
	f := newAuthFixture(t)

	login, err := f.service.Login(context.Background(), appidentity.LoginInput{
		TenantCode: "acme",
		Username:   "alice",
		Password:   "CorrectHorse9!",
	})
	require.NoError(t, err)

	claims, err := f.jwt.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)

	t.Run("returns profile and permissions", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		c.Set(middleware.JWTClaimsKey, claims)

		f.handler.GetCurrentUser(c)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data CurrentUserResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.Data.User.Username)
		assert.Contains(t, resp.Data.Permissions, "crm.lead.write")
	})

	t.Run("missing claims rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)

		f.handler.GetCurrentUser(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandlerChangePassword(t *testing.T) {
	f := newAuthFixture(t)

	login, err := f.service.Login(context.Background(), appidentity.LoginInput{
		TenantCode: "acme",
		Username:   "alice",
		Password:   "CorrectHorse9!",
	})
	require.NoError(t, err)

	claims, err := f.jwt.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)

	post := func(body map[string]string) *httptest.ResponseRecorder {
		payload, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/password", bytes.NewReader(payload))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set(middleware.JWTClaimsKey, claims)
		f.handler.ChangePassword(c)
		return w
	}

	t.Run("wrong old password rejected", func(t *testing.T) {
		w := post(map[string]string{
			"old_password": "wrong-password",
			"new_password": "EvenBetter10!",
		})
		assert.NotEqual(t, http.StatusOK, w.Code)
	})

	t.Run("success updates the stored credential", func(t *testing.T) {
		w := post(map[string]string{
			"old_password": "CorrectHorse9!",
			"new_password": "EvenBetter10!",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, f.user.VerifyPassword("EvenBetter10!"))
	})
}
