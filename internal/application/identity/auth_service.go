package identity

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	LockDuration time.Duration // How long a login lockout lasts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		LockDuration: 15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	tenantRepo identity.TenantRepository
	userRepo   identity.UserRepository
	roleRepo   identity.RoleRepository
	auditRepo  audit.LogRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	tenantRepo identity.TenantRepository,
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	auditRepo audit.LogRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		auditRepo:  auditRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Login authenticates a user within a tenant and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt",
		zap.String("tenant_code", input.TenantCode),
		zap.String("username", input.Username))

	tenant, err := s.tenantRepo.FindByCode(ctx, input.TenantCode)
	if err != nil {
		s.logger.Warn("Unknown tenant during login", zap.String("tenant_code", input.TenantCode))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}
	if !tenant.IsActive() {
		return nil, shared.NewDomainError("TENANT_INACTIVE", "Organization is not active")
	}
	if tenant.IsExpired() {
		return nil, shared.NewDomainError("TENANT_EXPIRED", "Organization subscription has expired")
	}

	user, err := s.userRepo.FindByUsername(ctx, tenant.ID, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if user.IsLocked() {
		s.logger.Warn("Login attempt for locked account", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
	}
	if !user.IsActive() {
		s.logger.Warn("Login attempt for inactive account",
			zap.String("username", input.Username),
			zap.String("status", string(user.Status)))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !user.VerifyPassword(input.Password) {
		user.RecordFailedLogin(s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		if user.IsLocked() {
			s.logger.Warn("Account locked after repeated failures",
				zap.String("username", input.Username),
				zap.Int("failed_attempts", user.FailedAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	permissions, err := s.collectUserPermissions(ctx, tenant.ID, user.RoleIDs)
	if err != nil {
		s.logger.Error("Failed to collect user permissions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user permissions")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:    user.TenantID,
		UserID:      user.ID,
		Username:    user.Username,
		RoleIDs:     user.RoleIDs,
		Permissions: permissions,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin(input.IP)
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Login still succeeds; only the bookkeeping failed
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.recordAuthEvent(ctx, audit.ActionLogin, user, input.IP, input.UserAgent)

	s.logger.Info("User logged in",
		zap.String("username", input.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		MustChangePassword:    user.MustChangePassword,
		User:                  s.toUserInfo(user, permissions),
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	refreshClaims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	tenantID, err := refreshClaims.GetTenantUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid tenant ID in token")
	}
	userID, err := refreshClaims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.IsActive() || user.IsLocked() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	permissions, err := s.collectUserPermissions(ctx, tenantID, user.RoleIDs)
	if err != nil {
		s.logger.Error("Failed to collect permissions during refresh", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user permissions")
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, permissions)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the current access token and records the event
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenID, input.TokenTTL); err != nil {
			s.logger.Error("Failed to blacklist token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
		}
	}

	user, err := s.userRepo.FindByID(ctx, input.TenantID, input.UserID)
	if err == nil {
		s.recordAuthEvent(ctx, audit.ActionLogout, user, input.IP, input.UserAgent)
	}

	s.logger.Info("User logged out",
		zap.String("user_id", input.UserID.String()),
		zap.String("tenant_id", input.TenantID.String()))

	return nil
}

// GetCurrentUser returns the authenticated user's profile and permissions
func (s *AuthService) GetCurrentUser(ctx context.Context, tenantID, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	permissions, err := s.collectUserPermissions(ctx, tenantID, user.RoleIDs)
	if err != nil {
		s.logger.Error("Failed to collect permissions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user permissions")
	}

	info := s.toUserInfo(user, permissions)
	return &info, nil
}

// ChangePassword changes the current user's password and invalidates
// previously issued tokens.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.TenantID, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), 0); err != nil {
		s.logger.Error("Failed to invalidate user tokens after password change", zap.Error(err))
	}

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))

	return nil
}

func (s *AuthService) collectUserPermissions(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID) ([]string, error) {
	if len(roleIDs) == 0 {
		return []string{}, nil
	}

	roles, err := s.roleRepo.FindByIDs(ctx, tenantID, roleIDs)
	if err != nil {
		return nil, err
	}

	permSet := make(map[string]struct{})
	for _, role := range roles {
		if !role.IsEnabled {
			continue
		}
		for _, perm := range role.Permissions {
			permSet[perm.Code] = struct{}{}
		}
	}

	permissions := make([]string, 0, len(permSet))
	for perm := range permSet {
		permissions = append(permissions, perm)
	}
	return permissions, nil
}

func (s *AuthService) recordAuthEvent(ctx context.Context, action audit.Action, user *identity.User, ip, userAgent string) {
	if s.auditRepo == nil {
		return
	}

	log, err := audit.NewLog(user.TenantID, action, string(action), "user", user.ID)
	if err != nil {
		s.logger.Error("Failed to build auth audit entry", zap.Error(err))
		return
	}
	log.WithActor(&user.ID).WithRequest(ip, userAgent)

	if err := s.auditRepo.Append(ctx, log); err != nil {
		s.logger.Error("Failed to record auth event",
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func (s *AuthService) toUserInfo(user *identity.User, permissions []string) UserInfo {
	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.Username
	}
	return UserInfo{
		ID:          user.ID,
		TenantID:    user.TenantID,
		Username:    user.Username,
		DisplayName: displayName,
		Email:       user.Email,
		Phone:       user.Phone,
		AvatarURL:   user.AvatarURL,
		RoleIDs:     user.RoleIDs,
		Permissions: permissions,
	}
}

func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case auth.ErrInvalidToken:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate token")
	}
}
