// service/auth_service.go
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookhive/api/audit"
	"github.com/bookhive/api/auth"
	bookhive_errors "github.com/bookhive/api/errors"
	logger "github.com/bookhive/api/logging"
	"github.com/bookhive/api/model"
	"github.com/bookhive/api/util"
)

// IAuthService defines the interface for the token lifecycle operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (*model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

// UserStore is the slice of the user DAO the auth service needs: fresh,
// uncached reads that include the password hash.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthService implements login, token refresh and logout for one token
// class. Token and session errors never leave this layer as anything other
// than the sentinel errors the controllers map to 401.
type AuthService struct {
	userDAO  UserStore
	issuer   *auth.Issuer
	sessions *auth.SessionStore
	eventBus *util.EventBus
}

var _ IAuthService = &AuthService{}

// NewAuthService creates a new instance of AuthService and wires the audit
// trail: auth events are published on the bus and indexed asynchronously.
func NewAuthService(userDAO UserStore, issuer *auth.Issuer, sessions *auth.SessionStore, auditService audit.Service, eventBus *util.EventBus) *AuthService {
	service := &AuthService{
		userDAO:  userDAO,
		issuer:   issuer,
		sessions: sessions,
		eventBus: eventBus,
	}

	eventBus.Subscribe("auth.audit", func(ctx context.Context, event util.Event) error {
		authEvent, ok := event.Payload.(audit.AuthEvent)
		if !ok {
			return nil
		}
		return auditService.LogEvent(context.WithoutCancel(ctx), authEvent)
	})

	return service
}

// Login verifies the credentials, starts a fresh refresh session
// (invalidating any previous one for the same user) and issues a token
// pair. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.TokenPair, error) {
	user, err := s.userDAO.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, bookhive_errors.ErrUserNotFound) {
			s.publishAudit(ctx, audit.AuthEvent{Email: email, Action: audit.EventLoginFailure, Reason: "unknown email"})
			return nil, bookhive_errors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.publishAudit(ctx, audit.AuthEvent{UserID: user.ID, Email: email, Action: audit.EventLoginFailure, Reason: "wrong password"})
		return nil, bookhive_errors.ErrInvalidCredentials
	}

	sessionID := s.sessions.StartSession(ctx, user.ID)
	pair, err := s.issuePair(user, sessionID)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in", zap.String("userID", user.ID))
	s.publishAudit(ctx, audit.AuthEvent{UserID: user.ID, Email: email, Action: audit.EventLoginSuccess, Granted: true})
	return pair, nil
}

// Refresh validates a refresh token against the live session, rotates the
// session and issues a new pair. Any token presenting a rotated-out or
// absent session identifier is rejected as replay.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	userID := claims.Subject
	if !s.sessions.ValidateSession(ctx, userID, claims.SessionID) {
		logger.Warn("Refresh session mismatch", zap.String("userID", userID))
		s.publishAudit(ctx, audit.AuthEvent{UserID: userID, Action: audit.EventTokenRefresh, Reason: "session mismatch"})
		return nil, bookhive_errors.ErrSessionMismatch
	}

	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, bookhive_errors.ErrUserNotFound) {
			return nil, bookhive_errors.ErrSessionMismatch
		}
		return nil, err
	}

	sessionID := s.sessions.RotateSession(ctx, user.ID)
	pair, err := s.issuePair(user, sessionID)
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, audit.AuthEvent{UserID: user.ID, Action: audit.EventTokenRefresh, Granted: true})
	return pair, nil
}

// Logout ends the user's refresh session. Outstanding access tokens stay
// valid until their short TTL elapses; refresh is impossible immediately.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	s.sessions.EndSession(ctx, userID)
	logger.Info("User logged out", zap.String("userID", userID))
	s.publishAudit(ctx, audit.AuthEvent{UserID: userID, Action: audit.EventLogout, Granted: true})
	return nil
}

func (s *AuthService) issuePair(user *model.User, sessionID string) (*model.TokenPair, error) {
	accessToken, err := s.issuer.IssueAccess(user)
	if err != nil {
		logger.Error("Failed to issue access token", zap.Error(err), zap.String("userID", user.ID))
		return nil, bookhive_errors.ErrInternalServer
	}
	refreshToken, err := s.issuer.IssueRefresh(user, sessionID)
	if err != nil {
		logger.Error("Failed to issue refresh token", zap.Error(err), zap.String("userID", user.ID))
		return nil, bookhive_errors.ErrInternalServer
	}
	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.issuer.AccessTTL() / time.Second),
	}, nil
}

func (s *AuthService) publishAudit(ctx context.Context, event audit.AuthEvent) {
	s.eventBus.Publish(ctx, "auth.audit", event)
}
