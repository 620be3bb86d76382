package services

import (
	"context"
	"testing"

	"shelfwise/internal/adapters/persistence/repositories"
	"shelfwise/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) (*UserService, *AuthService) {
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	return NewUserService(userRepo, tokenRepo), NewAuthService(userRepo, tokenRepo, testJWTConfig)
}

func TestUpdateRoleGuards(t *testing.T) {
	db := newTestDB(t)
	svc, authSvc := newUserService(db)

	user, err := authSvc.Register(context.Background(), &RegisterInput{Username: "alice", Password: "correct-horse"}, nil)
	require.NoError(t, err)

	admin := &domain.Actor{UserID: user.ID + 1, Username: "root", Role: domain.RoleAdmin}

	updated, err := svc.UpdateRole(context.Background(), user.ID, "LIBRARIAN", admin)
	require.NoError(t, err)
	assert.Equal(t, "LIBRARIAN", updated.Role)

	_, err = svc.UpdateRole(context.Background(), user.ID, "WIZARD", admin)
	assert.ErrorIs(t, err, ErrInvalidRole)

	// An admin cannot change their own role
	self := &domain.Actor{UserID: user.ID, Username: "alice", Role: domain.RoleAdmin}
	_, err = svc.UpdateRole(context.Background(), user.ID, "MEMBER", self)
	assert.ErrorIs(t, err, ErrSelfDemotion)
}

func TestDeactivationRevokesSessions(t *testing.T) {
	db := newTestDB(t)
	svc, authSvc := newUserService(db)

	user, err := authSvc.Register(context.Background(), &RegisterInput{Username: "alice", Password: "correct-horse"}, nil)
	require.NoError(t, err)
	_, tokens, err := authSvc.Login(context.Background(), &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	admin := &domain.Actor{UserID: user.ID + 1, Username: "root", Role: domain.RoleAdmin}
	updated, err := svc.SetActive(context.Background(), user.ID, false, admin)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, _, err = authSvc.Refresh(context.Background(), tokens.RefreshToken)
	assert.Error(t, err)

	// Self-deactivation is blocked
	self := &domain.Actor{UserID: user.ID, Username: "alice", Role: domain.RoleAdmin}
	_, err = svc.SetActive(context.Background(), user.ID, false, self)
	assert.ErrorIs(t, err, ErrSelfDelete)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc, authSvc := newUserService(db)

	user, err := authSvc.Register(context.Background(), &RegisterInput{Username: "alice", Password: "correct-horse"}, nil)
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong-password", "new-password-1")
	assert.ErrorIs(t, err, ErrWrongOldPassword)

	err = svc.ChangePassword(context.Background(), user.ID, "correct-horse", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "correct-horse", "new-password-1"))

	_, _, err = authSvc.Login(context.Background(), &LoginInput{Username: "alice", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = authSvc.Login(context.Background(), &LoginInput{Username: "alice", Password: "new-password-1"})
	require.NoError(t, err)
}

func TestUserDeleteGuards(t *testing.T) {
	db := newTestDB(t)
	svc, authSvc := newUserService(db)

	user, err := authSvc.Register(context.Background(), &RegisterInput{Username: "alice", Password: "correct-horse"}, nil)
	require.NoError(t, err)

	self := &domain.Actor{UserID: user.ID, Username: "alice", Role: domain.RoleAdmin}
	assert.ErrorIs(t, svc.Delete(context.Background(), user.ID, self), ErrSelfDelete)

	admin := &domain.Actor{UserID: user.ID + 1, Username: "root", Role: domain.RoleAdmin}
	require.NoError(t, svc.Delete(context.Background(), user.ID, admin))

	_, err = svc.GetByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
