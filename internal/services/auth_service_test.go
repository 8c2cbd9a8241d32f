// internal/services/auth_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/cache"
	"github.com/ecofinds/ecofinds-backend/internal/config"
	"github.com/ecofinds/ecofinds-backend/internal/models"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
	store   cache.Store
}

func (suite *AuthServiceTestSuite) SetupTest() {
	utils.SetJWTSecret("test-secret")
	suite.db = newTestDB(suite.T())
	suite.store = cache.NewMemoryStore()
	suite.service = NewAuthService(suite.db, suite.store, config.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenTTL:  1,
		RefreshTokenTTL: 24,
	}, newTestLogger())
}

func (suite *AuthServiceTestSuite) register(username string) *models.User {
	user, err := suite.service.Register(&RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "StrongPass1!",
	})
	suite.Require().NoError(err)
	return user
}

func (suite *AuthServiceTestSuite) TestRegisterAssignsUserRole() {
	user := suite.register("newuser")
	suite.Equal(models.RoleUser, user.Role)
	suite.NotEmpty(user.PasswordHash)
	suite.NotEqual("StrongPass1!", user.PasswordHash)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicates() {
	suite.register("newuser")

	_, err := suite.service.Register(&RegisterRequest{
		Username: "newuser",
		Email:    "other@example.com",
		Password: "StrongPass1!",
	})
	suite.ErrorIs(err, apperrors.ErrUserExists)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsWeakPassword() {
	_, err := suite.service.Register(&RegisterRequest{
		Username: "weakling",
		Email:    "weakling@example.com",
		Password: "short",
	})
	suite.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (suite *AuthServiceTestSuite) TestLoginIssuesTokens() {
	suite.register("loginuser")

	user, tokens, err := suite.service.Login(&LoginRequest{
		Email:    "loginuser@example.com",
		Password: "StrongPass1!",
	})
	suite.NoError(err)
	suite.NotNil(user.LastLoginAt)
	suite.NotEmpty(tokens.AccessToken)
	suite.NotEmpty(tokens.RefreshToken)

	claims, err := utils.ValidateJWT(tokens.AccessToken)
	suite.NoError(err)
	suite.Equal(user.ID.String(), claims.UserID)
	suite.Equal(string(models.RoleUser), claims.Role)
}

func (suite *AuthServiceTestSuite) TestLoginRejectsWrongPassword() {
	suite.register("loginuser")

	_, _, err := suite.service.Login(&LoginRequest{
		Email:    "loginuser@example.com",
		Password: "WrongPass1!",
	})
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLoginRejectsDeactivatedAccount() {
	user := suite.register("loginuser")
	suite.NoError(suite.db.Model(user).Update("is_active", false).Error)

	_, _, err := suite.service.Login(&LoginRequest{
		Email:    "loginuser@example.com",
		Password: "StrongPass1!",
	})
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestPasswordResetFlow() {
	ctx := context.Background()
	user := suite.register("resetuser")

	token, err := suite.service.ForgotPassword(ctx, user.Email)
	suite.NoError(err)
	suite.NotEmpty(token)

	suite.NoError(suite.service.ResetPassword(ctx, token, "FreshPass2@"))

	_, _, err = suite.service.Login(&LoginRequest{
		Email:    user.Email,
		Password: "FreshPass2@",
	})
	suite.NoError(err)

	// tokens are single use
	err = suite.service.ResetPassword(ctx, token, "AnotherPass3#")
	suite.ErrorIs(err, apperrors.ErrInvalidResetToken)
}

func (suite *AuthServiceTestSuite) TestForgotPasswordHidesUnknownEmails() {
	token, err := suite.service.ForgotPassword(context.Background(), "nobody@example.com")
	suite.NoError(err)
	suite.Empty(token)
}

func (suite *AuthServiceTestSuite) TestResetPasswordRejectsBogusToken() {
	err := suite.service.ResetPassword(context.Background(), "bogus", "FreshPass2@")
	suite.ErrorIs(err, apperrors.ErrInvalidResetToken)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
