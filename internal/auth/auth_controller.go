package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quattro-app/quattro/config"
	"github.com/quattro-app/quattro/internal/level"
	"github.com/quattro-app/quattro/internal/middleware"
	"github.com/quattro-app/quattro/internal/user"
	"github.com/quattro-app/quattro/pkg/responses"
	"github.com/quattro-app/quattro/pkg/token"
	pkgutils "github.com/quattro-app/quattro/pkg/utils"
	"github.com/quattro-app/quattro/pkg/validator"
	"github.com/quattro-app/quattro/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const DefaultUserRole = "player"

type AuthController struct {
	repo   AuthRepository
	config *config.Config
}

func NewAuthController(repo AuthRepository, cfg *config.Config) *AuthController {
	return &AuthController{
		repo:   repo,
		config: cfg,
	}
}

func (ac *AuthController) generateAndSaveTokens(userID uint, role string) (string, string, error) {
	accessToken, err := token.GenerateJWT(userID, role, ac.config.JWT.AccessTokenSecret, ac.config.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		return "", "", fmt.Errorf("access token generation failed: %w", err)
	}

	refreshTokenString, err := pkgutils.GenerateRefreshToken(userID, ac.config.JWT.RefreshTokenSecret, ac.config.JWT.RefreshTokenExpiryDays)
	if err != nil {
		return "", "", fmt.Errorf("refresh token generation failed: %w", err)
	}

	refreshToken := &user.RefreshToken{
		UserID:    userID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().AddDate(0, 0, ac.config.JWT.RefreshTokenExpiryDays),
	}

	if err := ac.repo.SaveRefreshToken(refreshToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}
	return accessToken, refreshTokenString, nil
}

// @Summary      Register a new player
// @Description  Create a new player with username, email, password and self-declared level.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "Player registration details"
// @Success      201   {object} AuthResponse "Player registered, returns tokens and profile"
// @Failure      400   {object} map[string]string "Validation error or invalid input"
// @Failure      409   {object} map[string]string "Username or email already taken"
// @Router       /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	if _, err := ac.repo.GetUserByEmail(req.Email); !errors.Is(err, gorm.ErrRecordNotFound) {
		responses.Conflict(c, "User with this email already exists")
		return
	}
	if _, err := ac.repo.GetUserByUsername(req.Username); !errors.Is(err, gorm.ErrRecordNotFound) {
		responses.Conflict(c, "User with this username already exists")
		return
	}

	declared, err := level.Parse(req.DeclaredLevel)
	if err != nil {
		responses.BadRequest(c, "Invalid declared level")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}

	newUser := &user.User{
		Username:      req.Username,
		Email:         strings.ToLower(req.Email),
		Password:      hashed,
		Role:          DefaultUserRole,
		DeclaredLevel: declared,
	}

	if err := ac.repo.CreateUser(newUser); err != nil {
		responses.InternalServerError(c, "Failed to create user")
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(newUser.ID, newUser.Role)
	if err != nil {
		responses.InternalServerError(c, "Failed to generate tokens")
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "User registered successfully", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(newUser),
	})
}

// @Summary      Login
// @Description  Authenticate with email or username plus password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Login credentials"
// @Success      200   {object} AuthResponse "Login successful, returns tokens and profile"
// @Failure      401   {object} map[string]string "Invalid credentials"
// @Router       /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	var u *user.User
	var err error
	if strings.Contains(req.LoginIdentifier, "@") {
		u, err = ac.repo.GetUserByEmail(strings.ToLower(req.LoginIdentifier))
	} else {
		u, err = ac.repo.GetUserByUsername(req.LoginIdentifier)
	}
	if err != nil {
		responses.Unauthorized(c, "Invalid credentials")
		return
	}

	if !utils.CheckPassword(u.Password, req.Password) {
		responses.Unauthorized(c, "Invalid credentials")
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u.ID, u.Role)
	if err != nil {
		responses.InternalServerError(c, "Failed to generate tokens")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Login successful", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(u),
	})
}

// @Summary      Refresh Access Token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh Token Request"
// @Success      200 {object} map[string]string "Returns a new access token"
// @Failure      401 {object} map[string]string "Invalid or revoked refresh token"
// @Router       /auth/refresh-token [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	userID, err := pkgutils.VerifyRefreshToken(req.RefreshToken, ac.config.JWT.RefreshTokenSecret)
	if err != nil {
		responses.Unauthorized(c, "Invalid refresh token")
		return
	}

	// The token must also exist server-side and not be revoked.
	if _, err := ac.repo.GetRefreshToken(req.RefreshToken); err != nil {
		responses.Unauthorized(c, "Refresh token expired or revoked")
		return
	}

	u, err := ac.repo.GetUserByID(userID)
	if err != nil {
		responses.Unauthorized(c, "User no longer exists")
		return
	}

	accessToken, err := token.GenerateJWT(u.ID, u.Role, ac.config.JWT.AccessTokenSecret, ac.config.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		responses.InternalServerError(c, "Failed to generate access token")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Token refreshed", gin.H{"access_token": accessToken})
}

// @Summary      Get Player Profile
// @Description  Returns the caller's profile, including declared and perceived level and matches played.
// @Tags         Profile
// @Produce      json
// @Success      200 {object} UserResponse "Player profile data"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Router       /auth/me [get]
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	u, err := ac.repo.GetUserByID(userID)
	if err != nil {
		responses.NotFound(c, "User")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "", FilterUserRecord(u))
}

// @Summary      Logout
// @Description  Revokes the given refresh token, or every session of the caller.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest true "Logout request"
// @Success      200 {object} map[string]string "Logged out"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Router       /auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	if req.InvalidateAllSessions {
		if err := ac.repo.InvalidateAllRefreshTokensForUser(userID); err != nil {
			responses.InternalServerError(c, "Failed to invalidate sessions")
			return
		}
	} else if req.RefreshToken != "" {
		if err := ac.repo.InvalidateRefreshToken(req.RefreshToken); err != nil {
			responses.InternalServerError(c, "Failed to invalidate refresh token")
			return
		}
	}

	responses.SendSuccess(c, http.StatusOK, "Logged out", nil)
}
