package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BizDaniel/go2play/config"
	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/BizDaniel/go2play/internal/user"
	"github.com/BizDaniel/go2play/pkg/token"
	"github.com/BizDaniel/go2play/pkg/utils"
	"github.com/BizDaniel/go2play/pkg/validator"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

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

func (ac *AuthController) generateAndSaveTokens(userID uint) (string, string, error) {
	accessToken, err := token.GenerateJWT(userID, ac.config.JWT.AccessTokenSecret, ac.config.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		return "", "", fmt.Errorf("access token generation failed: %w", err)
	}

	refreshTokenString, err := token.GenerateRefreshToken(userID, ac.config.JWT.RefreshTokenSecret, ac.config.JWT.RefreshTokenExpiryDays)
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

// @Summary      Register a new user
// @Description  Create a new user with username, email and password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "User registration details"
// @Success      201   {object} AuthResponse "User registered successfully, returns tokens and user info"
// @Failure      400   {object} utils.ValidationErrorResponse "Validation error or invalid input"
// @Failure      409   {object} utils.ErrorResponse "User with this email or username already exists"
// @Router       /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := make(map[string]interface{})
		for k, v := range validator.ParseError(err) {
			fields[k] = v
		}
		utils.ValidationErrorJSON(c, "Invalid input", fields)
		return
	}

	if _, err := ac.repo.GetUserByEmail(strings.ToLower(req.Email)); !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ConflictJSON(c, "User with this email already exists")
		return
	}
	if _, err := ac.repo.GetUserByUsername(req.Username); !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ConflictJSON(c, "User with this username already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	newUser := &user.User{
		Username:   req.Username,
		Email:      strings.ToLower(req.Email),
		Password:   hashedPassword,
		Age:        req.Age,
		Level:      req.Level,
		LastActive: time.Now(),
	}

	if err := ac.repo.CreateUser(newUser); err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(newUser.ID)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(newUser),
	})
}

// @Summary      Login
// @Description  Authenticate with email-or-username and password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Login credentials"
// @Success      200  {object} AuthResponse
// @Failure      401  {object} utils.ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(c, "Invalid input: "+err.Error())
		return
	}

	identifier := strings.TrimSpace(req.LoginIdentifier)
	var u *user.User
	var err error
	if strings.Contains(identifier, "@") {
		u, err = ac.repo.GetUserByEmail(strings.ToLower(identifier))
	} else {
		u, err = ac.repo.GetUserByUsername(identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid credentials"})
			return
		}
		utils.InternalErrorJSON(c, err)
		return
	}

	if !utils.CheckPassword(u.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid credentials"})
		return
	}

	u.LastActive = time.Now()
	if err := ac.repo.UpdateUser(u); err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u.ID)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(u),
	})
}

// @Summary      Refresh access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        token  body  RefreshTokenRequest  true  "Refresh token"
// @Success      200  {object} AuthResponse
// @Failure      401  {object} utils.ErrorResponse "Invalid or expired refresh token"
// @Router       /auth/refresh-token [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(c, "Invalid input: "+err.Error())
		return
	}

	claims, err := token.ValidateJWT(req.RefreshToken, ac.config.JWT.RefreshTokenSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid refresh token: " + err.Error()})
		return
	}

	stored, err := ac.repo.GetRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Refresh token not recognized"})
		return
	}
	if stored.ExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Refresh token has expired"})
		return
	}

	u, err := ac.repo.GetUserByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "User no longer exists"})
		return
	}

	// Rotate: revoke the used token and issue a fresh pair.
	if err := ac.repo.RevokeRefreshToken(req.RefreshToken); err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u.ID)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(u),
	})
}

// @Summary      Logout
// @Description  Invalidate the supplied refresh token, or all sessions.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  LogoutRequest  true  "Logout options"
// @Success      200  {object} utils.SuccessResponse
// @Router       /auth/logout [post]
// @Security     Bearer
func (ac *AuthController) Logout(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		utils.UnauthorizedJSON(c)
		return
	}

	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if req.InvalidateAllSessions {
		if err := ac.repo.RevokeAllUserRefreshTokens(userID); err != nil {
			utils.InternalErrorJSON(c, err)
			return
		}
	} else if req.RefreshToken != "" {
		if err := ac.repo.RevokeRefreshToken(req.RefreshToken); err != nil {
			utils.InternalErrorJSON(c, err)
			return
		}
	}

	utils.SuccessJSON(c, http.StatusOK, "Logged out successfully", nil)
}

// @Summary      Get current user profile
// @Tags         Auth
// @Produce      json
// @Success      200  {object} UserResponse
// @Failure      401  {object} utils.ErrorResponse
// @Router       /auth/me [get]
// @Security     Bearer
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		utils.UnauthorizedJSON(c)
		return
	}

	u, err := ac.repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundJSON(c, "User")
			return
		}
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, FilterUserRecord(u))
}

// @Summary      Update current user profile
// @Description  Owner-scoped: only the authenticated user can update their profile.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        profile  body  UpdateProfileRequest  true  "Profile fields to update"
// @Success      200  {object} UserResponse
// @Failure      409  {object} utils.ErrorResponse "Username already taken"
// @Router       /auth/me [put]
// @Security     Bearer
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		utils.UnauthorizedJSON(c)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := make(map[string]interface{})
		for k, v := range validator.ParseError(err) {
			fields[k] = v
		}
		utils.ValidationErrorJSON(c, "Invalid input", fields)
		return
	}

	u, err := ac.repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundJSON(c, "User")
			return
		}
		utils.InternalErrorJSON(c, err)
		return
	}

	if req.Username != nil && *req.Username != u.Username {
		taken, err := ac.repo.UsernameTaken(*req.Username)
		if err != nil {
			utils.InternalErrorJSON(c, err)
			return
		}
		if taken {
			utils.ConflictJSON(c, "Username already taken")
			return
		}
		u.Username = *req.Username
	}
	if req.Age != nil {
		u.Age = req.Age
	}
	if req.Level != nil {
		u.Level = *req.Level
	}
	if req.PreferredRoles != nil {
		u.PreferredRoles = *req.PreferredRoles
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}

	if err := ac.repo.UpdateUser(u); err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, FilterUserRecord(u))
}

// @Summary      Check username availability
// @Description  Returns whether the given username is free to register.
// @Tags         Auth
// @Produce      json
// @Param        username  query  string  true  "Username to check"
// @Success      200  {object} UsernameAvailabilityResponse
// @Failure      400  {object} utils.ErrorResponse
// @Router       /auth/username-available [get]
func (ac *AuthController) CheckUsernameAvailability(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if len(username) < 3 || len(username) > 30 {
		utils.BadRequestJSON(c, "username must be between 3 and 30 characters")
		return
	}

	taken, err := ac.repo.UsernameTaken(username)
	if err != nil {
		utils.InternalErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, UsernameAvailabilityResponse{
		Username:  username,
		Available: !taken,
	})
}
