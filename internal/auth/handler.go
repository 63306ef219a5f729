// File: internal/auth/handler.go
package auth

import (
	"errors"
	"net/http"
	"net/url"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/middleware"
	"woodcraft_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	cfg          *config.Config
	userService  shared.Service
	tokenService shared.TokenService
	oauthService OAuthService
	logger       *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	cfg *config.Config,
	userService shared.Service,
	tokenService shared.TokenService,
	oauthService OAuthService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:          cfg,
		userService:  userService,
		tokenService: tokenService,
		oauthService: oauthService,
		logger:       logger,
	}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh", h.refreshToken)
		authGroup.GET("/google", h.googleLogin)
		authGroup.GET("/google/callback", h.googleCallback)
		authGroup.GET("/facebook", h.facebookLogin)
		authGroup.GET("/facebook/callback", h.facebookCallback)
		authGroup.GET("/me", authMW, h.me)
	}
}

func (h *Handler) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Signup: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	newUser, tokens, err := h.userService.Register(c.Request.Context(), shared.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.RespondCreated(c, "Account created successfully.", tokenPayload(newUser, tokens))
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Login: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	loggedInUser, tokens, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.RespondOK(c, "Login successful.", tokenPayload(loggedInUser, tokens))
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Refresh token: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	claims, err := h.tokenService.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		h.logger.Warn("Refresh token validation failed", zap.Error(err))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired refresh token."))
		return
	}

	tokens, err := h.userService.IssueTokens(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("Failed to issue tokens during refresh",
			zap.Error(err), zap.String("userID", claims.UserID.String()))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User associated with refresh token not found."))
		return
	}

	common.RespondOK(c, "Token refreshed successfully.", tokens)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	u, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User profile retrieved.", u)
}

func (h *Handler) googleLogin(c *gin.Context) {
	authURL, err := h.oauthService.GetGoogleLoginURL(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *Handler) googleCallback(c *gin.Context) {
	code, state, ok := h.callbackParams(c, "Google")
	if !ok {
		return
	}

	_, tokens, err := h.oauthService.HandleGoogleCallback(c, code, state)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.redirectWithTokens(c, tokens)
}

func (h *Handler) facebookLogin(c *gin.Context) {
	authURL, err := h.oauthService.GetFacebookLoginURL(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *Handler) facebookCallback(c *gin.Context) {
	code, state, ok := h.callbackParams(c, "Facebook")
	if !ok {
		return
	}

	_, tokens, err := h.oauthService.HandleFacebookCallback(c, code, state)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.redirectWithTokens(c, tokens)
}

func (h *Handler) callbackParams(c *gin.Context, provider string) (code, state string, ok bool) {
	if errorParam := c.Query("error"); errorParam != "" {
		errorDesc := c.Query("error_description")
		h.logger.Error("OAuth callback error",
			zap.String("provider", provider),
			zap.String("error", errorParam),
			zap.String("description", errorDesc))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails(provider+" login failed."))
		return "", "", false
	}

	code = c.Query("code")
	state = c.Query("state")
	if code == "" || state == "" {
		h.logger.Warn("OAuth callback missing code or state", zap.String("provider", provider))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing authorization code or state."))
		return "", "", false
	}
	return code, state, true
}

// redirectWithTokens sends the browser back to the frontend with the token
// pair in the URL fragment. Fragments never reach the server in later
// requests, which keeps the tokens out of access logs.
func (h *Handler) redirectWithTokens(c *gin.Context, tokens *shared.TokenResponse) {
	fragment := url.Values{}
	fragment.Set("access_token", tokens.AccessToken)
	fragment.Set("refresh_token", tokens.RefreshToken)
	c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL+"/auth/callback#"+fragment.Encode())
}

func tokenPayload(u *shared.User, tokens *shared.TokenResponse) gin.H {
	return gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.ExpiresAt,
		"token_type":    tokens.TokenType,
	}
}
