// File: internal/auth/oauth_service.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// OAuthProvider represents an OAuth provider type.
type OAuthProvider string

const (
	ProviderGoogle   OAuthProvider = "google"
	ProviderFacebook OAuthProvider = "facebook"
)

// OAuthService defines the interface for OAuth login flows.
type OAuthService interface {
	GetGoogleLoginURL(c *gin.Context) (string, error)
	HandleGoogleCallback(c *gin.Context, code, state string) (*shared.User, *shared.TokenResponse, error)
	GetFacebookLoginURL(c *gin.Context) (string, error)
	HandleFacebookCallback(c *gin.Context, code, state string) (*shared.User, *shared.TokenResponse, error)
}

type oauthService struct {
	cfg          *config.Config
	userService  shared.Service
	tokenService shared.TokenService
	logger       *zap.Logger
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(
	cfg *config.Config,
	userService shared.Service,
	tokenService shared.TokenService,
	logger *zap.Logger,
) OAuthService {
	return &oauthService{
		cfg:          cfg,
		userService:  userService,
		tokenService: tokenService,
		logger:       logger.Named("OAuthService"),
	}
}

// GetGoogleLoginURL generates the URL for Google OAuth login.
func (s *oauthService) GetGoogleLoginURL(c *gin.Context) (string, error) {
	state, err := generateAndSetOAuthState(c, s.cfg)
	if err != nil {
		s.logger.Error("Failed to generate OAuth state for Google", zap.Error(err))
		return "", common.ErrInternalServer.WithDetails("Could not initiate Google login.")
	}
	googleCfg := getGoogleOAuthConfig(s.cfg)
	authURL := googleCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	s.logger.Info("Generated Google login URL")
	return authURL, nil
}

// HandleGoogleCallback processes the callback from Google.
func (s *oauthService) HandleGoogleCallback(c *gin.Context, code, state string) (*shared.User, *shared.TokenResponse, error) {
	if err := s.checkState(c, state); err != nil {
		return nil, nil, err
	}

	googleCfg := getGoogleOAuthConfig(s.cfg)
	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, http.DefaultClient)

	token, err := googleCfg.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("Failed to exchange Google auth code for token", zap.Error(err))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Could not exchange Google auth code.")
	}
	if !token.Valid() {
		s.logger.Error("Google token received is invalid")
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Received invalid token from Google.")
	}

	client := googleCfg.Client(ctx, token)
	body, err := fetchUserInfo(client, GoogleUserInfoURL)
	if err != nil {
		s.logger.Error("Failed to fetch user info from Google", zap.Error(err))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Could not fetch user info from Google.")
	}

	var googleUser struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.Unmarshal(body, &googleUser); err != nil {
		s.logger.Error("Failed to decode Google user info", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not process Google user information.")
	}
	if googleUser.Sub == "" {
		s.logger.Error("Google user info is missing the subject identifier")
		return nil, nil, common.ErrBadRequest.WithDetails("Missing user identifier from Google.")
	}

	profile := shared.OAuthUserProfile{
		Provider:      string(ProviderGoogle),
		ProviderID:    googleUser.Sub,
		Email:         strings.ToLower(googleUser.Email),
		FullName:      googleUser.Name,
		EmailVerified: googleUser.EmailVerified,
	}
	return s.completeLogin(c, profile)
}

// GetFacebookLoginURL generates the URL for Facebook OAuth login.
func (s *oauthService) GetFacebookLoginURL(c *gin.Context) (string, error) {
	state, err := generateAndSetOAuthState(c, s.cfg)
	if err != nil {
		s.logger.Error("Failed to generate OAuth state for Facebook", zap.Error(err))
		return "", common.ErrInternalServer.WithDetails("Could not initiate Facebook login.")
	}
	fbCfg := getFacebookOAuthConfig(s.cfg)
	authURL := fbCfg.AuthCodeURL(state)
	s.logger.Info("Generated Facebook login URL")
	return authURL, nil
}

// HandleFacebookCallback processes the callback from Facebook. The Graph API
// only returns an email the user has confirmed, so its presence doubles as
// the verification signal.
func (s *oauthService) HandleFacebookCallback(c *gin.Context, code, state string) (*shared.User, *shared.TokenResponse, error) {
	if err := s.checkState(c, state); err != nil {
		return nil, nil, err
	}

	fbCfg := getFacebookOAuthConfig(s.cfg)
	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, http.DefaultClient)

	token, err := fbCfg.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("Failed to exchange Facebook auth code for token", zap.Error(err))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Could not exchange Facebook auth code.")
	}

	client := fbCfg.Client(ctx, token)
	body, err := fetchUserInfo(client, FacebookUserInfoURL)
	if err != nil {
		s.logger.Error("Failed to fetch user info from Facebook", zap.Error(err))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Could not fetch user info from Facebook.")
	}

	var fbUser struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &fbUser); err != nil {
		s.logger.Error("Failed to decode Facebook user info", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not process Facebook user information.")
	}
	if fbUser.ID == "" {
		s.logger.Error("Facebook user info is missing the id field")
		return nil, nil, common.ErrBadRequest.WithDetails("Missing user identifier from Facebook.")
	}

	profile := shared.OAuthUserProfile{
		Provider:      string(ProviderFacebook),
		ProviderID:    fbUser.ID,
		Email:         strings.ToLower(fbUser.Email),
		FullName:      fbUser.Name,
		EmailVerified: fbUser.Email != "",
	}
	return s.completeLogin(c, profile)
}

func (s *oauthService) checkState(c *gin.Context, state string) error {
	storedState, err := getOAuthCookie(c, s.cfg, s.cfg.OAuthStateCookieName)
	if err != nil {
		s.logger.Error("Failed to get stored OAuth state", zap.Error(err))
		return common.ErrBadRequest.WithDetails("Invalid session or state mismatch.")
	}
	if state != storedState {
		s.logger.Error("OAuth state mismatch")
		return common.ErrBadRequest.WithDetails("OAuth state mismatch. Possible CSRF attack.")
	}
	return nil
}

func (s *oauthService) completeLogin(c *gin.Context, profile shared.OAuthUserProfile) (*shared.User, *shared.TokenResponse, error) {
	appUser, _, err := s.userService.FindOrCreateOrLinkOAuthUser(c.Request.Context(), profile)
	if err != nil {
		s.logger.Error("Failed to find or create user from OAuth profile",
			zap.Error(err), zap.String("provider", profile.Provider))
		if _, ok := common.IsAPIError(err); ok {
			return nil, nil, err
		}
		return nil, nil, common.ErrInternalServer.WithDetails("Failed to process user account after OAuth login.")
	}

	tokens, err := s.userService.IssueTokens(c.Request.Context(), appUser.ID)
	if err != nil {
		s.logger.Error("Failed to issue tokens after OAuth login",
			zap.Error(err), zap.String("userID", appUser.ID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not generate tokens.")
	}

	s.logger.Info("OAuth login successful",
		zap.String("provider", profile.Provider),
		zap.String("userID", appUser.ID.String()),
		zap.Stringp("email", appUser.Email))
	return appUser, tokens, nil
}

func fetchUserInfo(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
