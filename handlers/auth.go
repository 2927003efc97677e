package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/utpal74/track-my-tasks-api/auth"
	"github.com/utpal74/track-my-tasks-api/logger"
	"github.com/utpal74/track-my-tasks-api/model"
	"github.com/utpal74/track-my-tasks-api/oauth"
	"github.com/utpal74/track-my-tasks-api/service"
	"go.uber.org/zap"
)

// requestTimeout bounds every store round trip made by a handler.
const requestTimeout = 5 * time.Second

// AuthenticatedHandler is a handler that runs on behalf of a resolved user.
type AuthenticatedHandler func(c *gin.Context, user *model.User)

type AuthHandler struct {
	gate  *auth.Gate
	svc   *service.AuthService
	oauth *oauth.Flow
}

func NewAuthHandler(gate *auth.Gate, svc *service.AuthService, flow *oauth.Flow) *AuthHandler {
	return &AuthHandler{
		gate:  gate,
		svc:   svc,
		oauth: flow,
	}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID            uint    `json:"id"`
	Email         string  `json:"email"`
	Username      *string `json:"username"`
	OAuthProvider *string `json:"oauth_provider"`
}

func newTokenResponse(token string) tokenResponse {
	return tokenResponse{AccessToken: token, TokenType: "bearer"}
}

// Protect runs next only for requests carrying a valid bearer token of an
// existing user. All authentication failures get the same 401 answer.
func (handler *AuthHandler) Protect(next AuthenticatedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := handler.gate.Authenticate(ctx, c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				logger.FromCtx(ctx).Info("request not authenticated", zap.String("reason", auth.Reason(err)))
			}
			respondError(c, err)
			return
		}
		next(c, user)
	}
}

// SignUpHandler registers a password account and signs it in.
func (handler *AuthHandler) SignUpHandler(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input data")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	token, err := handler.svc.Signup(ctx, service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.FromCtx(ctx).Info("user signed up")
	c.JSON(http.StatusOK, newTokenResponse(token))
}

// SignInHandler exchanges email and password for a token.
func (handler *AuthHandler) SignInHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input data")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	token, err := handler.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(token))
}

func (handler *AuthHandler) MeHandler(c *gin.Context, user *model.User) {
	c.JSON(http.StatusOK, userResponse{
		ID:            user.ID,
		Email:         user.Email,
		Username:      user.Username,
		OAuthProvider: user.OAuthProvider,
	})
}

// DeleteMeHandler removes the account with all its tasks and categories.
func (handler *AuthHandler) DeleteMeHandler(c *gin.Context, user *model.User) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := handler.svc.DeleteAccount(ctx, user); err != nil {
		respondError(c, err)
		return
	}
	logger.FromCtx(ctx).Info("account deleted", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// OAuthLoginHandler redirects to the provider's consent page.
func (handler *AuthHandler) OAuthLoginHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	url, err := handler.oauth.AuthCodeURL(ctx, c.Param("provider"))
	if errors.Is(err, oauth.ErrUnknownProvider) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// OAuthCallbackHandler completes the provider flow and signs the user in.
func (handler *AuthHandler) OAuthCallbackHandler(c *gin.Context) {
	if c.Query("error") != "" {
		badRequest(c, "Authorization was denied")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*requestTimeout)
	defer cancel()

	provider := c.Param("provider")
	identity, err := handler.oauth.Exchange(ctx, provider, c.Query("state"), c.Query("code"))
	switch {
	case errors.Is(err, oauth.ErrUnknownProvider):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
		return
	case errors.Is(err, oauth.ErrInvalidState):
		badRequest(c, "Invalid or expired state")
		return
	case err != nil:
		logger.FromCtx(ctx).Warn("oauth exchange failed", zap.String("provider", provider), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not sign in with provider"})
		return
	}

	token, err := handler.svc.OAuthLogin(ctx, identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(token))
}
