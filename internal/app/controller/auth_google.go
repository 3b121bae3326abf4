package controller

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jerseylab/jerseylab-backend/config"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	apperrors "github.com/jerseylab/jerseylab-backend/internal/errors"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
	"github.com/jerseylab/jerseylab-backend/pkg/util"
)

const (
	googleStateCookie = "jl_oauth_state"
	googleStateTTL    = 10 * time.Minute
)

// GoogleOAuth is the authorization code flow the Google routes drive.
type GoogleOAuth interface {
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (*util.GoogleProfile, error)
}

type googleSignIn struct {
	oauth        GoogleOAuth
	successURL   string
	failureURL   string
	secureCookie bool
}

// EnableGoogle turns on Google sign-in. Until it is called both Google routes answer 503.
func (ctrl *AuthController) EnableGoogle(oauth GoogleOAuth, cfg config.GoogleOAuthConfig, secureCookie bool) *AuthController {
	ctrl.google = &googleSignIn{
		oauth:        oauth,
		successURL:   cfg.SuccessURL,
		failureURL:   cfg.FailureURL,
		secureCookie: secureCookie,
	}
	return ctrl
}

// GoogleLogin sends the browser to Google's consent page
// GET /api/v1/auth/google
func (ctrl *AuthController) GoogleLogin(c *gin.Context) {
	if ctrl.google == nil {
		apperrors.ServiceUnavailable(c, apperrors.AuthOAuthUnavailable, "Google sign-in is not available")
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(googleStateCookie, state, int(googleStateTTL.Seconds()), "/", "", ctrl.google.secureCookie, true)
	c.Redirect(http.StatusFound, ctrl.google.oauth.AuthCodeURL(state))
}

// GoogleCallback finishes Google sign-in and hands the token pair to the
// storefront in the success URL fragment. Every failure lands on the failure URL.
// GET /api/v1/auth/google/callback
func (ctrl *AuthController) GoogleCallback(c *gin.Context) {
	if ctrl.google == nil {
		apperrors.ServiceUnavailable(c, apperrors.AuthOAuthUnavailable, "Google sign-in is not available")
		return
	}
	log := middleware.GetLoggerFromContext(c)

	state, err := c.Cookie(googleStateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(googleStateCookie, "", -1, "/", "", ctrl.google.secureCookie, true)
	if err != nil || state == "" || state != c.Query("state") {
		log.Warn("Google callback state mismatch")
		c.Redirect(http.StatusFound, ctrl.google.failureURL)
		return
	}

	if reason := c.Query("error"); reason != "" {
		log.Warn("Google sign-in declined", map[string]interface{}{
			"reason": reason,
		})
		c.Redirect(http.StatusFound, ctrl.google.failureURL)
		return
	}

	code := c.Query("code")
	if code == "" {
		log.Warn("Google callback without code")
		c.Redirect(http.StatusFound, ctrl.google.failureURL)
		return
	}

	profile, err := ctrl.google.oauth.Profile(c.Request.Context(), code)
	if err != nil {
		log.Warn("Google profile exchange failed", map[string]interface{}{
			"error": err.Error(),
		})
		c.Redirect(http.StatusFound, ctrl.google.failureURL)
		return
	}

	user, tokens, err := ctrl.authService.LoginWithGoogle(profile)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotVerified) || errors.Is(err, service.ErrInvalidUserInput) {
			log.Warn("Google login refused", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			log.Error("Google login failed", err)
		}
		c.Redirect(http.StatusFound, ctrl.google.failureURL)
		return
	}

	log.Info("Google login succeeded", map[string]interface{}{
		"user_id": user.ID,
	})
	fragment := url.Values{
		"access_token":  {tokens.AccessToken},
		"refresh_token": {tokens.RefreshToken},
		"expires_in":    {strconv.FormatInt(tokens.ExpiresIn, 10)},
	}
	c.Redirect(http.StatusFound, ctrl.google.successURL+"#"+fragment.Encode())
}
