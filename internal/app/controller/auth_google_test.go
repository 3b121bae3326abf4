package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jerseylab/jerseylab-backend/config"
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	"github.com/jerseylab/jerseylab-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var testGoogleConfig = config.GoogleOAuthConfig{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	CallbackURL:  "http://localhost:5000/api/v1/auth/google/callback",
	SuccessURL:   "http://localhost:5173/?login=success",
	FailureURL:   "http://localhost:5173/login?error=auth_failed",
}

// fakeGoogleServer issues a token for "good-code" and serves the given profile to it.
func fakeGoogleServer(t *testing.T, profile gin.H) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Write([]byte(`{"access_token":"google-access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupGoogleAuthTest(t *testing.T, profile gin.H) (*gin.Engine, *gorm.DB, *httptest.Server) {
	testDB := setupTestDB(t)
	srv := fakeGoogleServer(t, profile)

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, nil, testSecret, 15*time.Minute, 7*24*time.Hour)
	oauth := util.NewGoogleOAuthWithEndpoint(testGoogleConfig, oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, srv.URL+"/userinfo")
	ctrl := NewAuthController(authService).EnableGoogle(oauth, testGoogleConfig, false)

	router := gin.New()
	router.GET("/auth/google", ctrl.GoogleLogin)
	router.GET("/auth/google/callback", ctrl.GoogleCallback)
	return router, testDB, srv
}

func googleProfile() gin.H {
	return gin.H{
		"id":             "g-1",
		"email":          "Fan@Gmail.com",
		"verified_email": true,
		"name":           "Google Fan",
		"picture":        "https://lh3.googleusercontent.com/fan.png",
	}
}

// startGoogleLogin follows the first leg and returns the state cookie.
func startGoogleLogin(t *testing.T, router *gin.Engine, srv *httptest.Server) *http.Cookie {
	t.Helper()
	w := performRequest(router, "GET", "/auth/google", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/auth", location.Scheme+"://"+location.Host+location.Path)
	assert.Equal(t, "client-id", location.Query().Get("client_id"))

	var state *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == googleStateCookie {
			state = cookie
		}
	}
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	assert.Equal(t, state.Value, location.Query().Get("state"))
	return state
}

func googleCallback(router *gin.Engine, query string, state *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/auth/google/callback?"+query, nil)
	if state != nil {
		req.AddCookie(state)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_GoogleLogin_Success(t *testing.T) {
	router, testDB, srv := setupGoogleAuthTest(t, googleProfile())
	state := startGoogleLogin(t, router, srv)

	w := googleCallback(router, "code=good-code&state="+state.Value, state)

	require.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "login=success", location.RawQuery)

	fragment, err := url.ParseQuery(location.Fragment)
	require.NoError(t, err)
	assert.Equal(t, "900", fragment.Get("expires_in"))

	claims, err := util.ValidateToken(fragment.Get("access_token"), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "fan@gmail.com", claims.Email)
	assert.Equal(t, util.TokenTypeAccess, claims.TokenType)

	refresh, err := util.ValidateToken(fragment.Get("refresh_token"), testSecret)
	require.NoError(t, err)
	assert.Equal(t, util.TokenTypeRefresh, refresh.TokenType)

	var user model.User
	require.NoError(t, testDB.Where("email = ?", "fan@gmail.com").First(&user).Error)
	assert.Equal(t, claims.UserID, user.ID)
	assert.Equal(t, model.ProviderGoogle, user.Provider)
	assert.Equal(t, "https://lh3.googleusercontent.com/fan.png", user.Picture)
	assert.Equal(t, 1, user.LoginCount)
}

func TestAuthController_GoogleCallback_Failures(t *testing.T) {
	unverified := googleProfile()
	unverified["verified_email"] = false

	tests := []struct {
		name       string
		profile    gin.H
		query      func(state string) string
		sendCookie bool
	}{
		{
			name:       "Missing state cookie",
			profile:    googleProfile(),
			query:      func(state string) string { return "code=good-code&state=" + state },
			sendCookie: false,
		},
		{
			name:       "State mismatch",
			profile:    googleProfile(),
			query:      func(string) string { return "code=good-code&state=forged" },
			sendCookie: true,
		},
		{
			name:       "Consent denied",
			profile:    googleProfile(),
			query:      func(state string) string { return "error=access_denied&state=" + state },
			sendCookie: true,
		},
		{
			name:       "Rejected code",
			profile:    googleProfile(),
			query:      func(state string) string { return "code=bad-code&state=" + state },
			sendCookie: true,
		},
		{
			name:       "Unverified email",
			profile:    unverified,
			query:      func(state string) string { return "code=good-code&state=" + state },
			sendCookie: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, testDB, srv := setupGoogleAuthTest(t, tt.profile)
			state := startGoogleLogin(t, router, srv)

			cookie := state
			if !tt.sendCookie {
				cookie = nil
			}
			w := googleCallback(router, tt.query(state.Value), cookie)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, testGoogleConfig.FailureURL, w.Header().Get("Location"))

			var count int64
			require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestAuthController_Google_NotConfigured(t *testing.T) {
	router, _ := setupAuthControllerTest(t)
	ctrl := NewAuthController(nil)
	router.GET("/auth/google", ctrl.GoogleLogin)
	router.GET("/auth/google/callback", ctrl.GoogleCallback)

	for _, path := range []string{"/auth/google", "/auth/google/callback?code=x&state=y"} {
		w := performRequest(router, "GET", path, nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "AUTH_OAUTH_UNAVAILABLE", decodeBody(t, w)["error"])
	}
}
