package util

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jerseylab/jerseylab-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T, profile map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
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

func testGoogleOAuth(srv *httptest.Server) *GoogleOAuth {
	return NewGoogleOAuthWithEndpoint(config.GoogleOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:5000/api/v1/auth/google/callback",
	}, oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, srv.URL+"/userinfo")
}

func TestGoogleOAuth_AuthCodeURL(t *testing.T) {
	srv := fakeGoogle(t, nil)
	g := testGoogleOAuth(srv)

	u, err := url.Parse(g.AuthCodeURL("state-123"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/auth", u.Path)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost:5000/api/v1/auth/google/callback", q.Get("redirect_uri"))
}

func TestGoogleOAuth_Profile(t *testing.T) {
	srv := fakeGoogle(t, map[string]interface{}{
		"id":             "g-1",
		"email":          "Fan@Gmail.com",
		"verified_email": true,
		"name":           "Google Fan",
		"picture":        "https://lh3.googleusercontent.com/fan.png",
	})
	g := testGoogleOAuth(srv)

	t.Run("Good code", func(t *testing.T) {
		profile, err := g.Profile(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "g-1", profile.ID)
		assert.Equal(t, "Fan@Gmail.com", profile.Email)
		assert.True(t, profile.VerifiedEmail)
		assert.Equal(t, "https://lh3.googleusercontent.com/fan.png", profile.Picture)
	})

	t.Run("Rejected code", func(t *testing.T) {
		_, err := g.Profile(context.Background(), "bad-code")
		assert.Error(t, err)
	})
}

func TestGoogleOAuth_ProfileWithoutEmail(t *testing.T) {
	srv := fakeGoogle(t, map[string]interface{}{"id": "g-2", "name": "No Email"})
	g := testGoogleOAuth(srv)

	_, err := g.Profile(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrGoogleProfile)
}
