package tesla

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
)

func newTestOAuthClient(baseURL string) *OAuthClient {
	return NewOAuthClient(OAuthClientConfig{
		BaseURL:      baseURL,
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "https://app.example.com/callback",
	})
}

func TestAuthorizeURL(t *testing.T) {
	c := newTestOAuthClient("https://auth.example.com")

	raw := c.AuthorizeURL("state-abc", "challenge-xyz")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com", parsed.Scheme+"://"+parsed.Host)
	assert.Equal(t, "/oauth2/v3/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "challenge-xyz", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Contains(t, q.Get("scope"), "offline_access")
	assert.Contains(t, q.Get("scope"), "vehicle_cmds")
}

func TestExchangeCode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/oauth2/v3/token", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code-1", r.PostForm.Get("code"))
		assert.Equal(t, "verifier-1", r.PostForm.Get("code_verifier"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		assert.Equal(t, "https://app.example.com/callback", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"id_token":      "idt-1",
			"token_type":    "Bearer",
			"expires_in":    28800,
		})
	}))
	defer server.Close()

	c := newTestOAuthClient(server.URL)

	token, err := c.ExchangeCode(context.Background(), "auth-code-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "at-1", token.AccessToken)
	assert.Equal(t, "rt-1", token.RefreshToken)
	assert.Equal(t, "idt-1", token.IDToken)
	assert.Equal(t, 28800, token.ExpiresIn)
}

func TestExchangeCode_ProviderRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	c := newTestOAuthClient(server.URL)

	_, err := c.ExchangeCode(context.Background(), "bad-code", "verifier-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenExchangeFailed)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "invalid_grant")
}

func TestRefresh_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "rt-old", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-new",
			"refresh_token": "rt-new",
			"token_type":    "Bearer",
			"expires_in":    28800,
		})
	}))
	defer server.Close()

	c := newTestOAuthClient(server.URL)

	token, err := c.Refresh(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "at-new", token.AccessToken)
	assert.Equal(t, "rt-new", token.RefreshToken)
}

func TestRefresh_ProviderRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	c := newTestOAuthClient(server.URL)

	_, err := c.Refresh(context.Background(), "rt-revoked")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRefreshFailed)
	assert.NotErrorIs(t, err, domain.ErrTokenExchangeFailed)
}

func TestIdentitySubject(t *testing.T) {
	// Unsigned token with alg none is enough: the decode is structural.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "provider-user-42",
		"aud": "client-1",
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	c := newTestOAuthClient("https://auth.example.com")

	sub, err := c.IdentitySubject(signed)
	require.NoError(t, err)
	assert.Equal(t, "provider-user-42", sub)
}

func TestIdentitySubject_MissingSub(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"aud": "client-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	c := newTestOAuthClient("https://auth.example.com")

	sub, err := c.IdentitySubject(signed)
	require.NoError(t, err)
	assert.Empty(t, sub)
}

func TestIdentitySubject_Malformed(t *testing.T) {
	c := newTestOAuthClient("https://auth.example.com")

	_, err := c.IdentitySubject("not.a.jwt")
	assert.Error(t, err)

	garbage := base64.RawURLEncoding.EncodeToString([]byte("{"))
	_, err = c.IdentitySubject(strings.Join([]string{garbage, garbage, ""}, "."))
	assert.Error(t, err)
}

func TestUserinfo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/oauth2/v3/userinfo", r.URL.Path)
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"provider-user-42","email":"driver@example.com"}`))
	}))
	defer server.Close()

	c := newTestOAuthClient(server.URL)

	sub, err := c.Userinfo(context.Background(), "at-1")
	require.NoError(t, err)
	assert.Equal(t, "provider-user-42", sub)
}

func TestUserinfo_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestOAuthClient(server.URL)

	_, err := c.Userinfo(context.Background(), "at-stale")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSubjectUnresolved)
}
