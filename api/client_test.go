package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/api"
	"github.com/jrsteele09/go-auth-client/apierror"
)

const (
	testUsername = "alice"
	testPassword = "secret"
)

func newBackend(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *api.Client) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, api.New(server.URL)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func TestIssueTokenSuccess(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, api.TokenPath, r.URL.Path)

		var creds api.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, testUsername, creds.Username)
		require.Equal(t, testPassword, creds.Password)

		writeJSON(t, w, http.StatusOK, map[string]string{"access": "A1", "refresh": "R1"})
	})

	pair, err := client.IssueToken(context.Background(), api.Credentials{Username: testUsername, Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, "A1", pair.AccessToken)
	require.Equal(t, "R1", pair.RefreshToken)
}

func TestIssueTokenRejectionUsesDetailMessage(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
	})

	_, err := client.IssueToken(context.Background(), api.Credentials{Username: testUsername, Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, apierror.KindCredential, apierror.KindOf(err))
	require.Equal(t, "No active account found with the given credentials", err.Error())
}

func TestIssueTokenBare401MapsToBadCredentials(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.IssueToken(context.Background(), api.Credentials{Username: testUsername, Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, apierror.KindCredential, apierror.KindOf(err))
	require.Equal(t, "Invalid username or password.", err.Error())
}

func TestIssueTokenNoResponseIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from here on
	client := api.New(server.URL)

	_, err := client.IssueToken(context.Background(), api.Credentials{Username: testUsername, Password: testPassword})
	require.Error(t, err)
	require.Equal(t, apierror.KindNetwork, apierror.KindOf(err))
}

func TestIssueTokenTimeoutIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)
	client := api.New(server.URL, api.WithTimeout(20*time.Millisecond))

	_, err := client.IssueToken(context.Background(), api.Credentials{Username: testUsername, Password: testPassword})
	require.Error(t, err)
	require.Equal(t, apierror.KindNetwork, apierror.KindOf(err))
}

func TestFetchProfileSendsBearerToken(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, api.ProfilePath, r.URL.Path)
		require.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 1, "username": testUsername, "email": "alice@example.com"})
	})

	user, err := client.FetchProfile(context.Background(), "A1")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, testUsername, user.Username)
}

func TestRegisterFlattensFieldErrorsInSortedOrder(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{
			"username": []string{"already taken"},
			"email":    []string{"invalid address", "already in use"},
		})
	})

	_, err := client.Register(context.Background(), api.Registration{Username: testUsername, Email: "x", Password: testPassword})
	require.Error(t, err)
	require.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	require.Equal(t, "email: invalid address already in use; username: already taken", err.Error())

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, []string{"already taken"}, apiErr.Fields["username"])
}

func TestRegisterSuccessReturnsCreatedUser(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, api.RegisterPath, r.URL.Path)
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": 2, "username": "newuser", "email": "new@example.com"})
	})

	created, err := client.Register(context.Background(), api.Registration{Username: "newuser", Email: "new@example.com", Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, "newuser", created.Username)
}

func TestRefreshReturnsRotatedPair(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, api.RefreshPath, r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "R1", req["refresh"])

		writeJSON(t, w, http.StatusOK, map[string]string{"access": "A2", "refresh": "R2"})
	})

	pair, err := client.Refresh(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, "A2", pair.AccessToken)
	require.Equal(t, "R2", pair.RefreshToken)
}

func TestRefreshWithoutRotationLeavesRefreshEmpty(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "A2"})
	})

	pair, err := client.Refresh(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, "A2", pair.AccessToken)
	require.Empty(t, pair.RefreshToken)
}

func TestRefreshRejectionIsRefreshError(t *testing.T) {
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
	})

	_, err := client.Refresh(context.Background(), "R1")
	require.Error(t, err)
	require.Equal(t, apierror.KindRefresh, apierror.KindOf(err))
}

func TestRevokeSendsRefreshToken(t *testing.T) {
	var got string
	_, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, api.LogoutPath, r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = req["refresh"]
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Revoke(context.Background(), "R1"))
	require.Equal(t, "R1", got)
}
