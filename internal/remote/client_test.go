package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/prdsmith/internal/backend"
	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/remote"
	"github.com/alexanderramin/prdsmith/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackendClient(t *testing.T, token string) *remote.Client {
	t.Helper()
	srv := httptest.NewServer(backend.NewServer(testutil.NewTestDB(t), backend.TokenTable{"alice-token": "alice", "bob-token": "bob"}))
	t.Cleanup(srv.Close)
	return remote.NewClient(remote.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, remote.StaticIdentity{Token: token})
}

func TestClient_RoundTripAgainstBackend(t *testing.T) {
	c := newBackendClient(t, "alice-token")
	ctx := context.Background()

	rec := testutil.NewTestRecord("b1", testutil.WithPayload(domain.Payload{"name": "Login", "effort": "S"}))
	created, err := c.Create(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, created.ID)

	exists, err := c.Exists(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	updated, err := c.Update(ctx, rec.ID, domain.Payload{"effort": "L"})
	require.NoError(t, err)
	assert.Equal(t, "L", updated.Payload.String("effort"))
	assert.Equal(t, "Login", updated.Payload.String("name"))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	got, err := c.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Payload, got.Payload)

	list, err := c.QueryByParent(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)

	require.NoError(t, c.Delete(ctx, rec.ID))
	exists, err = c.Exists(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_PutReplacesParentAndMergesPayload(t *testing.T) {
	c := newBackendClient(t, "alice-token")
	ctx := context.Background()

	rec := testutil.NewTestRecord("b1", testutil.WithPayload(domain.Payload{"name": "Login", "effort": "S"}))
	_, err := c.Create(ctx, rec)
	require.NoError(t, err)

	moved := rec.Clone()
	moved.ParentID = "b2"
	moved.Payload = domain.Payload{"effort": "M"}
	out, err := c.Put(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, "b2", out.ParentID)
	assert.Equal(t, "M", out.Payload.String("effort"))
	assert.Equal(t, "Login", out.Payload.String("name"))

	old, err := c.QueryByParent(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, old)

	_, err = c.Put(ctx, testutil.NewTestRecord("b1", testutil.WithID("missing")))
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestClient_NotFound(t *testing.T) {
	c := newBackendClient(t, "alice-token")
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, remote.ErrNotFound)
	_, err = c.Update(ctx, "missing", domain.Payload{"a": 1})
	assert.ErrorIs(t, err, remote.ErrNotFound)
	assert.ErrorIs(t, c.Delete(ctx, "missing"), remote.ErrNotFound)
}

func TestClient_OwnersAreIsolated(t *testing.T) {
	srv := httptest.NewServer(backend.NewServer(testutil.NewTestDB(t), backend.TokenTable{"a": "alice", "b": "bob"}))
	t.Cleanup(srv.Close)
	alice := remote.NewClient(remote.Config{BaseURL: srv.URL}, remote.StaticIdentity{Token: "a"})
	bob := remote.NewClient(remote.Config{BaseURL: srv.URL}, remote.StaticIdentity{Token: "b"})
	ctx := context.Background()

	rec := testutil.NewTestRecord("b1")
	_, err := alice.Create(ctx, rec)
	require.NoError(t, err)

	_, err = bob.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, remote.ErrNotFound)
	list, err := bob.QueryByParent(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_RejectedToken(t *testing.T) {
	c := newBackendClient(t, "stolen")

	_, err := c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, remote.ErrAuth)
	var apiErr *remote.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_IdentityFailureSkipsNetwork(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	t.Cleanup(srv.Close)

	cases := map[string]remote.IdentityProvider{
		"no provider": nil,
		"empty token": remote.StaticIdentity{},
		"provider error": remote.IdentityFunc(func(context.Context) (remote.Identity, error) {
			return remote.Identity{}, errors.New("session expired")
		}),
	}
	for name, idp := range cases {
		t.Run(name, func(t *testing.T) {
			c := remote.NewClient(remote.Config{BaseURL: srv.URL}, idp)
			_, err := c.QueryByParent(context.Background(), "b1")
			assert.ErrorIs(t, err, remote.ErrAuth)
		})
	}
	assert.Zero(t, hits)
}

func TestClient_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, remote.ErrNotFound},
		{http.StatusUnauthorized, remote.ErrAuth},
		{http.StatusForbidden, remote.ErrAuth},
		{http.StatusGatewayTimeout, remote.ErrTimeout},
		{http.StatusInternalServerError, remote.ErrNetwork},
		{http.StatusServiceUnavailable, remote.ErrNetwork},
		{http.StatusConflict, remote.ErrRejected},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"code":"X","message":"nope"}`))
			}))
			t.Cleanup(srv.Close)

			c := remote.NewClient(remote.Config{BaseURL: srv.URL}, remote.StaticIdentity{Token: "t"})
			_, err := c.Get(context.Background(), "id")
			assert.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := remote.NewClient(remote.Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, remote.StaticIdentity{Token: "t"})
	_, err := c.Get(context.Background(), "slow")
	assert.ErrorIs(t, err, remote.ErrTimeout)
	assert.True(t, remote.IsTransient(err))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := remote.NewClient(remote.Config{BaseURL: url, Timeout: time.Second}, remote.StaticIdentity{Token: "t"})
	_, err := c.Create(context.Background(), testutil.NewTestRecord("b1"))
	assert.ErrorIs(t, err, remote.ErrNetwork)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records":null}`))
	}))
	t.Cleanup(srv.Close)

	c := remote.NewClient(remote.Config{BaseURL: srv.URL + "/"}, remote.StaticIdentity{Token: "tok-123"})
	list, err := c.QueryByParent(context.Background(), "b1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Equal(t, "Bearer tok-123", auth)
}

func TestOffline_AlwaysNetworkError(t *testing.T) {
	ctx := context.Background()
	var s remote.Store = remote.Offline{}

	_, err := s.Get(ctx, "x")
	assert.ErrorIs(t, err, remote.ErrNetwork)
	_, err = s.Exists(ctx, "x")
	assert.ErrorIs(t, err, remote.ErrNetwork)
	assert.ErrorIs(t, s.Delete(ctx, "x"), remote.ErrNetwork)
}
