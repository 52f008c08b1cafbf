package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
)

// stubTokens is a scripted TokenSource: AccessToken returns current, and
// RefreshNow swaps in next while counting calls.
type stubTokens struct {
	current    string
	next       string
	refreshes  atomic.Int32
	refreshErr error
}

func (s *stubTokens) AccessToken(ctx context.Context) (string, error) {
	return s.current, nil
}

func (s *stubTokens) RefreshNow(ctx context.Context) (string, error) {
	s.refreshes.Add(1)
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	s.current = s.next
	return s.next, nil
}

func TestGetRetriesOnceAfterRefresh(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, constants.APIBasePath+"/ping", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tokens := &stubTokens{current: "stale", next: "fresh"}
	c := New(srv.URL, 5*time.Second, tokens, nil)

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Get(context.Background(), "/ping", &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(1), tokens.refreshes.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestSecond401IsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &stubTokens{current: "stale", next: "still-rejected"}
	c := New(srv.URL, 5*time.Second, tokens, nil)

	err := c.Get(context.Background(), "/ping", nil)
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
	// Exactly one refresh attempt, never a second.
	assert.Equal(t, int32(1), tokens.refreshes.Load())
}

func TestRefreshFailureSurfacesAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &stubTokens{current: "stale", refreshErr: errors.NewAuthError("refresh token rejected")}
	c := New(srv.URL, 5*time.Second, tokens, nil)

	err := c.Get(context.Background(), "/ping", nil)
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestPostPublicNeverRefreshes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"bad credentials"}`))
	}))
	defer srv.Close()

	tokens := &stubTokens{current: "ignored"}
	c := New(srv.URL, 5*time.Second, tokens, nil)

	err := c.PostPublic(context.Background(), "/auth/login", map[string]string{"email": "x"}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), tokens.refreshes.Load())

	app, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, app.HTTPStatus)
	assert.Contains(t, app.Message, "bad credentials")
}

func TestRequestCarriesIDAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(constants.HeaderRequestID))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil, nil)
	require.NoError(t, c.Post(context.Background(), "/echo", map[string]string{"a": "b"}, nil))
}

func TestNetworkErrorIsNormalized(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second, nil, nil)
	err := c.Get(context.Background(), "/ping", nil)
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
}

func TestToEnvelope(t *testing.T) {
	ok := ToEnvelope(map[string]int{"n": 1}, nil)
	assert.True(t, ok.Success)
	assert.Empty(t, ok.Error)

	bad := ToEnvelope(nil, errors.NewHTTPError(500, "boom"))
	assert.False(t, bad.Success)
	assert.NotEmpty(t, bad.Error)
	assert.Nil(t, bad.Data)
}
