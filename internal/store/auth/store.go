// Package auth holds the client-side session: token pair, expiry, and the
// cached user profile. It implements transport.TokenSource, so every API call
// draws its bearer token from here, and the 401 refresh-and-retry path lands
// back here too.
//
// State machine: anonymous -> authenticated <-> refreshing. A refresh failure
// drops the session back to anonymous and publishes session.expired, the only
// fatal client path.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/store/events"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
	"github.com/accunode/accunode-go/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// State is the auth store's lifecycle state.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateRefreshing    State = "refreshing"
)

const profileCacheKey = "users/me"

// Store is the auth store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	state   State
	session *models.Session

	auth    *api.AuthService
	users   *api.UsersService
	persist SessionStore
	bus     *events.Bus
	log     logger.Logger

	// profile staleness window; refetched lazily after expiry
	profile *gocache.Cache

	// coalesces concurrent refresh attempts into one network call
	refreshGroup singleflight.Group
}

// NewStore builds the auth store and restores any persisted session.
func NewStore(authSvc *api.AuthService, usersSvc *api.UsersService, persist SessionStore, bus *events.Bus, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Store{
		state:   StateAnonymous,
		auth:    authSvc,
		users:   usersSvc,
		persist: persist,
		bus:     bus,
		log:     log.WithComponent("auth-store"),
		profile: gocache.New(constants.ProfileStaleness, 10*time.Minute),
	}
	if persist != nil {
		if sess, err := persist.Load(); err == nil && sess.Valid() {
			s.session = sess
			s.state = StateAuthenticated
			if sess.User != nil {
				s.profile.SetDefault(profileCacheKey, sess.User)
			}
		}
	}
	return s
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Session returns a copy of the current session, or nil when anonymous.
func (s *Store) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// Login authenticates and installs the session.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	grant, err := s.auth.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.installGrant(ctx, grant)
}

// Register creates an account and installs the session.
func (s *Store) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	grant, err := s.auth.Register(ctx, api.RegisterRequest{Email: email, Password: password, FullName: fullName})
	if err != nil {
		return nil, err
	}
	return s.installGrant(ctx, grant)
}

// Logout invalidates the session server-side (best effort), clears all local
// state, and publishes auth.logout so dependent stores reset.
func (s *Store) Logout(ctx context.Context) {
	if s.Session().Valid() {
		if err := s.auth.Logout(ctx); err != nil {
			s.log.Warn(ctx, "server logout failed, clearing local session anyway",
				logger.Fields{"error": err.Error()})
		}
	}
	s.clearSession()
	if s.bus != nil {
		s.bus.Publish(constants.EventAuthLogout, nil)
	}
}

// AccessToken implements transport.TokenSource. It refreshes proactively
// when the token expires within the refresh buffer.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	sess := s.session
	s.mu.RUnlock()

	if !sess.Valid() {
		return "", errors.NewAuthError("not authenticated")
	}
	if sess.ExpiresWithin(constants.RefreshBuffer) {
		return s.RefreshNow(ctx)
	}
	return sess.AccessToken, nil
}

// RefreshNow implements transport.TokenSource. Concurrent callers share a
// single in-flight refresh; all of them observe the same outcome.
func (s *Store) RefreshNow(ctx context.Context) (string, error) {
	token, err, _ := s.refreshGroup.Do("refresh", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (s *Store) refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.session.Valid() {
		s.mu.Unlock()
		return "", errors.NewAuthError("not authenticated")
	}
	refreshToken := s.session.RefreshToken
	s.state = StateRefreshing
	s.mu.Unlock()

	grant, err := s.auth.Refresh(ctx, refreshToken)
	if err != nil {
		s.log.Warn(ctx, "token refresh failed, clearing session", logger.Fields{"error": err.Error()})
		s.clearSession()
		if s.bus != nil {
			s.bus.Publish(constants.EventSessionExpired, nil)
		}
		return "", errors.NewAuthError("token refresh failed").WithCause(err)
	}

	s.mu.Lock()
	s.session = grantToSession(grant, s.session)
	s.state = StateAuthenticated
	sess := *s.session
	s.mu.Unlock()

	s.save(&sess)
	s.log.Debug(ctx, "access token refreshed", logger.Fields{"expires_at": sess.ExpiresAt})
	return sess.AccessToken, nil
}

// Profile returns the user profile, served from cache inside the staleness
// window unless force is set.
func (s *Store) Profile(ctx context.Context, force bool) (*models.User, error) {
	if !force {
		if cached, ok := s.profile.Get(profileCacheKey); ok {
			return cached.(*models.User), nil
		}
	}
	user, err := s.users.Me(ctx)
	if err != nil {
		return nil, err
	}
	s.profile.SetDefault(profileCacheKey, user)

	s.mu.Lock()
	if s.session != nil {
		s.session.User = user
		sess := *s.session
		s.mu.Unlock()
		s.save(&sess)
	} else {
		s.mu.Unlock()
	}
	return user, nil
}

// Role returns the cached role, or the base role when no profile is known.
func (s *Store) Role() constants.Role {
	if cached, ok := s.profile.Get(profileCacheKey); ok {
		return cached.(*models.User).Role
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session != nil && s.session.User != nil {
		return s.session.User.Role
	}
	return constants.RoleUser
}

func (s *Store) installGrant(ctx context.Context, grant *api.TokenResponse) (*models.User, error) {
	sess := grantToSession(grant, nil)

	s.mu.Lock()
	s.session = sess
	s.state = StateAuthenticated
	s.mu.Unlock()

	if sess.User != nil {
		s.profile.SetDefault(profileCacheKey, sess.User)
	}
	s.save(sess)

	if sess.User != nil {
		return sess.User, nil
	}
	// The grant carried no profile; fetch it so role checks work.
	return s.Profile(ctx, true)
}

func (s *Store) clearSession() {
	s.mu.Lock()
	s.session = nil
	s.state = StateAnonymous
	s.mu.Unlock()
	s.profile.Flush()
	if s.persist != nil {
		if err := s.persist.Clear(); err != nil {
			s.log.Warn(context.Background(), "failed to clear persisted session",
				logger.Fields{"error": err.Error()})
		}
	}
}

func (s *Store) save(sess *models.Session) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(sess); err != nil {
		s.log.Warn(context.Background(), "failed to persist session",
			logger.Fields{"error": err.Error()})
	}
}

// grantToSession builds a session from a token grant. Expiry comes from
// expires_in when the server sends it, otherwise from the JWT exp claim.
// The previous session fills gaps (rotating refresh grants may omit the
// profile or even the refresh token).
func grantToSession(grant *api.TokenResponse, prev *models.Session) *models.Session {
	sess := &models.Session{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		User:         grant.User,
	}
	if sess.RefreshToken == "" && prev != nil {
		sess.RefreshToken = prev.RefreshToken
	}
	if sess.User == nil && prev != nil {
		sess.User = prev.User
	}
	if grant.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	} else if exp, ok := tokenExpiry(grant.AccessToken); ok {
		sess.ExpiresAt = exp
	}
	return sess
}

// tokenExpiry reads the exp claim without verifying the signature. The server
// signed the token; the client only needs the expiry for refresh scheduling.
func tokenExpiry(tokenString string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
