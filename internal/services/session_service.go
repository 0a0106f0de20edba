package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"storefront/internal/models"
	"storefront/internal/storage"
	"storefront/internal/transport"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrMissingConsumerID  = errors.New("phone and pin, or email and password, are required")
)

type LoginTransport interface {
	Login(ctx context.Context, creds models.Credentials, role models.Role) (*transport.LoginResult, error)
}

// SessionService owns who is logged in, with which token, for which role.
// It starts in the restoring state until Restore is called.
type SessionService struct {
	mu    sync.RWMutex
	state models.SessionState
	user  *models.User
	token string

	// generation is bumped by every login, token login and logout so that a
	// login finishing after a newer action leaves state alone.
	generation uint64

	store     storage.Store
	keys      storage.Keys
	transport LoginTransport
	logger    zerolog.Logger
}

func NewSessionService(store storage.Store, keys storage.Keys, lt LoginTransport, logger zerolog.Logger) *SessionService {
	return &SessionService{
		state:     models.StateRestoring,
		store:     store,
		keys:      keys,
		transport: lt,
		logger:    logger,
	}
}

// Restore loads a persisted session. Any missing or unreadable piece is
// treated as no session and the leftovers are cleared.
func (s *SessionService) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, tokenErr := s.store.Get(ctx, s.keys.Token)
	raw, userErr := s.store.Get(ctx, s.keys.User)

	if tokenErr == nil && userErr == nil && token != "" {
		var user models.User
		err := json.Unmarshal([]byte(raw), &user)
		if err == nil && user.Role.Valid() {
			s.user, s.token, s.state = &user, token, models.StateAuthenticated
			s.logger.Debug().Str("role", string(user.Role)).Msg("Session restored")
			return
		}
		s.logger.Warn().Err(err).Msg("Discarding unreadable persisted session")
	} else if !isMissing(tokenErr) || !isMissing(userErr) {
		s.logger.Warn().
			AnErr("token_err", tokenErr).
			AnErr("user_err", userErr).
			Msg("Discarding partial persisted session")
	}

	if err := s.store.Delete(ctx, s.keys.Token, s.keys.User, s.keys.LegacyAdmin); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear persisted session")
	}
	s.user, s.token, s.state = nil, "", models.StateUnauthenticated
}

// Login authenticates against the role's login transport. Transport errors
// are returned unchanged.
func (s *SessionService) Login(ctx context.Context, creds models.Credentials, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := validateCredentials(creds, role); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = models.StateAuthenticating
	s.mu.Unlock()

	res, err := s.transport.Login(ctx, creds, role)
	if err != nil {
		s.mu.Lock()
		if gen == s.generation {
			s.state = s.settledState()
		}
		s.mu.Unlock()
		s.logger.Warn().Err(err).Str("role", string(role)).Msg("Login failed")
		return nil, err
	}

	user := buildUser(res.User, creds, role)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Info().Str("role", string(role)).Msg("Login superseded by a newer session action")
		out := *user
		return &out, nil
	}
	s.setAuthenticated(ctx, res.Token, user)
	s.logger.Info().Str("user_id", string(user.ID)).Str("role", string(role)).Msg("User logged in")

	out := *user
	return &out, nil
}

// SetUserFromToken signs in with a token obtained out of band. A token that
// cannot be decoded is logged and ignored; the current session is kept.
func (s *SessionService) SetUserFromToken(ctx context.Context, token string, role models.Role) {
	user, err := DecodeToken(token)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Ignoring undecodable token")
		return
	}
	if !role.Valid() {
		s.logger.Warn().Str("role", string(role)).Msg("Ignoring token login with unknown role")
		return
	}
	user.Role = role

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.setAuthenticated(ctx, token, user)
	s.logger.Info().Str("user_id", string(user.ID)).Str("role", string(role)).Msg("Session set from token")
}

func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if err := s.store.Delete(ctx, s.keys.Token, s.keys.User, s.keys.LegacyAdmin); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear persisted session")
	}
	s.user, s.token, s.state = nil, "", models.StateUnauthenticated
	s.logger.Info().Msg("User logged out")
}

func (s *SessionService) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := models.Session{
		State:     s.state,
		IsLoading: s.state == models.StateRestoring || s.state == models.StateAuthenticating,
	}
	if s.state == models.StateAuthenticated && s.user != nil && s.token != "" {
		u := *s.user
		sess.User = &u
		sess.Token = s.token
		sess.IsAuthenticated = true
	}
	return sess
}

// Token returns the bearer credential of the authenticated session, or "".
func (s *SessionService) Token() string {
	return s.Snapshot().Token
}

// setAuthenticated must be called with mu held.
func (s *SessionService) setAuthenticated(ctx context.Context, token string, user *models.User) {
	s.persist(ctx, token, user)
	s.user, s.token, s.state = user, token, models.StateAuthenticated
}

func (s *SessionService) persist(ctx context.Context, token string, user *models.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode session user")
		return
	}
	if err := s.store.Set(ctx, s.keys.Token, token); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist session token")
	}
	if err := s.store.Set(ctx, s.keys.User, string(raw)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist session user")
	}
	if user.Role == models.RoleAdmin {
		if err := s.store.Set(ctx, s.keys.LegacyAdmin, token); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to persist legacy admin token")
		}
		return
	}
	if err := s.store.Delete(ctx, s.keys.LegacyAdmin); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear legacy admin token")
	}
}

// settledState is the state to fall back to once a login attempt ends
// without success. A session that existed before the attempt is kept.
func (s *SessionService) settledState() models.SessionState {
	if s.user != nil && s.token != "" {
		return models.StateAuthenticated
	}
	return models.StateUnauthenticated
}

func validateCredentials(creds models.Credentials, role models.Role) error {
	if role == models.RoleConsumer {
		if creds.UsesPhone() || (creds.Email != "" && creds.Password != "") {
			return nil
		}
		return ErrMissingConsumerID
	}
	if creds.Email == "" || creds.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// buildUser prefers the transport's record and otherwise synthesizes one
// from the submitted credentials. Role always comes from the login call.
func buildUser(fromTransport *models.User, creds models.Credentials, role models.Role) *models.User {
	var u models.User
	if fromTransport != nil {
		u = *fromTransport
	} else {
		u.Email = creds.Email
		u.Phone = creds.Phone
		if u.Email == "" && creds.Phone != "" {
			u.Email = models.PlaceholderEmail(creds.Phone)
		}
	}
	u.Role = role
	return &u
}

func isMissing(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
