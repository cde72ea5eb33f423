// Package auth orchestrates the portal session lifecycle: credential
// exchange, session persistence, logout, and role checks.
package auth

import (
	"context"
	stderrors "errors"

	"github.com/trilhalab/portalctl/internal/api"
	"github.com/trilhalab/portalctl/internal/errors"
	"github.com/trilhalab/portalctl/internal/log"
	"github.com/trilhalab/portalctl/internal/session"
)

// Service is the authentication controller. It owns no state of its own;
// the session store is the single source of truth.
type Service struct {
	client *api.Client
	store  *session.Store
	logger *log.Logger
}

// NewService creates an auth service over the given client and store.
func NewService(client *api.Client, store *session.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Service{client: client, store: store, logger: logger}
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginData is the data field of a successful login envelope.
type loginData struct {
	User struct {
		ID    string   `json:"_id"`
		Name  string   `json:"name"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
		Role  string   `json:"role"`
	} `json:"user"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}

// Login exchanges credentials for a session and persists it. On any
// failure — server-side rejection or transport error short of a network
// fault — the returned error carries the server message and nothing is
// persisted.
func (s *Service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	env, err := s.client.Post(ctx, api.LoginPath, Credentials{Email: email, Password: password})
	if err != nil {
		var pe *errors.PortalError
		if stderrors.As(err, &pe) && pe.Code == errors.ErrCodeRequestFailed {
			return nil, errors.NewLoginFailedError(pe.Message)
		}
		return nil, err
	}

	if !env.Success {
		return nil, errors.NewLoginFailedError(env.Message)
	}

	var data loginData
	if err := env.DecodeData(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoginFailed, "malformed login response", err)
	}

	sess := &session.Session{
		ID:    data.User.ID,
		Name:  data.User.Name,
		Email: data.User.Email,
		Role:  session.ResolveRole(data.User.Roles, data.User.Role),
		Token: data.Token,
	}
	if !sess.Valid() {
		return nil, errors.New(errors.ErrCodeLoginFailed, "login response missing user identity or token")
	}

	if err := s.store.Save(sess); err != nil {
		return nil, err
	}

	s.logger.Debug("login succeeded", "user", sess.Email, "role", string(sess.Role))
	return sess, nil
}

// Logout clears the persisted session. Logging out with no active session
// is not an error.
func (s *Service) Logout() {
	s.store.Clear()
}

// ChangePassword asks the portal to replace the current password. The
// stored session is left untouched; the caller decides whether to force a
// re-login.
func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) (*api.Envelope, error) {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return s.client.Patch(ctx, api.ChangePasswordPath, body)
}

// CurrentUser returns the persisted session, or nil when anonymous.
func (s *Service) CurrentUser() *session.Session {
	return s.store.Load()
}

// IsAuthenticated reports whether a live session exists.
func (s *Service) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// IsManager reports whether the current session holds the manager role.
func (s *Service) IsManager() bool {
	return s.CurrentUser().IsManager()
}

// RequireAuth returns the current session or an authentication error.
func (s *Service) RequireAuth() (*session.Session, error) {
	sess := s.CurrentUser()
	if sess == nil {
		return nil, errors.NewNotAuthenticatedError()
	}
	return sess, nil
}

// RequireAdmin returns the current session when it holds the manager role.
// A missing session is an authentication error; a session without the
// manager role is an authorization error. The two are never conflated.
func (s *Service) RequireAdmin() (*session.Session, error) {
	sess, err := s.RequireAuth()
	if err != nil {
		return nil, err
	}
	if !sess.IsManager() {
		return nil, errors.NewManagerRequiredError()
	}
	return sess, nil
}
