// internal/auth/service.go
//
// Login, registration, and logout against the registry API.
//
// Context
// -------
// The backend issues an opaque bearer token on login.  Student Desk does not
// look inside it for any decision: its mere presence in the session is the
// "logged in" signal.  Subject() peeks at JWT claims only to show a name in
// the navbar, without verifying anything.
//
// Notes
// -----
//   • Logout never calls the backend; it only drops the local token.
//   • No duplicate-email or password-strength checks happen here.  The
//     backend answers with its own errors, which propagate unchanged.

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yanizio/studentdesk/internal/session"
)

// ErrNoToken is returned when a login answer carries no token.
var ErrNoToken = errors.New("auth: login response has no token")

// Doer is the slice of *api.Client the service uses.
type Doer interface {
	Do(ctx context.Context, op, method, path string, in, out any) error
}

// Credentials is the login payload.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Registration is the register payload.
type Registration struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Service is the auth client.
type Service struct {
	api Doer
}

func NewService(api Doer) *Service { return &Service{api: api} }

// Authenticate exchanges credentials for a token without storing it.
func (s *Service) Authenticate(ctx context.Context, c Credentials) (string, error) {
	var out loginResponse
	if err := s.api.Do(ctx, "login", http.MethodPost, "login", c, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

// Remember stores tok in the session, replacing any previous token.
func (s *Service) Remember(sc *session.Context, tok string) error {
	if sc == nil {
		return errors.New("auth: no session")
	}
	return sc.SetToken(tok)
}

// Login authenticates and stores the token.  On failure nothing is stored
// and the backend error is returned unmodified.
func (s *Service) Login(ctx context.Context, sc *session.Context, c Credentials) (string, error) {
	tok, err := s.Authenticate(ctx, c)
	if err != nil {
		return "", err
	}
	if err := s.Remember(sc, tok); err != nil {
		return "", err
	}
	return tok, nil
}

// Register creates an account.  It does not log the user in.
func (s *Service) Register(ctx context.Context, r Registration) error {
	return s.api.Do(ctx, "register", http.MethodPost, "register", r, nil)
}

// Logout clears the token.  Idempotent.
func (s *Service) Logout(sc *session.Context) error {
	if sc == nil {
		return nil
	}
	return sc.Clear()
}

// LoggedIn reports whether sc holds a token.
func (s *Service) LoggedIn(sc *session.Context) bool { return sc.LoggedIn() }

// Subject returns a display name from a JWT token's claims ("name",
// "email", then "sub").  Non-JWT tokens yield "".  The signature is NOT
// verified; never use the result for access decisions.
func Subject(tok string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return ""
	}
	for _, k := range []string{"name", "email", "sub"} {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
