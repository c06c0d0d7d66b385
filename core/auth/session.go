package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
)

var ErrMalformedToken = errors.New("malformed token")

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// User is the identity derived from the bearer token.
type User struct {
	ID        string
	Email     string
	Role      Role
	ExpiresAt time.Time // zero: no expiry
}

// Session holds the current bearer token and derives the current user from it.
// It is passed explicitly to everything needing the viewer's identity.
type Session struct {
	store  TokenStore
	clock  core.Clock
	parser *jwt.Parser
}

func NewSession(store TokenStore, clock core.Clock) *Session {
	if clock == nil {
		clock = core.SystemClock
	}
	return &Session{
		store:  store,
		clock:  clock,
		parser: new(jwt.Parser),
	}
}

// Token returns the stored bearer token, "" if none.
func (s *Session) Token() string {
	token, err := s.store.Load()
	if err != nil {
		return ""
	}
	return token
}

// SetToken stores a freshly issued token after checking it carries readable claims.
func (s *Session) SetToken(token string) error {
	if _, err := s.parse(token); err != nil {
		return err
	}
	return errors.Wrap(s.store.Save(token), "saving token")
}

// Clear forgets the token; used on logout and on 401.
func (s *Session) Clear() error {
	return errors.Wrap(s.store.Clear(), "clearing token")
}

// User returns the current user; ok is false when there is no token or it expired.
func (s *Session) User() (usr User, ok bool) {
	token := s.Token()
	if token == "" {
		return User{}, false
	}
	claims, err := s.parse(token)
	if err != nil {
		return User{}, false
	}
	usr = User{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  ParseRole(claims.Role),
	}
	if claims.ExpiresAt != 0 {
		usr.ExpiresAt = time.Unix(claims.ExpiresAt, 0)
		if !s.clock.Now().Before(usr.ExpiresAt) {
			return User{}, false
		}
	}
	return usr, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

// Role returns the current role, "" when unauthenticated.
func (s *Session) Role() Role {
	usr, _ := s.User()
	return usr.Role
}

// Can checks capability for the current role.
func (s *Session) Can(capability Capability) bool {
	return Can(s.Role(), capability)
}

// parse reads the claims without verifying the signature: the server is the authority.
func (s *Session) parse(token string) (*Claims, error) {
	claims := new(Claims)
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(ErrMalformedToken, err.Error())
	}
	if claims.Subject == "" {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
