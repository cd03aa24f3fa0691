package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// CookieName is the session cookie holding the signed token.
const CookieName = "attendance_session"

// Credentials is the single fixed administrator identity. The hash is
// computed once at startup; the plaintext password is never retained.
type Credentials struct {
	Username     string
	PasswordHash string
}

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Session is the decoded state of a session token.
type Session struct {
	LoggedIn bool
	Username string
}

// Claims is the JWT payload carried by the session cookie.
type Claims struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator verifies the admin credential and issues session tokens.
// It holds no per-session state: the token is the session.
type Authenticator struct {
	creds      Credentials
	signingKey []byte
	ttl        time.Duration
}

// New creates an authenticator for the given credentials and signing secret.
func New(creds Credentials, signingKey string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Authenticator{creds: creds, signingKey: []byte(signingKey), ttl: ttl}
}

// Verify reports whether username and password match the fixed admin
// credential. bcrypt's comparison is constant-time on the hash.
func (a *Authenticator) Verify(username, password string) bool {
	if username != a.creds.Username {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.creds.PasswordHash), []byte(password)) == nil
}

// IssueSession returns a signed token asserting a logged-in session for
// username.
func (a *Authenticator) IssueSession(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		LoggedIn: true,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
}

// TTL returns the session lifetime, used for the cookie Max-Age.
func (a *Authenticator) TTL() time.Duration { return a.ttl }

// CurrentSession decodes token. A missing, malformed, tampered, or expired
// token is a logged-out session, never an error.
func (a *Authenticator) CurrentSession(token string) Session {
	if token == "" {
		return Session{}
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return a.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !claims.LoggedIn {
		return Session{}
	}
	return Session{LoggedIn: true, Username: claims.Username}
}
