package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"attendcal/internal/auth"
)

const (
	testUsername = "admin"
	testPassword = "secret"
	testSecret   = "test-signing-secret"
)

func newAuthenticator(t *testing.T) *auth.Authenticator {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	return auth.New(auth.Credentials{Username: testUsername, PasswordHash: hash}, testSecret, time.Hour)
}

func TestVerify(t *testing.T) {
	a := newAuthenticator(t)

	require.True(t, a.Verify(testUsername, testPassword))
	require.False(t, a.Verify(testUsername, "wrong"))
	require.False(t, a.Verify("someoneelse", testPassword))
	require.False(t, a.Verify("", ""))
}

func TestSessionRoundTrip(t *testing.T) {
	a := newAuthenticator(t)

	token, err := a.IssueSession(testUsername)
	require.NoError(t, err)

	sess := a.CurrentSession(token)
	require.True(t, sess.LoggedIn)
	require.Equal(t, testUsername, sess.Username)
}

func TestCurrentSessionRejectsBadTokens(t *testing.T) {
	a := newAuthenticator(t)

	require.Equal(t, auth.Session{}, a.CurrentSession(""))
	require.Equal(t, auth.Session{}, a.CurrentSession("not-a-jwt"))

	token, err := a.IssueSession(testUsername)
	require.NoError(t, err)
	require.Equal(t, auth.Session{}, a.CurrentSession(token+"tampered"))
}

func TestCurrentSessionRejectsForeignKey(t *testing.T) {
	a := newAuthenticator(t)

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	other := auth.New(auth.Credentials{Username: testUsername, PasswordHash: hash}, "other-secret", time.Hour)

	token, err := other.IssueSession(testUsername)
	require.NoError(t, err)
	require.Equal(t, auth.Session{}, a.CurrentSession(token))
}

func TestCurrentSessionRejectsExpired(t *testing.T) {
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	a := auth.New(auth.Credentials{Username: testUsername, PasswordHash: hash}, testSecret, time.Nanosecond)

	token, err := a.IssueSession(testUsername)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, auth.Session{}, a.CurrentSession(token))
}
