package jwtauth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
)

var (
	testSecret = []byte("0123456789abcdef-test-secret")
	testNow    = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, time.Hour)
	require.NoError(t, err)
	return c
}

func TestNewCodec_RejectsWeakConfig(t *testing.T) {
	_, err := NewCodec([]byte("short"), time.Hour)
	require.Error(t, err)

	_, err = NewCodec(testSecret, 0)
	require.Error(t, err)
}

func TestCodec_IssueAndVerify(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Issue("user-123", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), tok.ExpiresAt)
	assert.Equal(t, 2, strings.Count(tok.Value, "."))

	userID, err := c.Verify(tok.Value, testNow.Add(59*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestCodec_TokensAreUnique(t *testing.T) {
	c := newTestCodec(t)

	a, err := c.Issue("user-123", testNow)
	require.NoError(t, err)
	b, err := c.Issue("user-123", testNow)
	require.NoError(t, err)

	assert.NotEqual(t, a.Value, b.Value)
}

func TestCodec_VerifyFailures(t *testing.T) {
	c := newTestCodec(t)
	tok, err := c.Issue("user-123", testNow)
	require.NoError(t, err)

	other, err := NewCodec([]byte("another-secret-of-16+"), time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("user-123", testNow)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{name: "expired", token: tok.Value, now: testNow.Add(time.Hour + time.Second)},
		{name: "wrong secret", token: foreign.Value, now: testNow},
		{name: "tampered signature", token: flipSignatureChar(tok.Value), now: testNow},
		{name: "tampered payload", token: replacePayloadSubject(t, tok.Value, "admin"), now: testNow},
		{name: "garbage", token: "not.a.jwt", now: testNow},
		{name: "empty", token: "", now: testNow},
		{name: "alg none", token: unsignedToken(t, "user-123"), now: testNow},
		{name: "no expiry", token: signedWithoutExpiry(t, "user-123"), now: testNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Verify(tt.token, tt.now)
			require.ErrorIs(t, err, driven.ErrInvalidToken)
		})
	}
}

func flipSignatureChar(token string) string {
	i := strings.LastIndexByte(token, '.') + 5
	b := []byte(token)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func replacePayloadSubject(t *testing.T, token, subject string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(raw), `"sub":"user-123"`, `"sub":"`+subject+`"`, 1)
	require.NotEqual(t, string(raw), forged)

	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))
	return strings.Join(parts, ".")
}

func unsignedToken(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}

func signedWithoutExpiry(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: subject,
	}})
	s, err := tok.SignedString(testSecret)
	require.NoError(t, err)
	return s
}
