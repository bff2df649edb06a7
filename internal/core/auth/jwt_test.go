package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "everkeep", TTL: time.Hour}

	tok, err := j.Issue("u123", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u123", c.UID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, "u123", c.Subject)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "everkeep", TTL: time.Hour}
	other := &JWTer{Secret: []byte("another-secret"), Issuer: "everkeep", TTL: time.Hour}

	tok, err := j.Issue("u1", "user")
	require.NoError(t, err)

	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "someone-else", TTL: time.Hour}
	me := &JWTer{Secret: []byte("test-secret"), Issuer: "everkeep", TTL: time.Hour}

	tok, err := j.Issue("u1", "user")
	require.NoError(t, err)

	_, err = me.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	// 过期超过 60s leeway
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "everkeep", TTL: -2 * time.Minute}

	tok, err := j.Issue("u1", "user")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "everkeep", TTL: time.Hour}
	_, err := j.Parse("not.a.token")
	assert.Error(t, err)
}
