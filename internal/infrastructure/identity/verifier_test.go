package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACVerifier_RoundTrip(t *testing.T) {
	v := NewHMACVerifier("test-secret")

	token := v.Sign("auth0|alice", time.Hour)
	subject, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "auth0|alice", subject)
}

func TestHMACVerifier_Expired(t *testing.T) {
	v := NewHMACVerifier("test-secret")

	token := v.Sign("auth0|alice", -time.Minute)
	_, err := v.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACVerifier_Tampered(t *testing.T) {
	v := NewHMACVerifier("test-secret")
	other := NewHMACVerifier("other-secret")

	// 换密钥签发的令牌校验失败
	token := other.Sign("auth0|alice", time.Hour)
	_, err := v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 篡改载荷后签名不再匹配
	token = v.Sign("auth0|alice", time.Hour)
	tampered := "x" + token
	_, err = v.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACVerifier_Garbage(t *testing.T) {
	v := NewHMACVerifier("test-secret")

	for _, token := range []string{"", "no-dot", "a.b", "!!!.???"} {
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
