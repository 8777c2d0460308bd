package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken 令牌格式错误或签名不匹配
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired 令牌已过期
	ErrTokenExpired = errors.New("token expired")
)

// Verifier 身份校验接口
// 外部身份提供方的边界：输入凭证，输出已校验的调用者 subject
type Verifier interface {
	Verify(token string) (subject string, err error)
}

// HMACVerifier 紧凑签名令牌的校验实现
// 令牌格式：base64url(subject|expiresAtUnix) + "." + base64url(hmac-sha256)
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier 创建校验器
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Sign 为 subject 签发令牌（服务端签发，供测试和内部工具使用）
func (v *HMACVerifier) Sign(subject string, ttl time.Duration) string {
	payload := fmt.Sprintf("%s|%d", subject, time.Now().Add(ttl).Unix())
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + v.signature(encoded)
}

// Verify 校验令牌并返回 subject
func (v *HMACVerifier) Verify(token string) (string, error) {
	encoded, sig, found := strings.Cut(token, ".")
	if !found {
		return "", ErrInvalidToken
	}

	expected := v.signature(encoded)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}

	subject, expiresStr, found := strings.Cut(string(payload), "|")
	if !found || subject == "" {
		return "", ErrInvalidToken
	}

	expiresAt, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if time.Now().Unix() >= expiresAt {
		return "", ErrTokenExpired
	}

	return subject, nil
}

// signature 计算载荷签名
func (v *HMACVerifier) signature(encoded string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// 编译时检查接口实现
var _ Verifier = (*HMACVerifier)(nil)
