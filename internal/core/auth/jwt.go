package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind 区分登录返回的身份令牌与换发的会话 Cookie
type TokenKind string

const (
	KindIdentity TokenKind = "identity"
	KindSession  TokenKind = "session"
)

type Claims struct {
	UID  string    `json:"uid"`
	Role string    `json:"role"` // "user" or "admin"
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret     []byte
	Issuer     string
	TTL        time.Duration // 身份令牌有效期
	SessionTTL time.Duration // 会话 Cookie 有效期（5 天）
}

func (j *JWTer) issue(uid, role string, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:  uid,
		Role: role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Issue 登录成功后签发身份令牌（短期）
func (j *JWTer) Issue(uid, role string) (string, error) {
	return j.issue(uid, role, KindIdentity, j.TTL)
}

// IssueSession 身份令牌换发会话 Cookie（固定 5 天窗口）
func (j *JWTer) IssueSession(uid, role string) (string, error) {
	return j.issue(uid, role, KindSession, j.SessionTTL)
}

func (j *JWTer) parse(tokenStr string, kind TokenKind) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	if c.Kind != kind {
		return nil, errors.New("wrong token kind")
	}
	return c, nil
}

// Parse 校验身份令牌
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, KindIdentity)
}

// ParseSession 校验会话 Cookie；签名/过期/类型不符都视为无效
func (j *JWTer) ParseSession(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, KindSession)
}
