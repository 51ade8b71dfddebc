package service

import (
	"context"
	"time"

	"github.com/akramasif506/cloudstore3-sub001/internal/core/auth"
	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
)

// SessionManager 把身份令牌换成会话 Cookie，并按请求把 Cookie 还原成用户。
// 服务端不存会话表：有效性每次都交给签名校验重新推导，上游吊销即全线失效。
type SessionManager struct {
	jwter *auth.JWTer
	users domain.UserRepository
}

func NewSessionManager(j *auth.JWTer, users domain.UserRepository) *SessionManager {
	return &SessionManager{jwter: j, users: users}
}

// SessionCookieName 会话 Cookie 名
const SessionCookieName = "session"

// CreateSession 校验身份令牌并签出 5 天窗口的会话 Cookie 值。
// 令牌无效/过期 → AuthorizationError，绝不 panic。
func (m *SessionManager) CreateSession(ctx context.Context, identityToken string) (cookie string, maxAge time.Duration, err error) {
	claims, err := m.jwter.Parse(identityToken)
	if err != nil {
		return "", 0, &AuthorizationError{Msg: "invalid identity token"}
	}
	tok, err := m.jwter.IssueSession(claims.UID, claims.Role)
	if err != nil {
		return "", 0, internalf(err, "issue session failed")
	}
	return tok, m.jwter.SessionTTL, nil
}

// ResolveCurrentUser 四种失败口径一致地返回 (nil, nil)：
// 无 Cookie、Cookie 畸形、已过期、凭证账号没有应用侧档案。
func (m *SessionManager) ResolveCurrentUser(ctx context.Context, cookie string) (*domain.User, error) {
	if cookie == "" {
		return nil, nil
	}
	claims, err := m.jwter.ParseSession(cookie)
	if err != nil {
		return nil, nil
	}
	u, err := m.users.FindByID(ctx, claims.UID)
	if err != nil {
		return nil, internalf(err, "resolve user failed")
	}
	return u, nil // 无档案时 u 为 nil，等同未登录
}
