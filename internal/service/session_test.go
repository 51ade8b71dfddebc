package service

import (
	"context"
	"testing"
	"time"

	"github.com/akramasif506/cloudstore3-sub001/internal/core/auth"
	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
)

func newTestJWTer() *auth.JWTer {
	return &auth.JWTer{
		Secret:     []byte("test-secret"),
		Issuer:     "test",
		TTL:        time.Hour,
		SessionTTL: 5 * 24 * time.Hour,
	}
}

func seedUser(repo *fakeUserRepo, id string, role domain.Role) *domain.User {
	u := &domain.User{ID: id, Email: id + "@example.com", Name: "u-" + id, Role: role}
	_ = repo.Create(context.Background(), u)
	return u
}

func TestCreateSession_RoundTrip(t *testing.T) {
	jwter := newTestJWTer()
	repo := newFakeUserRepo()
	seedUser(repo, "u1", domain.RoleUser)
	sm := NewSessionManager(jwter, repo)

	idTok, err := jwter.Issue("u1", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	cookie, maxAge, err := sm.CreateSession(context.Background(), idTok)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if maxAge != 5*24*time.Hour {
		t.Errorf("session window = %v, want 5 days", maxAge)
	}

	u, err := sm.ResolveCurrentUser(context.Background(), cookie)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u == nil || u.ID != "u1" {
		t.Fatalf("resolved user = %+v, want id u1", u)
	}
}

func TestCreateSession_InvalidIdentityToken(t *testing.T) {
	sm := NewSessionManager(newTestJWTer(), newFakeUserRepo())

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, _, err := sm.CreateSession(context.Background(), tok); err == nil {
			t.Errorf("token %q: expected error", tok)
		} else if _, ok := err.(*AuthorizationError); !ok {
			t.Errorf("token %q: expected AuthorizationError, got %T", tok, err)
		}
	}
}

// 会话 Cookie 不能拿身份令牌冒充
func TestCreateSession_RejectsSessionTokenAsIdentity(t *testing.T) {
	jwter := newTestJWTer()
	sm := NewSessionManager(jwter, newFakeUserRepo())

	sess, err := jwter.IssueSession("u1", "user")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	if _, _, err := sm.CreateSession(context.Background(), sess); err == nil {
		t.Error("expected session token to be rejected as identity token")
	}
}

// 四种失败口径一致：无 Cookie、畸形、过期、无档案 → (nil, nil)
func TestResolveCurrentUser_NullCases(t *testing.T) {
	jwter := newTestJWTer()
	repo := newFakeUserRepo()
	sm := NewSessionManager(jwter, repo)

	expired := &auth.JWTer{
		Secret: jwter.Secret, Issuer: jwter.Issuer,
		TTL: time.Hour, SessionTTL: -2 * time.Minute,
	}
	expiredCookie, _ := expired.IssueSession("u1", "user")
	noProfileCookie, _ := jwter.IssueSession("ghost", "user")

	cases := []struct {
		name   string
		cookie string
	}{
		{"absent", ""},
		{"malformed", "not-a-jwt"},
		{"expired", expiredCookie},
		{"no profile", noProfileCookie},
	}
	for _, tc := range cases {
		u, err := sm.ResolveCurrentUser(context.Background(), tc.cookie)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if u != nil {
			t.Errorf("%s: expected nil user, got %+v", tc.name, u)
		}
	}
}

func TestResolveCurrentUser_WrongSignature(t *testing.T) {
	jwter := newTestJWTer()
	other := &auth.JWTer{Secret: []byte("other-secret"), Issuer: "test", TTL: time.Hour, SessionTTL: time.Hour}
	repo := newFakeUserRepo()
	seedUser(repo, "u1", domain.RoleUser)
	sm := NewSessionManager(jwter, repo)

	forged, _ := other.IssueSession("u1", "user")
	u, err := sm.ResolveCurrentUser(context.Background(), forged)
	if err != nil || u != nil {
		t.Fatalf("forged cookie: got (%+v, %v), want (nil, nil)", u, err)
	}
}
