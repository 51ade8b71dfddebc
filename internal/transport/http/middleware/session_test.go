package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akramasif506/cloudstore3-sub001/internal/core/auth"
	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/internal/service"
)

type stubUserRepo struct{ users map[string]*domain.User }

func (s *stubUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }
func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users[id], nil
}
func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}
func (s *stubUserRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	return nil, 0, nil
}
func (s *stubUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }
func (s *stubUserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return nil
}
func (s *stubUserRepo) CountAll(ctx context.Context) (int64, error) { return 0, nil }
func (s *stubUserRepo) InTx(ctx context.Context, fn func(tx domain.UserRepository) error) error {
	return fn(s)
}

func newTestEngine(requireRole domain.Role) (*gin.Engine, *auth.JWTer) {
	gin.SetMode(gin.TestMode)
	jwter := &auth.JWTer{
		Secret: []byte("secret"), Issuer: "test",
		TTL: time.Hour, SessionTTL: time.Hour,
	}
	repo := &stubUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Name: "U", Role: domain.RoleUser},
		"a1": {ID: "a1", Name: "A", Role: domain.RoleAdmin},
	}}
	sm := service.NewSessionManager(jwter, repo)

	r := gin.New()
	g := r.Group("")
	g.Use(SessionAuth(sm, requireRole, true))
	g.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
	})
	return r, jwter
}

func doGet(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bizCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body %q: %v", w.Body.String(), err)
	}
	return body.Code
}

func TestSessionAuth_NoCookie(t *testing.T) {
	r, _ := newTestEngine("")
	w := doGet(r, "")
	if code := bizCode(t, w); code != 401 {
		t.Errorf("code = %d, want 401", code)
	}
}

func TestSessionAuth_BadCookie(t *testing.T) {
	r, _ := newTestEngine("")
	w := doGet(r, "garbage")
	if code := bizCode(t, w); code != 401 {
		t.Errorf("code = %d, want 401", code)
	}
}

func TestSessionAuth_ValidCookie(t *testing.T) {
	r, jwter := newTestEngine("")
	tok, _ := jwter.IssueSession("u1", "user")
	w := doGet(r, tok)

	var body struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.ID != "u1" {
		t.Errorf("resolved id = %q, want u1", body.ID)
	}
}

// 会话存在但档案缺失 → 等同未登录
func TestSessionAuth_NoProfile(t *testing.T) {
	r, jwter := newTestEngine("")
	tok, _ := jwter.IssueSession("ghost", "user")
	w := doGet(r, tok)
	if code := bizCode(t, w); code != 401 {
		t.Errorf("code = %d, want 401", code)
	}
}

func TestSessionAuth_RoleGate(t *testing.T) {
	r, jwter := newTestEngine(domain.RoleAdmin)

	userTok, _ := jwter.IssueSession("u1", "user")
	if code := bizCode(t, doGet(r, userTok)); code != 403 {
		t.Errorf("user against admin gate: code = %d, want 403", code)
	}

	adminTok, _ := jwter.IssueSession("a1", "admin")
	w := doGet(r, adminTok)
	var body struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.ID != "a1" {
		t.Errorf("admin against admin gate: id = %q, want a1", body.ID)
	}
}

// Cookie 缺失时兜底读 Bearer
func TestSessionAuth_BearerFallback(t *testing.T) {
	r, jwter := newTestEngine("")
	tok, _ := jwter.IssueSession("u1", "user")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.ID != "u1" {
		t.Errorf("bearer fallback: id = %q, want u1", body.ID)
	}
}
