package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/domain/user"
)

type memUsers struct {
	mu     sync.Mutex
	byMail map[string]user.User
	nextID int64
}

func newMemUsers() *memUsers {
	return &memUsers{byMail: map[string]user.User{}}
}

func (s *memUsers) Create(_ context.Context, name, email, passwordHash, role string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byMail[email]; ok {
		return user.User{}, apperr.New(apperr.InvalidArgument, "email already registered")
	}
	s.nextID++
	u := user.User{ID: s.nextID, Name: name, Email: email, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.byMail[email] = u
	return u, nil
}

func (s *memUsers) ByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byMail[email]
	if !ok {
		return user.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return u, nil
}

func (s *memUsers) ByID(_ context.Context, id int64) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byMail {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, apperr.New(apperr.NotFound, "user not found")
}

type memRefresh struct {
	mu     sync.Mutex
	tokens map[string]bool // tokenHash -> valid
}

func newMemRefresh() *memRefresh { return &memRefresh{tokens: map[string]bool{}} }

func (s *memRefresh) Store(_ context.Context, _ int64, tokenHash string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = true
	return nil
}

func (s *memRefresh) IsValid(_ context.Context, _ int64, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[tokenHash], nil
}

func (s *memRefresh) Revoke(_ context.Context, _ int64, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = false
	return nil
}

func newAuthRouter(users UserStore, refresh RefreshStore) (*gin.Engine, *JWTManager) {
	gin.SetMode(gin.TestMode)
	jwtMgr := testManager()
	h := NewHandler(Dependencies{
		JWT:     jwtMgr,
		Users:   users,
		Refresh: refresh,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/refresh", h.Refresh)
	r.POST("/api/auth/logout", h.Logout)
	r.GET("/api/me", Middleware(jwtMgr), h.Me)
	return r, jwtMgr
}

func post(t *testing.T, r *gin.Engine, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, w.Body.String())
	}
	return w, env
}

func TestRegister(t *testing.T) {
	users := newMemUsers()
	r, _ := newAuthRouter(users, newMemRefresh())

	t.Run("ok", func(t *testing.T) {
		w, env := post(t, r, "/api/auth/register",
			`{"name":"Ana","email":"ana@example.com","password":"s3cret-pass","confirm_password":"s3cret-pass"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %v", w.Code, env)
		}
		u, err := users.ByEmail(context.Background(), "ana@example.com")
		if err != nil {
			t.Fatalf("user not stored: %v", err)
		}
		if u.Role != user.RoleCustomer {
			t.Fatalf("expected Customer role, got %s", u.Role)
		}
		if u.PasswordHash == "s3cret-pass" {
			t.Fatal("password stored in the clear")
		}
	})

	t.Run("confirm mismatch rejected", func(t *testing.T) {
		w, env := post(t, r, "/api/auth/register",
			`{"name":"Bo","email":"bo@example.com","password":"s3cret-pass","confirm_password":"other-pass"}`)
		if w.Code != http.StatusBadRequest || env["success"] != false {
			t.Fatalf("expected 400 success=false, got %d %v", w.Code, env)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		w, _ := post(t, r, "/api/auth/register",
			`{"name":"Ana2","email":"ana@example.com","password":"s3cret-pass","confirm_password":"s3cret-pass"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("bad email rejected", func(t *testing.T) {
		w, _ := post(t, r, "/api/auth/register",
			`{"name":"X","email":"not-an-email","password":"s3cret-pass","confirm_password":"s3cret-pass"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestLogin(t *testing.T) {
	users := newMemUsers()
	hash, _ := HashPassword("s3cret-pass")
	users.byMail["ana@example.com"] = user.User{ID: 1, Name: "Ana", Email: "ana@example.com", PasswordHash: hash, Role: user.RoleCustomer}
	users.byMail["admin@example.com"] = user.User{ID: 2, Name: "Root", Email: "admin@example.com", PasswordHash: hash, Role: "Admin"}

	r, jwtMgr := newAuthRouter(users, newMemRefresh())

	t.Run("ok returns user and tokens", func(t *testing.T) {
		w, env := post(t, r, "/api/auth/login", `{"email":"ana@example.com","password":"s3cret-pass"}`)
		if w.Code != http.StatusOK || env["success"] != true {
			t.Fatalf("expected 200 success=true, got %d %v", w.Code, env)
		}
		u := env["user"].(map[string]any)
		if u["role"] != user.RoleCustomer || u["id"].(float64) != 1 {
			t.Fatalf("unexpected user payload: %v", u)
		}
		if _, ok := u["password_hash"]; ok {
			t.Fatal("password hash leaked in payload")
		}

		access := env["access_token"].(string)
		claims, err := jwtMgr.ParseAccess(access)
		if err != nil || claims.UserID != 1 {
			t.Fatalf("bad access token: %v", err)
		}
	})

	t.Run("wrong password -> 401", func(t *testing.T) {
		w, _ := post(t, r, "/api/auth/login", `{"email":"ana@example.com","password":"nope-nope"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("unknown email -> 401, same shape as wrong password", func(t *testing.T) {
		w, env := post(t, r, "/api/auth/login", `{"email":"ghost@example.com","password":"s3cret-pass"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if env["error"] != "invalid credentials" {
			t.Fatalf("login must not reveal whether the email exists: %v", env)
		}
	})

	t.Run("non-customer role gated", func(t *testing.T) {
		w, env := post(t, r, "/api/auth/login", `{"email":"admin@example.com","password":"s3cret-pass"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if env["error"] != "not authorized to login as a customer" {
			t.Fatalf("unexpected message: %v", env)
		}
	})
}

func TestRefreshRotation(t *testing.T) {
	users := newMemUsers()
	hash, _ := HashPassword("s3cret-pass")
	users.byMail["ana@example.com"] = user.User{ID: 1, Email: "ana@example.com", PasswordHash: hash, Role: user.RoleCustomer}
	refresh := newMemRefresh()
	r, _ := newAuthRouter(users, refresh)

	_, loginEnv := post(t, r, "/api/auth/login", `{"email":"ana@example.com","password":"s3cret-pass"}`)
	oldToken := loginEnv["refresh_token"].(string)

	w, env := post(t, r, "/api/auth/refresh", `{"refresh_token":"`+oldToken+`"}`)
	if w.Code != http.StatusOK || env["success"] != true {
		t.Fatalf("refresh failed: %d %v", w.Code, env)
	}
	if env["refresh_token"].(string) == oldToken {
		t.Fatal("refresh token was not rotated")
	}

	// The presented token is revoked by rotation.
	w, _ = post(t, r, "/api/auth/refresh", `{"refresh_token":"`+oldToken+`"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected replayed token to be rejected, got %d", w.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	users := newMemUsers()
	r, jwtMgr := newAuthRouter(users, newMemRefresh())

	t.Run("no token -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid token -> user", func(t *testing.T) {
		users.byMail["ana@example.com"] = user.User{ID: 1, Email: "ana@example.com", Role: user.RoleCustomer}
		tok, _, _ := jwtMgr.SignAccess(1, user.RoleCustomer)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}
