package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/openleague/matchday/internal/db"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	g, err := dbpkg.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbpkg.Migrate(g); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return g
}

func newRouterWithAuth(t *testing.T, g *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, g)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSONWithCookie(r http.Handler, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieFrom(w *httptest.ResponseRecorder) string {
	sc := w.Header().Get("Set-Cookie")
	if sc == "" {
		return ""
	}
	if i := strings.Index(sc, ";"); i > 0 {
		return sc[:i]
	}
	return sc
}

const testPassword = "correct horse battery"

func register(t *testing.T, r http.Handler, email string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{"email": email, "password": testPassword})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
}

func login(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	c := cookieFrom(w)
	if c == "" {
		t.Fatal("login did not set a cookie")
	}
	return c
}

func TestRegister_InvalidJSON(t *testing.T) {
	r := newRouterWithAuth(t, newTestDB(t))
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	r := newRouterWithAuth(t, newTestDB(t))
	w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{"email": "not-an-email", "password": testPassword})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	r := newRouterWithAuth(t, newTestDB(t))
	w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{"email": "a@example.com", "password": "short"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r := newRouterWithAuth(t, newTestDB(t))
	register(t, r, "dup@example.com")
	w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{"email": "dup@example.com", "password": testPassword})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newRouterWithAuth(t, newTestDB(t))
	register(t, r, "a@example.com")
	w := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"email": "a@example.com", "password": "wrong password!"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestMe_WithAndWithoutSession(t *testing.T) {
	r := newRouterWithAuth(t, newTestDB(t))
	register(t, r, "me@example.com")
	cookie := login(t, r, "me@example.com")

	w := doJSONWithCookie(r, http.MethodGet, "/api/auth/me", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("me with cookie: status %d", w.Code)
	}
	var resp struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Email != "me@example.com" {
		t.Fatalf("email = %q", resp.Email)
	}

	w = doJSON(r, http.MethodGet, "/api/auth/me", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me without cookie: status %d, want 401", w.Code)
	}
}

func TestLogout_InvalidatesSession(t *testing.T) {
	r := newRouterWithAuth(t, newTestDB(t))
	register(t, r, "out@example.com")
	cookie := login(t, r, "out@example.com")

	w := doJSONWithCookie(r, http.MethodPost, "/api/auth/logout", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}
	w = doJSONWithCookie(r, http.MethodGet, "/api/auth/me", nil, cookie)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: status %d, want 401", w.Code)
	}
}

func TestAuthRequired_Middleware(t *testing.T) {
	g := newTestDB(t)
	r := newRouterWithAuth(t, g)
	repo := NewRepository(g)
	r.GET("/protected", AuthRequired(repo), func(c *gin.Context) {
		u, ok := FromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "user missing from context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": u.Email})
	})

	register(t, r, "mw@example.com")
	cookie := login(t, r, "mw@example.com")

	w := doJSON(r, http.MethodGet, "/protected", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: status %d, want 401", w.Code)
	}
	w = doJSONWithCookie(r, http.MethodGet, "/protected", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("with cookie: status %d body %s", w.Code, w.Body.String())
	}
}
