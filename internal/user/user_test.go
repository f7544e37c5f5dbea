package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/antonminaichev/storefront/internal/middleware"
	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/user"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	users       map[string]*user.User
	errOnCreate error
	errOnFind   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*user.User)}
}

func (r *stubUserRepo) CreateUser(ctx context.Context, u *user.User) error {
	if r.errOnCreate != nil {
		return r.errOnCreate
	}
	if _, exists := r.users[u.Email]; exists {
		return storage.ErrDuplicate
	}
	r.users[u.Email] = u
	return nil
}

func (r *stubUserRepo) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if r.errOnFind != nil {
		return nil, r.errOnFind
	}
	u, ok := r.users[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestServiceRegister(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, []byte("secret"), time.Hour)

	t.Run("successful registration", func(t *testing.T) {
		u, err := svc.Register(context.Background(), "Asha", " Asha@Example.com ", "password123")
		if err != nil {
			t.Fatal(err)
		}
		if u.Email != "asha@example.com" {
			t.Errorf("expected normalised email, got '%s'", u.Email)
		}
		if u.ID == "" {
			t.Errorf("expected assigned ID")
		}
		if u.Role != user.RoleUser {
			t.Errorf("expected role user, got %s", u.Role)
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) != nil {
			t.Error("password hash does not match original password")
		}
	})

	t.Run("password too short", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "B", "b@example.com", "short")
		if !errors.Is(err, ErrPasswordTooShort) {
			t.Errorf("expected ErrPasswordTooShort, got %v", err)
		}
	})

	t.Run("email already in use", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "Other", "asha@example.com", "anotherpass")
		if !errors.Is(err, ErrUserExists) {
			t.Errorf("expected ErrUserExists, got %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "", "c@example.com", "password123")
		if !errors.Is(err, ErrMissingFields) {
			t.Errorf("expected ErrMissingFields, got %v", err)
		}
	})

	t.Run("repo create returns error", func(t *testing.T) {
		repo := newStubUserRepo()
		repo.errOnCreate = errors.New("db error")
		svc := NewService(repo, []byte("secret"), time.Hour)

		_, err := svc.Register(context.Background(), "D", "d@example.com", "password123")
		if err == nil || err.Error() != "db error" {
			t.Errorf("expected db error, got %v", err)
		}
	})
}

func TestServiceAuthenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, []byte("secret"), time.Hour)

	password := "password123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	repo.users["a@example.com"] = &user.User{ID: "u1", Email: "a@example.com", PasswordHash: string(hash)}

	t.Run("token subject is the user id", func(t *testing.T) {
		u, token, err := svc.Authenticate(context.Background(), "A@example.com", password)
		if err != nil {
			t.Fatal(err)
		}
		if u.ID != "u1" {
			t.Errorf("expected u1, got %s", u.ID)
		}
		parsed, _, err := new(jwt.Parser).ParseUnverified(token, &jwt.RegisteredClaims{})
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
		if !ok {
			t.Fatal("token claims have wrong type")
		}
		if claims.Subject != "u1" {
			t.Errorf("expected subject 'u1', got %q", claims.Subject)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Authenticate(context.Background(), "no-user@example.com", "password")
		if !errors.Is(err, ErrInvalidCreds) {
			t.Errorf("expected ErrInvalidCreds, got %v", err)
		}
	})

	t.Run("invalid password", func(t *testing.T) {
		_, _, err := svc.Authenticate(context.Background(), "a@example.com", "wrongpass")
		if !errors.Is(err, ErrInvalidCreds) {
			t.Errorf("expected ErrInvalidCreds, got %v", err)
		}
	})

	t.Run("storage failure is not a credentials error", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		repo.errOnFind = dbErr
		defer func() { repo.errOnFind = nil }()

		_, _, err := svc.Authenticate(context.Background(), "a@example.com", password)
		if errors.Is(err, ErrInvalidCreds) {
			t.Fatal("storage failure reported as invalid credentials")
		}
		if !errors.Is(err, dbErr) {
			t.Errorf("expected wrapped storage error, got %v", err)
		}
	})
}

func setupUserHandler() (*Handler, *stubUserRepo) {
	repo := newStubUserRepo()
	svc := NewService(repo, []byte("secret"), time.Hour)
	return NewHandler(svc, false), repo
}

func sessionCookie(res *http.Response) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func TestUserHandlerRegister(t *testing.T) {
	handler, _ := setupUserHandler()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCookie bool
	}{
		{"Valid registration", `{"name":"T","email":"t@example.com","password":"password123"}`, http.StatusCreated, true},
		{"Invalid JSON", `{"email":"t@example.com",password:"badjson"}`, http.StatusBadRequest, false},
		{"Password too short", `{"name":"T","email":"u@example.com","password":"short"}`, http.StatusBadRequest, false},
		{"Email already in use", `{"name":"T","email":"t@example.com","password":"password123"}`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)
		res := rec.Result()
		defer res.Body.Close()

		if res.StatusCode != tt.wantStatus {
			t.Errorf("%s: got status %d, want %d", tt.name, res.StatusCode, tt.wantStatus)
		}
		c := sessionCookie(res)
		if (c != nil) != tt.wantCookie {
			t.Errorf("%s: cookie present = %v, want %v", tt.name, c != nil, tt.wantCookie)
		}
		if c != nil && (!c.HttpOnly || c.SameSite != http.SameSiteLaxMode) {
			t.Errorf("%s: cookie must be http-only and lax", tt.name)
		}
	}
}

func TestUserHandlerRegisterHidesPassword(t *testing.T) {
	handler, _ := setupUserHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"T","email":"t@example.com","password":"password123"}`))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if strings.Contains(rec.Body.String(), "$2a$") || strings.Contains(rec.Body.String(), "password") {
		t.Errorf("response leaks the password hash: %s", rec.Body.String())
	}
}

func TestUserHandlerLogin(t *testing.T) {
	handler, repo := setupUserHandler()

	pass := "password123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	repo.users["testuser@example.com"] = &user.User{
		ID:           "u1",
		Email:        "testuser@example.com",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"Valid login", `{"email":"testuser@example.com","password":"password123"}`, http.StatusOK},
		{"Invalid password", `{"email":"testuser@example.com","password":"wrongpass"}`, http.StatusUnauthorized},
		{"Invalid JSON", `{"email":"testuser",password:"badjson"}`, http.StatusBadRequest},
		{"User not found", `{"email":"nouser@example.com","password":"pass"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)
		res := rec.Result()

		defer res.Body.Close()

		if res.StatusCode != tt.wantStatus {
			t.Errorf("%s: got status %d, want %d", tt.name, res.StatusCode, tt.wantStatus)
		}
	}
}

func TestUserHandlerLoginStorageFailure(t *testing.T) {
	handler, repo := setupUserHandler()
	repo.errOnFind = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"testuser@example.com","password":"password123"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rec.Body.String(), "Server error") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandlerLogoutClearsCookie(t *testing.T) {
	handler, _ := setupUserHandler()
	rec := httptest.NewRecorder()

	handler.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	c := sessionCookie(rec.Result())
	if c == nil || c.Value != "" || c.MaxAge >= 0 {
		t.Errorf("expected expired empty cookie, got %+v", c)
	}
}

func TestUserHandlerProfile(t *testing.T) {
	handler, repo := setupUserHandler()
	repo.users["p@example.com"] = &user.User{ID: "u7", Name: "P", Email: "p@example.com"}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), "u7", user.RoleUser))
	rec := httptest.NewRecorder()
	handler.Profile(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"email":"p@example.com"`) {
		t.Errorf("unexpected profile response %d %s", rec.Code, rec.Body.String())
	}

	req = req.WithContext(middleware.ContextWithUser(req.Context(), "missing", user.RoleUser))
	rec = httptest.NewRecorder()
	handler.Profile(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
