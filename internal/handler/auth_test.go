package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelrate/reelrate-go/internal/middleware"
	"github.com/reelrate/reelrate-go/internal/repository"
	"github.com/reelrate/reelrate-go/internal/service"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*chi.Mux, *repository.MemoryUserRepository) {
	t.Helper()

	store := repository.NewMemoryUserRepository()
	svc := service.NewAuthService(store, testSecret, 7*24*time.Hour)
	cookies := middleware.NewSessionCookies(false, 7*24*time.Hour)
	h := NewAuthHandler(svc, cookies)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.HandleSignup)
		r.Post("/signin", h.HandleSignin)
		r.Post("/logout", h.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(cookies, testSecret, svc))
			r.Get("/profile", h.HandleProfile)
			r.Put("/profile", h.HandleUpdateProfile)
			r.Put("/profile/ratings", h.HandleRateMovie)
		})
	})

	return r, store
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func signup(t *testing.T, r http.Handler, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPost, "/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)
}

func TestSignupSigninScenario(t *testing.T) {
	r, _ := newTestServer(t)

	// Signup sets a cookie and returns the public view.
	w := signup(t, r, "alice", "a@x.com", "secret123")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body)
	}

	var created map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding signup response: %v", err)
	}
	if created["id"] == "" || created["username"] != "alice" || created["email"] != "a@x.com" {
		t.Errorf("signup response = %v", created)
	}
	if sessionCookie(t, w).Value == "" {
		t.Error("signup cookie has empty token")
	}

	// Wrong password fails with the generic credentials error.
	w = doJSON(t, r, http.MethodPost, "/auth/signin", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad signin status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	// Correct credentials sign in as the same user.
	w = doJSON(t, r, http.MethodPost, "/auth/signin", map[string]string{
		"email":    "a@x.com",
		"password": "secret123",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signin status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}

	var signed map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &signed); err != nil {
		t.Fatalf("decoding signin response: %v", err)
	}
	if signed["id"] != created["id"] {
		t.Errorf("signin id = %q, want %q", signed["id"], created["id"])
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	r, _ := newTestServer(t)

	signup(t, r, "alice", "a@x.com", "secret123")

	w := signup(t, r, "impostor", "a@x.com", "other")
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "user already exists") {
		t.Errorf("duplicate signup body = %s", w.Body)
	}
}

func TestSigninFailuresIdentical(t *testing.T) {
	r, _ := newTestServer(t)

	signup(t, r, "alice", "a@x.com", "secret123")

	wrongPassword := doJSON(t, r, http.MethodPost, "/auth/signin", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	}, nil)
	unknownEmail := doJSON(t, r, http.MethodPost, "/auth/signin", map[string]string{
		"email":    "nobody@x.com",
		"password": "secret123",
	}, nil)

	if wrongPassword.Code != unknownEmail.Code {
		t.Errorf("status codes differ: %d vs %d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("bodies differ: %s vs %s", wrongPassword.Body, unknownEmail.Body)
	}
}

func TestProfile(t *testing.T) {
	r, _ := newTestServer(t)

	w := signup(t, r, "alice", "a@x.com", "secret123")
	cookie := sessionCookie(t, w)

	// No cookie.
	if w := doJSON(t, r, http.MethodGet, "/auth/profile", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no-cookie profile status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// Tampered cookie: flip one byte of the token.
	tampered := *cookie
	b := []byte(tampered.Value)
	if b[len(b)-1] == 'A' {
		b[len(b)-1] = 'B'
	} else {
		b[len(b)-1] = 'A'
	}
	tampered.Value = string(b)
	if w := doJSON(t, r, http.MethodGet, "/auth/profile", nil, &tampered); w.Code != http.StatusUnauthorized {
		t.Errorf("tampered-cookie profile status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// Valid cookie.
	w2 := doJSON(t, r, http.MethodGet, "/auth/profile", nil, cookie)
	if w2.Code != http.StatusOK {
		t.Fatalf("profile status = %d, want %d: %s", w2.Code, http.StatusOK, w2.Body)
	}

	var profile map[string]any
	if err := json.Unmarshal(w2.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	if profile["username"] != "alice" || profile["email"] != "a@x.com" {
		t.Errorf("profile = %v", profile)
	}
	if strings.Contains(strings.ToLower(w2.Body.String()), "password") {
		t.Errorf("profile leaks password material: %s", w2.Body)
	}
}

func TestProfileStaleSession(t *testing.T) {
	r, store := newTestServer(t)

	w := signup(t, r, "alice", "a@x.com", "secret123")
	cookie := sessionCookie(t, w)

	var created map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding signup response: %v", err)
	}
	store.Delete(context.Background(), created["id"])

	if w := doJSON(t, r, http.MethodGet, "/auth/profile", nil, cookie); w.Code != http.StatusUnauthorized {
		t.Errorf("deleted-user profile status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogout(t *testing.T) {
	r, _ := newTestServer(t)

	// Logout without any session still succeeds.
	w := doJSON(t, r, http.MethodPost, "/auth/logout", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want %d", w.Code, http.StatusOK)
	}

	cleared := sessionCookie(t, w)
	if cleared.Value != "" {
		t.Errorf("cleared cookie value = %q, want empty", cleared.Value)
	}
	if cleared.MaxAge >= 0 {
		t.Errorf("cleared cookie maxAge = %d, want negative", cleared.MaxAge)
	}

	// A browser that honored the clear sends no cookie afterwards.
	if w := doJSON(t, r, http.MethodGet, "/auth/profile", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("post-logout profile status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUpdateProfileAndRatings(t *testing.T) {
	r, _ := newTestServer(t)

	w := signup(t, r, "alice", "a@x.com", "secret123")
	cookie := sessionCookie(t, w)

	w = doJSON(t, r, http.MethodPut, "/auth/profile", map[string]string{
		"bio": "movie enjoyer",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("update profile status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}

	w = doJSON(t, r, http.MethodPut, "/auth/profile/ratings", map[string]any{
		"movieId": 949,
		"title":   "Heat",
		"rating":  5,
		"review":  "great diner scene",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("rate movie status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}

	var profile struct {
		Bio         string `json:"bio"`
		RatedMovies []struct {
			MovieID int64  `json:"movieId"`
			Rating  int    `json:"rating"`
			Review  string `json:"review"`
		} `json:"ratedMovies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	if profile.Bio != "movie enjoyer" {
		t.Errorf("bio = %q", profile.Bio)
	}
	if len(profile.RatedMovies) != 1 || profile.RatedMovies[0].MovieID != 949 || profile.RatedMovies[0].Rating != 5 {
		t.Errorf("rated movies = %+v", profile.RatedMovies)
	}

	// Out-of-range rating is rejected.
	w = doJSON(t, r, http.MethodPut, "/auth/profile/ratings", map[string]any{
		"movieId": 949,
		"rating":  0,
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid rating status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSignupInvalidBody(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid body status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
