package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := ClientFromContext(r.Context()); ok {
			w.Header().Set("X-Client", c)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	})
}

func TestRequireTokenDisabledWithoutSecret(t *testing.T) {
	h := RequireToken(nil)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/surveys", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireToken(t *testing.T) {
	secret := []byte("test-secret")
	h := LocaleMiddleware(RequireToken(secret, "/health")(okHandler()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/surveys", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("open path: status = %d", rec.Code)
	}

	tok, err := SignToken(secret, "dashboard", time.Minute)
	if err != nil {
		t.Fatalf("SignToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/surveys", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Client") != "dashboard" {
		t.Fatalf("valid token: status = %d client = %q", rec.Code, rec.Header().Get("X-Client"))
	}

	other, _ := SignToken([]byte("other"), "dashboard", time.Minute)
	req = httptest.NewRequest(http.MethodGet, "/surveys", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token: status = %d", rec.Code)
	}

	expired, _ := SignToken(secret, "dashboard", -time.Minute)
	req = httptest.NewRequest(http.MethodGet, "/surveys", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status = %d", rec.Code)
	}
}

func TestRevalidate(t *testing.T) {
	h := Revalidate(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/surveys", nil))
	etag := rec.Header().Get("ETag")
	if rec.Code != http.StatusOK || etag == "" || rec.Body.String() != `{"ok":true}` {
		t.Fatalf("first request: status=%d etag=%q body=%q", rec.Code, etag, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "no-cache" {
		t.Fatalf("unexpected cache control %q", rec.Header().Get("Cache-Control"))
	}

	req := httptest.NewRequest(http.MethodGet, "/surveys", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("revalidation: status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestRevalidateSkipsErrors(t *testing.T) {
	h := Revalidate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/country/ZZ/", nil))
	if rec.Code != http.StatusNotFound || rec.Header().Get("ETag") != "" {
		t.Fatalf("status=%d etag=%q", rec.Code, rec.Header().Get("ETag"))
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("generated id %q, header %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc123" {
		t.Fatalf("inbound id not reused: %q", seen)
	}
}

func TestCORSPreflightAndHeaders(t *testing.T) {
	h := CORS(SecureHeaders(okHandler()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/countries", nil))
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("preflight: status=%d body=%q", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Expose-Headers"), "ETag") {
		t.Fatalf("ETag not exposed: %q", rec.Header().Get("Access-Control-Expose-Headers"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/countries", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("get: status=%d headers=%v", rec.Code, rec.Header())
	}
}

func TestLocaleMiddleware(t *testing.T) {
	var got string
	h := LocaleMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/surveys", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "zh" {
		t.Fatalf("locale = %q, want zh", got)
	}
}
