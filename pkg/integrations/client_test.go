package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/componentscope/pkg/httputil"
)

func testCache(t *testing.T) *httputil.Cache {
	t.Helper()
	c, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	c := testCache(t)
	client := NewClient(c, map[string]string{"X-Figma-Token": "secret"})

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["X-Figma-Token"] != "secret" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Name string `json:"name"`
	}
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotToken = r.Header.Get("X-Figma-Token")
		json.NewEncoder(w).Encode(response{Name: "Design System"})
	}))
	defer server.Close()

	client := NewClient(nil, map[string]string{"X-Figma-Token": "secret"}).WithHTTPClient(server.Client())

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Name != "Design System" {
		t.Errorf("Get() name = %q, want %q", resp.Name, "Design System")
	}
	if gotToken != "secret" {
		t.Errorf("token header = %q, want secret", gotToken)
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get("X-Override")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(nil, map[string]string{"X-Override": "default"}).WithHTTPClient(server.Client())

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if received != "overridden" {
		t.Errorf("header = %q, want %q", received, "overridden")
	}
}

func TestClientGetDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer server.Close()

	client := NewClient(nil, nil).WithHTTPClient(server.Client())
	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); err == nil {
		t.Error("Get() should fail on a non-JSON body")
	}
}

func TestClientGetStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusUnauthorized, ErrUnauthorized},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		client := NewClient(nil, nil).WithHTTPClient(server.Client())

		var resp map[string]string
		err := client.Get(context.Background(), server.URL, &resp)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: error = %v, want %v", tt.status, err, tt.want)
		}
		server.Close()
	}
}

func TestClientGetRateLimitedCarriesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()
	client := NewClient(nil, nil).WithHTTPClient(server.Client())

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want %v", err, ErrRateLimited)
	}
	var re *httputil.RetryableError
	if !errors.As(err, &re) {
		t.Fatalf("error %v is not retryable", err)
	}
	if re.After != 7*time.Second {
		t.Errorf("After = %v, want 7s", re.After)
	}
}

func TestClientCached(t *testing.T) {
	client := NewClient(testCache(t), nil)

	fetches := 0
	fetch := func(v *string) func() error {
		return func() error {
			fetches++
			*v = "fetched"
			return nil
		}
	}

	var first string
	if err := client.Cached(context.Background(), "figma:file:abc", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second string
	if err := client.Cached(context.Background(), "figma:file:abc", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetches != 1 {
		t.Errorf("fetch count = %d, want 1", fetches)
	}
	if second != "fetched" {
		t.Errorf("cached value = %q, want fetched", second)
	}

	var third string
	if err := client.Cached(context.Background(), "figma:file:abc", true, &third, fetch(&third)); err != nil {
		t.Fatalf("Cached(refresh) error: %v", err)
	}
	if fetches != 2 {
		t.Errorf("refresh should bypass the cache; fetch count = %d, want 2", fetches)
	}
}

func TestClientCachedNilCache(t *testing.T) {
	client := NewClient(nil, nil)
	fetches := 0
	var v string
	for i := 0; i < 2; i++ {
		err := client.Cached(context.Background(), "k", false, &v, func() error { fetches++; return nil })
		if err != nil {
			t.Fatal(err)
		}
	}
	if fetches != 2 {
		t.Errorf("fetch count = %d, want 2 without a cache", fetches)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(testCache(t), nil)
	var v string
	fetches := 0
	err := client.Cached(context.Background(), "figma:file:x", false, &v, func() error {
		fetches++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetches != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", fetches)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		want       error
		isRetryErr bool
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, want: ErrNotFound},
		{name: "401 Unauthorized", code: 401, want: ErrUnauthorized},
		{name: "403 Forbidden", code: 403, want: ErrUnauthorized},
		{name: "429 Too Many Requests", code: 429, want: ErrRateLimited, isRetryErr: true},
		{name: "500 Internal Server Error", code: 500, want: ErrNetwork, isRetryErr: true},
		{name: "503 Service Unavailable", code: 503, want: ErrNetwork, isRetryErr: true},
		{name: "400 Bad Request", code: 400, want: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)
			if tt.want == nil {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.want)
			}
			var retryErr *httputil.RetryableError
			if got := errors.As(err, &retryErr); got != tt.isRetryErr {
				t.Errorf("retryable = %v, want %v", got, tt.isRetryErr)
			}
		})
	}
}

func TestCacheKeyType(t *testing.T) {
	tests := map[string]string{
		"figma:file:abc": "figma:file",
		"figma:me:x":     "figma:me",
		"plain":          "http",
	}
	for key, want := range tests {
		if got := cacheKeyType(key); got != want {
			t.Errorf("cacheKeyType(%q) = %q, want %q", key, got, want)
		}
	}
}
