package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAuth(keys []string, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	BearerAuthMiddleware(keys)(okHandler()).ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		if rr := serveAuth(keys, "/api/v1/recommendations", ""); rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want 200", keys, rr.Code)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	keys := []string{"key1", "key2"}
	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/api/v1/recommendations", "", http.StatusUnauthorized},
		{"basic scheme", "/api/v1/recommendations", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"scheme only", "/api/v1/corpus", "Bearer", http.StatusUnauthorized},
		{"empty token", "/api/v1/corpus", "Bearer ", http.StatusUnauthorized},
		{"wrong key", "/api/v1/recommendations", "Bearer wrong-key", http.StatusUnauthorized},
		{"key prefix", "/api/v1/recommendations", "Bearer key", http.StatusUnauthorized},
		{"first key", "/api/v1/recommendations", "Bearer key1", http.StatusOK},
		{"second key", "/api/v1/recommendations", "Bearer key2", http.StatusOK},
		{"lowercase scheme", "/api/v1/recommendations", "bearer key1", http.StatusOK},
		{"mcp endpoint", "/mcp", "", http.StatusUnauthorized},
		{"health exempt", "/health", "", http.StatusOK},
		{"metrics exempt", "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveAuth(keys, tt.path, tt.header)
			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate challenge")
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != ErrorCodeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, ErrorCodeUnauthorized)
			}
		})
	}
}
