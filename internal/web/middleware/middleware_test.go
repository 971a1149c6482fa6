package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvdiff/internal/core"
	"github.com/JonMunkholm/csvdiff/internal/logging"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no proxies ignores headers",
			remoteAddr: "203.0.113.5:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.5",
		},
		{
			name:       "trusted proxy real ip",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
		{
			name:       "trusted proxy forwarded for",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:4000",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"},
			want:       "198.51.100.1",
		},
		{
			name:       "untrusted proxy",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "192.0.2.1:4000",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1"},
			want:       "192.0.2.1",
		},
		{
			name:       "garbage header ignored",
			trusted:    []string{"10.0.0.0/8", "not-a-cidr"},
			remoteAddr: "10.0.0.1:4000",
			headers:    map[string]string{"X-Real-IP": "garbage"},
			want:       "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = core.ClientIPFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("client ip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	logging.SetupWriter(&buf, "info", "text")
	defer slog.SetDefault(prev)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/compare", nil))

	out := buf.String()
	for _, want := range []string{"method=POST", "path=/compare", "status=418", "bytes=15"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}

func TestIsValidAPIKey(t *testing.T) {
	keys := []string{"alpha", "beta"}
	if !isValidAPIKey("beta", keys) {
		t.Error("beta should be valid")
	}
	if isValidAPIKey("gamma", keys) {
		t.Error("gamma should be invalid")
	}
	if isValidAPIKey("alpha", nil) {
		t.Error("no keys configured should reject")
	}
}
