package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// TestLogging_CredentialsNeverLogged ensures form values and query strings
// stay out of the request log.
func TestLogging_CredentialsNeverLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.WriteHeader(http.StatusOK)
	}))

	form := url.Values{"email": {"ann@x.io"}, "password": {"hunter2-secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login?password=query-secret", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	logOutput := buf.String()
	for _, secret := range []string{"hunter2-secret", "query-secret", "ann@x.io"} {
		if strings.Contains(logOutput, secret) {
			t.Errorf("log output contains %q", secret)
		}
	}
	if !strings.Contains(logOutput, `"path":"/login"`) {
		t.Errorf("expected path in log output: %s", logOutput)
	}
}

// TestLogging_BasicFields verifies that expected non-sensitive fields are logged.
func TestLogging_BasicFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("Register success"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.Header.Set("User-Agent", "TestBrowser/2.0")
	req.Header.Set(RequestIDHeader, "req-123")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	logOutput := buf.String()
	for _, field := range []string{
		`"request_id":"req-123"`,
		`"method":"POST"`,
		`"path":"/register"`,
		`"status_code":201`,
		`"bytes":16`,
		`"user_agent":"TestBrowser/2.0"`,
	} {
		if !strings.Contains(logOutput, field) {
			t.Errorf("expected log field %s not found in output: %s", field, logOutput)
		}
	}
}

func TestLogging_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		statusCode int
		wantLevel  string
	}{
		{"success", "/", http.StatusOK, "INFO"},
		{"created", "/register", http.StatusCreated, "INFO"},
		{"bad request", "/login", http.StatusBadRequest, "WARN"},
		{"not found", "/missing", http.StatusNotFound, "WARN"},
		{"internal error", "/register", http.StatusInternalServerError, "ERROR"},
		{"quiet health path", "/healthz", http.StatusOK, "DEBUG"},
		{"failing quiet health path", "/readyz", http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			handler := Logger(logger, "/healthz", "/readyz")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if !strings.Contains(buf.String(), `"level":"`+tt.wantLevel+`"`) {
				t.Errorf("expected log level %s for %s %d, got output: %s", tt.wantLevel, tt.path, tt.statusCode, buf.String())
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("default status", func(t *testing.T) {
		t.Parallel()
		wrapped := wrapResponseWriter(httptest.NewRecorder())
		_, _ = wrapped.Write([]byte("hello"))

		if wrapped.status != http.StatusOK {
			t.Errorf("default status = %d, want %d", wrapped.status, http.StatusOK)
		}
		if wrapped.bytes != 5 {
			t.Errorf("bytes = %d, want 5", wrapped.bytes)
		}
	})

	t.Run("first WriteHeader wins", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		wrapped := wrapResponseWriter(rec)

		wrapped.WriteHeader(http.StatusCreated)
		wrapped.WriteHeader(http.StatusInternalServerError)

		if wrapped.status != http.StatusCreated || rec.Code != http.StatusCreated {
			t.Errorf("status after double write = %d/%d, want %d", wrapped.status, rec.Code, http.StatusCreated)
		}
	})

	t.Run("unwrap", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		if wrapResponseWriter(rec).Unwrap() != rec {
			t.Error("Unwrap should return the underlying writer")
		}
	})
}
