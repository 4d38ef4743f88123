package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact(t *testing.T) {
	cases := map[string]string{
		"email=vasya@example.com":                       "email=[REDACTED:email]",
		"id=3f2504e0-4f89-41d3-9a0c-0305e82c3301":       "id=[REDACTED:id]",
		"call 212-555-1212":                             "call [REDACTED:phone]",
		"t=eyJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lkIjoxfQ.sig": "t=[REDACTED:token]",
		"tags=breakfast&tags=lunch":                     "tags=breakfast&tags=lunch",
	}
	for in, want := range cases {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactingLogger_LevelsHeadersAndScopedLogger(t *testing.T) {
	buf := captureLog(t)
	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/recipes/:id", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("inside")
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/recipes/7?email=a@b.io", nil)
	req.Header.Set("Authorization", "Token secret")
	req.Header.Set("X-Api-Key", "k")
	req.Header.Set(requestIDHeader, "rid-9")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	inner, access := lines[0], lines[1]
	if inner["request_id"] != "rid-9" || inner["path"] != "/recipes/:id" {
		t.Fatalf("scoped logger fields missing: %v", inner)
	}
	if access["level"] != "warn" || access["status"] != float64(404) {
		t.Fatalf("access log = %v", access)
	}
	if access["query"] != "email=[REDACTED:email]" {
		t.Fatalf("query not redacted: %v", access["query"])
	}
	headers, _ := access["headers"].(map[string]any)
	if headers["Authorization"] != "[REDACTED]" || headers["X-Api-Key"] != "[REDACTED]" {
		t.Fatalf("headers not masked: %v", headers)
	}
	if strings.Contains(buf.String(), "secret") {
		t.Fatalf("token leaked: %s", buf.String())
	}
}

func TestRedactingLogger_ErrorLevel(t *testing.T) {
	buf := captureLog(t)
	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	lines := logLines(t, buf)
	if len(lines) != 1 || lines[0]["level"] != "error" {
		t.Fatalf("expected one error line: %s", buf.String())
	}
}
