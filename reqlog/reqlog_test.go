package reqlog_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/adamwoolhether/xhttp/reqlog"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	var seenBody string
	handler := reqlog.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seenBody = string(b)
		w.WriteHeader(http.StatusCreated)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login?next=home", strings.NewReader("user=alice&password=secret"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.RemoteAddr = "127.0.0.1:1234"

	handler.ServeHTTP(w, r)

	output := buf.String()
	for _, exp := range []string{
		"request started",
		"request completed",
		"POST",
		"/login",
		"next=home",
		"user=alice",
		"password=*****",
		"127.0.0.1:1234",
		"statusCode=201",
	} {
		if !strings.Contains(output, exp) {
			t.Errorf("expected %q in log output: %s", exp, output)
		}
	}
	if strings.Contains(output, "secret") {
		t.Errorf("password leaked into log output: %s", output)
	}
	if seenBody != "user=alice&password=secret" {
		t.Errorf("expected handler to see full body, got %q", seenBody)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"

	if got := reqlog.ClientIP(r); got != "10.0.0.1:5555" {
		t.Errorf("expected remote addr, got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := reqlog.ClientIP(r); got != "203.0.113.7" {
		t.Errorf("expected forwarded addr, got %q", got)
	}
}

func TestRedact(t *testing.T) {
	testCases := []struct {
		name   string
		values url.Values
		exp    string
	}{
		{name: "Empty", values: url.Values{}, exp: ""},
		{name: "Plain", values: url.Values{"b": {"2"}, "a": {"1"}}, exp: "a=1&b=2"},
		{name: "Pass", values: url.Values{"pass": {"x"}}, exp: "pass=*****"},
		{name: "Pwd", values: url.Values{"userPwd": {"x"}}, exp: "userPwd=*****"},
		{name: "Password repeated", values: url.Values{"Password": {"x", "y"}}, exp: "Password=*****&Password=*****"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reqlog.Redact(tc.values); got != tc.exp {
				t.Errorf("expected %q, got %q", tc.exp, got)
			}
		})
	}
}
