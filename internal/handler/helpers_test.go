package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/teghlab/otp-lab/internal/handler"
	"github.com/teghlab/otp-lab/internal/repository/sqlite"
	"github.com/teghlab/otp-lab/internal/service"
	"github.com/teghlab/otp-lab/internal/session"
)

const testSessionSecret = "test-secret-for-handler-tests"

type testServices struct {
	auth     *service.AuthService
	users    *service.UserService
	sessions *session.Manager
}

func newTestServices(t *testing.T) testServices {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return testServices{
		auth:     service.NewAuthService(db.Users(), db.OTPs(), service.LogSender{}, 4),
		users:    service.NewUserService(db.Users()),
		sessions: session.NewManager(db.Sessions(), testSessionSecret, false),
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := newTestServices(t)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, svc.auth, svc.users, svc.sessions)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns a client with its own cookie jar, i.e. its own session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := c.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp, out
}

func getJSON(t *testing.T, c *http.Client, url string, dst any) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

// verifyEmail issues an OTP, reads it back from the diagnostic endpoint and
// verifies it in c's session.
func verifyEmail(t *testing.T, c *http.Client, base, email string) {
	t.Helper()
	if resp, body := postJSON(t, c, base+"/api/send-otp", map[string]string{"email": email}); resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("send-otp: status=%d body=%v", resp.StatusCode, body)
	}

	var lookup map[string]any
	if resp := getJSON(t, c, base+"/otp/"+email, &lookup); resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup otp: status=%d", resp.StatusCode)
	}

	resp, body := postJSON(t, c, base+"/api/verify-otp", map[string]any{"email": email, "otp": lookup["otp"]})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("verify-otp: status=%d body=%v", resp.StatusCode, body)
	}
}

func register(t *testing.T, c *http.Client, base, email, password string) {
	t.Helper()
	verifyEmail(t, c, base, email)
	resp, body := postJSON(t, c, base+"/api/register", map[string]string{
		"email":     email,
		"password":  password,
		"firstName": "Test",
		"lastName":  "User",
		"phone":     "555-0100",
		"address":   "1 Main St",
		"city":      "Springfield",
		"zipCode":   "12345",
	})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("register: status=%d body=%v", resp.StatusCode, body)
	}
}
