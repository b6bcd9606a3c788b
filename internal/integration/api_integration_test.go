package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tasktracker/internal/config"
	httpServer "tasktracker/internal/http"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testPool(t)

	cfg := &config.Config{
		APIRateLimit:    1000,
		APIRateWindow:   time.Minute,
		AuthRateLimit:   1000,
		AuthRateWindow:  time.Minute,
		TaskWriteLimit:  1000,
		TaskWriteWindow: time.Minute,
	}

	tokens := service.NewTokenService([]byte("integration-secret"))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpServer.RegisterRoutes(r, db, tokens, cfg, "test")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, b
}

func decodeMap(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return m
}

func register(t *testing.T, base, name, email, password, org string) (token string, userID float64) {
	t.Helper()
	code, body := doJSON(t, "POST", base+"/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password, "organization": org,
	})
	if code != http.StatusOK {
		t.Fatalf("register %s: expected 200 got %d: %s", email, code, body)
	}
	m := decodeMap(t, body)
	token, _ = m["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response %s", email, body)
	}
	user := m["user"].(map[string]any)
	return token, user["_id"].(float64)
}

func TestAuthScenario(t *testing.T) {
	srv := testServer(t)
	email := uniqueEmail("scenario")

	_, userID := register(t, srv.URL, "A", email, "p1", "org-x")
	if userID == 0 {
		t.Fatalf("expected user id")
	}

	// second registration with the same email fails regardless of password
	for _, password := range []string{"p1", "different"} {
		code, body := doJSON(t, "POST", srv.URL+"/api/auth/register", "", map[string]string{
			"name": "A", "email": email, "password": password,
		})
		if code != http.StatusBadRequest {
			t.Fatalf("duplicate register: expected 400 got %d: %s", code, body)
		}
		if m := decodeMap(t, body); m["msg"] != "User already exists" {
			t.Fatalf("duplicate register msg = %v", m["msg"])
		}
	}

	// wrong password and unknown account answer with distinct messages;
	// the distinction is pinned so merging them later is a visible change
	code, body := doJSON(t, "POST", srv.URL+"/api/auth/login", "", map[string]string{
		"email": email, "password": "wrong",
	})
	if code != http.StatusBadRequest || decodeMap(t, body)["msg"] != "Wrong password" {
		t.Fatalf("wrong password: got %d %s", code, body)
	}

	code, body = doJSON(t, "POST", srv.URL+"/api/auth/login", "", map[string]string{
		"email": uniqueEmail("ghost"), "password": "p1",
	})
	if code != http.StatusBadRequest || decodeMap(t, body)["msg"] != "No user" {
		t.Fatalf("unknown email: got %d %s", code, body)
	}

	// successful login
	code, body = doJSON(t, "POST", srv.URL+"/api/auth/login", "", map[string]string{
		"email": email, "password": "p1",
	})
	if code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d: %s", code, body)
	}
	m := decodeMap(t, body)
	if m["token"] == "" {
		t.Fatalf("login: missing token")
	}
	// the password digest never crosses the boundary
	if _, ok := m["user"].(map[string]any)["password_hash"]; ok {
		t.Fatalf("password hash leaked in login response")
	}
}

func TestTaskScenario(t *testing.T) {
	srv := testServer(t)

	tokenA, idA := register(t, srv.URL, "A", uniqueEmail("a"), "p1", "org-a")
	tokenB, _ := register(t, srv.URL, "B", uniqueEmail("b"), "p2", "org-b")

	// unauthenticated access is rejected
	if code, _ := doJSON(t, "GET", srv.URL+"/api/tasks", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}

	// createdBy is forced to the caller even when the payload lies
	code, body := doJSON(t, "POST", srv.URL+"/api/tasks", tokenA, map[string]any{
		"title":     "T",
		"createdBy": 999999,
	})
	if code != http.StatusOK {
		t.Fatalf("create: expected 200 got %d: %s", code, body)
	}
	task := decodeMap(t, body)
	if task["status"] != "pending" || task["priority"] != "medium" {
		t.Fatalf("defaults not applied: %s", body)
	}
	if task["createdBy"].(float64) != idA {
		t.Fatalf("createdBy = %v; want %v", task["createdBy"], idA)
	}
	taskID := fmt.Sprintf("%.0f", task["_id"].(float64))

	// title is required
	if code, _ := doJSON(t, "POST", srv.URL+"/api/tasks", tokenA, map[string]any{"description": "no title"}); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d", code)
	}
	if code, _ := doJSON(t, "POST", srv.URL+"/api/tasks", tokenA, map[string]any{"title": "T", "status": "bogus"}); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", code)
	}

	// a different user sees the task with no filters: listing has no
	// hidden scoping by caller identity or organization
	code, body = doJSON(t, "GET", srv.URL+"/api/tasks", tokenB, nil)
	if code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", code)
	}
	var listed []map[string]any
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	found := false
	for _, lt := range listed {
		if fmt.Sprintf("%.0f", lt["_id"].(float64)) == taskID {
			found = true
		}
	}
	if !found {
		t.Fatalf("task of user A not visible to user B in unfiltered list")
	}

	// missing task is a 404, never a null success
	if code, _ := doJSON(t, "GET", srv.URL+"/api/tasks/999999999", tokenA, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing task, got %d", code)
	}

	// comment appended and attributed to the caller
	code, body = doJSON(t, "POST", srv.URL+"/api/tasks/"+taskID+"/comments", tokenB, map[string]string{"comment": "looks good"})
	if code != http.StatusOK {
		t.Fatalf("comment: expected 200 got %d: %s", code, body)
	}
	comments := decodeMap(t, body)["comments"].([]any)
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
}

// Any authenticated user may update or delete any task. There is no
// ownership or assignment check; tightening this is a deliberate,
// test-visible change.
func TestUpdateTask_AnyAuthenticatedUserMayUpdate(t *testing.T) {
	srv := testServer(t)

	tokenA, _ := register(t, srv.URL, "A", uniqueEmail("owner"), "p1", "org-a")
	tokenB, _ := register(t, srv.URL, "B", uniqueEmail("stranger"), "p2", "org-b")

	code, body := doJSON(t, "POST", srv.URL+"/api/tasks", tokenA, map[string]any{"title": "owned by A"})
	if code != http.StatusOK {
		t.Fatalf("create: %d %s", code, body)
	}
	taskID := fmt.Sprintf("%.0f", decodeMap(t, body)["_id"].(float64))

	code, body = doJSON(t, "PUT", srv.URL+"/api/tasks/"+taskID, tokenB, map[string]any{"status": "completed"})
	if code != http.StatusOK {
		t.Fatalf("update by non-owner: expected 200 got %d: %s", code, body)
	}
	if decodeMap(t, body)["status"] != "completed" {
		t.Fatalf("update not applied: %s", body)
	}
}

func TestDeleteTask_IdempotentAndUnrestricted(t *testing.T) {
	srv := testServer(t)

	tokenA, _ := register(t, srv.URL, "A", uniqueEmail("owner2"), "p1", "org-a")
	tokenB, _ := register(t, srv.URL, "B", uniqueEmail("stranger2"), "p2", "org-b")

	code, body := doJSON(t, "POST", srv.URL+"/api/tasks", tokenA, map[string]any{"title": "to delete"})
	if code != http.StatusOK {
		t.Fatalf("create: %d %s", code, body)
	}
	taskID := fmt.Sprintf("%.0f", decodeMap(t, body)["_id"].(float64))

	// non-owner delete succeeds
	code, body = doJSON(t, "DELETE", srv.URL+"/api/tasks/"+taskID, tokenB, nil)
	if code != http.StatusOK || decodeMap(t, body)["msg"] != "Deleted" {
		t.Fatalf("delete: got %d %s", code, body)
	}

	// deleting the same (now absent) id is still a success, not a 404
	code, body = doJSON(t, "DELETE", srv.URL+"/api/tasks/"+taskID, tokenA, nil)
	if code != http.StatusOK || decodeMap(t, body)["msg"] != "Deleted" {
		t.Fatalf("repeat delete: got %d %s", code, body)
	}
}
