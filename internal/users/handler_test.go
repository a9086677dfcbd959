package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(r)
	return r
}

func TestCreateAndGetUser(t *testing.T) {
	r := newTestRouter()

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":"jane@example.com","full_name":"Jane Doe"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created User
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"full_name":"Jane Doe"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestGetUserErrors(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		path   string
		status int
	}{
		{path: "/users/abc", status: http.StatusBadRequest},
		{path: "/users/42", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if resp.Code != tt.status {
			t.Fatalf("GET %s expected %d, got %d", tt.path, tt.status, resp.Code)
		}
	}
}

func TestCreateUserRejectsBadBody(t *testing.T) {
	r := newTestRouter()

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
