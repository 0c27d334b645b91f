package app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/jun/smartdoorlock/internal/rtdb"
	"github.com/jun/smartdoorlock/internal/token"
	"golang.org/x/oauth2"
)

type stubProvider struct{}

func (stubProvider) Info() token.Info {
	return token.Info{Type: token.TypeLegacy, Status: token.StatusReady}
}

func (stubProvider) Token(context.Context) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "secret"}, nil
}

type stubDB struct {
	lastPath string
}

func (s *stubDB) Get(_ context.Context, p string) (*rtdb.Result, error) {
	s.lastPath = p
	if p == "bad.path" {
		return nil, rtdb.ErrInvalidPath
	}
	return rtdb.NewResult("/"+p, []byte(`"locked"`)), nil
}

func (s *stubDB) Set(_ context.Context, p string, v any) (*rtdb.Result, error) {
	s.lastPath = p
	b, _ := json.Marshal(v)
	return rtdb.NewResult("/"+p, b), nil
}

func request(method, path string, headers map[string]string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{HTTPMethod: method, Path: path, Headers: headers}
}

func TestHandleRequest_Routes(t *testing.T) {
	db := &stubDB{}
	a := New(stubProvider{}, db, "s3cret", false)
	auth := map[string]string{"X-Origin-Verify": "s3cret"}
	ctx := context.Background()

	tests := []struct {
		name   string
		req    events.APIGatewayProxyRequest
		status int
		body   string
	}{
		{"health", request("GET", "/healthz", nil), http.StatusOK, "ok"},
		{"token", request("GET", "/api/token", auth), http.StatusOK, "Token info: type = Legacy token, status = Ready\n"},
		{"rtdb get", request("GET", "/rtdb/door/state", auth), http.StatusOK, "Path: /door/state\nType: string\nValue: locked\n"},
		{"rtdb invalid path", request("GET", "/rtdb/bad.path", auth), http.StatusBadRequest, ""},
		{"rtdb method", request("DELETE", "/rtdb/door", auth), http.StatusMethodNotAllowed, ""},
		{"not found", request("GET", "/unknown", auth), http.StatusNotFound, ""},
		{"forbidden", request("GET", "/token", nil), http.StatusForbidden, ""},
		{"wrong secret", request("GET", "/token", map[string]string{"x-origin-verify": "nope"}), http.StatusForbidden, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := a.HandleRequest(ctx, tc.req)
			if err != nil {
				t.Fatalf("HandleRequest returned error: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("Expected %d, got %d: %s", tc.status, resp.StatusCode, resp.Body)
			}
			if tc.body != "" && resp.Body != tc.body {
				t.Errorf("Expected body %q, got %q", tc.body, resp.Body)
			}
			if len(resp.Headers["X-Request-Id"]) != 8 {
				t.Errorf("Expected an 8-char X-Request-Id, got %q", resp.Headers["X-Request-Id"])
			}
		})
	}
}

func TestHandleRequest_PutRTDB(t *testing.T) {
	db := &stubDB{}
	a := New(stubProvider{}, db, "", true)

	req := request("PUT", "/api/rtdb/door/locked", nil)
	req.Body = "false"
	resp, _ := a.HandleRequest(context.Background(), req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	if db.lastPath != "door/locked" {
		t.Errorf("Expected path door/locked, got %q", db.lastPath)
	}
	if want := "Path: /door/locked\nType: boolean\nValue: false\n"; resp.Body != want {
		t.Errorf("Expected %q, got %q", want, resp.Body)
	}
}

func TestHandleRequest_DevModeSkipsOriginCheck(t *testing.T) {
	a := New(stubProvider{}, &stubDB{}, "s3cret", true)

	resp, _ := a.HandleRequest(context.Background(), request("GET", "/token", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 in dev mode, got %d", resp.StatusCode)
	}
}
