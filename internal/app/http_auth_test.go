package app

import (
	"context"
	"net/http"
	"testing"
)

func TestAdminSetupFlow(t *testing.T) {
	server, _ := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/admin/setup", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var probe map[string]any
	decodeResponse(t, rr, &probe)
	if probe["adminExists"] != false {
		t.Errorf("expected adminExists=false on fresh deployment, got %v", probe["adminExists"])
	}

	rr = doJSON(t, server, http.MethodPost, "/api/admin/setup", "", map[string]any{
		"email":       "admin@example.com",
		"password":    "password123",
		"displayName": "Owner",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created map[string]any
	decodeResponse(t, rr, &created)
	if created["accessToken"] == "" || created["accessToken"] == nil {
		t.Error("expected setup to sign the admin in")
	}
	if created["role"] != "admin" {
		t.Errorf("expected admin role, got %v", created["role"])
	}

	rr = doJSON(t, server, http.MethodGet, "/api/admin/setup", "", nil)
	decodeResponse(t, rr, &probe)
	if probe["adminExists"] != true {
		t.Errorf("expected adminExists=true after setup, got %v", probe["adminExists"])
	}

	rr = doJSON(t, server, http.MethodPost, "/api/admin/setup", "", map[string]any{
		"email":    "second@example.com",
		"password": "password123",
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 on second setup, got %d", rr.Code)
	}
}

func TestLoginAndSessionProbe(t *testing.T) {
	server, svc := newTestServer(t)
	adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "password123",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var login map[string]any
	decodeResponse(t, rr, &login)
	token, _ := login["accessToken"].(string)
	if token == "" {
		t.Fatal("expected an access token")
	}

	rr = doJSON(t, server, http.MethodGet, "/api/session", token, nil)
	var session map[string]any
	decodeResponse(t, rr, &session)
	if session["authenticated"] != true {
		t.Errorf("expected authenticated=true, got %v", session["authenticated"])
	}
	if session["userName"] != "Owner" {
		t.Errorf("expected userName=Owner, got %v", session["userName"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	server, svc := newTestServer(t)
	adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "wrong-password",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestSessionProbeWithoutToken(t *testing.T) {
	server, _ := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/session", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var session map[string]any
	decodeResponse(t, rr, &session)
	if session["authenticated"] != false {
		t.Errorf("expected authenticated=false, got %v", session["authenticated"])
	}
}

func TestRefreshRotation(t *testing.T) {
	server, svc := newTestServer(t)

	setup, err := svc.Setup(context.Background(), "admin@example.com", "password123", "Owner")
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	rr := doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refreshToken": setup.RefreshToken,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var refreshed map[string]any
	decodeResponse(t, rr, &refreshed)
	if refreshed["refreshToken"] == setup.RefreshToken {
		t.Error("expected the refresh token to rotate")
	}

	// The consumed token no longer works
	rr = doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refreshToken": setup.RefreshToken,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for consumed refresh token, got %d", rr.Code)
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPost, "/api/auth/logout", token, map[string]any{})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, server, http.MethodPost, "/api/content", token, map[string]any{})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rr.Code)
	}
}

func TestChangePassword(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPost, "/api/auth/change-password", token, map[string]any{
		"currentPassword": "password123",
		"newPassword":     "better-password-9",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "password123",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected old password rejected, got %d", rr.Code)
	}

	rr = doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "better-password-9",
	})
	if rr.Code != http.StatusOK {
		t.Errorf("expected new password accepted, got %d", rr.Code)
	}
}

func TestGarbageBearerTokenIs401(t *testing.T) {
	server, _ := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/content", "not-a-real-token", map[string]any{})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}
