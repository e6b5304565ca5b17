package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"folio/api/internal/content"
)

func newTestServer(t *testing.T) (*HTTPServer, *Service) {
	t.Helper()
	svc := newTestService(newFakeStore())
	return NewHTTPServer(svc, "*"), svc
}

func adminToken(t *testing.T, svc *Service) string {
	t.Helper()
	session, err := svc.Setup(context.Background(), "admin@example.com", "password123", "Owner")
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return session.Token
}

func doJSON(t *testing.T, server *HTTPServer, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse response %s: %v", rr.Body.String(), err)
	}
}

func TestContentGetIsPublic(t *testing.T) {
	server, _ := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/content", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var doc content.Document
	decodeResponse(t, rr, &doc)
	if doc.Blog.Posts == nil {
		t.Error("expected posts array to be present (empty, not null)")
	}
}

func TestContentMutationsRequireSession(t *testing.T) {
	server, _ := newTestServer(t)

	for _, tc := range []struct{ method, target string }{
		{http.MethodPost, "/api/content"},
		{http.MethodPut, "/api/content"},
		{http.MethodPost, "/api/content?section=projects"},
		{http.MethodPatch, "/api/content?postId=x"},
		{http.MethodDelete, "/api/content?projectId=x"},
	} {
		rr := doJSON(t, server, tc.method, tc.target, "", map[string]any{})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.target, rr.Code)
		}
	}
}

func TestContentAppendPostFlow(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPut, "/api/content", token, content.BlogPost{Title: "First post"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created content.BlogPost
	decodeResponse(t, rr, &created)
	if created.ID == "" {
		t.Fatal("expected created post to carry an id")
	}

	rr = doJSON(t, server, http.MethodGet, "/api/content?postId="+created.ID, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching created post, got %d", rr.Code)
	}
	var fetched content.BlogPost
	decodeResponse(t, rr, &fetched)
	if fetched.Title != "First post" {
		t.Errorf("expected title to round-trip, got %q", fetched.Title)
	}
}

func TestContentAppendProjectViaSectionSelector(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPost, "/api/content?section=projects", token,
		content.Project{Title: "Folio", Tags: []string{"go"}})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created content.Project
	decodeResponse(t, rr, &created)
	if created.ID == "" {
		t.Fatal("expected created project to carry an id")
	}

	rr = doJSON(t, server, http.MethodGet, "/api/content?section=projects", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var envelope struct {
		Projects []content.Project `json:"projects"`
	}
	decodeResponse(t, rr, &envelope)
	if len(envelope.Projects) != 1 || envelope.Projects[0].ID != created.ID {
		t.Errorf("expected the created project in the envelope, got %+v", envelope.Projects)
	}
}

func TestContentPatchMergesPartialFields(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	created, err := svc.AppendProject(context.Background(), content.Project{
		Title:       "Original",
		Description: "Keep me",
		Tags:        []string{"go"},
	})
	if err != nil {
		t.Fatalf("AppendProject failed: %v", err)
	}

	rr := doJSON(t, server, http.MethodPatch, "/api/content?projectId="+created.ID, token,
		map[string]any{"title": "Renamed"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var updated content.Project
	decodeResponse(t, rr, &updated)
	if updated.Title != "Renamed" {
		t.Errorf("expected title Renamed, got %q", updated.Title)
	}
	if updated.Description != "Keep me" {
		t.Errorf("expected unspecified field preserved, got %q", updated.Description)
	}
	if updated.ID != created.ID {
		t.Errorf("expected id to be immutable, got %q", updated.ID)
	}
}

func TestContentPatchExplicitEmptyOverwrites(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	created, err := svc.AppendPost(context.Background(), content.BlogPost{
		Title:       "Post",
		Description: "Soon gone",
	})
	if err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}

	rr := doJSON(t, server, http.MethodPatch, "/api/content?postId="+created.ID, token,
		map[string]any{"description": ""})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var updated content.BlogPost
	decodeResponse(t, rr, &updated)
	if updated.Description != "" {
		t.Errorf("expected explicit empty to overwrite, got %q", updated.Description)
	}
	if updated.Title != "Post" {
		t.Errorf("expected title preserved, got %q", updated.Title)
	}
}

func TestContentPatchUnknownIDIs404(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPatch, "/api/content?postId=missing", token,
		map[string]any{"title": "x"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestContentDeleteIsPermanentAndNotIdempotent(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	created, err := svc.AppendPost(context.Background(), content.BlogPost{Title: "Doomed"})
	if err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}

	rr := doJSON(t, server, http.MethodDelete, "/api/content?postId="+created.ID, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodDelete, "/api/content?postId="+created.ID, token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rr.Code)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/content?postId="+created.ID, "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 fetching deleted post, got %d", rr.Code)
	}
}

func TestContentReplaceWholesale(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	if _, err := svc.AppendPost(context.Background(), content.BlogPost{Title: "Old"}); err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}

	replacement := map[string]any{
		"personal": map[string]any{"name": "New Owner"},
	}
	rr := doJSON(t, server, http.MethodPost, "/api/content", token, replacement)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var stored content.Document
	decodeResponse(t, rr, &stored)
	if stored.Personal.Name != "New Owner" {
		t.Errorf("expected replaced personal section, got %q", stored.Personal.Name)
	}
	if len(stored.Blog.Posts) != 0 {
		t.Errorf("expected omitted blog section to be emptied, got %d posts", len(stored.Blog.Posts))
	}
}

func TestContentBadSectionRejected(t *testing.T) {
	server, _ := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/content?section=skills", "", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unknown section, got %d", rr.Code)
	}
}

func TestContentPatchWithoutSelectorRejected(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPatch, "/api/content", token, map[string]any{"title": "x"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without selector, got %d", rr.Code)
	}
}

func TestContentStoreFailureLoggedNotLeaked(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	server := NewHTTPServer(svc, "*")

	fs.contentErr = errors.New("dial tcp 127.0.0.1:5432: connection refused")

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	rr := doJSON(t, server, http.MethodGet, "/api/content", "", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection refused") {
		t.Errorf("raw store error leaked to the client: %s", rr.Body.String())
	}

	var payload struct {
		Code string `json:"code"`
	}
	decodeResponse(t, rr, &payload)
	if payload.Code != "SERVER_ERROR" {
		t.Errorf("expected SERVER_ERROR, got %q", payload.Code)
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Errorf("expected store failure detail in server log, got: %s", logs.String())
	}
}
