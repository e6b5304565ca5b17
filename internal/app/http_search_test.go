package app

import (
	"context"
	"net/http"
	"testing"

	"folio/api/internal/content"
	"folio/api/internal/search"
)

func newSearchServer(t *testing.T) (*HTTPServer, *Service) {
	t.Helper()
	fs := newFakeStore()
	svc := newTestService(fs)
	svc.UseSearch(search.NewService(nil, search.NewScan(fs)))
	return NewHTTPServer(svc, "*"), svc
}

func TestSearchEndpointScanFallback(t *testing.T) {
	server, svc := newSearchServer(t)

	if _, err := svc.AppendPost(context.Background(), content.BlogPost{
		Title:   "Shipping the new site",
		Content: "Notes from the migration weekend.",
	}); err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}
	if _, err := svc.AppendProject(context.Background(), content.Project{
		Title: "Site migration tool",
	}); err != nil {
		t.Fatalf("AppendProject failed: %v", err)
	}

	rr := doJSON(t, server, http.MethodGet, "/api/search?q=migration", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response search.Response
	decodeResponse(t, rr, &response)
	if response.Total != 2 {
		t.Errorf("expected 2 hits across posts and projects, got %d", response.Total)
	}
	if response.Query != "migration" {
		t.Errorf("expected query echoed back, got %q", response.Query)
	}
}

func TestSearchEndpointTypeFilter(t *testing.T) {
	server, svc := newSearchServer(t)

	if _, err := svc.AppendPost(context.Background(), content.BlogPost{Title: "Go tips"}); err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}
	if _, err := svc.AppendProject(context.Background(), content.Project{Title: "Go service"}); err != nil {
		t.Fatalf("AppendProject failed: %v", err)
	}

	rr := doJSON(t, server, http.MethodGet, "/api/search?q=go&type=post", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var response search.Response
	decodeResponse(t, rr, &response)
	if response.Total != 1 || response.Results[0].Type != search.ResultPost {
		t.Errorf("expected only the post hit, got %+v", response.Results)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/search?q=go&type=spaceship", "", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unknown type, got %d", rr.Code)
	}
}

func TestSearchEndpointBadLimit(t *testing.T) {
	server, _ := newSearchServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/search?q=x&limit=abc", "", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for non-integer limit, got %d", rr.Code)
	}
}
