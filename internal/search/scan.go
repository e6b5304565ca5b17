package search

import (
	"context"
	"fmt"
	"strings"

	"folio/api/internal/content"
)

// ContentLoader provides the current site content for the scan searcher.
type ContentLoader interface {
	GetContent(ctx context.Context) (content.Document, error)
}

// Scan implements Searcher by walking the content document in memory.
// The whole site fits in one document, so a linear scan is the fallback
// when Meilisearch is not configured or unreachable.
type Scan struct {
	loader ContentLoader
}

// NewScan creates a content-scan searcher.
func NewScan(loader ContentLoader) *Scan {
	return &Scan{loader: loader}
}

// Healthy always returns true — if the content store is down, the whole
// app is down.
func (s *Scan) Healthy() bool {
	return true
}

// Search does a case-insensitive substring match over projects and posts.
func (s *Scan) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	doc, err := s.loader.GetContent(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load content for search: %w", err)
	}

	needle := strings.ToLower(q.Text)
	var results []Result

	if q.FilterType == "" || q.FilterType == ResultProject {
		for _, p := range doc.Portfolio.Projects {
			if matchProject(p, needle) {
				results = append(results, Result{
					Type:    ResultProject,
					ID:      p.ID,
					Title:   p.Title,
					Snippet: snippet(p.Description),
				})
			}
		}
	}

	if q.FilterType == "" || q.FilterType == ResultPost {
		for _, p := range doc.Blog.Posts {
			if matchPost(p, needle) {
				results = append(results, Result{
					Type:    ResultPost,
					ID:      p.ID,
					Title:   p.Title,
					Snippet: snippet(p.Description),
					URL:     p.URL,
				})
			}
		}
	}

	total := len(results)

	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return nil, total, nil
	}
	results = results[offset:]

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(results) > limit {
		results = results[:limit]
	}

	return results, total, nil
}

func matchProject(p content.Project, needle string) bool {
	if containsFold(p.Title, needle) || containsFold(p.Description, needle) {
		return true
	}
	for _, tag := range p.Tags {
		if containsFold(tag, needle) {
			return true
		}
	}
	return false
}

func matchPost(p content.BlogPost, needle string) bool {
	return containsFold(p.Title, needle) ||
		containsFold(p.Description, needle) ||
		containsFold(p.Content, needle)
}

// containsFold expects needle to already be lowercased.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func snippet(text string) string {
	const maxWords = 30
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "…"
}
