package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"folio/api/internal/content"
)

// MemoryStore backs the API when no database is configured. Content
// reads always serve the fixed sample document and content writes
// return synthetic success echoing the input without persisting
// anything, uniformly across every operation — this keeps the viewer
// and its tests deterministic without a live store.
//
// Fallback-mode writes are explicitly non-durable: concurrent appends
// are serialized by the mutex, both report success with assigned ids,
// and neither survives. Accounts and refresh sessions, by contrast,
// are held in process memory so the admin flow stays usable in
// preview mode; they vanish on restart.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]User   // by id
	byEmail  map[string]string // email -> id
	sessions map[string]memorySession
	revoked  map[string]struct{}
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]User),
		byEmail:  make(map[string]string),
		sessions: make(map[string]memorySession),
		revoked:  make(map[string]struct{}),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) GetOrCreateContent(ctx context.Context) (content.Document, error) {
	return content.Default(), nil
}

func (s *MemoryStore) GetContent(ctx context.Context) (content.Document, error) {
	return content.Default(), nil
}

func (s *MemoryStore) ReplaceContent(ctx context.Context, doc content.Document) (content.Document, error) {
	content.EnsureIDs(&doc)
	return doc, nil
}

func (s *MemoryStore) AppendPost(ctx context.Context, post content.BlogPost) (content.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := content.Default()
	return content.AppendPost(&doc, post), nil
}

func (s *MemoryStore) AppendProject(ctx context.Context, project content.Project) (content.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := content.Default()
	return content.AppendProject(&doc, project), nil
}

// UpdatePost echoes a merged entity. When the id names a sample entity
// the patch is applied to it; an unknown id still succeeds against a
// blank entity because fallback writes never signal NotFound.
func (s *MemoryStore) UpdatePost(ctx context.Context, id string, patch content.BlogPostPatch) (content.BlogPost, error) {
	doc := content.Default()
	if merged, err := content.MergePost(&doc, id, patch); err == nil {
		return merged, nil
	}
	doc.Blog.Posts = append(doc.Blog.Posts, content.BlogPost{ID: id})
	merged, _ := content.MergePost(&doc, id, patch)
	return merged, nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, id string, patch content.ProjectPatch) (content.Project, error) {
	doc := content.Default()
	if merged, err := content.MergeProject(&doc, id, patch); err == nil {
		return merged, nil
	}
	doc.Portfolio.Projects = append(doc.Portfolio.Projects, content.Project{ID: id})
	merged, _ := content.MergeProject(&doc, id, patch)
	return merged, nil
}

func (s *MemoryStore) RemovePost(ctx context.Context, id string) error {
	return nil
}

func (s *MemoryStore) RemoveProject(ctx context.Context, id string) error {
	return nil
}

// --- volatile accounts and sessions ---

func (s *MemoryStore) CreateUser(ctx context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return User{}, sql.ErrNoRows
	}
	return s.users[id], nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return User{}, sql.ErrNoRows
	}
	return user, nil
}

func (s *MemoryStore) AdminExists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Role == "admin" {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	s.users[userID] = user
	return nil
}

func (s *MemoryStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenHash] = memorySession{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[tokenHash]
	if !ok || time.Now().After(session.expiresAt) {
		return User{}, sql.ErrNoRows
	}
	user, ok := s.users[session.userID]
	if !ok {
		return User{}, sql.ErrNoRows
	}
	return user, nil
}

func (s *MemoryStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

func (s *MemoryStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = struct{}{}
	return nil
}

func (s *MemoryStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, revoked := s.revoked[jti]
	return revoked, nil
}
