package app

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"folio/api/internal/auth"
	"folio/api/internal/authpw"
	"folio/api/internal/config"
	"folio/api/internal/content"
	"folio/api/internal/media"
	"folio/api/internal/rbac"
	"folio/api/internal/search"
	"folio/api/internal/store"
	"folio/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Email        string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

// dataStore is the storage surface the service needs. PostgresStore is the
// durable backend; MemoryStore serves the built-in sample content when no
// database is configured.
type dataStore interface {
	GetOrCreateContent(ctx context.Context) (content.Document, error)
	GetContent(ctx context.Context) (content.Document, error)
	ReplaceContent(ctx context.Context, doc content.Document) (content.Document, error)
	AppendPost(ctx context.Context, post content.BlogPost) (content.BlogPost, error)
	AppendProject(ctx context.Context, project content.Project) (content.Project, error)
	UpdatePost(ctx context.Context, id string, patch content.BlogPostPatch) (content.BlogPost, error)
	UpdateProject(ctx context.Context, id string, patch content.ProjectPatch) (content.Project, error)
	RemovePost(ctx context.Context, id string) error
	RemoveProject(ctx context.Context, id string) error

	CreateUser(ctx context.Context, user store.User) error
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, id string) (store.User, error)
	AdminExists(ctx context.Context) (bool, error)
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error

	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)

	Ping(ctx context.Context) error
}

// sessionStore holds refresh tokens. Defaults to the data store; Redis takes
// over when configured.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	auth     *authpw.Service
	search   *search.Service
	uploader media.Uploader
}

func New(cfg config.Config, dataStore dataStore) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: dataStore,
		auth:     authpw.NewService(dataStore),
	}
}

// UseSessionStore swaps refresh token storage to an external backend.
func (s *Service) UseSessionStore(sessions sessionStore) {
	s.sessions = sessions
}

// UseSearch attaches the search facade. Content writes reindex through it.
func (s *Service) UseSearch(sv *search.Service) {
	s.search = sv
}

// UseUploader attaches the media upload backend. Uploads return 503 until set.
func (s *Service) UseUploader(u media.Uploader) {
	s.uploader = u
}

// ── Content ──

func (s *Service) Content(ctx context.Context) (content.Document, error) {
	return s.store.GetOrCreateContent(ctx)
}

func (s *Service) Post(ctx context.Context, id string) (content.BlogPost, error) {
	doc, err := s.store.GetContent(ctx)
	if err != nil {
		return content.BlogPost{}, err
	}
	post, err := content.FindPost(doc, id)
	if err != nil {
		return content.BlogPost{}, domainError(http.StatusNotFound, "NOT_FOUND", "Post not found", nil)
	}
	return post, nil
}

func (s *Service) Project(ctx context.Context, id string) (content.Project, error) {
	doc, err := s.store.GetContent(ctx)
	if err != nil {
		return content.Project{}, err
	}
	project, err := content.FindProject(doc, id)
	if err != nil {
		return content.Project{}, domainError(http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
	}
	return project, nil
}

func (s *Service) Projects(ctx context.Context) ([]content.Project, error) {
	doc, err := s.store.GetContent(ctx)
	if err != nil {
		return nil, err
	}
	projects := doc.Portfolio.Projects
	if projects == nil {
		projects = []content.Project{}
	}
	return projects, nil
}

// ReplaceContent swaps the whole document for the supplied one. Sections
// omitted by the caller come back empty; this is the documented contract of
// the endpoint, not an accident.
func (s *Service) ReplaceContent(ctx context.Context, doc content.Document) (content.Document, error) {
	stored, err := s.store.ReplaceContent(ctx, doc)
	if err != nil {
		return content.Document{}, err
	}
	s.reindex(stored)
	return stored, nil
}

func (s *Service) AppendPost(ctx context.Context, post content.BlogPost) (content.BlogPost, error) {
	stored, err := s.store.AppendPost(ctx, post)
	if err != nil {
		return content.BlogPost{}, err
	}
	s.reindexCurrent(ctx)
	return stored, nil
}

func (s *Service) AppendProject(ctx context.Context, project content.Project) (content.Project, error) {
	stored, err := s.store.AppendProject(ctx, project)
	if err != nil {
		return content.Project{}, err
	}
	s.reindexCurrent(ctx)
	return stored, nil
}

func (s *Service) UpdatePost(ctx context.Context, id string, patch content.BlogPostPatch) (content.BlogPost, error) {
	updated, err := s.store.UpdatePost(ctx, id, patch)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return content.BlogPost{}, domainError(http.StatusNotFound, "NOT_FOUND", "Post not found", nil)
		}
		return content.BlogPost{}, err
	}
	s.reindexCurrent(ctx)
	return updated, nil
}

func (s *Service) UpdateProject(ctx context.Context, id string, patch content.ProjectPatch) (content.Project, error) {
	updated, err := s.store.UpdateProject(ctx, id, patch)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return content.Project{}, domainError(http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		}
		return content.Project{}, err
	}
	s.reindexCurrent(ctx)
	return updated, nil
}

func (s *Service) RemovePost(ctx context.Context, id string) error {
	if err := s.store.RemovePost(ctx, id); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return domainError(http.StatusNotFound, "NOT_FOUND", "Post not found", nil)
		}
		return err
	}
	if s.search != nil {
		s.search.DeletePost(id)
	}
	return nil
}

func (s *Service) RemoveProject(ctx context.Context, id string) error {
	if err := s.store.RemoveProject(ctx, id); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return domainError(http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		}
		return err
	}
	if s.search != nil {
		s.search.DeleteProject(id)
	}
	return nil
}

// reindexCurrent reloads the document and pushes it to the search index.
func (s *Service) reindexCurrent(ctx context.Context) {
	if s.search == nil {
		return
	}
	doc, err := s.store.GetContent(ctx)
	if err != nil {
		log.Printf("reindex: load content: %v", err)
		return
	}
	s.reindex(doc)
}

func (s *Service) reindex(doc content.Document) {
	if s.search == nil {
		return
	}

	projects := make([]search.ProjectRecord, 0, len(doc.Portfolio.Projects))
	for _, p := range doc.Portfolio.Projects {
		projects = append(projects, search.ProjectRecord{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Tags:        p.Tags,
		})
	}

	posts := make([]search.PostRecord, 0, len(doc.Blog.Posts))
	for _, p := range doc.Blog.Posts {
		posts = append(posts, search.PostRecord{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Content:     p.Content,
			Date:        p.Date,
			URL:         p.URL,
		})
	}

	s.search.Reindex(projects, posts)
}

// ── Auth ──

// Setup creates the admin account on a fresh deployment and signs it in.
func (s *Service) Setup(ctx context.Context, email, password, displayName string) (Session, error) {
	user, err := s.auth.Setup(ctx, authpw.SetupRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		if errors.Is(err, authpw.ErrAdminExists) {
			return Session{}, domainError(http.StatusConflict, "ADMIN_EXISTS", "Admin account already exists", nil)
		}
		return Session{}, domainError(http.StatusBadRequest, "SETUP_FAILED", err.Error(), nil)
	}
	return s.issueSession(ctx, user)
}

// AdminExists reports whether setup has already run (login page probe).
func (s *Service) AdminExists(ctx context.Context) (bool, error) {
	return s.auth.AdminExists(ctx)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.auth.SignIn(ctx, authpw.SignInRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	// Session backends may persist only the user ID
	if user.DisplayName == "" {
		if full, err := s.store.GetUserByID(ctx, user.ID); err == nil {
			user = full
		}
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:  user.ID,
		Name: user.DisplayName,
		Role: user.Role,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Email:        user.Email,
		Role:         user.Role,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Email:     user.Email,
		Role:      user.Role,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := s.auth.ChangePassword(ctx, userID, currentPassword, newPassword); err != nil {
		return domainError(http.StatusBadRequest, "CHANGE_PASSWORD_FAILED", err.Error(), nil)
	}
	return nil
}

func (s *Service) Can(role string, action rbac.Action) bool {
	return rbac.Can(rbac.Normalize(role), action)
}

// ── Upload ──

// Upload proxies a file to the media backend and returns its permanent URL.
// Only that URL ever lands in content fields.
func (s *Service) Upload(ctx context.Context, kind, contentType string, r io.Reader, size int64) (string, error) {
	if s.uploader == nil {
		return "", domainError(http.StatusServiceUnavailable, "UPLOADS_DISABLED", "Media storage not configured", nil)
	}
	if kind == "" {
		kind = media.KindImage
	}

	url, err := s.uploader.Upload(ctx, kind, contentType, r, size)
	if err != nil {
		if errors.Is(err, media.ErrUnknownKind) {
			return "", domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown upload kind", nil)
		}
		if errors.Is(err, media.ErrUnsupportedType) {
			message := "Unsupported file type"
			if kind == media.KindResume {
				message = "Only JPG or PNG files are allowed"
			}
			return "", domainError(http.StatusBadRequest, "UNSUPPORTED_MEDIA", message, map[string]any{
				"accepted": media.AcceptedTypes(kind),
			})
		}
		log.Printf("upload: %v", err)
		return "", domainError(http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Media storage unavailable", nil)
	}
	return url, nil
}

// ── Search ──

func (s *Service) Search(ctx context.Context, text, filterType string, limit, offset int) (search.Response, error) {
	var rtyp search.ResultType
	switch filterType {
	case "":
	case string(search.ResultProject):
		rtyp = search.ResultProject
	case string(search.ResultPost):
		rtyp = search.ResultPost
	default:
		return search.Response{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "type must be 'project' or 'post'", nil)
	}

	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}

	return s.search.Search(ctx, search.Query{
		Text:       text,
		FilterType: rtyp,
		Limit:      limit,
		Offset:     offset,
	}), nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
