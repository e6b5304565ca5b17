package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"folio/api/internal/content"
)

// PostgresStore persists the singleton content document as a single
// jsonb row plus the admin account and session tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetOrCreateContent reads the singleton document, creating it with
// bootstrap values when absent. The single-row constraint makes the
// first-time race safe: both INSERTs may run, at most one row survives.
func (s *PostgresStore) GetOrCreateContent(ctx context.Context) (content.Document, error) {
	bootstrap, err := json.Marshal(content.Bootstrap())
	if err != nil {
		return content.Document{}, fmt.Errorf("marshal bootstrap content: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO site_content (id, data)
		VALUES (1, $1::jsonb)
		ON CONFLICT (id) DO NOTHING
	`, string(bootstrap)); err != nil {
		return content.Document{}, fmt.Errorf("bootstrap content: %w", err)
	}

	var raw []byte
	if err := s.db.QueryRowContext(ctx, `SELECT data FROM site_content WHERE id=1`).Scan(&raw); err != nil {
		return content.Document{}, fmt.Errorf("read content: %w", err)
	}
	var doc content.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return content.Document{}, fmt.Errorf("decode content: %w", err)
	}
	return doc, nil
}

// GetContent returns the full document without mutating anything that
// is already there; absence still triggers the lazy bootstrap.
func (s *PostgresStore) GetContent(ctx context.Context) (content.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM site_content WHERE id=1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return s.GetOrCreateContent(ctx)
	}
	if err != nil {
		return content.Document{}, fmt.Errorf("read content: %w", err)
	}
	var doc content.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return content.Document{}, fmt.Errorf("decode content: %w", err)
	}
	return doc, nil
}

// ReplaceContent overwrites the stored sections wholesale. Sections the
// caller omitted become empty; this is the documented erasure behavior,
// not a merge. Entities arriving without an id get one assigned.
func (s *PostgresStore) ReplaceContent(ctx context.Context, doc content.Document) (content.Document, error) {
	content.EnsureIDs(&doc)
	raw, err := json.Marshal(doc)
	if err != nil {
		return content.Document{}, fmt.Errorf("marshal content: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO site_content (id, data)
		VALUES (1, $1::jsonb)
		ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=NOW()
	`, string(raw)); err != nil {
		return content.Document{}, fmt.Errorf("replace content: %w", err)
	}
	return doc, nil
}

// mutateContent runs a read-modify-write of the singleton row inside a
// transaction. The row lock serializes concurrent entity writes so two
// appends are both retained and a failed apply leaves the row untouched.
func (s *PostgresStore) mutateContent(ctx context.Context, apply func(doc *content.Document) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin content tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT data FROM site_content WHERE id=1 FOR UPDATE`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		bootstrap, marshalErr := json.Marshal(content.Bootstrap())
		if marshalErr != nil {
			return fmt.Errorf("marshal bootstrap content: %w", marshalErr)
		}
		if _, insertErr := tx.ExecContext(ctx, `
			INSERT INTO site_content (id, data)
			VALUES (1, $1::jsonb)
			ON CONFLICT (id) DO NOTHING
		`, string(bootstrap)); insertErr != nil {
			return fmt.Errorf("bootstrap content: %w", insertErr)
		}
		err = tx.QueryRowContext(ctx, `SELECT data FROM site_content WHERE id=1 FOR UPDATE`).Scan(&raw)
	}
	if err != nil {
		return fmt.Errorf("lock content row: %w", err)
	}

	var doc content.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode content: %w", err)
	}

	if err := apply(&doc); err != nil {
		return err
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE site_content SET data=$1::jsonb, updated_at=NOW() WHERE id=1
	`, string(updated)); err != nil {
		return fmt.Errorf("update content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit content tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendPost(ctx context.Context, post content.BlogPost) (content.BlogPost, error) {
	var created content.BlogPost
	err := s.mutateContent(ctx, func(doc *content.Document) error {
		created = content.AppendPost(doc, post)
		return nil
	})
	if err != nil {
		return content.BlogPost{}, err
	}
	return created, nil
}

func (s *PostgresStore) AppendProject(ctx context.Context, project content.Project) (content.Project, error) {
	var created content.Project
	err := s.mutateContent(ctx, func(doc *content.Document) error {
		created = content.AppendProject(doc, project)
		return nil
	})
	if err != nil {
		return content.Project{}, err
	}
	return created, nil
}

func (s *PostgresStore) UpdatePost(ctx context.Context, id string, patch content.BlogPostPatch) (content.BlogPost, error) {
	var updated content.BlogPost
	err := s.mutateContent(ctx, func(doc *content.Document) error {
		var mergeErr error
		updated, mergeErr = content.MergePost(doc, id, patch)
		return mergeErr
	})
	if err != nil {
		return content.BlogPost{}, err
	}
	return updated, nil
}

func (s *PostgresStore) UpdateProject(ctx context.Context, id string, patch content.ProjectPatch) (content.Project, error) {
	var updated content.Project
	err := s.mutateContent(ctx, func(doc *content.Document) error {
		var mergeErr error
		updated, mergeErr = content.MergeProject(doc, id, patch)
		return mergeErr
	})
	if err != nil {
		return content.Project{}, err
	}
	return updated, nil
}

func (s *PostgresStore) RemovePost(ctx context.Context, id string) error {
	return s.mutateContent(ctx, func(doc *content.Document) error {
		return content.RemovePost(doc, id)
	})
}

func (s *PostgresStore) RemoveProject(ctx context.Context, id string) error {
	return s.mutateContent(ctx, func(doc *content.Document) error {
		return content.RemoveProject(doc, id)
	})
}

// --- admin account ---

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, role)
		VALUES ($1, LOWER($2), $3, $4, $5)
	`, user.ID, user.Email, user.DisplayName, user.PasswordHash, user.Role)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, role
		FROM users
		WHERE email=LOWER($1)
	`, email).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Role)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, role
		FROM users
		WHERE id=$1
	`, userID).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Role)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// AdminExists reports whether the elevated account has been created.
// The setup endpoint refuses to run once it has.
func (s *PostgresStore) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role='admin')`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return nil
}

// --- refresh sessions (Postgres fallback when Redis is not configured) ---

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	const query = `
		SELECT u.id, u.email, u.display_name, u.password_hash, u.role
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Role)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}
