package stubservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    body TEXT NOT NULL,
    created_at DATETIME NOT NULL
);
`

// ErrPostNotFound is returned by GetPost for an unknown ID.
var ErrPostNotFound = errors.New("post not found")

type Post struct {
	ID        int64
	Body      string
	CreatedAt time.Time
}

// PostStore allocates IDs for new posts and reads them back.
type PostStore interface {
	CreatePost(ctx context.Context, body string) (int64, error)
	GetPost(ctx context.Context, id int64) (Post, error)
	Close() error
}

// SQLiteStore implements PostStore backed by SQLite. IDs come from an AUTOINCREMENT primary
// key, so they are positive, increasing, and never reused.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) an SQLite database at dsn and creates the schema.
// For in-memory use pass ":memory:".
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// An in-memory database exists only as long as its connection, so there must be exactly one.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreatePost(ctx context.Context, body string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (body, created_at) VALUES (?, ?)`,
		body, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get post id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetPost(ctx context.Context, id int64) (Post, error) {
	var p Post
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, body, created_at FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.Body, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post: %w", err)
	}
	p.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Post{}, fmt.Errorf("parse created_at: %w", err)
	}
	return p, nil
}
