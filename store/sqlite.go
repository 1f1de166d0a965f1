package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"circuitflow/types"

	_ "modernc.org/sqlite"
)

// SQLiteStore backs the catalog with an embedded database. It is used for the
// local demo mode and as the substitute store in tests.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: gets its own database
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]types.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, listDocumentsQuery)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]types.DocumentSummary, 0)
	for rows.Next() {
		var doc types.DocumentSummary
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Type, &doc.Description, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if err := checkSummary(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) GetDocumentByID(ctx context.Context, id string) (*types.Document, error) {
	doc := &types.Document{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, type, description, content, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Type, &doc.Description, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := checkDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLiteStore) GetDocumentForDownload(ctx context.Context, id string) (*types.DownloadFile, error) {
	file := &types.DownloadFile{}
	err := s.db.QueryRowContext(ctx, `SELECT title, content FROM documents WHERE id = ?`, id).
		Scan(&file.Title, &file.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := checkDownload(file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *SQLiteStore) ApplyBatch(ctx context.Context, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("exec batch: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
