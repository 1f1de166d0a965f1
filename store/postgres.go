package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"circuitflow/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (p *PostgresStore) ListDocuments(ctx context.Context) ([]types.DocumentSummary, error) {
	rows, err := p.pool.Query(ctx, listDocumentsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]types.DocumentSummary, 0)
	for rows.Next() {
		var doc types.DocumentSummary
		if err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.Type,
			&doc.Description,
			&doc.CreatedAt,
			&doc.UpdatedAt); err != nil {
			return nil, err
		}
		if err := checkSummary(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (p *PostgresStore) GetDocumentByID(ctx context.Context, id string) (*types.Document, error) {
	doc := &types.Document{}
	err := p.pool.QueryRow(ctx,
		"SELECT id, title, type, description, content, created_at, updated_at FROM documents WHERE id = $1", id,
	).Scan(
		&doc.ID,
		&doc.Title,
		&doc.Type,
		&doc.Description,
		&doc.Content,
		&doc.CreatedAt,
		&doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *PostgresStore) GetDocumentForDownload(ctx context.Context, id string) (*types.DownloadFile, error) {
	file := &types.DownloadFile{}
	err := p.pool.QueryRow(ctx, "SELECT title, content FROM documents WHERE id = $1", id).
		Scan(&file.Title, &file.Content)
	if errors.Is(err, pgx.ErrNoRows) {
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

// ApplyBatch runs a multi-statement script in one transaction. Without bind
// arguments pgx sends it over the simple protocol, so several statements are allowed.
func (p *PostgresStore) ApplyBatch(ctx context.Context, script string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, script); err != nil {
		return fmt.Errorf("exec batch: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) Init(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchema)
	return err
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		slog.Info("postgres connection pool is closed")
	}
	return nil
}
