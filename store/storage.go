package store

import (
	"context"
	"errors"
	"fmt"

	"circuitflow/types"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrMalformedRow     = errors.New("malformed document row")
)

// DocumentStorer is the read side of the catalog plus the batch hook used by
// the seed loader. Implementations must bind every value as a query parameter.
type DocumentStorer interface {
	ListDocuments(context.Context) ([]types.DocumentSummary, error)
	GetDocumentByID(context.Context, string) (*types.Document, error)
	GetDocumentForDownload(context.Context, string) (*types.DownloadFile, error)
	ApplyBatch(context.Context, string) error
	Ping(context.Context) error
	Close() error
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured driver and makes sure the documents table exists.
func Open(ctx context.Context, driver, dsn string) (DocumentStorer, error) {
	switch driver {
	case DriverPostgres:
		pg, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pg.Init(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
		return pg, nil
	case DriverSQLite:
		lite, err := NewSQLiteStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := lite.Init(ctx); err != nil {
			lite.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
		return lite, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func checkSummary(doc *types.DocumentSummary) error {
	if err := types.CheckRow(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: document %q has no timestamps", ErrMalformedRow, doc.ID)
	}
	return nil
}

func checkDocument(doc *types.Document) error {
	summary := doc.Summary()
	return checkSummary(&summary)
}

func checkDownload(file *types.DownloadFile) error {
	if err := types.CheckRow(file); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return nil
}
