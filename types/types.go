package types

import (
	"time"
)

type DocumentType string

const (
	DocumentCPU     DocumentType = "cpu"
	DocumentMemory  DocumentType = "memory"
	DocumentGPU     DocumentType = "gpu"
	DocumentIO      DocumentType = "io"
	DocumentStorage DocumentType = "storage"
)

// Document is one markdown artifact of the catalog.
type Document struct {
	ID          string       `json:"id" validate:"required"`
	Title       string       `json:"title" validate:"required"`
	Type        DocumentType `json:"type" validate:"required"`
	Description string       `json:"description"`
	Content     string       `json:"content"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// DocumentSummary is the list projection of a Document, content excluded.
type DocumentSummary struct {
	ID          string       `json:"id" validate:"required"`
	Title       string       `json:"title" validate:"required"`
	Type        DocumentType `json:"type" validate:"required"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// GeneratedDocument is a rendered document that is never stored, so it
// carries no timestamps.
type GeneratedDocument struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        DocumentType `json:"type"`
	Description string       `json:"description"`
	Content     string       `json:"content"`
}

// DownloadFile is the narrow projection used for file export.
type DownloadFile struct {
	Title   string `validate:"required"`
	Content string
}

func (d Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:          d.ID,
		Title:       d.Title,
		Type:        d.Type,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type DocumentsResponse[T any] struct {
	Documents []T `json:"documents"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}
