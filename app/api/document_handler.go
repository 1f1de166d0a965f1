package api

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"circuitflow/store"
	"circuitflow/types"

	"github.com/gofiber/fiber/v2"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

type DocumentHandler struct {
	store store.DocumentStorer
}

func NewDocumentHandler(s store.DocumentStorer) *DocumentHandler {
	return &DocumentHandler{
		store: s,
	}
}

func (h *DocumentHandler) HandleList(c *fiber.Ctx) error {
	docs, err := h.store.ListDocuments(c.UserContext())
	if err != nil {
		slog.Error("error fetching documents", "error", err)
		return ErrDatabase("Failed to fetch documents")
	}
	return c.JSON(types.DocumentsResponse[types.DocumentSummary]{Documents: docs})
}

func (h *DocumentHandler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")

	doc, err := h.store.GetDocumentByID(c.UserContext(), id)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return ErrNotFound(id, "Document")
	}
	if err != nil {
		slog.Error("error fetching document", "id", id, "error", err)
		return ErrDatabase("Failed to fetch document")
	}
	return c.JSON(doc)
}

func (h *DocumentHandler) HandleDownload(c *fiber.Ctx) error {
	id := c.Params("id")

	file, err := h.store.GetDocumentForDownload(c.UserContext(), id)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return ErrNotFound(id, "Document")
	}
	if err != nil {
		slog.Error("error downloading document", "id", id, "error", err)
		return ErrDatabase("Failed to download document")
	}

	c.Set(fiber.HeaderContentType, "text/markdown")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, DownloadFilename(file.Title)))
	return c.SendString(file.Content)
}

// DownloadFilename replaces every whitespace run in title with one underscore
// and appends the markdown extension.
func DownloadFilename(title string) string {
	return whitespaceRun.ReplaceAllString(title, "_") + ".md"
}
