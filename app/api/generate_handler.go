package api

import (
	"circuitflow/types"

	"github.com/gofiber/fiber/v2"
)

// Generator renders the documentation set for a prompt.
type Generator func(prompt string) ([]types.GeneratedDocument, error)

type GenerateHandler struct {
	generate Generator
}

func NewGenerateHandler(g Generator) *GenerateHandler {
	return &GenerateHandler{
		generate: g,
	}
}

func (h *GenerateHandler) HandleGenerate(c *fiber.Ctx) error {
	var params types.GenerateParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	docs, err := h.generate(params.Prompt)
	if err != nil {
		return err
	}
	return c.JSON(types.DocumentsResponse[types.GeneratedDocument]{Documents: docs})
}
