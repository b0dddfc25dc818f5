package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-io/ticketdesk/internal/api/dto"
	"github.com/helpdesk-io/ticketdesk/internal/classify"
)

// ClassifyHandler exposes the classification endpoint.
type ClassifyHandler struct {
	classifier *classify.Classifier
}

// NewClassifyHandler constructs handler.
func NewClassifyHandler(classifier *classify.Classifier) *ClassifyHandler {
	return &ClassifyHandler{classifier: classifier}
}

// Classify POST /tickets/classify. An empty description is a client
// error; everything downstream degrades to null suggestions with a 200.
func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "description is required"})
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "description is required"})
	}

	suggestion := h.classifier.Classify(c.UserContext(), description)
	return c.JSON(suggestion)
}
