package handler

import (
	"github.com/gofiber/fiber/v2"

	"vitrina-autos/internal/middleware"
	"vitrina-autos/internal/service"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) GetRecentActivities(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.auditService.GetRecentActivities(c.Context(), params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AuditHandler) GetEntityHistory(c *fiber.Ctx) error {
	entityType := c.Params("entityType")
	entityID := c.Params("entityId")
	if entityType == "" || entityID == "" {
		return middleware.BadRequest("Entity type and ID are required")
	}

	params := getPaginationParams(c)

	result, err := h.auditService.GetEntityHistory(c.Context(), entityType, entityID, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
