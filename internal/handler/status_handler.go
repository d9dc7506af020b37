package handler

import (
	"errors"
	"flowdata/internal/utils"
	"flowdata/internal/worker"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type StatusHandler struct {
	statuses worker.StatusStore
}

func NewStatusHandler(statuses worker.StatusStore) *StatusHandler {
	return &StatusHandler{statuses: statuses}
}

// GetStatus returns the last published status of a queued import run.
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	runCode := strings.TrimSpace(c.Params("run"))
	if runCode == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Run code is required", nil)
	}

	status, err := h.statuses.Get(c.UserContext(), runCode)
	if errors.Is(err, worker.ErrStatusNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import run not found", err)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read import status", err)
	}

	return utils.SuccessResponse(c, "Import status retrieved successfully", status)
}
