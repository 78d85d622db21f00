package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/service"
	"github.com/noah-isme/academe-go-api/internal/utils"
)

// StudentHandler exposes student account endpoints that touch the ledger.
type StudentHandler struct {
	students service.StudentService
	logger   zerolog.Logger
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(students service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students: students,
		logger:   logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register wires student routes.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Put("/me/class", h.changeClass)
}

func (h *StudentHandler) changeClass(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var req dto.ClassChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.students.ChangeClass(c.UserContext(), studentID, req.NewClass)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("student_id", studentID).Msg("failed to change class")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "class updated", response)
}
