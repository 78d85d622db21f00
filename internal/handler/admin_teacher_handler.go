package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/service"
	"github.com/noah-isme/academe-go-api/internal/utils"
)

// AdminTeacherHandler exposes admin teacher-management endpoints.
type AdminTeacherHandler struct {
	admin  service.AdminTeacherService
	logger zerolog.Logger
}

// NewAdminTeacherHandler constructs an admin teacher handler.
func NewAdminTeacherHandler(admin service.AdminTeacherService, logger zerolog.Logger) *AdminTeacherHandler {
	return &AdminTeacherHandler{
		admin:  admin,
		logger: logger.With().Str("component", "admin_teacher_handler").Logger(),
	}
}

// Register wires admin teacher routes.
func (h *AdminTeacherHandler) Register(router fiber.Router) {
	router.Post("/teachers", h.addTeacher)
	router.Put("/teachers", h.updateTeacher)
	router.Get("/teachers/comprehensive", h.teachersOverview)
	router.Get("/teachers/:email/statistics", h.teacherStatistics)
	router.Delete("/teachers/:email", h.removeTeacher)
}

func (h *AdminTeacherHandler) addTeacher(c *fiber.Ctx) error {
	var req dto.TeacherCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.admin.AddTeacher(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("email", req.Email).Msg("failed to add teacher")
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "teacher added", response)
}

func (h *AdminTeacherHandler) updateTeacher(c *fiber.Ctx) error {
	var req dto.TeacherUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.admin.UpdateTeacher(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("email", req.Email).Msg("failed to update teacher")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "teacher updated", response)
}

func (h *AdminTeacherHandler) removeTeacher(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Params("email"))
	if email == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "email is required")
	}

	response, err := h.admin.RemoveTeacher(c.UserContext(), email)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("email", email).Msg("failed to remove teacher")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "teacher removed", response)
}

func (h *AdminTeacherHandler) teachersOverview(c *fiber.Ctx) error {
	response, err := h.admin.TeachersOverview(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build teachers overview")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "teachers overview retrieved", response)
}

func (h *AdminTeacherHandler) teacherStatistics(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Params("email"))
	if email == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "email is required")
	}

	response, err := h.admin.TeacherStatistics(c.UserContext(), email)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("email", email).Msg("failed to build teacher statistics")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "teacher statistics retrieved", response)
}
