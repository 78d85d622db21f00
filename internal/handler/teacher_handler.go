package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/middleware"
	"github.com/noah-isme/academe-go-api/internal/service"
	"github.com/noah-isme/academe-go-api/internal/utils"
)

// TeacherHandler exposes teacher-facing class, analytics, live-class and
// profile endpoints.
type TeacherHandler struct {
	teachers service.TeacherService
	logger   zerolog.Logger
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(teachers service.TeacherService, logger zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{
		teachers: teachers,
		logger:   logger.With().Str("component", "teacher_handler").Logger(),
	}
}

// Register wires teacher routes.
func (h *TeacherHandler) Register(router fiber.Router) {
	router.Get("/classes", h.allottedClasses)
	router.Get("/classes/:className/students", h.classStudents)
	router.Get("/classes/:className/analytics", h.classAnalytics)
	router.Get("/classes/:className/progress-overview", h.classProgressOverview)
	router.Get("/students/:studentID/progress", h.studentProgress)
	router.Get("/students/:studentID/detailed-progress", h.studentDetailedProgress)

	router.Post("/live-classes", h.scheduleLiveClass)
	router.Get("/live-classes/upcoming", h.upcomingLiveClasses)
	router.Get("/live-classes/recorded", h.recordedLiveClasses)
	router.Post("/live-classes/:referenceID/start", h.startLiveClass)
	router.Post("/live-classes/:referenceID/recording", h.shareRecording)

	router.Get("/profile", h.profile)
	router.Put("/profile", h.updateProfile)
	router.Put("/profile/preferences", h.updatePreferences)
}

func (h *TeacherHandler) allottedClasses(c *fiber.Ctx) error {
	classes, err := h.teachers.GetAllottedClasses(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to read allotted classes")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "allotted classes retrieved", classes)
}

func classNameParam(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Params("className"))
}

func (h *TeacherHandler) classStudents(c *fiber.Ctx) error {
	students, err := h.teachers.GetStudentsByClass(c.UserContext(), middleware.IdentityFromCtx(c), classNameParam(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("class", classNameParam(c)).Msg("failed to list class students")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "class students retrieved", students)
}

func (h *TeacherHandler) classAnalytics(c *fiber.Ctx) error {
	analytics, err := h.teachers.ClassAnalytics(c.UserContext(), middleware.IdentityFromCtx(c), classNameParam(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("class", classNameParam(c)).Msg("failed to build class analytics")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "class analytics retrieved", analytics)
}

func (h *TeacherHandler) classProgressOverview(c *fiber.Ctx) error {
	overview, err := h.teachers.ClassProgressOverview(c.UserContext(), middleware.IdentityFromCtx(c), classNameParam(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("class", classNameParam(c)).Msg("failed to build progress overview")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "class progress overview retrieved", overview)
}

func (h *TeacherHandler) studentProgress(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "studentID")
	if err != nil {
		return sendServiceError(c, err)
	}

	detail, err := h.teachers.StudentProgress(c.UserContext(), middleware.IdentityFromCtx(c), studentID)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("student_id", studentID).Msg("failed to read student progress")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "student progress retrieved", detail)
}

func (h *TeacherHandler) studentDetailedProgress(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "studentID")
	if err != nil {
		return sendServiceError(c, err)
	}

	detail, err := h.teachers.StudentDetailedProgress(c.UserContext(), middleware.IdentityFromCtx(c), studentID)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("student_id", studentID).Msg("failed to read detailed progress")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "student detailed progress retrieved", detail)
}

func (h *TeacherHandler) scheduleLiveClass(c *fiber.Ctx) error {
	var req dto.LiveClassCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.teachers.ScheduleLiveClass(c.UserContext(), middleware.IdentityFromCtx(c), req)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to schedule live class")
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "live class scheduled", response)
}

func (h *TeacherHandler) upcomingLiveClasses(c *fiber.Ctx) error {
	classes, err := h.teachers.UpcomingLiveClasses(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to list upcoming live classes")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "upcoming live classes retrieved", classes)
}

func (h *TeacherHandler) recordedLiveClasses(c *fiber.Ctx) error {
	classes, err := h.teachers.RecordedLiveClasses(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to list recorded live classes")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "recorded live classes retrieved", classes)
}

func (h *TeacherHandler) startLiveClass(c *fiber.Ctx) error {
	referenceID := strings.TrimSpace(c.Params("referenceID"))

	response, err := h.teachers.StartLiveClass(c.UserContext(), middleware.IdentityFromCtx(c), referenceID)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("reference_id", referenceID).Msg("failed to start live class")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "live class started", response)
}

func (h *TeacherHandler) shareRecording(c *fiber.Ctx) error {
	referenceID := strings.TrimSpace(c.Params("referenceID"))

	var req dto.ShareRecordingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.teachers.ShareRecording(c.UserContext(), middleware.IdentityFromCtx(c), referenceID, req)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("reference_id", referenceID).Msg("failed to share recording")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "recording shared", response)
}

func (h *TeacherHandler) profile(c *fiber.Ctx) error {
	profile, err := h.teachers.GetProfile(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to read teacher profile")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "teacher profile retrieved", profile)
}

func (h *TeacherHandler) updateProfile(c *fiber.Ctx) error {
	var req dto.TeacherProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.teachers.UpdateProfile(c.UserContext(), middleware.IdentityFromCtx(c), req)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to update teacher profile")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "teacher profile updated", profile)
}

func (h *TeacherHandler) updatePreferences(c *fiber.Ctx) error {
	var req dto.TeacherPreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.teachers.UpdatePreferences(c.UserContext(), middleware.IdentityFromCtx(c), req)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to update teacher preferences")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "teacher preferences updated", profile)
}
