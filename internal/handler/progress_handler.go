package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/service"
	"github.com/noah-isme/academe-go-api/internal/utils"
)

// ProgressHandler exposes the authenticated student's activity ledger.
type ProgressHandler struct {
	progress        service.ProgressService
	recommendations service.RecommendationService
	logger          zerolog.Logger
}

// NewProgressHandler constructs a progress handler.
func NewProgressHandler(progress service.ProgressService, recommendations service.RecommendationService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		progress:        progress,
		recommendations: recommendations,
		logger:          logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register wires progress routes.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Post("", h.log)
	router.Get("", h.list)
	router.Get("/visuals", h.visuals)
	router.Get("/recommendations", h.recommend)
	router.Put("/:progressID", h.update)
	router.Delete("", h.deleteAll)
}

func (h *ProgressHandler) log(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var req dto.ProgressCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.progress.Log(c.UserContext(), studentID, req)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to log progress")
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "progress logged", response)
}

func (h *ProgressHandler) list(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	activityType := strings.TrimSpace(c.Query("activity_type"))
	responses, err := h.progress.List(c.UserContext(), studentID, activityType)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list progress")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", responses)
}

func (h *ProgressHandler) update(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	progressID, err := parseIDParam(c, "progressID")
	if err != nil {
		return sendServiceError(c, err)
	}

	var req dto.ProgressUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.progress.Update(c.UserContext(), studentID, progressID, req)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("progress_id", progressID).Msg("failed to update progress")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "progress updated", response)
}

func (h *ProgressHandler) deleteAll(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	removed, err := h.progress.DeleteAll(c.UserContext(), studentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete progress")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "progress deleted", dto.DeleteProgressResponse{
		StudentID: studentID,
		Removed:   removed,
	})
}

func (h *ProgressHandler) visuals(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	visuals, err := h.progress.Visuals(c.UserContext(), studentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build visuals")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "visual analytics retrieved", visuals)
}

func (h *ProgressHandler) recommend(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.recommendations.Recommendations(c.UserContext(), studentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build recommendations")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "recommendations generated", response)
}
