package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/localnerve/designerhub/internal/utils"
)

// EngagementHandler serves one collection kind (favorites or likes)
type EngagementHandler struct {
	Engagement *services.EngagementService
	Kind       services.CollectionKind
}

type designRequest struct {
	DesignID types.FlexID `json:"design_id" validate:"required"`
}

// List handles GET /api/favorites and GET /api/like
// @Summary List the caller's favorites or likes
// @Tags Engagement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.CollectionView
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /favorites [get]
// @Router /like [get]
func (h *EngagementHandler) List(c *fiber.Ctx) error {
	view, err := h.Engagement.ListCollection(c.UserContext(), h.Kind, callerID(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// Add handles POST /api/favorites/add_design and POST /api/like/add_design.
// Adding a work that is already present is reported, not rejected.
// @Summary Add a work to favorites or likes
// @Tags Engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body designRequest true "Work id"
// @Success 200 {object} utils.StatusResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /favorites/add_design [post]
// @Router /like/add_design [post]
func (h *EngagementHandler) Add(c *fiber.Ctx) error {
	var body designRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	result, err := h.Engagement.AddToCollection(c.UserContext(), h.Kind, callerID(c), body.DesignID.Uint64())
	if err != nil {
		return err
	}
	return utils.StatusResponse(c, string(result), fiber.StatusOK)
}

// Remove handles POST /api/favorites/remove_design and POST /api/like/remove_design
// @Summary Remove a work from favorites or likes
// @Tags Engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body designRequest true "Work id"
// @Success 200 {object} utils.StatusResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /favorites/remove_design [post]
// @Router /like/remove_design [post]
func (h *EngagementHandler) Remove(c *fiber.Ctx) error {
	var body designRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if err := h.Engagement.RemoveFromCollection(c.UserContext(), h.Kind, callerID(c), body.DesignID.Uint64()); err != nil {
		return err
	}
	return utils.StatusResponse(c, services.Removed, fiber.StatusOK)
}
