package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/utils"
)

// ReviewHandler handles review routes
type ReviewHandler struct {
	Reviews *services.ReviewService
}

type reviewUpdateRequest struct {
	Text string `json:"text" validate:"required"`
}

// List handles GET /api/reviews
// @Summary List reviews
// @Tags Reviews
// @Produce json
// @Param design query int false "Only reviews of this work"
// @Success 200 {array} models.Review
// @Router /reviews [get]
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	workID, err := queryID(c, "design")
	if err != nil {
		return err
	}
	reviews, err := h.Reviews.ListReviews(c.UserContext(), workID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, reviews, fiber.StatusOK)
}

// Create handles POST /api/reviews
// @Summary Review a work
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ReviewInput true "Review"
// @Success 201 {object} models.Review
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var body services.ReviewInput
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	review, err := h.Reviews.CreateReview(c.UserContext(), callerID(c), body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, review, fiber.StatusCreated)
}

// Get handles GET /api/reviews/:id
// @Summary Get a review
// @Tags Reviews
// @Produce json
// @Param id path int true "Review id"
// @Success 200 {object} models.Review
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	review, err := h.Reviews.GetReview(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, review, fiber.StatusOK)
}

// Update handles PUT and PATCH /api/reviews/:id
// @Summary Edit a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review id"
// @Param body body reviewUpdateRequest true "Text"
// @Success 200 {object} models.Review
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /reviews/{id} [put]
// @Router /reviews/{id} [patch]
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body reviewUpdateRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	review, err := h.Reviews.UpdateReview(c.UserContext(), callerID(c), id, body.Text)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, review, fiber.StatusOK)
}

// Delete handles DELETE /api/reviews/:id
// @Summary Delete a review
// @Tags Reviews
// @Security BearerAuth
// @Param id path int true "Review id"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Reviews.DeleteReview(c.UserContext(), callerID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
