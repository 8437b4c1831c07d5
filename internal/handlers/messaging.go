package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/localnerve/designerhub/internal/utils"
)

// MessagingHandler handles chat and message routes
type MessagingHandler struct {
	Messaging *services.MessagingService
}

type chatRequest struct {
	User2 types.FlexID `json:"user2" validate:"required"`
}

type messageRequest struct {
	Chat types.FlexID `json:"chat" validate:"required"`
	Text string       `json:"text" validate:"required"`
}

// ListChats handles GET /api/chat
// @Summary List the caller's chats
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.ChatView
// @Router /chat [get]
func (h *MessagingHandler) ListChats(c *fiber.Ctx) error {
	chats, err := h.Messaging.ListChats(c.UserContext(), callerID(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, chats, fiber.StatusOK)
}

// CreateChat handles POST /api/chat
// @Summary Start a chat with another account
// @Tags Messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body chatRequest true "Other account id"
// @Success 201 {object} services.ChatView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /chat [post]
func (h *MessagingHandler) CreateChat(c *fiber.Ctx) error {
	var body chatRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	chat, err := h.Messaging.CreateChat(c.UserContext(), callerID(c), body.User2.Uint64())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, chat, fiber.StatusCreated)
}

// GetChat handles GET /api/chat/:id
// @Summary Get a chat with its messages
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat id"
// @Success 200 {object} services.ChatView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /chat/{id} [get]
func (h *MessagingHandler) GetChat(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	chat, err := h.Messaging.GetChat(c.UserContext(), callerID(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, chat, fiber.StatusOK)
}

// ListMessages handles GET /api/messages
// @Summary List messages, oldest first
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Param chat query int false "Only messages of this chat"
// @Success 200 {array} services.MessageView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /messages [get]
func (h *MessagingHandler) ListMessages(c *fiber.Ctx) error {
	chatID, err := queryID(c, "chat")
	if err != nil {
		return err
	}

	var messages []services.MessageView
	if chatID == 0 {
		messages, err = h.Messaging.ListAllMessages(c.UserContext(), callerID(c))
	} else {
		messages, err = h.Messaging.ListMessages(c.UserContext(), callerID(c), chatID)
	}
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, messages, fiber.StatusOK)
}

// PostMessage handles POST /api/messages
// @Summary Send a message to a chat
// @Tags Messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body messageRequest true "Message"
// @Success 201 {object} services.MessageView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /messages [post]
func (h *MessagingHandler) PostMessage(c *fiber.Ctx) error {
	var body messageRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	message, err := h.Messaging.PostMessage(c.UserContext(), callerID(c), body.Chat.Uint64(), body.Text)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, message, fiber.StatusCreated)
}

// GetMessage handles GET /api/messages/:id
// @Summary Get a message
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message id"
// @Success 200 {object} services.MessageView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /messages/{id} [get]
func (h *MessagingHandler) GetMessage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	message, err := h.Messaging.GetMessage(c.UserContext(), callerID(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, message, fiber.StatusOK)
}
