package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/localnerve/designerhub/internal/utils"
)

// ProfileHandler handles profile, social link and contact routes
type ProfileHandler struct {
	Profiles *services.ProfileService
}

// ListProfiles handles GET /api/user-profile
// @Summary List profiles
// @Tags Profiles
// @Produce json
// @Success 200 {array} services.ProfileView
// @Router /user-profile [get]
func (h *ProfileHandler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := h.Profiles.ListProfiles(c.UserContext())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, profiles, fiber.StatusOK)
}

// CreateProfile handles POST /api/user-profile.
// social_networks and contact_data accept one object or an array.
// @Summary Create the caller's profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ProfileInput true "Profile"
// @Success 201 {object} services.ProfileView
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /user-profile [post]
func (h *ProfileHandler) CreateProfile(c *fiber.Ctx) error {
	var body services.ProfileInput
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	profile, err := h.Profiles.CreateProfile(c.UserContext(), callerID(c), body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, profile, fiber.StatusCreated)
}

// GetProfile handles GET /api/user-profile/:id
// @Summary Get a profile
// @Tags Profiles
// @Produce json
// @Param id path int true "Profile id"
// @Success 200 {object} services.ProfileView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user-profile/{id} [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.Profiles.GetProfile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// UpdateProfile handles PUT and PATCH /api/user-profile/:id
// @Summary Update the caller's profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile id"
// @Param body body services.ProfilePatch true "Fields to change"
// @Success 200 {object} services.ProfileView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /user-profile/{id} [put]
// @Router /user-profile/{id} [patch]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body services.ProfilePatch
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if c.Method() == fiber.MethodPut && body.Descriptions == nil {
		return types.Validation("request.validation.user_descriptions", "user_descriptions is required")
	}
	profile, err := h.Profiles.UpdateProfile(c.UserContext(), callerID(c), id, body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// DeleteProfile handles DELETE /api/user-profile/:id
// @Summary Delete the caller's profile
// @Tags Profiles
// @Security BearerAuth
// @Param id path int true "Profile id"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /user-profile/{id} [delete]
func (h *ProfileHandler) DeleteProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Profiles.DeleteProfile(c.UserContext(), callerID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSocialLinks handles GET /api/cocial-accounts
// @Summary List social network links
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param user query int false "Only links of this profile"
// @Success 200 {array} models.SocialLink
// @Router /cocial-accounts [get]
func (h *ProfileHandler) ListSocialLinks(c *fiber.Ctx) error {
	profileID, err := queryID(c, "user")
	if err != nil {
		return err
	}
	links, err := h.Profiles.ListSocialLinks(c.UserContext(), profileID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, links, fiber.StatusOK)
}

// CreateSocialLink handles POST /api/cocial-accounts
// @Summary Add a social network link to the caller's profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SocialLinkInput true "Link"
// @Success 201 {object} models.SocialLink
// @Router /cocial-accounts [post]
func (h *ProfileHandler) CreateSocialLink(c *fiber.Ctx) error {
	var body services.SocialLinkInput
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	link, err := h.Profiles.AddSocialLink(c.UserContext(), callerID(c), body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, link, fiber.StatusCreated)
}

// GetSocialLink handles GET /api/cocial-accounts/:id
// @Summary Get a social network link
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Link id"
// @Success 200 {object} models.SocialLink
// @Router /cocial-accounts/{id} [get]
func (h *ProfileHandler) GetSocialLink(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	link, err := h.Profiles.GetSocialLink(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, link, fiber.StatusOK)
}

// UpdateSocialLink handles PUT and PATCH /api/cocial-accounts/:id
// @Summary Edit a social network link
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Link id"
// @Param body body services.SocialLinkInput true "Link"
// @Success 200 {object} models.SocialLink
// @Router /cocial-accounts/{id} [put]
// @Router /cocial-accounts/{id} [patch]
func (h *ProfileHandler) UpdateSocialLink(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body services.SocialLinkInput
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	link, err := h.Profiles.UpdateSocialLink(c.UserContext(), callerID(c), id, body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, link, fiber.StatusOK)
}

// DeleteSocialLink handles DELETE /api/cocial-accounts/:id
// @Summary Delete a social network link
// @Tags Profiles
// @Security BearerAuth
// @Param id path int true "Link id"
// @Success 204
// @Router /cocial-accounts/{id} [delete]
func (h *ProfileHandler) DeleteSocialLink(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Profiles.DeleteSocialLink(c.UserContext(), callerID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListContacts handles GET /api/contacts
// @Summary List contact entries
// @Tags Profiles
// @Produce json
// @Param user query int false "Only contacts of this profile"
// @Success 200 {array} models.ContactEntry
// @Router /contacts [get]
func (h *ProfileHandler) ListContacts(c *fiber.Ctx) error {
	profileID, err := queryID(c, "user")
	if err != nil {
		return err
	}
	contacts, err := h.Profiles.ListContacts(c.UserContext(), profileID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, contacts, fiber.StatusOK)
}

// CreateContact handles POST /api/contacts
// @Summary Add a contact entry to the caller's profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ContactInput true "Contact"
// @Success 201 {object} models.ContactEntry
// @Router /contacts [post]
func (h *ProfileHandler) CreateContact(c *fiber.Ctx) error {
	var body services.ContactInput
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	contact, err := h.Profiles.AddContact(c.UserContext(), callerID(c), body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, contact, fiber.StatusCreated)
}

// GetContact handles GET /api/contacts/:id
// @Summary Get a contact entry
// @Tags Profiles
// @Produce json
// @Param id path int true "Contact id"
// @Success 200 {object} models.ContactEntry
// @Router /contacts/{id} [get]
func (h *ProfileHandler) GetContact(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	contact, err := h.Profiles.GetContact(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, contact, fiber.StatusOK)
}

// UpdateContact handles PUT and PATCH /api/contacts/:id
// @Summary Edit a contact entry
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact id"
// @Param body body services.ContactInput true "Contact"
// @Success 200 {object} models.ContactEntry
// @Router /contacts/{id} [put]
// @Router /contacts/{id} [patch]
func (h *ProfileHandler) UpdateContact(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body services.ContactInput
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	contact, err := h.Profiles.UpdateContact(c.UserContext(), callerID(c), id, body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, contact, fiber.StatusOK)
}

// DeleteContact handles DELETE /api/contacts/:id
// @Summary Delete a contact entry
// @Tags Profiles
// @Security BearerAuth
// @Param id path int true "Contact id"
// @Success 204
// @Router /contacts/{id} [delete]
func (h *ProfileHandler) DeleteContact(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Profiles.DeleteContact(c.UserContext(), callerID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
