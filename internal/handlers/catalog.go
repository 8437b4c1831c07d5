package handlers

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/middleware"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/localnerve/designerhub/internal/utils"
)

// CatalogHandler handles category and work routes
type CatalogHandler struct {
	Catalog *services.CatalogService
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=42"`
}

// ListCategories handles GET /api/categories
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, categories, fiber.StatusOK)
}

// CreateCategory handles POST /api/categories
// @Summary Create a category
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body categoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var body categoryRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	category, err := h.Catalog.CreateCategory(c.UserContext(), middleware.CurrentIdentity(c), body.Name)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, category, fiber.StatusCreated)
}

// ListWorks handles GET /api/designes
// @Summary List designer works
// @Tags Catalog
// @Produce json
// @Param designe_title query string false "Title contains"
// @Param user__username query string false "Designer name or email contains"
// @Param hashtag query string false "Hashtag contains"
// @Param category query int false "Category id"
// @Param publicated_date_after query string false "Published on or after (YYYY-MM-DD)"
// @Param publicated_date_before query string false "Published on or before (YYYY-MM-DD)"
// @Success 200 {array} services.WorkView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /designes [get]
func (h *CatalogHandler) ListWorks(c *fiber.Ctx) error {
	filter := services.WorkFilter{
		Title:   c.Query("designe_title"),
		Owner:   c.Query("user__username"),
		Hashtag: c.Query("hashtag"),
	}
	var err error
	if filter.CategoryID, err = queryID(c, "category"); err != nil {
		return err
	}
	if filter.PublishedAfter, err = queryDate(c, "publicated_date_after"); err != nil {
		return err
	}
	if filter.PublishedBefore, err = queryDate(c, "publicated_date_before"); err != nil {
		return err
	}

	works, err := h.Catalog.ListWorks(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, works, fiber.StatusOK)
}

// CreateWork handles POST /api/designes.
// The body is JSON with a media_data reference, or multipart with a media_data file.
// @Summary Publish a work
// @Tags Catalog
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param body body services.WorkInput true "Work"
// @Success 201 {object} services.WorkView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /designes [post]
func (h *CatalogHandler) CreateWork(c *fiber.Ctx) error {
	var (
		in     services.WorkInput
		upload *services.MediaUpload
		err    error
	)
	if isMultipart(c) {
		var patch services.WorkPatch
		if patch, upload, err = readWorkForm(c); err != nil {
			return err
		}
		if upload != nil {
			defer closeUpload(upload)
		}
		in = patch.Input()
		if err := validateStruct(&in); err != nil {
			return err
		}
	} else if err := bindJSON(c, &in); err != nil {
		return err
	}

	work, err := h.Catalog.CreateWork(c.UserContext(), callerID(c), in, upload)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, work, fiber.StatusCreated)
}

// GetWork handles GET /api/designes/:id and counts the caller's view
// @Summary Get a work
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Work id"
// @Success 200 {object} services.WorkView
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /designes/{id} [get]
func (h *CatalogHandler) GetWork(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	work, err := h.Catalog.ViewWork(c.UserContext(), callerID(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, work, fiber.StatusOK)
}

// ReplaceWork handles PUT /api/designes/:id
// @Summary Replace a work
// @Tags Catalog
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Work id"
// @Param body body services.WorkInput true "Work"
// @Success 200 {object} services.WorkView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /designes/{id} [put]
func (h *CatalogHandler) ReplaceWork(c *fiber.Ctx) error {
	return h.updateWork(c, true)
}

// PatchWork handles PATCH /api/designes/:id
// @Summary Update part of a work
// @Tags Catalog
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Work id"
// @Param body body services.WorkPatch true "Fields to change"
// @Success 200 {object} services.WorkView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /designes/{id} [patch]
func (h *CatalogHandler) PatchWork(c *fiber.Ctx) error {
	return h.updateWork(c, false)
}

func (h *CatalogHandler) updateWork(c *fiber.Ctx, replace bool) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var (
		patch  services.WorkPatch
		upload *services.MediaUpload
	)
	switch {
	case isMultipart(c):
		if patch, upload, err = readWorkForm(c); err != nil {
			return err
		}
		if upload != nil {
			defer closeUpload(upload)
		}
		if replace {
			in := patch.Input()
			if err := validateStruct(&in); err != nil {
				return err
			}
		}
	case replace:
		var in services.WorkInput
		if err := bindJSON(c, &in); err != nil {
			return err
		}
		patch = in.Patch()
	default:
		if err := bindJSON(c, &patch); err != nil {
			return err
		}
	}

	work, err := h.Catalog.UpdateWork(c.UserContext(), callerID(c), id, patch, upload)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, work, fiber.StatusOK)
}

// DeleteWork handles DELETE /api/designes/:id
// @Summary Delete a work
// @Tags Catalog
// @Security BearerAuth
// @Param id path int true "Work id"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /designes/{id} [delete]
func (h *CatalogHandler) DeleteWork(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteWork(c.UserContext(), callerID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// readWorkForm reads work fields from a multipart form; absent fields stay nil
func readWorkForm(c *fiber.Ctx) (services.WorkPatch, *services.MediaUpload, error) {
	var patch services.WorkPatch
	form, err := c.MultipartForm()
	if err != nil {
		return patch, nil, types.Validation("request.body", "Malformed multipart form: %v", err)
	}

	value := func(key string) *string {
		if values, ok := form.Value[key]; ok && len(values) > 0 {
			v := values[0]
			return &v
		}
		return nil
	}
	patch.Title = value("design_title")
	patch.Descriptions = value("descriptions")
	patch.Hashtag = value("hashtag")
	patch.MediaData = value("media_data")
	if raw := value("category"); raw != nil {
		var id types.FlexID
		if err := id.UnmarshalText([]byte(*raw)); err != nil {
			return patch, nil, types.Validation("request.validation.category", "category must be a number")
		}
		patch.CategoryID = &id
	}

	files := form.File["media_data"]
	if len(files) == 0 {
		return patch, nil, nil
	}
	upload, err := openUpload(files[0])
	if err != nil {
		return patch, nil, err
	}
	return patch, upload, nil
}

func openUpload(fh *multipart.FileHeader) (*services.MediaUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, types.Validation("request.validation.media_data", "Unreadable upload: %v", err)
	}
	contentType := fh.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	return &services.MediaUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	}, nil
}

func closeUpload(upload *services.MediaUpload) {
	if closer, ok := upload.Body.(multipart.File); ok {
		_ = closer.Close()
	}
}

func queryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, types.Validation("request.query."+name, "%s must be a date (YYYY-MM-DD)", name)
	}
	return &t, nil
}
