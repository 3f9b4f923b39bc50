package handler

import (
	"errors"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"vitrina-autos/internal/domain"
	"vitrina-autos/internal/middleware"
	"vitrina-autos/internal/repository"
	"vitrina-autos/internal/service"
)

// The frontend has historically posted files under either field name, so
// both are accepted.
var uploadFieldNames = []string{"images", "vehicleMedia"}

type MediaHandler struct {
	mediaService service.MediaService
}

func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func (h *MediaHandler) ListByVehicle(c *fiber.Ctx) error {
	vehicleID, err := parseVehicleID(c)
	if err != nil {
		return err
	}

	media, err := h.mediaService.ListByVehicle(c.Context(), vehicleID)
	if err != nil {
		return mapMediaError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    media,
	})
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	vehicleID, err := parseVehicleID(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return middleware.BadRequest("Multipart form data is required")
	}

	var files []*multipart.FileHeader
	for _, field := range uploadFieldNames {
		if fs := form.File[field]; len(fs) > 0 {
			files = fs
			break
		}
	}

	result, err := h.mediaService.Upload(c.Context(), vehicleID, files, middleware.GetCurrentUserID(c))
	if err != nil {
		return mapMediaError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Media uploaded successfully",
		"data":    result.Uploaded,
		"failed":  result.Failed,
	})
}

func (h *MediaHandler) Update(c *fiber.Ctx) error {
	vehicleID, err := parseVehicleID(c)
	if err != nil {
		return err
	}
	mediaID, err := parseMediaID(c)
	if err != nil {
		return err
	}

	var input domain.UpdateMediaInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	media, err := h.mediaService.Update(c.Context(), vehicleID, mediaID, input, middleware.GetCurrentUserID(c))
	if err != nil {
		return mapMediaError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Media updated successfully",
		"data":    media,
	})
}

func (h *MediaHandler) Reorder(c *fiber.Ctx) error {
	vehicleID, err := parseVehicleID(c)
	if err != nil {
		return err
	}

	var input domain.ReorderMediaInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	media, err := h.mediaService.Reorder(c.Context(), vehicleID, input, middleware.GetCurrentUserID(c))
	if err != nil {
		return mapMediaError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Media reordered successfully",
		"data":    media,
	})
}

func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	vehicleID, err := parseVehicleID(c)
	if err != nil {
		return err
	}
	mediaID, err := parseMediaID(c)
	if err != nil {
		return err
	}

	if err := h.mediaService.Delete(c.Context(), vehicleID, mediaID, middleware.GetCurrentUserID(c)); err != nil {
		return mapMediaError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Media deleted successfully",
	})
}

func (h *MediaHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	var vehicleID *int64
	if vidStr := c.Query("vehicle_id"); vidStr != "" {
		vid, err := strconv.ParseInt(vidStr, 10, 64)
		if err != nil {
			return middleware.BadRequest("Invalid vehicle ID")
		}
		vehicleID = &vid
	}

	result, err := h.mediaService.List(c.Context(), vehicleID, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func parseVehicleID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("vehicleId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, middleware.BadRequest("Invalid vehicle ID")
	}
	return id, nil
}

func parseMediaID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("mediaId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, middleware.BadRequest("Invalid media ID")
	}
	return id, nil
}

func mapMediaError(err error) error {
	switch {
	case errors.Is(err, service.ErrVehicleNotFound):
		return middleware.NotFound("Vehicle not found")
	case errors.Is(err, service.ErrMediaNotFound):
		return middleware.NotFound("Media not found")
	case errors.Is(err, service.ErrNoFilesUploaded):
		return middleware.BadRequest("No files uploaded")
	case errors.Is(err, service.ErrTooManyFiles):
		return middleware.BadRequest("A maximum of 10 files can be uploaded at once")
	case errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrUnsupportedFileType):
		return middleware.BadRequest(err.Error())
	case errors.Is(err, service.ErrNothingToUpdate):
		return middleware.BadRequest("Nothing to update")
	case errors.Is(err, service.ErrCannotUnsetPrimary):
		return middleware.BadRequest("Cannot unset the primary flag; set another record as primary instead")
	case errors.Is(err, repository.ErrMediaSetMismatch):
		return middleware.BadRequest("Media IDs do not match the vehicle's media")
	case errors.Is(err, service.ErrAllFilesFailed):
		return middleware.Internal("All files failed to process")
	default:
		return err
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", params.Page); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", params.PageSize); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}
