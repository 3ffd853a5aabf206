package handlers

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"fitpro-backend/models"
	"fitpro-backend/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler handles HTTP requests for the fitness profile
type ProfileHandler struct {
	profiles          *service.ProfileService
	maxImageSize      int64
	allowedImageTypes map[string]bool
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profiles:     profiles,
		maxImageSize: 5 * 1024 * 1024, // 5MB
		allowedImageTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
		},
	}
}

// UpdateProfileRequest carries the edited profile fields. Omitted fields
// keep their stored value; an empty value clears it.
type UpdateProfileRequest struct {
	Name              *string `form:"name" json:"name"`
	Email             *string `form:"email" json:"email"`
	Height            *string `form:"height" json:"height"`
	Weight            *string `form:"weight" json:"weight"`
	Age               *string `form:"age" json:"age"`
	FitnessGoal       *string `form:"fitness_goal" json:"fitness_goal"`
	ProfilePictureURL *string `form:"profile_picture_url" json:"profile_picture_url"`
}

func (r UpdateProfileRequest) applyTo(buf *models.ProfileEditBuffer) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&buf.Name, r.Name)
	set(&buf.Email, r.Email)
	set(&buf.Height, r.Height)
	set(&buf.Weight, r.Weight)
	set(&buf.Age, r.Age)
	set(&buf.FitnessGoal, r.FitnessGoal)
	set(&buf.ProfilePictureURL, r.ProfilePictureURL)
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	result, err := h.profiles.Load(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"exists":  result.Exists,
		"profile": result.Record,
		"form":    result.Buffer,
	})
}

// UpdateProfile handles PUT /api/profile. Accepts JSON or a multipart form
// with an optional "image" file.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	image, closeImage, ok := h.readImage(c)
	if !ok {
		return
	}
	defer closeImage()

	// reload so the create/update choice and the old picture are current
	loaded, err := h.profiles.Load(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	buf := loaded.Buffer
	req.applyTo(buf)
	buf.PendingImage = image

	result, err := h.profiles.Save(c.Request.Context(), buf, loaded.Record)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	data := gin.H{
		"profile": result.Record,
		"created": result.Created,
	}
	if result.ImageError != "" {
		data["image_error"] = result.ImageError
	}
	respondOK(c, status, data)
}

// readImage extracts the optional image part. It writes the error response
// itself and reports ok=false when the request must stop.
func (h *ProfileHandler) readImage(c *gin.Context) (*models.ImageUpload, func(), bool) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return nil, noop, true
	}

	fileHeader, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, true
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
		return nil, noop, false
	}

	if fileHeader.Size > h.maxImageSize {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxImageSize))
		return nil, noop, false
	}

	contentType := imageContentType(fileHeader)
	if !h.allowedImageTypes[contentType] {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE",
			"File type not allowed. Allowed types: JPEG, PNG, GIF, WEBP")
		return nil, noop, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return nil, noop, false
	}

	return &models.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Data:        file,
	}, func() { file.Close() }, true
}

func imageContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			return mediaType
		}
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename)))
}
