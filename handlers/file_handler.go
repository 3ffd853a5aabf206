package handlers

import (
	"net/http"

	"fitpro-backend/storage"

	"github.com/gin-gonic/gin"
)

// FileHandler serves stored objects when no public object URL is configured
type FileHandler struct {
	objects *storage.ObjectStore
}

// NewFileHandler creates a new file handler
func NewFileHandler(objects *storage.ObjectStore) *FileHandler {
	return &FileHandler{objects: objects}
}

// GetFile handles GET /files/:bucket/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	reader, contentType, err := h.objects.OpenFile(c.Request.Context(), c.Param("bucket"), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}
