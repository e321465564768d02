package upload

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 20 << 20 // 20MB

// ObjectStorage abstracts the media store behind the upload endpoints
type ObjectStorage interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader) (url, objectKey string, err error)
	RemoveFile(ctx context.Context, objectKey string) error
}

type UploadHandler struct {
	storage ObjectStorage
}

func NewUploadHandler(storage ObjectStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

type uploadResult struct {
	URL       string `json:"url"`
	ObjectKey string `json:"objectKey"`
	MediaType string `json:"mediaType"`
}

// UploadFile godoc
// @Summary  Upload a single media file
// @Accept   multipart/form-data
// @Param    file  formData  file  true  "media file"
// @Security BearerAuth
// @Router   /upload [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	result, err := h.store(c, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *UploadHandler) UploadMultiple(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return
	}

	results := make([]*uploadResult, 0, len(files))
	for _, file := range files {
		result, err := h.store(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "uploaded": results})
			return
		}
		results = append(results, result)
	}

	c.JSON(http.StatusCreated, gin.H{"files": results})
}

func (h *UploadHandler) DeleteFile(c *gin.Context) {
	objectKey := c.Query("key")
	if objectKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if err := h.storage.RemoveFile(c.Request.Context(), objectKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}

func (h *UploadHandler) store(c *gin.Context, file *multipart.FileHeader) (*uploadResult, error) {
	if file.Size > maxUploadSize {
		return nil, errTooLarge
	}

	url, objectKey, err := h.storage.UploadFile(c.Request.Context(), file)
	if err != nil {
		return nil, err
	}

	return &uploadResult{
		URL:       url,
		ObjectKey: objectKey,
		MediaType: mediaTypeOf(file),
	}, nil
}

func (h *UploadHandler) RegisterRoutes(r *gin.RouterGroup) {
	upload := r.Group("/upload")
	{
		upload.POST("", h.UploadFile)
		upload.POST("/multiple", h.UploadMultiple)
		upload.DELETE("", h.DeleteFile)
	}
}

var errTooLarge = &uploadError{"file exceeds the 20MB limit"}

type uploadError struct{ msg string }

func (e *uploadError) Error() string { return e.msg }

func mediaTypeOf(file *multipart.FileHeader) string {
	if strings.HasPrefix(file.Header.Get("Content-Type"), "video/") {
		return "video"
	}
	return "image"
}
