package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/jerseylab/jerseylab-backend/internal/errors"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
	"github.com/jerseylab/jerseylab-backend/internal/storage"
)

type UploadController struct {
	storage storage.Presigner
}

// NewUploadController accepts a nil presigner when S3 is not configured;
// requests then fail with 503.
func NewUploadController(presigner storage.Presigner) *UploadController {
	return &UploadController{
		storage: presigner,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // defaults to "designs"
}

// GeneratePresignedURL generates a presigned URL for uploading files to S3
// POST /api/v1/uploads/presign
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.storage == nil {
		apperrors.ServiceUnavailable(c, apperrors.UploadUnavailable, "File uploads are not available right now")
		return
	}

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required")
		return
	}

	response, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Filename, req.ContentType, req.Folder)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			log.Warn("Rejected upload content type", map[string]interface{}{
				"content_type": req.ContentType,
				"folder":       req.Folder,
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "This file type is not allowed")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       req.Folder,
		})
		apperrors.InternalError(c, "Failed to generate upload URL")
		return
	}

	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"key": response.Key,
	})
	c.JSON(http.StatusOK, response)
}
