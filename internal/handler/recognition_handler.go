package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ChlorophyllA/skin2/internal/apperrors"
	"github.com/ChlorophyllA/skin2/internal/service"
)

// MaxImageBytes bounds a single uploaded image.
const MaxImageBytes = 5 << 20

const (
	msgNoUpload     = "未上传图片"
	msgNoFile       = "未选择文件"
	msgTooLarge     = "文件大小不能超过5MB"
	msgRecognizeErr = "处理图像时发生错误"
)

// RegisterRecognitionRoutes attaches POST /recognize.
func RegisterRecognitionRoutes(r gin.IRouter, svc service.RecognitionService, logger zerolog.Logger) {
	r.POST("/recognize", func(c *gin.Context) {
		fh, err := c.FormFile("image")
		if err != nil {
			// an <input type=file> left empty arrives as a plain field
			if errors.Is(err, http.ErrMissingFile) && c.Request.MultipartForm != nil {
				if _, ok := c.Request.MultipartForm.Value["image"]; ok {
					c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
					return
				}
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoUpload})
			return
		}
		if fh.Filename == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
			return
		}
		if fh.Size > MaxImageBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgTooLarge})
			return
		}

		f, err := fh.Open()
		if err != nil {
			abortWithError(c, apperrors.NewInternalError("open upload", err), msgRecognizeErr)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			abortWithError(c, apperrors.NewInternalError("read upload", err), msgRecognizeErr)
			return
		}

		res, err := svc.Recognize(c.Request.Context(), data)
		if err != nil {
			logger.Error().Err(err).Str("filename", fh.Filename).Msg("recognition failed")
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgRecognizeErr})
			return
		}
		c.JSON(http.StatusOK, res)
	})
}
