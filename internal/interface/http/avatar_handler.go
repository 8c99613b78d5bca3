package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/application"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/response"
)

// avatarField is the multipart field carrying the image.
const avatarField = "avatar"

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

type AvatarHandler struct {
	Svc    *application.AvatarService
	Logger *logrus.Logger
}

func NewAvatarHandler(svc *application.AvatarService, logger *logrus.Logger) *AvatarHandler {
	return &AvatarHandler{Svc: svc, Logger: logger}
}

// Upload replaces the caller's avatar. The path id must be the caller or "me".
func (h *AvatarHandler) Upload(c *gin.Context) {
	req := requester(c)
	if target := c.Param("userId"); target != "me" && target != req.ID {
		writeError(c, h.Logger, application.ErrEditForbidden)
		return
	}

	if limit := h.Svc.Config.MaxBytes; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)
	}

	var up *application.AvatarUpload
	fh, err := c.FormFile(avatarField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(c, h.Logger, application.ErrFileTooLarge)
			return
		}
		response.Error[any](c, http.StatusBadRequest, "invalid multipart form", nil)
		return
	default:
		f, err := fh.Open()
		if err != nil {
			writeError(c, h.Logger, err)
			return
		}
		defer func() { _ = f.Close() }()
		up = &application.AvatarUpload{
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}

	name, err := h.Svc.Upload(c.Request.Context(), req.ID, up)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar": name}, "avatar updated", nil)
}
