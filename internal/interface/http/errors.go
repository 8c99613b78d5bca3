package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/application"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/response"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/validation"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

// Order matters: the specific forbidden errors come before ErrForbidden.
var errorMappings = []errorMapping{
	{application.ErrBadRequest, http.StatusBadRequest, "bad request"},
	{application.ErrUnauthenticated, http.StatusUnauthorized, "not authenticated"},
	{application.ErrNotAdmin, http.StatusForbidden, "admin rights required"},
	{application.ErrSelfDelete, http.StatusForbidden, "cannot delete own account"},
	{application.ErrEditForbidden, http.StatusForbidden, "not allowed to edit this profile"},
	{application.ErrForbidden, http.StatusForbidden, "forbidden"},
	{application.ErrNotFound, http.StatusNotFound, "user not found"},
	{application.ErrInvalidFileType, http.StatusBadRequest, "only image uploads are allowed"},
	{application.ErrMissingFile, http.StatusBadRequest, "no file to upload"},
	{application.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file too large"},
	{application.ErrTranscodeFailure, http.StatusUnprocessableEntity, "image could not be processed"},
}

// writeError maps service errors to a status and envelope. Unknown errors
// are logged and reported as 500 without detail.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", verr.Violations)
		return
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			response.Error[any](c, m.status, m.message, nil)
			return
		}
	}

	msg := "internal server error"
	var cerr *application.CascadeError
	if errors.As(err, &cerr) {
		msg = "user removal incomplete"
	}
	if logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, http.StatusInternalServerError, msg, nil)
}

// bindJSON decodes the body into dst. An empty body leaves dst untouched.
// Malformed JSON is a 400; well-formed JSON of the wrong shape is a 422.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
		response.Error[any](c, http.StatusBadRequest, "invalid json", validation.ToViolations(err))
		return false
	}
	response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToViolations(err))
	return false
}
