package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/application"
	"github.com/pavelkhrustalyov/energy-app-local/internal/interface/middleware"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/response"
)

type ProfileHandler struct {
	Svc    *application.ProfileService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

func requester(c *gin.Context) application.Requester {
	id, role := middleware.RequesterFrom(c)
	return application.Requester{ID: id, Role: role}
}

// Me returns the caller's own record.
func (h *ProfileHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetSelf(c.Request.Context(), requester(c).ID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile", nil)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile", nil)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var in application.UpdateProfileInput
	if !bindJSON(c, &in) {
		return
	}
	req, target := requester(c), c.Param("userId")
	u, err := h.Svc.Update(c.Request.Context(), req, target, in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if u != nil && req.ID != target {
		// credentials stay with the owner
		response.Success(c, http.StatusOK, gin.H{"user": u.Public()}, "profile updated", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile updated", nil)
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	res, err := h.Svc.Delete(c.Request.Context(), requester(c), c.Param("userId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "user deleted", nil)
}

// Search looks profiles up by name via the search index.
func (h *ProfileHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.SearchProfiles(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
