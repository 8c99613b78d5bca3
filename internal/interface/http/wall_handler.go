package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/application"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/response"
)

type WallHandler struct {
	Svc    *application.WallService
	Logger *logrus.Logger
}

func NewWallHandler(svc *application.WallService, logger *logrus.Logger) *WallHandler {
	return &WallHandler{Svc: svc, Logger: logger}
}

type createWallPostRequest struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

func (h *WallHandler) List(c *gin.Context) {
	posts, err := h.Svc.List(c.Request.Context(), c.Param("recipientId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "wall posts", nil)
}

func (h *WallHandler) Create(c *gin.Context) {
	var req createWallPostRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.Svc.Create(c.Request.Context(), application.CreateWallPostInput{
		AuthorID:    c.Param("authorId"),
		RecipientID: c.Param("recipientId"),
		Text:        req.Text,
		Date:        req.Date,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "wall post created", nil)
}
