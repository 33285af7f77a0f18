package checkin

import (
	"net/http"

	"swarmrewards/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func RegisterRoutes(engine *gin.Engine, h *Handler) {
	g := engine.Group("/api/v1", middleware.Identity())
	g.GET("/checkin", h.Streak)
	g.GET("/checkin/streak", h.Streak)
	g.POST("/checkin", h.Checkin)
}

func (h *Handler) Streak(c *gin.Context) {
	info, err := h.svc.GetStreak(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) Checkin(c *gin.Context) {
	result, err := h.svc.PerformCheckin(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
