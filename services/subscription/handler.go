package subscription

import (
	"net/http"

	"swarmrewards/pkg/errutil"
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
	g.GET("/subscription", h.Current)
	g.POST("/subscription/upgrade", h.Upgrade)
}

func (h *Handler) Current(c *gin.Context) {
	sub, err := h.svc.Current(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

type upgradeRequest struct {
	Plan string `json:"plan" binding:"required"`
}

func (h *Handler) Upgrade(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("plan is required", err))
		return
	}

	sub, err := h.svc.Upgrade(c.Request.Context(), middleware.UserID(c), req.Plan)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
