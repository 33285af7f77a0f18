package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func RegisterRoutes(engine *gin.Engine, h *Handler) {
	// global stats are public, landing pages poll them
	engine.GET("/api/v1/stats/global", h.Global)
}

func (h *Handler) Global(c *gin.Context) {
	snapshot, err := h.svc.GetSnapshot(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
