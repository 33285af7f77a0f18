package task

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
	g.POST("/complete-task", h.Complete)
	g.GET("/tasks/stats", h.Stats)
}

type completeRequest struct {
	Amount       float64 `json:"amount" binding:"required"`
	TaskID       string  `json:"task_id" binding:"required"`
	TaskType     string  `json:"task_type"`
	HardwareTier string  `json:"hardware_tier"`
	Multiplier   float64 `json:"multiplier"`
}

func (h *Handler) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("amount and task_id are required", err))
		return
	}

	result, err := h.svc.Complete(c.Request.Context(), CompleteParams{
		UserID:       middleware.UserID(c),
		Amount:       req.Amount,
		TaskID:       req.TaskID,
		TaskType:     req.TaskType,
		HardwareTier: req.HardwareTier,
		Multiplier:   req.Multiplier,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
