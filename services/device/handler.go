package device

import (
	"net/http"

	"swarmrewards/pkg/errutil"
	"swarmrewards/pkg/middleware"
	"swarmrewards/services/stats"

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
	g.POST("/devices", h.Register)
	g.GET("/devices", h.List)
	g.GET("/devices/:device_id", h.Get)
	g.PATCH("/devices/:device_id", h.Update)
	g.DELETE("/devices/:device_id", h.Delete)
	g.POST("/node-uptime", h.SetRemaining)
	g.POST("/node-uptime/elapsed", h.AddElapsed)
}

type registerRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("device_name is required", err))
		return
	}

	dev, err := h.svc.Register(c.Request.Context(), RegisterParams{
		UserID:     middleware.UserID(c),
		DeviceID:   req.DeviceID,
		DeviceName: req.DeviceName,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dev)
}

func (h *Handler) List(c *gin.Context) {
	devices, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (h *Handler) Get(c *gin.Context) {
	dev, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("device_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dev)
}

type updateRequest struct {
	DeviceName string `json:"device_name"`
	Status     string `json:"status"`
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("invalid request body", err))
		return
	}

	dev, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), c.Param("device_id"), UpdateParams{
		DeviceName: req.DeviceName,
		Status:     req.Status,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dev)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("device_id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setRemainingRequest struct {
	DeviceID       string           `json:"device_id" binding:"required"`
	UptimeSeconds  *int64           `json:"uptime_seconds" binding:"required"`
	CompletedTasks stats.TaskCounts `json:"completed_tasks"`
}

func (h *Handler) SetRemaining(c *gin.Context) {
	var req setRemainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("device_id and uptime_seconds are required", err))
		return
	}

	result, err := h.svc.SetRemaining(c.Request.Context(), middleware.UserID(c), req.DeviceID, *req.UptimeSeconds, req.CompletedTasks)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type addElapsedRequest struct {
	DeviceID      string `json:"device_id" binding:"required"`
	UptimeSeconds int64  `json:"uptime_seconds" binding:"required"`
}

func (h *Handler) AddElapsed(c *gin.Context) {
	var req addElapsedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("device_id and uptime_seconds are required", err))
		return
	}

	result, err := h.svc.AddElapsed(c.Request.Context(), middleware.UserID(c), req.DeviceID, req.UptimeSeconds)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
