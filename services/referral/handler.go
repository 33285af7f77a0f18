package referral

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
	// verify stays public so the signup form can validate codes pre-auth
	engine.GET("/api/v1/referral/verify/:code", h.Verify)

	g := engine.Group("/api/v1", middleware.Identity())
	g.POST("/referral/use", h.Use)
	g.GET("/referral/stats", h.Stats)
	g.GET("/referrals", h.List)
}

func (h *Handler) Verify(c *gin.Context) {
	code := c.Param("code")
	if len(code) < 6 || len(code) > 10 {
		c.Error(errutil.ValidationFailed("referral code must be 6-10 characters", nil))
		return
	}

	result, err := h.svc.VerifyCode(c.Request.Context(), code)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type useCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) Use(c *gin.Context) {
	var req useCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("code is required", err))
		return
	}

	edge, err := h.svc.UseCode(c.Request.Context(), middleware.UserID(c), req.Code)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, edge)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) List(c *gin.Context) {
	edges, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": edges})
}
