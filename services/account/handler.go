package account

import (
	"net/http"

	"swarmrewards/pkg/errutil"
	"swarmrewards/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func RegisterRoutes(engine *gin.Engine, h *Handler) {
	g := engine.Group("/api/v1", middleware.Identity())
	g.POST("/account", h.Create)
	g.GET("/account", h.Get)
}

type createRequest struct {
	Username string `json:"username"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("invalid request body", err))
		return
	}

	acct, err := h.svc.Create(c.Request.Context(), CreateParams{
		UserID:   middleware.UserID(c),
		Username: req.Username,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, acct)
}

func (h *Handler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	acct, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	// reading your own profile counts as activity for the sync window
	if err := h.svc.TouchLogin(c.Request.Context(), userID); err != nil {
		zap.L().Warn("failed to touch last login", zap.String("user_id", userID), zap.Error(err))
	}

	c.JSON(http.StatusOK, acct)
}
