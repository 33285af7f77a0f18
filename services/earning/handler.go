package earning

import (
	"net/http"
	"strconv"

	"swarmrewards/pkg/db/pagination"
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
	g.POST("/claim", h.Claim)
	g.GET("/earnings", h.History)
	g.GET("/earnings/total", h.Total)
	g.GET("/leaderboard", h.Leaderboard)
	g.GET("/rank", h.Rank)
}

func (h *Handler) Claim(c *gin.Context) {
	result, err := h.svc.Claim(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) History(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.Error(errutil.BadRequest("invalid pagination", err))
		return
	}

	records, pageInfo, err := h.svc.History(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": records, "page_info": pageInfo})
}

func (h *Handler) Total(c *gin.Context) {
	total, err := h.svc.TotalEarnings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_amount": total})
}

func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.svc.Leaderboard(c.Request.Context(), limit, middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Rank(c *gin.Context) {
	rank, err := h.svc.Rank(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rank": rank})
}
