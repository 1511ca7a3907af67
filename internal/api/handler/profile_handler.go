package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wanty-app/wishfeed/internal/api/middleware"
	"github.com/wanty-app/wishfeed/pkg/response"
)

// Achievements reports unlocked badges and progress toward the rest
// @Summary My achievements
// @Tags profile
// @Produce json
// @Success 200 {object} response.Response{data=service.AchievementReport}
// @Failure 401 {object} response.Response
// @Router /api/v1/profile/achievements [get]
func (h *Handler) Achievements(c *gin.Context) {
	report, err := h.profile.Achievements(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, report)
}

// Stats reports the caller's engagement counters and recent activity
// @Summary My stats
// @Tags profile
// @Produce json
// @Success 200 {object} response.Response{data=service.Stats}
// @Failure 401 {object} response.Response
// @Router /api/v1/profile/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.profile.Stats(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, stats)
}
