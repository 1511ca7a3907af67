package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wanty-app/wishfeed/internal/api/middleware"
	"github.com/wanty-app/wishfeed/pkg/response"
)

// Current shows the wish at the viewer's cursor
// @Summary Current feed position
// @Tags feed
// @Produce json
// @Success 200 {object} response.Response{data=service.FeedView}
// @Failure 401 {object} response.Response
// @Router /api/v1/feed/current [get]
func (h *Handler) Current(c *gin.Context) {
	view, err := h.coordinator.Current(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, view)
}

// Approve likes the current wish and advances the cursor
// @Summary Approve the current wish
// @Tags feed
// @Produce json
// @Success 200 {object} response.Response{data=service.ActionResult}
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/feed/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	res, err := h.coordinator.Approve(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, res)
}

// Decline passes on the current wish and advances the cursor
// @Summary Decline the current wish
// @Tags feed
// @Produce json
// @Success 200 {object} response.Response{data=service.ActionResult}
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/feed/decline [post]
func (h *Handler) Decline(c *gin.Context) {
	res, err := h.coordinator.Decline(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, res)
}

// Restart rewinds the viewer's cursor to the start of the feed
// @Summary Restart browsing from the beginning
// @Tags feed
// @Produce json
// @Success 200 {object} response.Response{data=service.FeedView}
// @Failure 401 {object} response.Response
// @Router /api/v1/feed/restart [post]
func (h *Handler) Restart(c *gin.Context) {
	view, err := h.coordinator.Restart(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, view)
}

// EndSession drops the viewer's cursor so the next visit starts fresh
// @Summary End the browsing session
// @Tags feed
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/feed/session [delete]
func (h *Handler) EndSession(c *gin.Context) {
	h.coordinator.EndSession(c.Request.Context(), middleware.Viewer(c))
	response.Success(c, nil)
}

// RevealContact consumes the caller's pending likes and shows who liked
// @Summary Reveal who liked my wishes
// @Tags feed
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/feed/reveal [post]
func (h *Handler) RevealContact(c *gin.Context) {
	events, err := h.coordinator.RevealContact(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(events), "likes": events})
}
