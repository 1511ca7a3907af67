package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wanty-app/wishfeed/internal/api/middleware"
	"github.com/wanty-app/wishfeed/internal/model"
	"github.com/wanty-app/wishfeed/pkg/response"
)

type createWishRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       []byte `json:"image"`
}

// CreateWish publishes a new wish for the caller
// @Summary Create a wish
// @Tags wishes
// @Accept json
// @Produce json
// @Param request body createWishRequest true "wish content"
// @Success 200 {object} response.Response{data=service.CreateResult}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/wishes [post]
func (h *Handler) CreateWish(c *gin.Context) {
	var req createWishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.wishes.Create(c.Request.Context(), middleware.Viewer(c), req.Name, req.Description, req.Category, req.Image)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, res)
}

// ListWishes returns the caller's own wishes
// @Summary List my wishes
// @Tags wishes
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/wishes [get]
func (h *Handler) ListWishes(c *gin.Context) {
	list, err := h.wishes.ListMine(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

type updateWishRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       []byte `json:"image"`
}

// UpdateWish edits one of the caller's wishes
// @Summary Update a wish
// @Tags wishes
// @Accept json
// @Produce json
// @Param wish_id path string true "wish id"
// @Param request body updateWishRequest true "new content"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/wishes/{wish_id} [put]
func (h *Handler) UpdateWish(c *gin.Context) {
	var req updateWishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	wish := &model.Wish{
		ID:          c.Param("wish_id"),
		OwnerID:     middleware.Viewer(c),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Image:       req.Image,
	}
	if err := h.wishes.Update(c.Request.Context(), middleware.Viewer(c), wish); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteWish removes one of the caller's wishes
// @Summary Delete a wish
// @Tags wishes
// @Produce json
// @Param wish_id path string true "wish id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/wishes/{wish_id} [delete]
func (h *Handler) DeleteWish(c *gin.Context) {
	if err := h.wishes.Delete(c.Request.Context(), middleware.Viewer(c), c.Param("wish_id")); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, nil)
}
