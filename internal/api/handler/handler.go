package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wanty-app/wishfeed/internal/service"
	"github.com/wanty-app/wishfeed/pkg/response"
)

// Handler is the set of trigger adapters over the engagement core. Each route
// resolves the viewer, calls one service method and renders the envelope.
type Handler struct {
	coordinator *service.Coordinator
	wishes      *service.WishService
	profile     *service.ProfileService
}

func New(coordinator *service.Coordinator, wishes *service.WishService, profile *service.ProfileService) *Handler {
	return &Handler{coordinator: coordinator, wishes: wishes, profile: profile}
}

// renderError maps the service error taxonomy onto HTTP. Durable-store errors
// surface as a generic retry prompt.
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotRegistered):
		response.Unauthorized(c, "registration required")
	case errors.Is(err, service.ErrWishNotFound):
		response.NotFound(c, "wish not found")
	case errors.Is(err, service.ErrNotOwner):
		response.BadRequest(c, "only the wish owner may do that")
	default:
		response.InternalError(c, errors.New("something went wrong, please retry"))
	}
}
