package handlers

import (
	"store-ratings/internal/middleware"
	"store-ratings/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SubmitRating(c *gin.Context) {
	var in service.SubmitRatingInput
	if !bind(c, &in) {
		return
	}
	r, err := h.svc.SubmitRating(c.Request.Context(), middleware.CurrentPrincipal(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, r)
}
