package handlers

import (
	"store-ratings/internal/middleware"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs returns the latest audit entries, newest first.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	logs, err := h.svc.ListAudit(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"logs": logs})
}
