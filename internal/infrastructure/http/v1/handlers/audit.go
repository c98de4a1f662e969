package handlers

import (
	"github.com/gin-gonic/gin"

	"tudogestao/internal/domain/audit"
)

// AuditHandler serves the audit trail of an entity.
type AuditHandler struct {
	*BaseHandler
	reader audit.Reader
}

func NewAuditHandler(base *BaseHandler, reader audit.Reader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// History handles GET /audit/:entityType/:entityId.
func (h *AuditHandler) History(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseID(c, "entityId")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := h.reader.History(c.Request.Context(), companyID, c.Param("entityType"), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	h.OK(c, gin.H{"items": entries})
}
