package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/checkia-backend/internal/http/response"
	"github.com/yungbote/checkia-backend/internal/services"
)

type FactHandler struct {
	facts services.FactService
}

func NewFactHandler(facts services.FactService) *FactHandler {
	return &FactHandler{facts: facts}
}

// GET /api/facts
func (h *FactHandler) List(c *gin.Context) {
	facts, err := h.facts.List(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, facts)
}

// GET /api/facts_translated
func (h *FactHandler) ListTranslated(c *gin.Context) {
	facts, err := h.facts.ListTranslated(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, facts)
}

// GET /api/keywords
func (h *FactHandler) Keywords(c *gin.Context) {
	kws, err := h.facts.Keywords(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, kws)
}
