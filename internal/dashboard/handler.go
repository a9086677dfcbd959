package dashboard

import (
	"github.com/gin-gonic/gin"

	"ngmi-backend/internal/shared/server/params"
	"ngmi-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/api/counts", h.counts)
	rg.GET("/api/activity", h.activity)
}

func (h *Handler) counts(c *gin.Context) {
	counts, err := h.Svc.Counts(c.Request.Context())
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, counts)
}

func (h *Handler) activity(c *gin.Context) {
	limit, err := params.Limit(c, DefaultActivityLimit, MaxActivityLimit)
	if err != nil {
		respond.Err(c, err)
		return
	}
	events, err := h.Svc.Activity(c.Request.Context(), limit)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, events)
}
