package jobs

import (
	"github.com/gin-gonic/gin"

	"ngmi-backend/internal/shared/apperr"
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
	rg.GET("/jobs", h.list)
	rg.POST("/jobs", h.add)
	rg.GET("/jobs/:id", h.get)
	rg.DELETE("/jobs/:id", h.delete)
}

type addRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"jobs": items})
}

func (h *Handler) add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.E(apperr.ErrValidation, "invalid JSON body"))
		return
	}
	job, err := h.Svc.Add(c.Request.Context(), req.Title, req.Company, req.Description)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.Created(c, job)
}

func (h *Handler) get(c *gin.Context) {
	jobID, err := params.ID(c, "id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	job, err := h.Svc.Get(c.Request.Context(), jobID)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) delete(c *gin.Context) {
	jobID, err := params.ID(c, "id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("jobId", jobID)
	if err := h.Svc.Delete(c.Request.Context(), jobID); err != nil {
		respond.Err(c, err)
		return
	}
	respond.NoContent(c)
}
