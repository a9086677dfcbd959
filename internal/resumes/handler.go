package resumes

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

// RegisterWriteRoutes registers the upload route, which is rate limited.
func (h *Handler) RegisterWriteRoutes(rg gin.IRoutes) {
	rg.POST("/upload_resume", h.upload)
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/users/:id/resumes", h.list)
	rg.GET("/resumes/:id", h.details)
	rg.DELETE("/users/:id/resumes/:resumeId", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	userID, err := params.Parse(c.PostForm("user_id"), "user_id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("userId", userID)

	header, err := c.FormFile("file")
	if err != nil {
		respond.Err(c, apperr.E(apperr.ErrValidation, "file is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		respond.Err(c, apperr.E(apperr.ErrValidation, "File is not readable"))
		return
	}
	defer f.Close()

	result, err := h.Svc.Upload(c.Request.Context(), userID, header.Filename, header.Size, f)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("resumeId", result.ResumeID)
	respond.Created(c, result)
}

func (h *Handler) list(c *gin.Context) {
	userID, err := params.ID(c, "id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("userId", userID)
	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"resumes": items})
}

func (h *Handler) details(c *gin.Context) {
	resumeID, err := params.ID(c, "id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("resumeId", resumeID)
	d, err := h.Svc.Details(c.Request.Context(), resumeID)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, d)
}

func (h *Handler) delete(c *gin.Context) {
	userID, err := params.ID(c, "id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	resumeID, err := params.ID(c, "resumeId")
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("userId", userID)
	c.Set("resumeId", resumeID)
	if err := h.Svc.Delete(c.Request.Context(), userID, resumeID); err != nil {
		respond.Err(c, err)
		return
	}
	respond.NoContent(c)
}
