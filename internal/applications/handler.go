package applications

import (
	"net/http"

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

// RegisterWriteRoutes registers /apply, which is rate limited.
func (h *Handler) RegisterWriteRoutes(rg gin.IRoutes) {
	rg.POST("/apply", h.apply)
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/users/:id/applications", h.list)
	rg.GET("/applications/:id/ngmi", h.ngmi)
	rg.DELETE("/users/:id/applications/:applicationId", h.delete)
}

type applyRequest struct {
	UserID   int64 `json:"user_id"`
	JobID    int64 `json:"job_id"`
	ResumeID int64 `json:"resume_id"`
}

type applyResponse struct {
	ApplicationID int64    `json:"application_id"`
	NGMIScore     *float64 `json:"ngmi_score"`
	NGMIComment   *string  `json:"ngmi_comment"`
}

func (h *Handler) apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.E(apperr.ErrValidation, "invalid JSON body"))
		return
	}
	for _, f := range []struct {
		name  string
		value int64
	}{{"user_id", req.UserID}, {"job_id", req.JobID}, {"resume_id", req.ResumeID}} {
		if f.value <= 0 {
			respond.Err(c, apperr.E(apperr.ErrValidation, f.name+" must be a positive integer"))
			return
		}
	}
	c.Set("userId", req.UserID)
	c.Set("resumeId", req.ResumeID)
	c.Set("jobId", req.JobID)

	result, err := h.Svc.Apply(c.Request.Context(), req.UserID, req.JobID, req.ResumeID)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("applicationId", result.ApplicationID)

	body := applyResponse{ApplicationID: result.ApplicationID}
	if result.Score != nil {
		body.NGMIScore = &result.Score.Score
		body.NGMIComment = &result.Score.Comment
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respond.JSON(c, status, body)
}

func (h *Handler) list(c *gin.Context) {
	userID, err := params.ID(c, "id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("userId", userID)
	items, err := h.Svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) ngmi(c *gin.Context) {
	applicationID, err := params.ID(c, "id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("applicationId", applicationID)
	d, err := h.Svc.NGMIDetail(c.Request.Context(), applicationID)
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
	applicationID, err := params.ID(c, "applicationId")
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("userId", userID)
	c.Set("applicationId", applicationID)
	if err := h.Svc.Delete(c.Request.Context(), userID, applicationID); err != nil {
		respond.Err(c, err)
		return
	}
	respond.NoContent(c)
}
