package users

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

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/users", h.create)
	rg.GET("/users/:id", h.get)
}

type createRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.E(apperr.ErrValidation, "invalid JSON body"))
		return
	}
	user, err := h.Svc.Create(c.Request.Context(), req.Email, req.FullName)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("userId", user.ID)
	respond.JSON(c, http.StatusCreated, user)
}

func (h *Handler) get(c *gin.Context) {
	userID, err := params.ID(c, "id")
	if err != nil {
		respond.Err(c, err)
		return
	}
	user, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, user)
}
