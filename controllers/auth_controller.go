package controllers

import (
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Svc *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{Svc: s}
}

// POST /auth/users/
func (h *AuthController) Register(c *gin.Context) {
	var in services.RegisterIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, gin.H{"id": user.ID, "username": user.Username, "email": user.Email})
}

// POST /auth/token/login/
func (h *AuthController) Login(c *gin.Context) {
	var in services.LoginIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	token, err := h.Svc.Login(c.Request.Context(), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"auth_token": token})
}

// GET /auth/users/me/
func (h *AuthController) Me(c *gin.Context) {
	me, err := h.Svc.Me(c.Request.Context(), utils.CurrentIdentity(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, me)
}
