package controllers

import (
	"fmt"

	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
)

type CartController struct{ Svc *services.CartService }

func NewCartController(s *services.CartService) *CartController { return &CartController{Svc: s} }

// GET /cart/menu-items/
func (h *CartController) List(c *gin.Context) {
	caller, ok := authorize(c, policy.CartRead)
	if !ok {
		return
	}
	lines, err := h.Svc.List(c.Request.Context(), caller)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Many(c, int64(len(lines)), lines)
}

// POST /cart/menu-items/
func (h *CartController) Add(c *gin.Context) {
	caller, ok := authorize(c, policy.CartWrite)
	if !ok {
		return
	}
	var in services.AddToCartIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	line, err := h.Svc.Add(c.Request.Context(), caller, in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, line)
}

// DELETE /cart/menu-items/
func (h *CartController) Clear(c *gin.Context) {
	caller, ok := authorize(c, policy.CartWrite)
	if !ok {
		return
	}
	n, err := h.Svc.Clear(c.Request.Context(), caller)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Detail(c, fmt.Sprintf("%d cart items removed", n))
}
