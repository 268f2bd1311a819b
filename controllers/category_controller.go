package controllers

import (
	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	Svc *services.CategoryService
}

func NewCategoryController(s *services.CategoryService) *CategoryController {
	return &CategoryController{Svc: s}
}

// GET /categories/
func (h *CategoryController) List(c *gin.Context) {
	caller, ok := authorize(c, policy.CategoryRead)
	if !ok {
		return
	}
	cats, err := h.Svc.List(c.Request.Context(), caller)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Many(c, int64(len(cats)), cats)
}

// POST /categories/
func (h *CategoryController) Create(c *gin.Context) {
	caller, ok := authorize(c, policy.CategoryWrite)
	if !ok {
		return
	}
	var in services.CategoryIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	cat, err := h.Svc.Create(c.Request.Context(), caller, in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, cat)
}

// DELETE /categories/:id/
func (h *CategoryController) Delete(c *gin.Context) {
	caller, ok := authorize(c, policy.CategoryWrite)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), caller, id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.Detail(c, "category deleted")
}
