package controllers

import (
	"fmt"
	"strconv"

	"littlelemon/pkg/apperr"
	"littlelemon/pkg/money"
	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/repository"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	Svc *services.MenuService
}

func NewMenuController(s *services.MenuService) *MenuController {
	return &MenuController{Svc: s}
}

func menuQuery(c *gin.Context) (repository.MenuQuery, error) {
	var q repository.MenuQuery
	if v := c.Query("category"); v != "" {
		id, err := strconv.ParseUint(v, 10, 0)
		if err != nil {
			return q, fmt.Errorf("%w: category must be an id", apperr.ErrConstraintViolation)
		}
		cat := uint(id)
		q.CategoryID = &cat
	}
	if v := c.Query("featured"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return q, err
		}
		q.Featured = &b
	}
	if v := c.Query("price"); v != "" {
		p, err := money.Parse(v)
		if err != nil {
			return q, fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
		}
		q.Price = &p
	}
	q.Search = c.Query("search")
	q.Ordering = orderingFromQuery(c)

	page, err := pageFromQuery(c)
	if err != nil {
		return q, err
	}
	q.Page = page
	return q, nil
}

// GET /menu-items/
func (h *MenuController) List(c *gin.Context) {
	caller, ok := authorize(c, policy.MenuRead)
	if !ok {
		return
	}
	q, err := menuQuery(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	items, total, err := h.Svc.List(c.Request.Context(), caller, q)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Many(c, total, items)
}

// GET /menu-items/:id/
func (h *MenuController) Get(c *gin.Context) {
	caller, ok := authorize(c, policy.MenuRead)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	item, err := h.Svc.Get(c.Request.Context(), caller, id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, item)
}

// POST /menu-items/
func (h *MenuController) Create(c *gin.Context) {
	caller, ok := authorize(c, policy.MenuWrite)
	if !ok {
		return
	}
	var in services.MenuItemIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	item, err := h.Svc.Create(c.Request.Context(), caller, in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, item)
}

// PUT /menu-items/:id/
func (h *MenuController) Replace(c *gin.Context) {
	caller, ok := authorize(c, policy.MenuWrite)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	var in services.MenuItemIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	item, err := h.Svc.Replace(c.Request.Context(), caller, id, in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, item)
}

// PATCH /menu-items/:id/
func (h *MenuController) Patch(c *gin.Context) {
	caller, ok := authorize(c, policy.MenuWrite)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	var in services.MenuItemPatch
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	item, err := h.Svc.Patch(c.Request.Context(), caller, id, in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, item)
}

// DELETE /menu-items/:id/
func (h *MenuController) Delete(c *gin.Context) {
	caller, ok := authorize(c, policy.MenuWrite)
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
	resp.Detail(c, "menu item deleted")
}
