package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/repository"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Svc *services.OrderService
}

func NewOrderController(s *services.OrderService) *OrderController {
	return &OrderController{Svc: s}
}

func orderQuery(c *gin.Context) (repository.OrderQuery, error) {
	var q repository.OrderQuery
	if v := c.Query("status"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return q, err
		}
		q.Status = &b
	}
	if v := c.Query("date"); v != "" {
		d, err := entity.ParseDate(v)
		if err != nil {
			return q, fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
		}
		q.Date = &d
	}
	q.Ordering = orderingFromQuery(c)

	page, err := pageFromQuery(c)
	if err != nil {
		return q, err
	}
	q.Page = page
	return q, nil
}

// decodeOrderPatch keeps track of which keys the body carried, since the
// allowed set depends on the caller's role.
func decodeOrderPatch(c *gin.Context) (services.OrderPatch, error) {
	var raw map[string]json.RawMessage
	if err := bindJSON(c, &raw); err != nil {
		return services.OrderPatch{}, err
	}

	var p services.OrderPatch
	for key := range raw {
		p.Fields = append(p.Fields, key)
	}
	sort.Strings(p.Fields)

	if v, ok := raw[policy.FieldStatus]; ok {
		if b, ok := decodeStatus(v); ok {
			p.Status = &b
		}
	}
	if v, ok := raw[policy.FieldDeliveryCrew]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		var crew uint
		if err := json.Unmarshal(v, &crew); err != nil || crew == 0 {
			return p, fmt.Errorf("%w: delivery_crew must be a user id or null", apperr.ErrInvalidPatch)
		}
		p.DeliveryCrew = &crew
	}
	return p, nil
}

// decodeStatus accepts true/false, 0/1 and their string forms.
func decodeStatus(v json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b, true
	}
	var n int
	if err := json.Unmarshal(v, &n); err == nil && (n == 0 || n == 1) {
		return n == 1, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if b, err := parseBool(s); err == nil {
			return b, true
		}
	}
	return false, false
}

// GET /orders/
func (h *OrderController) List(c *gin.Context) {
	caller, ok := authorize(c, policy.OrderList)
	if !ok {
		return
	}
	q, err := orderQuery(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	orders, total, err := h.Svc.ListOrders(c.Request.Context(), caller, q)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Many(c, total, orders)
}

// POST /orders/
func (h *OrderController) Checkout(c *gin.Context) {
	caller, ok := authorize(c, policy.OrderCheckout)
	if !ok {
		return
	}
	order, err := h.Svc.Checkout(c.Request.Context(), caller)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, order)
}

// GET /orders/:id/
func (h *OrderController) Get(c *gin.Context) {
	caller, ok := authorize(c, policy.OrderRead)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	order, err := h.Svc.GetOrder(c.Request.Context(), caller, id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// PUT and PATCH /orders/:id/
func (h *OrderController) Update(c *gin.Context) {
	caller, ok := authorizeOrderUpdate(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	patch, err := decodeOrderPatch(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	order, err := h.Svc.UpdateOrder(c.Request.Context(), caller, id, patch)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// DELETE /orders/:id/
func (h *OrderController) Delete(c *gin.Context) {
	caller, ok := authorize(c, policy.OrderDelete)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	if err := h.Svc.DeleteOrder(c.Request.Context(), caller, id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.Detail(c, fmt.Sprintf("order %d deleted", id))
}
