package controllers

import (
	"fmt"

	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
)

// GroupController serves one staff group; routes mount one per group.
type GroupController struct {
	Svc   *services.GroupService
	Group string
}

func NewGroupController(s *services.GroupService, group string) *GroupController {
	return &GroupController{Svc: s, Group: group}
}

type memberOut struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// GET /groups/<group>/users/
func (h *GroupController) List(c *gin.Context) {
	caller, ok := authorize(c, policy.RolesManage)
	if !ok {
		return
	}
	users, err := h.Svc.List(c.Request.Context(), caller, h.Group)
	if err != nil {
		resp.Error(c, err)
		return
	}
	out := make([]memberOut, len(users))
	for i, u := range users {
		out[i] = memberOut{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	resp.Many(c, int64(len(out)), out)
}

// POST /groups/<group>/users/
func (h *GroupController) Add(c *gin.Context) {
	caller, ok := authorize(c, policy.RolesManage)
	if !ok {
		return
	}
	var in services.AddMemberIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	u, err := h.Svc.Add(c.Request.Context(), caller, h.Group, in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, memberOut{ID: u.ID, Username: u.Username, Email: u.Email})
}

// DELETE /groups/<group>/users/:id/
func (h *GroupController) Remove(c *gin.Context) {
	caller, ok := authorize(c, policy.RolesManage)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	if err := h.Svc.Remove(c.Request.Context(), caller, h.Group, id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.Detail(c, fmt.Sprintf("user %d removed from %s", id, h.Group))
}
