package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"littlelemon/pkg/apperr"
	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/repository"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

// authorize answers 401 or 403 before the handler reads the path, query or
// body, so bad input never masks a missing permission.
func authorize(c *gin.Context, action policy.Action) (policy.Identity, bool) {
	caller := utils.CurrentIdentity(c)
	if err := policy.Decide(caller, action); err != nil {
		resp.Error(c, err)
		return caller, false
	}
	return caller, true
}

func authorizeOrderUpdate(c *gin.Context) (policy.Identity, bool) {
	caller := utils.CurrentIdentity(c)
	if err := policy.DecideOrderUpdate(caller); err != nil {
		resp.Error(c, err)
		return caller, false
	}
	return caller, true
}

// pathID reads a positive integer path parameter. Anything else is treated
// as an unknown resource.
func pathID(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %s %q", apperr.ErrNotFound, name, c.Param(name))
	}
	return uint(n), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a boolean", apperr.ErrConstraintViolation, s)
	}
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", apperr.ErrConstraintViolation, key)
	}
	return n, nil
}

func pageFromQuery(c *gin.Context) (repository.Page, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return repository.Page{}, err
	}
	perPage, err := queryInt(c, "perpage")
	if err != nil {
		return repository.Page{}, err
	}
	return repository.Page{Page: page, PerPage: perPage}, nil
}

// orderingFromQuery splits ?ordering=-total,date into terms.
func orderingFromQuery(c *gin.Context) []string {
	raw := c.Query("ordering")
	if raw == "" {
		return nil
	}
	var terms []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// bindJSON decodes the body. Malformed JSON is a ConstraintViolation so it
// maps to 400 like every other bad input.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", apperr.ErrConstraintViolation, err)
	}
	return nil
}
