package repository

import (
	"fmt"
	"strings"

	"littlelemon/pkg/apperr"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page is 1-based pagination.
type Page struct {
	Page    int
	PerPage int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = p.normalize()
	return db.Limit(p.PerPage).Offset((p.Page - 1) * p.PerPage)
}

// orderBy turns ordering terms like "-total" into an ORDER BY clause using the
// allowed field → column map. An id tiebreaker keeps pages stable.
func orderBy(terms []string, allowed map[string]string, fallback string) (string, error) {
	if len(terms) == 0 {
		terms = []string{fallback}
	}

	parts := make([]string, 0, len(terms)+1)
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		dir := "ASC"
		if strings.HasPrefix(term, "-") {
			dir = "DESC"
			term = term[1:]
		}
		col, ok := allowed[term]
		if !ok {
			return "", fmt.Errorf("%w: cannot order by %q", apperr.ErrConstraintViolation, term)
		}
		parts = append(parts, col+" "+dir)
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", "), nil
}
