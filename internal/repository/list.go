package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	FilterAll       = "all"
)

// ListParams carries the search, filter and page window of a list call.
// Page is 1-based.
type ListParams struct {
	Search  string
	Filter  string
	Page    int
	Limit   int
	OrderBy string
	Desc    *bool
}

func (p ListParams) Normalize() ListParams {
	p.Search = strings.TrimSpace(p.Search)
	p.Filter = strings.TrimSpace(p.Filter)
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p ListParams) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Range returns the inclusive record window [from, to] of the page.
func (p ListParams) Range() (int, int) {
	p = p.Normalize()
	from := p.Offset()
	return from, from + p.Limit - 1
}

type listSpec struct {
	searchColumns []string
	filterColumn  string
	orderColumns  map[string]bool
	defaultOrder  string
	defaultDesc   bool
}

func (s listSpec) order(params ListParams) clause.OrderByColumn {
	column := s.defaultOrder
	desc := s.defaultDesc
	if params.OrderBy != "" && s.orderColumns[params.OrderBy] {
		column = params.OrderBy
	}
	if params.Desc != nil {
		desc = *params.Desc
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

func applySearch(q *gorm.DB, columns []string, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column))
		args = append(args, pattern)
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

func applyFilter(q *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if column == "" || value == "" || value == FilterAll {
		return q
	}
	return q.Where(column+" = ?", value)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func list[T any](
	ctx context.Context,
	db *gorm.DB,
	op string,
	spec listSpec,
	params ListParams,
	scope func(*gorm.DB) *gorm.DB,
) ([]T, int64, error) {
	params = params.Normalize()

	q := db.WithContext(ctx).Model(new(T))
	if scope != nil {
		q = scope(q)
	}
	q = applySearch(q, spec.searchColumns, params.Search)
	q = applyFilter(q, spec.filterColumn, params.Filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(op, err)
	}

	rows := make([]T, 0, params.Limit)
	err := q.
		Order(spec.order(params)).
		Order("id").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	return rows, total, nil
}
