// Package pagination parses list query parameters (page, page_size,
// filters, search, ordering) and builds the paginated response envelope.
package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var ErrInvalidPage = errors.New("invalid page")

// FieldError reports an unusable filter value.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Filter maps an exact-match query parameter onto a column.
type Filter struct {
	Column  string
	Numeric bool
	Choices []string
}

// Spec lists what a resource family allows callers to filter, search and
// order by.
type Spec struct {
	Filters      map[string]Filter
	SearchFields []string
	Ordering     map[string]string
	DefaultOrder string
}

type condition struct {
	column string
	value  any
}

// Request is a parsed list query.
type Request struct {
	Page     int
	PageSize int
	Search   string

	conditions   []condition
	searchFields []string
	order        string
}

// Parse reads a list request from query values.
func Parse(values url.Values, spec Spec) (Request, error) {
	req := Request{
		Page:         1,
		PageSize:     DefaultPageSize,
		Search:       strings.TrimSpace(values.Get("search")),
		searchFields: spec.SearchFields,
		order:        spec.DefaultOrder,
	}

	if raw := values.Get("page"); raw != "" {
		if raw == "last" {
			req.Page = -1
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return req, ErrInvalidPage
			}
			req.Page = n
		}
	}

	if raw := values.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.PageSize = min(n, MaxPageSize)
		}
	}

	params := make([]string, 0, len(spec.Filters))
	for p := range spec.Filters {
		params = append(params, p)
	}
	slices.Sort(params)
	for _, p := range params {
		raw := strings.TrimSpace(values.Get(p))
		if raw == "" {
			continue
		}
		f := spec.Filters[p]
		switch {
		case f.Numeric:
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return req, &FieldError{Field: p, Message: "Enter a number."}
			}
			req.conditions = append(req.conditions, condition{f.Column, uint(n)})
		case len(f.Choices) > 0:
			if !slices.Contains(f.Choices, raw) {
				return req, &FieldError{
					Field:   p,
					Message: fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", raw),
				}
			}
			req.conditions = append(req.conditions, condition{f.Column, raw})
		default:
			req.conditions = append(req.conditions, condition{f.Column, raw})
		}
	}

	if order := parseOrdering(values.Get("ordering"), spec.Ordering); order != "" {
		req.order = order
	}
	return req, nil
}

// parseOrdering turns "name,-created_at" into an ORDER BY clause using only
// allow-listed fields. Unknown fields are dropped.
func parseOrdering(raw string, allowed map[string]string) string {
	var clauses []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		column, ok := allowed[strings.TrimPrefix(field, "-")]
		if !ok {
			continue
		}
		if desc {
			column += " DESC"
		}
		clauses = append(clauses, column)
	}
	return strings.Join(clauses, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Filter applies the filter and search conditions. Search terms match
// literally; % and _ are not wildcards.
func (r Request) Filter(db *gorm.DB) *gorm.DB {
	for _, c := range r.conditions {
		db = db.Where(c.column+" = ?", c.value)
	}
	if r.Search != "" && len(r.searchFields) > 0 {
		term := "%" + likeEscaper.Replace(strings.ToLower(r.Search)) + "%"
		parts := make([]string, len(r.searchFields))
		args := make([]any, len(r.searchFields))
		for i, col := range r.searchFields {
			parts[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
			args[i] = term
		}
		db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
	return db
}

// Scope applies Filter plus the ordering, with id as the final tie-break so
// pages are stable. Paging itself is applied once the total count is known.
func (r Request) Scope(db *gorm.DB) *gorm.DB {
	db = r.Filter(db)
	if r.order != "" {
		db = db.Order(r.order)
	}
	return db.Order("id")
}

// Resolve fixes the page number against the total row count. A page past
// the end is an error, except the first page of an empty result.
func (r *Request) Resolve(count int64) error {
	last := lastPage(count, r.PageSize)
	if r.Page == -1 {
		r.Page = last
	}
	if r.Page > last {
		return ErrInvalidPage
	}
	return nil
}

func (r Request) Offset() int {
	return (r.Page - 1) * r.PageSize
}

func (r Request) Limit() int {
	return r.PageSize
}

func lastPage(count int64, size int) int {
	if count == 0 {
		return 1
	}
	return int((count + int64(size) - 1) / int64(size))
}

// Page is the list response envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope. base is the absolute URL of the current
// request; next/previous keep its query string and only swap the page.
func NewPage[T any](results []T, count int64, req Request, base *url.URL) Page[T] {
	if results == nil {
		results = []T{}
	}
	p := Page[T]{Count: count, Results: results}

	if req.Page < lastPage(count, req.PageSize) {
		p.Next = pageURL(base, req.Page+1)
	}
	if req.Page > 1 {
		p.Previous = pageURL(base, req.Page-1)
	}
	return p
}

func pageURL(base *url.URL, page int) *string {
	if base == nil {
		return nil
	}
	u := *base
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
