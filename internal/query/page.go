package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"productivity/internal/core"
)

// DefaultMaxLimit bounds the page size unless configured otherwise.
const DefaultMaxLimit = 100

// Sort is a single-key sort directive.
type Sort struct {
	Field Field
	Desc  bool
}

// Page is a resolved pagination and sort request.
type Page struct {
	Number int
	Limit  int
	Sort   Sort
}

// Offset is the number of records skipped before this page. It saturates at
// math.MaxInt64 so an absurd page number still reads as past the end.
func (p Page) Offset() int64 {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	skipped := int64(p.Number - 1)
	if skipped > math.MaxInt64/int64(p.Limit) {
		return math.MaxInt64
	}
	return skipped * int64(p.Limit)
}

// Listing holds the pagination defaults and sortable fields of one listing.
type Listing struct {
	DefaultLimit int
	MaxLimit     int
	DefaultSort  Sort
	Sortable     []Field
}

var (
	expenseSortable = []Field{FieldDate, FieldAmount, FieldTitle, FieldCategory, FieldType, FieldPaymentMethod, FieldCreatedAt, FieldUpdatedAt}
	taskSortable    = []Field{FieldDueDate, FieldTitle, FieldStatus, FieldPriority, FieldCategory, FieldCreatedAt, FieldUpdatedAt}
	userSortable    = []Field{FieldCreatedAt, FieldName, FieldEmail, FieldRole}

	ExpenseListing = Listing{DefaultLimit: 10, MaxLimit: DefaultMaxLimit, DefaultSort: Sort{FieldDate, true}, Sortable: expenseSortable}
	TaskListing    = Listing{DefaultLimit: 10, MaxLimit: DefaultMaxLimit, DefaultSort: Sort{FieldDueDate, false}, Sortable: taskSortable}

	AdminExpenseListing = Listing{DefaultLimit: 20, MaxLimit: DefaultMaxLimit, DefaultSort: Sort{FieldCreatedAt, true}, Sortable: expenseSortable}
	AdminTaskListing    = Listing{DefaultLimit: 20, MaxLimit: DefaultMaxLimit, DefaultSort: Sort{FieldCreatedAt, true}, Sortable: taskSortable}
	AdminUserListing    = Listing{DefaultLimit: 20, MaxLimit: DefaultMaxLimit, DefaultSort: Sort{FieldCreatedAt, true}, Sortable: userSortable}
)

// WithMaxLimit returns a copy of l bounded by max (ignored when max < 1).
func (l Listing) WithMaxLimit(max int) Listing {
	if max >= 1 {
		l.MaxLimit = max
		if l.DefaultLimit > max {
			l.DefaultLimit = max
		}
	}
	return l
}

// Resolve reads page, limit, sortBy and sortOrder. Limits above MaxLimit are
// clamped; every other out-of-contract value is a validation error.
func (l Listing) Resolve(params url.Values) (Page, error) {
	p := Page{Number: 1, Limit: l.DefaultLimit, Sort: l.DefaultSort}

	if v, ok := present(params, "page"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Page{}, core.NewValidationError("page", "page must be a positive integer")
		}
		p.Number = n
	}

	if v, ok := present(params, "limit"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Page{}, core.NewValidationError("limit", "limit must be a positive integer")
		}
		p.Limit = n
	}
	if l.MaxLimit > 0 && p.Limit > l.MaxLimit {
		p.Limit = l.MaxLimit
	}

	if v, ok := present(params, "sortBy"); ok {
		field, ok := l.sortable(v)
		if !ok {
			return Page{}, core.NewValidationError("sortBy", "cannot sort by %q", v)
		}
		p.Sort.Field = field
	}

	if v, ok := present(params, "sortOrder"); ok {
		switch strings.ToLower(v) {
		case "asc":
			p.Sort.Desc = false
		case "desc":
			p.Sort.Desc = true
		default:
			return Page{}, core.NewValidationError("sortOrder", "sortOrder must be asc or desc")
		}
	}

	return p, nil
}

func (l Listing) sortable(name string) (Field, bool) {
	for _, f := range l.Sortable {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// Pagination is the metadata returned with every list response.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
	Limit int   `json:"limit"`
}

// NewPagination computes pages = ceil(total/limit).
func NewPagination(total int64, p Page) Pagination {
	var pages int64
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Pagination{Total: total, Page: p.Number, Pages: pages, Limit: p.Limit}
}

// Result is one page of items plus its pagination metadata.
type Result[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// NewResult never returns a nil Items slice, so a page past the end encodes as [].
func NewResult[T any](items []T, total int64, p Page) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Pagination: NewPagination(total, p)}
}
