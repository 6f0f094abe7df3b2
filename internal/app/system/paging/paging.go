// Package paging implements page/limit pagination for list endpoints.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/campusconnect/internal/app/system/limits"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default number of rows returned by a list endpoint.
const PageSize = limits.DefaultPageSize

// MaxPageSize caps the limit a client may ask for.
const MaxPageSize = limits.MaxPageSize

// Page is a 1-based page number and a page size.
type Page struct {
	Number int
	Size   int
}

// Default is the first page at PageSize.
func Default() Page { return Page{Number: 1, Size: PageSize} }

// Parse reads the "page" and "limit" query parameters. Missing or invalid
// values fall back to page 1 and PageSize; limits above MaxPageSize are
// clamped.
func Parse(r *http.Request) Page {
	return Page{
		Number: positive(query.Get(r, "page"), 1),
		Size:   min(positive(query.Get(r, "limit"), PageSize), MaxPageSize),
	}
}

func positive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Skip is the number of documents before this page.
func (p Page) Skip() int64 { return int64((p.Number - 1) * p.Size) }

// LimitPlusOne fetches one extra row so HasNext can be computed without a count.
func (p Page) LimitPlusOne() int64 { return int64(p.Size + 1) }

// Apply sets skip and look-ahead limit on a Find.
func (p Page) Apply(find *options.FindOptions) *options.FindOptions {
	return find.SetSkip(p.Skip()).SetLimit(p.LimitPlusOne())
}

// Result describes the page that was returned.
type Result struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasNext bool `json:"has_next"`
}

// Trim cuts a look-ahead fetch down to the page size.
func Trim[T any](rows *[]T, p Page) Result {
	res := Result{Page: p.Number, Limit: p.Size}
	if len(*rows) > p.Size {
		*rows = (*rows)[:p.Size]
		res.HasNext = true
	}
	return res
}
