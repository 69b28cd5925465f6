// Package search projects filtered, paginated views of the catalog. The
// index owns no data beyond the active query, category, and page; results
// are derived from the catalog on every call.
package search

import (
	"strings"
	"sync"

	"github.com/aym0707/storefront/internal/catalog"
)

// PageSize is the fixed number of products per page.
const PageSize = 20

// CategoryAll is the sentinel that disables category filtering. The Persian
// sentinel from the upstream UI is accepted as an alias.
const (
	CategoryAll        = "all"
	categoryAllPersian = "همه"
)

// Lister provides the catalog sequence to project.
type Lister interface {
	List() []catalog.Product
}

// Index holds the active search state for one session.
type Index struct {
	source Lister

	mu       sync.Mutex
	query    string
	category string
	page     int
}

// NewIndex returns an index showing the full catalog on page 1.
func NewIndex(source Lister) *Index {
	return &Index{source: source, category: CategoryAll, page: 1}
}

// Search sets the active query and category, resets to page 1, and returns
// the full filtered sequence in catalog order.
func (x *Index) Search(query, category string) []catalog.Product {
	x.mu.Lock()
	x.query = query
	x.category = category
	x.page = 1
	x.mu.Unlock()
	return x.Results()
}

// Results returns the current filtered sequence. Filtering is two-stage and
// order-preserving: category first (skipped for the "all" sentinel), then a
// case-insensitive substring match over name, code, description, and full
// description.
func (x *Index) Results() []catalog.Product {
	x.mu.Lock()
	query, category := x.query, x.category
	x.mu.Unlock()

	products := x.source.List()

	if category != CategoryAll && category != categoryAllPersian && category != "" {
		kept := products[:0:0]
		for _, p := range products {
			if p.Category == category {
				kept = append(kept, p)
			}
		}
		products = kept
	}

	term := strings.ToLower(strings.TrimSpace(query))
	if term != "" {
		kept := products[:0:0]
		for _, p := range products {
			if matches(p, term) {
				kept = append(kept, p)
			}
		}
		products = kept
	}
	return products
}

func matches(p catalog.Product, term string) bool {
	for _, s := range []string{p.Name, p.Code, p.Description, p.FullDescription} {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Page returns the current page's slice of the filtered result, clamped to
// bounds; a page past the end yields an empty slice.
func (x *Index) Page() []catalog.Product {
	results := x.Results()

	x.mu.Lock()
	page := x.page
	x.mu.Unlock()

	start := (page - 1) * PageSize
	if start >= len(results) {
		return nil
	}
	end := start + PageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}

// TotalPages returns ceil(resultCount / PageSize); zero when the filtered
// result is empty, which callers must treat as "no pagination".
func (x *Index) TotalPages() int {
	n := len(x.Results())
	return (n + PageSize - 1) / PageSize
}

// ResultCount returns the size of the current filtered result.
func (x *Index) ResultCount() int {
	return len(x.Results())
}

// CurrentPage returns the active 1-based page number.
func (x *Index) CurrentPage() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.page
}

// SetPage moves to page n. Pages below 1 clamp to 1; pages past the end are
// allowed and simply yield an empty Page.
func (x *Index) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	x.mu.Lock()
	x.page = n
	x.mu.Unlock()
}

// NextPage advances one page, stopping at the last page with results.
func (x *Index) NextPage() {
	if x.CurrentPage() < x.TotalPages() {
		x.SetPage(x.CurrentPage() + 1)
	}
}

// PrevPage goes back one page, stopping at the first.
func (x *Index) PrevPage() {
	x.SetPage(x.CurrentPage() - 1)
}

// Query returns the active query string.
func (x *Index) Query() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.query
}

// Category returns the active category filter.
func (x *Index) Category() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.category
}
