// Package cart implements the cart ledger: the set of line items the
// customer intends to buy, with stock constraints enforced on every
// mutation against the live catalog.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aym0707/storefront/internal/catalog"
	"github.com/aym0707/storefront/internal/localstore"
	"github.com/aym0707/storefront/internal/money"
)

// Catalog resolves live products for stock checks.
type Catalog interface {
	GetByID(id string) (catalog.Product, bool)
}

// Persister is the slice of the local store the ledger needs.
type Persister interface {
	Put(key string, v any) error
	Get(key string, v any) bool
}

// Line is one product-quantity pairing. Name, price, images, and category
// are denormalized copies taken at add time for display resilience; stock
// checks always re-resolve the live product by ID.
type Line struct {
	ProductID string   `json:"id"`
	Name      string   `json:"name"`
	Price     string   `json:"price"`
	Quantity  int      `json:"quantity"`
	Images    []string `json:"images"`
	Category  string   `json:"category"`
}

// Ledger holds cart lines and persists them after every successful
// mutation. Persistence failures are logged and otherwise ignored; the
// in-memory ledger stays authoritative for the session.
type Ledger struct {
	catalog Catalog
	kv      Persister
	lg      *zap.Logger

	mu    sync.Mutex
	lines []Line
}

// NewLedger restores any persisted cart for the session and returns a
// ledger backed by the given catalog and store.
func NewLedger(cat Catalog, kv Persister, lg *zap.Logger) *Ledger {
	l := &Ledger{catalog: cat, kv: kv, lg: lg}
	if kv.Get(localstore.KeyCart, &l.lines) {
		lg.Info("cart restored", zap.Int("lines", len(l.lines)))
	}
	return l
}

// Add puts qty more units of a product into the cart, merging with an
// existing line. It returns false without mutating when the product is
// unknown or the merged quantity would exceed current stock.
func (l *Ledger) Add(productID string, qty int) bool {
	if qty <= 0 {
		return false
	}
	p, ok := l.catalog.GetByID(productID)
	if !ok {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.find(productID); i >= 0 {
		if l.lines[i].Quantity+qty > p.Stock {
			return false
		}
		l.lines[i].Quantity += qty
	} else {
		if qty > p.Stock {
			return false
		}
		l.lines = append(l.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
			Images:    p.Images,
			Category:  p.Category,
		})
	}

	l.persist()
	return true
}

// UpdateQuantity sets a line's quantity exactly. A quantity of zero or less
// removes the line and always succeeds, regardless of prior state. A
// quantity above current stock fails without mutating, as does an unknown
// product or a product with no line in the cart.
func (l *Ledger) UpdateQuantity(productID string, qty int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if qty <= 0 {
		if i := l.find(productID); i >= 0 {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			l.persist()
		}
		return true
	}

	p, ok := l.catalog.GetByID(productID)
	if !ok {
		return false
	}
	i := l.find(productID)
	if i < 0 {
		return false
	}
	if qty > p.Stock {
		return false
	}

	l.lines[i].Quantity = qty
	l.persist()
	return true
}

// Remove deletes a product's line. It returns false when no line matches.
func (l *Ledger) Remove(productID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.find(productID)
	if i < 0 {
		return false
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	l.persist()
	return true
}

// Clear empties the ledger unconditionally.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.persist()
}

// ItemCount returns the sum of quantities across all lines.
func (l *Ledger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, line := range l.lines {
		total += line.Quantity
	}
	return total
}

// Total returns the sum of parsed unit price times quantity across all
// lines. Unparsable prices count as zero.
func (l *Ledger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	sum := decimal.Zero
	for _, line := range l.lines {
		price := money.Parse(line.Price)
		sum = sum.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}

// Lines returns a copy of the current cart lines in insertion order.
func (l *Ledger) Lines() []Line {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Quantity returns the quantity in the cart for a product, zero when absent.
func (l *Ledger) Quantity(productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.find(productID); i >= 0 {
		return l.lines[i].Quantity
	}
	return 0
}

// SnapshotOriginal persists the current lines under the original-cart key.
// The finalizer calls this after a commit so the share link keeps working
// against the uncleared cart.
func (l *Ledger) SnapshotOriginal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.kv.Put(localstore.KeyOriginalCart, l.lines); err != nil {
		l.lg.Warn("persist original cart", zap.Error(err))
	}
}

// find returns the index of the line for productID, or -1. Caller holds mu.
func (l *Ledger) find(productID string) int {
	for i, line := range l.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// persist writes the live cart and the original-cart snapshot. Caller holds
// mu. Failures are logged only.
func (l *Ledger) persist() {
	if err := l.kv.Put(localstore.KeyCart, l.lines); err != nil {
		l.lg.Warn("persist cart", zap.Error(err))
	}
	if err := l.kv.Put(localstore.KeyOriginalCart, l.lines); err != nil {
		l.lg.Warn("persist original cart", zap.Error(err))
	}
}
