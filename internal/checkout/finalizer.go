// Package checkout finalizes a cart into an order: exhaustive stock
// validation, an all-or-nothing stock commit, and an immutable order record
// for sharing and printing.
package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aym0707/storefront/internal/cart"
	"github.com/aym0707/storefront/internal/catalog"
	"github.com/aym0707/storefront/internal/money"
)

// State tracks the finalizer's position in its
// Idle -> Validating -> {Committed, Rejected} machine.
type State int

const (
	Idle State = iota
	Validating
	Committed
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Committed:
		return "committed"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrEmptyCart is returned when finalize is called with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// InsufficientStockError reports every cart line whose quantity exceeds live
// stock, not just the first. Fully recoverable: the caller may adjust the
// cart and retry.
type InsufficientStockError struct {
	Products []string
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for: " + strings.Join(e.Products, ", ")
}

// CustomerInfo is the free-text customer triple captured at checkout as one
// atomic value; a cancelled dialog simply never reaches the finalizer.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LineItem is one immutable order line: a snapshot taken at commit time.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// OrderRecord is the terminal artifact of a committed checkout. It is held
// in memory only until the next checkout overwrites it.
type OrderRecord struct {
	ID        string          `json:"id"`
	Serial    string          `json:"serial"`
	Customer  CustomerInfo    `json:"customer"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Stock is the catalog surface the finalizer needs.
type Stock interface {
	DecrementAll(reqs []catalog.StockRequest) []string
}

// Finalizer validates the cart ledger against live stock and commits orders.
type Finalizer struct {
	stock  Stock
	ledger *cart.Ledger
	lg     *zap.Logger

	mu    sync.Mutex
	state State
	last  *OrderRecord
}

// NewFinalizer returns an idle finalizer over the given catalog and ledger.
func NewFinalizer(stock Stock, ledger *cart.Ledger, lg *zap.Logger) *Finalizer {
	return &Finalizer{stock: stock, ledger: ledger, lg: lg}
}

// Finalize validates every cart line against live stock and, when all pass,
// decrements stock atomically and produces the order record. On rejection
// the ledger and stock are untouched and the error names every offending
// product. The cart is intentionally NOT cleared on commit: the decremented
// stock already makes the same quantities unavailable, and the uncleared
// cart keeps repeat sharing working.
func (f *Finalizer) Finalize(_ context.Context, info CustomerInfo) (*OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := f.ledger.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	f.state = Validating

	reqs := make([]catalog.StockRequest, len(lines))
	for i, line := range lines {
		reqs[i] = catalog.StockRequest{ID: line.ProductID, Qty: line.Quantity}
	}

	if failed := f.stock.DecrementAll(reqs); len(failed) > 0 {
		f.state = Rejected
		names := make([]string, len(failed))
		for i, id := range failed {
			names[i] = f.lineName(lines, id)
		}
		f.lg.Info("checkout rejected", zap.Strings("products", names))
		return nil, &InsufficientStockError{Products: names}
	}

	order := &OrderRecord{
		ID:        uuid.New().String(),
		Serial:    newSerial(time.Now()),
		Customer:  info,
		Items:     make([]LineItem, len(lines)),
		CreatedAt: time.Now(),
	}

	total := decimal.Zero
	for i, line := range lines {
		price := money.Parse(line.Price)
		lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		order.Items[i] = LineItem{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: price,
			LineTotal: lineTotal,
		}
		total = total.Add(lineTotal)
	}
	order.Total = total

	f.ledger.SnapshotOriginal()
	f.state = Committed
	f.last = order

	f.lg.Info("checkout committed",
		zap.String("serial", order.Serial),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Total.String()),
	)
	return order, nil
}

// State returns the outcome of the most recent finalize call, or Idle.
func (f *Finalizer) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastOrder returns the most recent committed order, or nil before any
// commit.
func (f *Finalizer) LastOrder() *OrderRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// lineName resolves a product ID back to its cart-line display name,
// falling back to the ID itself.
func (f *Finalizer) lineName(lines []cart.Line, id string) string {
	for _, line := range lines {
		if line.ProductID == id {
			return line.Name
		}
	}
	return id
}

// newSerial builds the human-readable order serial AYM-MM-RRRR-DD: month and
// day from now, plus a zero-padded 4-digit random value.
func newSerial(now time.Time) string {
	return fmt.Sprintf("AYM-%02d-%04d-%02d", int(now.Month()), rand.IntN(10000), now.Day())
}
