package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/aym0707/storefront/internal/localstore"
)

// ErrSourceUnavailable is returned by Load when the upstream fetch failed and
// no usable local snapshot exists.
var ErrSourceUnavailable = errors.New("product source unavailable")

// Source fetches raw records from the upstream spreadsheet API.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// Snapshots is the slice of the local store the catalog needs.
type Snapshots interface {
	Put(key string, v any) error
	Get(key string, v any) bool
}

// StockRequest asks DecrementAll to take qty units of one product.
type StockRequest struct {
	ID  string
	Qty int
}

// Store holds the session catalog. Products are loaded once and only their
// stock mutates afterwards. All methods are safe for concurrent use; the
// HTTP surface is concurrent even though the logical session has a single
// writer.
type Store struct {
	source Source
	snaps  Snapshots
	lg     *zap.Logger

	mu       sync.RWMutex
	products []Product
	index    map[string]int
	loaded   bool
	loadedAt time.Time
}

// NewStore returns an empty Store; call Load to populate it.
func NewStore(source Source, snaps Snapshots, lg *zap.Logger) *Store {
	return &Store{
		source: source,
		snaps:  snaps,
		lg:     lg,
		index:  make(map[string]int),
	}
}

// Load fetches and ingests the catalog. On fetch failure it falls back to
// the last persisted snapshot; with no snapshot either, it reports
// ErrSourceUnavailable. A successful fetch persists a fresh snapshot
// (best-effort, failures are logged only).
func (s *Store) Load(ctx context.Context) error {
	records, err := s.source.Fetch(ctx)
	if err != nil {
		var cached []Product
		if s.snaps.Get(localstore.KeyProducts, &cached) && len(cached) > 0 {
			s.lg.Warn("catalog fetch failed, serving cached snapshot",
				zap.Error(err), zap.Int("products", len(cached)))
			s.replace(cached)
			return nil
		}
		return errors.Wrapf(ErrSourceUnavailable, "fetch: %s", err)
	}

	products := make([]Product, 0, len(records))
	for _, rec := range records {
		if p, ok := MapRecord(rec); ok {
			products = append(products, p)
		}
	}
	s.replace(products)

	if err := s.snaps.Put(localstore.KeyProducts, products); err != nil {
		s.lg.Warn("persist catalog snapshot", zap.Error(err))
	}
	s.lg.Info("catalog loaded", zap.Int("products", len(products)))
	return nil
}

func (s *Store) replace(products []Product) {
	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	s.mu.Lock()
	s.products = products
	s.index = index
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// Loaded reports whether the store holds a catalog (fetched or restored).
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LastUpdated returns when the catalog was last replaced. Zero before the
// first Load.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// List returns a copy of the full catalog in ingestion order.
func (s *Store) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of products in the catalog.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// GetByID looks up a product. The second return is false when absent.
func (s *Store) GetByID(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Categories returns the distinct categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// DecrementAll atomically takes stock for every request, or none. It returns
// the IDs of requests that cannot be satisfied (unknown product or
// insufficient stock); a nil return means every decrement was applied and
// the snapshot persisted. Validation and mutation happen under one lock so
// checkout commits are all-or-nothing.
func (s *Store) DecrementAll(reqs []StockRequest) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var failed []string
	for _, r := range reqs {
		i, ok := s.index[r.ID]
		if !ok || s.products[i].Stock < r.Qty {
			failed = append(failed, r.ID)
		}
	}
	if len(failed) > 0 {
		return failed
	}

	for _, r := range reqs {
		s.products[s.index[r.ID]].Stock -= r.Qty
	}

	if err := s.snaps.Put(localstore.KeyProducts, s.products); err != nil {
		s.lg.Warn("persist catalog snapshot", zap.Error(err))
	}
	return nil
}
