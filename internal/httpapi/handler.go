// Package httpapi exposes the storefront over HTTP with the same JSON
// envelope the products proxy serves.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/aym0707/storefront/internal/bill"
	"github.com/aym0707/storefront/internal/cart"
	"github.com/aym0707/storefront/internal/catalog"
	"github.com/aym0707/storefront/internal/checkout"
	"github.com/aym0707/storefront/internal/money"
	"github.com/aym0707/storefront/internal/search"
	"github.com/aym0707/storefront/internal/share"
)

// Handler serves the storefront API.
type Handler struct {
	catalog   *catalog.Store
	cart      *cart.Ledger
	search    *search.Index
	finalizer *checkout.Finalizer
	share     *share.Builder

	refreshTimeout time.Duration
}

// Config holds non-dependency handler settings.
type Config struct {
	// RefreshTimeout bounds a catalog reload triggered over HTTP.
	RefreshTimeout time.Duration
}

func NewHandler(
	cfg Config,
	cat *catalog.Store,
	ledger *cart.Ledger,
	idx *search.Index,
	fin *checkout.Finalizer,
	sh *share.Builder,
) *Handler {
	timeout := cfg.RefreshTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		catalog:        cat,
		cart:           ledger,
		search:         idx,
		finalizer:      fin,
		share:          sh,
		refreshTimeout: timeout,
	}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/products/refresh", h.refreshProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("GET /api/search", h.searchProducts)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("POST /api/checkout", h.checkout)
	mux.HandleFunc("GET /api/order/share-link", h.shareLink)
	mux.HandleFunc("GET /api/order/bill", h.orderBill)

	mux.HandleFunc("GET /livez", h.livez)
	mux.HandleFunc("GET /readyz", h.readyz)

	return mux
}

type productsResponse struct {
	Success     bool              `json:"success"`
	Products    []catalog.Product `json:"products"`
	Count       int               `json:"count"`
	LastUpdated string            `json:"lastUpdated"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Loaded() {
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded")
		return
	}
	products := h.catalog.List()
	writeJSON(w, http.StatusOK, productsResponse{
		Success:     true,
		Products:    products,
		Count:       len(products),
		LastUpdated: h.catalog.LastUpdated().Format(time.RFC3339),
	})
}

func (h *Handler) refreshProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.refreshTimeout)
	defer cancel()

	if err := h.catalog.Load(ctx); err != nil {
		zctx.From(r.Context()).Error("catalog refresh", zap.Error(err))
		writeError(w, http.StatusBadGateway, "product source unavailable")
		return
	}
	products := h.catalog.List()
	writeJSON(w, http.StatusOK, productsResponse{
		Success:     true,
		Products:    products,
		Count:       len(products),
		LastUpdated: h.catalog.LastUpdated().Format(time.RFC3339),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.catalog.GetByID(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"product": p,
	})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories := append([]string{"همه"}, h.catalog.Categories()...)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": categories,
	})
}

type searchResponse struct {
	Success    bool              `json:"success"`
	Products   []catalog.Product `json:"products"`
	Count      int               `json:"count"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	Query      string            `json:"query"`
	Category   string            `json:"category"`
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = search.CategoryAll
	}

	h.search.Search(q.Get("q"), category)
	if pageStr := q.Get("page"); pageStr != "" {
		page, err := parsePage(pageStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		h.search.SetPage(page)
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success:    true,
		Products:   h.search.Page(),
		Count:      h.search.ResultCount(),
		Page:       h.search.CurrentPage(),
		TotalPages: h.search.TotalPages(),
		Query:      h.search.Query(),
		Category:   h.search.Category(),
	})
}

type cartResponse struct {
	Success bool        `json:"success"`
	Items   []cart.Line `json:"items"`
	Count   int         `json:"count"`
	Total   string      `json:"total"`
}

func (h *Handler) cartState() cartResponse {
	return cartResponse{
		Success: true,
		Items:   h.cart.Lines(),
		Count:   h.cart.ItemCount(),
		Total:   money.Format(h.cart.Total()),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartState())
}

type cartItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	p, ok := h.catalog.GetByID(req.ID)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if !h.cart.Add(req.ID, req.Quantity) {
		writeError(w, http.StatusConflict, "insufficient stock for "+p.Name)
		return
	}
	writeJSON(w, http.StatusOK, h.cartState())
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var name string
	if req.Quantity > 0 {
		p, ok := h.catalog.GetByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		if h.cart.Quantity(id) == 0 {
			writeError(w, http.StatusNotFound, "product not in cart")
			return
		}
		name = p.Name
	}
	if !h.cart.UpdateQuantity(id, req.Quantity) {
		writeError(w, http.StatusConflict, "insufficient stock for "+name)
		return
	}
	writeJSON(w, http.StatusOK, h.cartState())
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	if !h.cart.Remove(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "product not in cart")
		return
	}
	writeJSON(w, http.StatusOK, h.cartState())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	writeJSON(w, http.StatusOK, h.cartState())
}

type orderResponse struct {
	Success bool                  `json:"success"`
	Order   *checkout.OrderRecord `json:"order"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	// Customer fields are free text; empty values fall back to generic
	// labels in the share message and bill.
	var info checkout.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.finalizer.Finalize(r.Context(), info)
	if err != nil {
		var stockErr *checkout.InsufficientStockError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "cart is empty")
		case errors.As(err, &stockErr):
			writeJSON(w, http.StatusConflict, map[string]any{
				"success":  false,
				"error":    "insufficient stock",
				"products": stockErr.Products,
			})
		default:
			zctx.From(r.Context()).Error("checkout", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "checkout failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Success: true, Order: order})
}

func (h *Handler) shareLink(w http.ResponseWriter, r *http.Request) {
	order := h.finalizer.LastOrder()
	if order == nil {
		writeError(w, http.StatusNotFound, "no finalized order")
		return
	}
	link, err := h.share.Link(order)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"link":    link,
	})
}

func (h *Handler) orderBill(w http.ResponseWriter, r *http.Request) {
	order := h.finalizer.LastOrder()
	if order == nil {
		writeError(w, http.StatusNotFound, "no finalized order")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bill.Render(w, order); err != nil {
		zctx.From(r.Context()).Error("render bill", zap.Error(err))
	}
}

func (h *Handler) livez(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Loaded() {
		http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

func parsePage(s string) (int, error) {
	page, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(err, "parse page")
	}
	if page < 1 {
		return 0, errors.New("page must be positive")
	}
	return page, nil
}
