package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aym0707/storefront/internal/cart"
	"github.com/aym0707/storefront/internal/catalog"
	"github.com/aym0707/storefront/internal/checkout"
	"github.com/aym0707/storefront/internal/localstore"
	"github.com/aym0707/storefront/internal/search"
	"github.com/aym0707/storefront/internal/share"
)

type stubSource struct {
	records []catalog.Record
	err     error
}

func (s *stubSource) Fetch(context.Context) ([]catalog.Record, error) {
	return s.records, s.err
}

func record(id, name, price string, stock, category string) catalog.Record {
	return catalog.Record{
		ID: id,
		Fields: []catalog.Field{
			{Name: "نام", Value: catalog.Value{Text: name}},
			{Name: "قیمت", Value: catalog.Value{Text: price}},
			{Name: "موجودی", Value: catalog.Value{Text: stock}},
			{Name: "دسته‌بندی", Value: catalog.Value{Text: category}},
		},
	}
}

type fixture struct {
	source  *stubSource
	catalog *catalog.Store
	cart    *cart.Ledger
	mux     *http.ServeMux
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	lg := zap.NewNop()

	kv, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	source := &stubSource{records: []catalog.Record{
		record("p1", "کتاب ریاضی", "1,400 افغانی", "10", "کتاب"),
		record("p2", "قلم", "50 افغانی", "3", "لوازم تحریر"),
	}}

	store := catalog.NewStore(source, kv, lg)
	ledger := cart.NewLedger(store, kv, lg)
	idx := search.NewIndex(store)
	fin := checkout.NewFinalizer(store, ledger, lg)
	sh := share.NewBuilder("93789281770")

	h := NewHandler(Config{}, store, ledger, idx, fin, sh)
	return fixture{
		source:  source,
		catalog: store,
		cart:    ledger,
		mux:     h.Routes(),
	}
}

func (f fixture) load(t *testing.T) {
	t.Helper()
	require.NoError(t, f.catalog.Load(context.Background()))
}

func (f fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestListProducts_NotLoaded(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/products", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "catalog not loaded", body["error"])
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodGet, "/api/products", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
	assert.NotEmpty(t, body["lastUpdated"])
	assert.Len(t, body["products"], 2)
}

func TestRefreshProducts(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.source.records = append(f.source.records,
		record("p3", "کتابچه", "200 افغانی", "5", "کتاب"))

	w := f.do(t, http.MethodPost, "/api/products/refresh", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["count"])
}

func TestRefreshProducts_SourceDown(t *testing.T) {
	f := newFixture(t)
	f.source.err = errors.New("connection refused")

	w := f.do(t, http.MethodPost, "/api/products/refresh", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodGet, "/api/products/p1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	product := body["product"].(map[string]any)
	assert.Equal(t, "کتاب ریاضی", product["name"])

	w = f.do(t, http.MethodGet, "/api/products/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodGet, "/api/categories", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{"همه", "کتاب", "لوازم تحریر"}, body["categories"])
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodGet, "/api/search?q=قلم", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(1), body["page"])

	w = f.do(t, http.MethodGet, "/api/search?category=کتاب", "")
	body = decode(t, w)
	assert.Equal(t, float64(1), body["count"])

	w = f.do(t, http.MethodGet, "/api/search?page=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/search?page=9", "")
	body = decode(t, w)
	assert.Equal(t, float64(9), body["page"])
	assert.Empty(t, body["products"])
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodPost, "/api/cart/items", `{"id": "p1", "quantity": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "2,800 افغانی", body["total"])

	// Default quantity is one.
	w = f.do(t, http.MethodPost, "/api/cart/items", `{"id": "p2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["count"])

	w = f.do(t, http.MethodPut, "/api/cart/items/p1", `{"quantity": 1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = f.do(t, http.MethodDelete, "/api/cart/items/p2", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

func TestAddCartItem_Errors(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodPost, "/api/cart/items", `{"id": "nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/cart/items", `{"id": "p2", "quantity": 99}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/cart/items", `{"id": "p1", "quantity": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/cart/items", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCartItem_Errors(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodPut, "/api/cart/items/nope", `{"quantity": 1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPut, "/api/cart/items/p1", `{"quantity": 1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK,
		f.do(t, http.MethodPost, "/api/cart/items", `{"id": "p2", "quantity": 1}`).Code)
	w = f.do(t, http.MethodPut, "/api/cart/items/p2", `{"quantity": 99}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Zero removes the line even when the product is unknown.
	w = f.do(t, http.MethodPut, "/api/cart/items/nope", `{"quantity": 0}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRemoveCartItem_NotInCart(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodDelete, "/api/cart/items/p1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodPost, "/api/checkout", `{"name": "احمد"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK,
		f.do(t, http.MethodPost, "/api/cart/items", `{"id": "p1", "quantity": 2}`).Code)

	w = f.do(t, http.MethodPost, "/api/checkout",
		`{"name": "احمد", "phone": "0789123456", "address": "کابل"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	order := body["order"].(map[string]any)
	assert.Regexp(t, `^AYM-\d{2}-\d{4}-\d{2}$`, order["serial"])

	// Stock was taken but the cart stays for sharing.
	p1, _ := f.catalog.GetByID("p1")
	assert.Equal(t, 8, p1.Stock)
	assert.Equal(t, 2, f.cart.ItemCount())
}

// Customer fields are free text; an empty triple still commits, and the
// share message applies the generic fallback labels.
func TestCheckout_EmptyCustomerFields(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	require.Equal(t, http.StatusOK,
		f.do(t, http.MethodPost, "/api/cart/items", `{"id": "p1", "quantity": 1}`).Code)

	w := f.do(t, http.MethodPost, "/api/checkout", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	order := decode(t, w)["order"].(map[string]any)
	customer := order["customer"].(map[string]any)
	assert.Equal(t, "", customer["name"])

	w = f.do(t, http.MethodGet, "/api/order/share-link", "")
	require.Equal(t, http.StatusOK, w.Code)
	link := decode(t, w)["link"].(string)
	assert.Contains(t, link, url.QueryEscape("بدون شماره"))
	assert.Contains(t, link, url.QueryEscape("بدون آدرس"))
}

func TestCheckout_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	require.True(t, f.cart.Add("p1", 2))
	require.True(t, f.cart.Add("p2", 3))
	// Drain p2 behind the cart's back.
	require.Nil(t, f.catalog.DecrementAll([]catalog.StockRequest{{ID: "p2", Qty: 3}}))

	w := f.do(t, http.MethodPost, "/api/checkout", `{"name": "احمد"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, []any{"قلم"}, body["products"])
}

func TestShareLinkAndBill(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	w := f.do(t, http.MethodGet, "/api/order/share-link", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/order/bill", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.True(t, f.cart.Add("p1", 1))
	require.Equal(t, http.StatusOK,
		f.do(t, http.MethodPost, "/api/checkout", `{"name": "احمد"}`).Code)

	w = f.do(t, http.MethodGet, "/api/order/share-link", "")
	require.Equal(t, http.StatusOK, w.Code)
	link := decode(t, w)["link"].(string)
	assert.Contains(t, link, "https://wa.me/93789281770?text=")

	w = f.do(t, http.MethodGet, "/api/order/bill", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "بل خرید")
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/livez", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/readyz", "").Code)

	f.load(t)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz", "").Code)
}
