package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/gueststore"
	"storefront/internal/identity"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	"storefront/internal/service/session"
)

type stubProductRepo struct {
	products []domain.Product
}

func (s *stubProductRepo) List(_ context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductRepo) GetByKey(_ context.Context, key string) (*domain.Product, error) {
	for i := range s.products {
		if s.products[i].Key == key {
			return &s.products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

type stubCategoryRepo struct{}

func (s *stubCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	return []domain.Category{}, nil
}

func (s *stubCategoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	return &c, nil
}

type stubOfferRepo struct {
	offers []domain.SpecialOffer
}

func (s *stubOfferRepo) List(_ context.Context) ([]domain.SpecialOffer, error) {
	return s.offers, nil
}

func (s *stubOfferRepo) ListByProduct(_ context.Context, productID string) ([]domain.SpecialOffer, error) {
	out := make([]domain.SpecialOffer, 0)
	for _, o := range s.offers {
		if o.ProductID == productID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOfferRepo) Upsert(_ context.Context, o domain.SpecialOffer) (*domain.SpecialOffer, error) {
	return &o, nil
}

// stubCartRepo backs both the remote cart API surface and the cart engine.
type stubCartRepo struct {
	mu    sync.Mutex
	carts map[string][]domain.LineItem
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[string][]domain.LineItem)}
}

func (s *stubCartRepo) Get(_ context.Context, userID string) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[userID]
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *stubCartRepo) Put(_ context.Context, userID string, items []domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]domain.LineItem, len(items))
	copy(cp, items)
	s.carts[userID] = cp
	return nil
}

func (s *stubCartRepo) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

type stubWholesaleRepo struct {
	mu       sync.Mutex
	requests []domain.WholesaleRequest
}

func (s *stubWholesaleRepo) Create(_ context.Context, req domain.WholesaleRequest) (*domain.WholesaleRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = "wr-1"
	req.CreatedAt = time.Now()
	s.requests = append(s.requests, req)
	return &req, nil
}

func (s *stubWholesaleRepo) List(_ context.Context) ([]domain.WholesaleRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests, nil
}

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	router   *gin.Engine
	carts    *stubCartRepo
	sessions *session.Manager
	verifier *identity.Verifier
	manager  *cart.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := &stubProductRepo{products: []domain.Product{
		{
			ID:        "p1",
			Key:       "widget",
			Name:      "Widget",
			BasePrice: dec("100"),
			Currency:  "EUR",
			Tiers: []domain.PriceTier{
				{MinQuantity: 10, DiscountPercent: dec("10")},
			},
			Variants: []domain.Variant{
				{SKU: "SKU-A", PriceAdjustment: dec("5")},
			},
		},
	}}
	offers := &stubOfferRepo{offers: []domain.SpecialOffer{
		{ID: "o1", ProductID: "p1", IsActive: true, IsFeatured: true},
	}}

	carts := newStubCartRepo()
	guest := gueststore.NewMemory()
	feed := events.NewMemory()
	verifier := identity.NewVerifier("test-secret")
	sessions := session.NewManager(time.Hour)
	manager := cart.NewManager(carts, guest, feed, logDiscard())
	t.Cleanup(manager.Close)

	shipping := []domain.ShippingMethod{
		{Key: "standard", Name: "Standard", Cost: dec("10")},
	}

	router, err := buildRouter(logDiscard(), nil, Deps{
		Catalog:     catalog.New(products, &stubCategoryRepo{}, offers, logDiscard()),
		Checkout:    checkout.New(products, shipping, dec("0.20")),
		Carts:       manager,
		RemoteCarts: carts,
		Wholesale:   &stubWholesaleRepo{},
		Feed:        feed,
		Sessions:    sessions,
		Verifier:    verifier,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	return &fixture{
		router:   router,
		carts:    carts,
		sessions: sessions,
		verifier: verifier,
		manager:  manager,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) startSession(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions", "", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start session: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp.SessionID
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/products", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"key":"widget"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestGetProductNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/products/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestFeaturedOffers(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/offers/featured", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"o1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCartRequiresSessionHeader(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/cart", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/cart", "", map[string]string{sessionHeader: "bogus"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown session, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAddCartItemPricesFromCatalog(t *testing.T) {
	f := newFixture(t)
	sid := f.startSession(t)
	hdr := map[string]string{sessionHeader: sid}

	rec := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":10}`, hdr)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Quantity != 10 {
		t.Fatalf("unexpected cart: %+v", resp)
	}
	// The 10-unit tier gives 10% off the base price of 100.
	if !resp.Items[0].UnitPrice.Equal(dec("90")) {
		t.Fatalf("expected tiered unit price 90, got %s", resp.Items[0].UnitPrice)
	}
	if !resp.Subtotal.Equal(dec("900")) {
		t.Fatalf("expected subtotal 900, got %s", resp.Subtotal)
	}
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	f := newFixture(t)
	sid := f.startSession(t)

	rec := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"nope","quantity":1}`, map[string]string{sessionHeader: sid})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUpdateCartItemToZeroRemoves(t *testing.T) {
	f := newFixture(t)
	sid := f.startSession(t)
	hdr := map[string]string{sessionHeader: sid}

	f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":2}`, hdr)
	rec := f.do(t, http.MethodPatch, "/api/cart/items", `{"productId":"p1","quantity":0}`, hdr)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", resp.Items)
	}
}

func TestUpdateCartItemCrossesTierBoundary(t *testing.T) {
	f := newFixture(t)
	sid := f.startSession(t)
	hdr := map[string]string{sessionHeader: sid}

	f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":2}`, hdr)
	rec := f.do(t, http.MethodPatch, "/api/cart/items", `{"productId":"p1","quantity":12}`, hdr)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Quantity != 12 {
		t.Fatalf("unexpected cart: %+v", resp.Items)
	}
	if !resp.Items[0].UnitPrice.Equal(dec("90")) {
		t.Fatalf("expected repriced unit 90, got %s", resp.Items[0].UnitPrice)
	}
}

func TestLoginMigratesGuestCart(t *testing.T) {
	f := newFixture(t)
	sid := f.startSession(t)
	hdr := map[string]string{sessionHeader: sid}

	f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":2}`, hdr)

	token, err := f.verifier.Issue("user-1", nil)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	hdr["Authorization"] = "Bearer " + token

	rec := f.do(t, http.MethodPost, "/api/cart/login", "", hdr)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if resp.UserID != "user-1" {
		t.Fatalf("expected authenticated cart, got %+v", resp)
	}
	if len(resp.Items) != 1 || resp.Items[0].Quantity != 2 {
		t.Fatalf("expected migrated line, got %+v", resp.Items)
	}

	saved, err := f.carts.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get remote cart: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected migrated remote cart, got %+v", saved)
	}
}

func TestLoginRequiresToken(t *testing.T) {
	f := newFixture(t)
	sid := f.startSession(t)

	rec := f.do(t, http.MethodPost, "/api/cart/login", "", map[string]string{sessionHeader: sid})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLogoutResetsCart(t *testing.T) {
	f := newFixture(t)
	sid := f.startSession(t)
	hdr := map[string]string{sessionHeader: sid}

	token, err := f.verifier.Issue("user-1", nil)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	hdr["Authorization"] = "Bearer " + token
	f.do(t, http.MethodPost, "/api/cart/login", "", hdr)
	f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":3}`, hdr)

	rec := f.do(t, http.MethodPost, "/api/cart/logout", "", hdr)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if resp.UserID != "" || len(resp.Items) != 0 {
		t.Fatalf("expected empty guest cart, got %+v", resp)
	}
}

func TestRemoteCartRequiresAuth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/me/cart", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPutRemoteCart(t *testing.T) {
	f := newFixture(t)
	token, err := f.verifier.Issue("user-9", nil)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	hdr := map[string]string{"Authorization": "Bearer " + token}

	body := `{"items":[{"productId":"p1","quantity":4,"unitPrice":"100"}]}`
	rec := f.do(t, http.MethodPut, "/api/me/cart", body, hdr)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	saved, err := f.carts.Get(context.Background(), "user-9")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(saved) != 1 || saved[0].Quantity != 4 {
		t.Fatalf("unexpected saved cart: %+v", saved)
	}

	rec = f.do(t, http.MethodDelete, "/api/me/cart", "", hdr)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestQuoteOrder(t *testing.T) {
	f := newFixture(t)
	body := `{"items":[{"productId":"p1","quantity":1}],"shippingMethod":"standard"}`
	rec := f.do(t, http.MethodPost, "/api/checkout/quote", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Subtotal  decimal.Decimal `json:"subtotal"`
		VATAmount decimal.Decimal `json:"vatAmount"`
		Total     decimal.Decimal `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if !resp.Subtotal.Equal(dec("100")) || !resp.VATAmount.Equal(dec("22")) || !resp.Total.Equal(dec("132")) {
		t.Fatalf("unexpected totals: %+v", resp)
	}
}

func TestQuoteOrderUnknownShipping(t *testing.T) {
	f := newFixture(t)
	body := `{"items":[{"productId":"p1","quantity":1}],"shippingMethod":"teleport"}`
	rec := f.do(t, http.MethodPost, "/api/checkout/quote", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateWholesaleRequest(t *testing.T) {
	f := newFixture(t)
	body := `{"companyName":"Acme","contactName":"Jo","email":"jo@acme.example"}`
	rec := f.do(t, http.MethodPost, "/api/wholesale-requests", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/wholesale-requests", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"companyName":"Acme"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateWholesaleRequestValidation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/wholesale-requests", `{"companyName":"Acme"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}
