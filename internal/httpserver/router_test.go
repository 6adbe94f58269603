package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"tshirtshop/internal/domain"
	orderrepo "tshirtshop/internal/repository/order"
	productrepo "tshirtshop/internal/repository/product"
	cartsvc "tshirtshop/internal/service/cart"
	checkoutsvc "tshirtshop/internal/service/checkout"
	ordersvc "tshirtshop/internal/service/order"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type memProductRepo struct {
	products map[string]*domain.Product
}

func (r *memProductRepo) List(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *memProductRepo) Create(_ context.Context, in productrepo.CreateProductInput) (*domain.Product, error) {
	p := &domain.Product{ID: uuid.NewString(), Name: in.Name, Description: in.Description, PriceCents: in.PriceCents}
	r.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) Update(_ context.Context, id string, in productrepo.UpdateProductInput) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.PriceCents != nil {
		p.PriceCents = *in.PriceCents
	}
	return p, nil
}

type memCartRepo struct {
	products map[string]*domain.Product
	carts    map[string]*memCart
}

type memCart struct {
	id     string
	userID *string
	lines  map[string]int
	order  []string
}

func (r *memCartRepo) Create(_ context.Context, userID *string) (*domain.Cart, error) {
	c := &memCart{id: uuid.NewString(), userID: userID, lines: map[string]int{}}
	r.carts[c.id] = c
	return r.enrich(c), nil
}

func (r *memCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return r.enrich(c), nil
}

func (r *memCartRepo) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	for _, c := range r.carts {
		if c.userID != nil && *c.userID == userID {
			return r.enrich(c), nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (r *memCartRepo) UpsertLine(_ context.Context, cartID, productID string, delta int) error {
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if _, exists := c.lines[productID]; !exists {
		c.order = append(c.order, productID)
	}
	c.lines[productID] += delta
	return nil
}

func (r *memCartRepo) SetLineQuantity(_ context.Context, cartID, productID string, quantity int) error {
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if _, exists := c.lines[productID]; !exists {
		return domain.ErrItemNotFound
	}
	c.lines[productID] = quantity
	return nil
}

func (r *memCartRepo) DeleteLine(_ context.Context, cartID, productID string) error {
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if _, exists := c.lines[productID]; !exists {
		return domain.ErrItemNotFound
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memCartRepo) AdoptGuest(_ context.Context, cartID, userID string) error {
	c, ok := r.carts[cartID]
	if !ok || c.userID != nil {
		return domain.ErrCartNotFound
	}
	c.userID = &userID
	return nil
}

func (r *memCartRepo) MergeInto(_ context.Context, userCartID, guestCartID string) error {
	guest, ok := r.carts[guestCartID]
	if !ok || guest.userID != nil {
		return domain.ErrCartNotFound
	}
	user, ok := r.carts[userCartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	for _, productID := range guest.order {
		if _, exists := user.lines[productID]; !exists {
			user.order = append(user.order, productID)
		}
		user.lines[productID] += guest.lines[productID]
	}
	delete(r.carts, guestCartID)
	return nil
}

func (r *memCartRepo) Clear(_ context.Context, cartID string) error {
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	c.lines = map[string]int{}
	c.order = nil
	return nil
}

func (r *memCartRepo) enrich(c *memCart) *domain.Cart {
	cart := &domain.Cart{ID: c.id, UserID: c.userID, Lines: []domain.CartLine{}}
	for _, productID := range c.order {
		p := r.products[productID]
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:          c.id + "/" + productID,
			CartID:      c.id,
			ProductID:   productID,
			Quantity:    c.lines[productID],
			ProductName: p.Name,
			PriceCents:  p.PriceCents,
		})
	}
	return cart
}

type memOrderRepo struct {
	orders map[string]*domain.Order
}

func (r *memOrderRepo) Create(_ context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error) {
	ord := &domain.Order{
		ID:            in.ID,
		UserID:        in.UserID,
		Status:        domain.StatusPending,
		Shipping:      in.Shipping,
		SubtotalCents: in.SubtotalCents,
		ShippingCents: in.ShippingCents,
		TotalCents:    in.TotalCents,
	}
	for _, l := range in.Lines {
		ord.Lines = append(ord.Lines, domain.OrderLine{
			ID:                 l.ID,
			OrderID:            in.ID,
			ProductID:          l.ProductID,
			Quantity:           l.Quantity,
			PriceCentsAtOrder:  l.PriceCentsAtOrder,
			ProductNameAtOrder: l.ProductNameAtOrder,
		})
	}
	r.orders[ord.ID] = ord
	return ord, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	ord, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return ord, nil
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatusLocked(_ context.Context, orderID string, decide orderrepo.TransitionFunc) (*domain.Order, error) {
	ord, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	next, ref, err := decide(ord.Status)
	if err != nil {
		return nil, err
	}
	ord.Status = next
	if ref != nil {
		ord.PaymentRef = ref
	}
	return ord, nil
}

type fakeSession struct {
	orderID     string
	amountCents int64
	paid        bool
}

// fakeGateway stands in for the hosted checkout provider.
type fakeGateway struct {
	configured bool
	sessions   map[string]*fakeSession

	webhookOrderID   string
	webhookSessionID string
	webhookErr       error
}

func (g *fakeGateway) Configured() bool {
	return g.configured
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, orderID string, totalCents int64, _ string) (string, error) {
	id := "sess_" + orderID
	g.sessions[id] = &fakeSession{orderID: orderID, amountCents: totalCents, paid: true}
	return "https://pay.example/" + id, nil
}

func (g *fakeGateway) VerifySession(_ context.Context, sessionID, expectedOrderID string, expectedTotalCents int64) (string, error) {
	sess, ok := g.sessions[sessionID]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	if !sess.paid {
		return "", domain.ErrPaymentNotComplete
	}
	if expectedOrderID != "" && sess.orderID != expectedOrderID {
		return "", domain.ErrInvalidSession
	}
	if expectedTotalCents >= 0 && sess.amountCents != expectedTotalCents {
		return "", &domain.AmountMismatchError{ExpectedCents: expectedTotalCents, GotCents: sess.amountCents}
	}
	return sess.orderID, nil
}

func (g *fakeGateway) HandleWebhookEvent(_ []byte, _ string) (string, string, error) {
	return g.webhookOrderID, g.webhookSessionID, g.webhookErr
}

type testEnv struct {
	router   *gin.Engine
	products *memProductRepo
	carts    *memCartRepo
	orders   *memOrderRepo
	gateway  *fakeGateway
	cartSvc  *cartsvc.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := &memProductRepo{products: map[string]*domain.Product{
		"prod-a": {ID: "prod-a", Name: "Classic Crew Tee", PriceCents: 1999},
		"prod-b": {ID: "prod-b", Name: "Vintage Logo Tee", PriceCents: 2499},
	}}
	carts := &memCartRepo{products: products.products, carts: map[string]*memCart{}}
	orders := &memOrderRepo{orders: map[string]*domain.Order{}}
	gateway := &fakeGateway{configured: true, sessions: map[string]*fakeSession{}}

	cartSvc := cartsvc.New(carts, products)
	checkoutSvc := checkoutsvc.New(orders, cartSvc, false)
	orderSvc := ordersvc.New(orders)

	logger := log.New(io.Discard, "", 0)
	router := buildRouter(logger, nil, Deps{
		CartSvc:     cartSvc,
		CheckoutSvc: checkoutSvc,
		OrderSvc:    orderSvc,
		ProductRepo: products,
		Payments:    gateway,
	}, "http://localhost:3000")

	return &testEnv{router: router, products: products, carts: carts, orders: orders, gateway: gateway, cartSvc: cartSvc}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

// seedCart creates a guest cart with the given product quantities and returns
// its id.
func (e *testEnv) seedCart(t *testing.T, quantities map[string]int) string {
	t.Helper()
	cart, err := e.cartSvc.GetOrCreate(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	for productID, qty := range quantities {
		if _, err := e.cartSvc.AddItem(context.Background(), cart.ID, productID, qty); err != nil {
			t.Fatalf("seed cart item %s: %v", productID, err)
		}
	}
	return cart.ID
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	buf, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func validAddressJSON() map[string]interface{} {
	return map[string]interface{}{
		"shippingAddress": map[string]interface{}{
			"fullName":        "Jamie Doe",
			"line1":           "1 Main St",
			"city":            "Springfield",
			"stateOrProvince": "IL",
			"postalCode":      "62701",
			"country":         "US",
		},
	}
}

func TestGetCartCreatesGuestCart(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !resp.Success || resp.CartID == "" {
		t.Fatalf("expected success with cartId, got %+v", resp)
	}
	if got := rec.Header().Get(headerCartID); got != resp.CartID {
		t.Errorf("%s header = %q, want %q", headerCartID, got, resp.CartID)
	}
}

func TestGetCartReturnsExistingCart(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.seedCart(t, map[string]int{"prod-a": 2})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/cart", nil, map[string]string{headerCartID: cartID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.CartID != cartID {
		t.Errorf("cartId = %q, want %q", resp.CartID, cartID)
	}
	var cart domain.Cart
	decodeData(t, resp, &cart)
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 2 {
		t.Errorf("unexpected cart lines: %+v", cart.Lines)
	}
}

func TestAddCartItem(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"productId": "prod-a",
		"quantity":  2,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var cart domain.Cart
	decodeData(t, resp, &cart)
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 2 || cart.Lines[0].ProductName != "Classic Crew Tee" {
		t.Errorf("unexpected cart: %+v", cart)
	}
}

func TestAddCartItemValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"quantity": 1}, nil)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("missing productId: status %d, error %+v", rec.Code, resp.Error)
	}

	rec, resp = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"productId": "prod-a", "quantity": 0,
	}, nil)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("zero quantity: status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"productId": "prod-zzz",
	}, nil)
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != "PRODUCT_NOT_FOUND" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestUpdateCartItemRequiresHeader(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPatch, "/api/v1/cart/items/prod-a", map[string]interface{}{"quantity": 2}, nil)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "CART_ID_REQUIRED" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestUpdateCartItemZeroRemoves(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.seedCart(t, map[string]int{"prod-a": 3})

	rec, resp := env.do(t, http.MethodPatch, "/api/v1/cart/items/prod-a", map[string]interface{}{"quantity": 0},
		map[string]string{headerCartID: cartID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var cart domain.Cart
	decodeData(t, resp, &cart)
	if len(cart.Lines) != 0 {
		t.Errorf("expected empty cart, got %+v", cart.Lines)
	}
}

func TestCheckoutSummary(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.seedCart(t, map[string]int{"prod-a": 2}) // 3998 subtotal

	rec, resp := env.do(t, http.MethodGet, "/api/v1/checkout/summary", nil, map[string]string{headerCartID: cartID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var sum checkoutsvc.Summary
	decodeData(t, resp, &sum)
	if sum.SubtotalCents != 3998 || sum.ShippingCents != 599 || sum.TotalCents != 4597 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestCheckoutSummaryWithoutHeader(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/checkout/summary", nil, nil)
	if rec.Code != http.StatusOK || !resp.Success {
		t.Errorf("status %d, resp %+v", rec.Code, resp)
	}
	if resp.Data != nil {
		t.Errorf("expected null data, got %v", resp.Data)
	}
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.seedCart(t, map[string]int{"prod-a": 2, "prod-b": 1}) // 6497 subtotal

	rec, resp := env.do(t, http.MethodPost, "/api/v1/checkout", validAddressJSON(), map[string]string{headerCartID: cartID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Order       domain.Order `json:"order"`
		CheckoutURL string       `json:"checkoutUrl"`
	}
	decodeData(t, resp, &out)
	if out.Order.Status != domain.StatusPending {
		t.Errorf("status = %q, want pending", out.Order.Status)
	}
	if out.Order.TotalCents != 6497+599 {
		t.Errorf("total = %d, want %d", out.Order.TotalCents, 6497+599)
	}
	if out.CheckoutURL != "https://pay.example/sess_"+out.Order.ID {
		t.Errorf("checkoutUrl = %q", out.CheckoutURL)
	}
	if len(out.Order.Lines) != 2 {
		t.Errorf("lines = %d, want 2", len(out.Order.Lines))
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.seedCart(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/checkout", validAddressJSON(), map[string]string{headerCartID: cartID})
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "CART_EMPTY" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestCreateOrderInvalidAddress(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.seedCart(t, map[string]int{"prod-a": 1})

	body := validAddressJSON()
	body["shippingAddress"].(map[string]interface{})["country"] = "FR"
	rec, resp := env.do(t, http.MethodPost, "/api/v1/checkout", body, map[string]string{headerCartID: cartID})
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("status %d, error %+v", rec.Code, resp.Error)
	}
	if resp.Error.Details == nil {
		t.Errorf("expected field details on validation error")
	}
}

func createPendingOrder(t *testing.T, env *testEnv) domain.Order {
	t.Helper()
	cartID := env.seedCart(t, map[string]int{"prod-a": 2})
	_, resp := env.do(t, http.MethodPost, "/api/v1/checkout", validAddressJSON(), map[string]string{headerCartID: cartID})
	var out struct {
		Order domain.Order `json:"order"`
	}
	decodeData(t, resp, &out)
	return out.Order
}

func TestConfirmPayment(t *testing.T) {
	env := newTestEnv(t)
	ord := createPendingOrder(t, env)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/checkout/confirm", map[string]interface{}{
		"sessionId": "sess_" + ord.ID,
		"orderId":   ord.ID,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got domain.Order
	decodeData(t, resp, &got)
	if got.Status != domain.StatusPaid {
		t.Errorf("status = %q, want paid", got.Status)
	}
	if got.PaymentRef == nil || *got.PaymentRef != "sess_"+ord.ID {
		t.Errorf("paymentRef = %v", got.PaymentRef)
	}

	// Confirming again is a no-op, not an error.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/checkout/confirm", map[string]interface{}{
		"sessionId": "sess_" + ord.ID,
		"orderId":   ord.ID,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("second confirm: status = %d", rec.Code)
	}
}

func TestConfirmPaymentAmountMismatch(t *testing.T) {
	env := newTestEnv(t)
	ord := createPendingOrder(t, env)
	env.gateway.sessions["sess_"+ord.ID].amountCents = 1

	rec, resp := env.do(t, http.MethodPost, "/api/v1/checkout/confirm", map[string]interface{}{
		"sessionId": "sess_" + ord.ID,
		"orderId":   ord.ID,
	}, nil)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "AMOUNT_MISMATCH" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}
	if env.orders.orders[ord.ID].Status != domain.StatusPending {
		t.Errorf("order confirmed despite amount mismatch")
	}
}

func TestConfirmPaymentUnpaidSession(t *testing.T) {
	env := newTestEnv(t)
	ord := createPendingOrder(t, env)
	env.gateway.sessions["sess_"+ord.ID].paid = false

	rec, resp := env.do(t, http.MethodPost, "/api/v1/checkout/confirm", map[string]interface{}{
		"sessionId": "sess_" + ord.ID,
		"orderId":   ord.ID,
	}, nil)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "PAYMENT_NOT_COMPLETE" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestConfirmPaymentSessionForOtherOrder(t *testing.T) {
	env := newTestEnv(t)
	first := createPendingOrder(t, env)
	second := createPendingOrder(t, env)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/checkout/confirm", map[string]interface{}{
		"sessionId": "sess_" + first.ID,
		"orderId":   second.ID,
	}, nil)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "INVALID_SESSION" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestStripeWebhookConfirmsOrder(t *testing.T) {
	env := newTestEnv(t)
	ord := createPendingOrder(t, env)
	env.gateway.webhookOrderID = ord.ID
	env.gateway.webhookSessionID = "sess_" + ord.ID

	rec, _ := env.do(t, http.MethodPost, "/api/v1/webhooks/stripe", map[string]interface{}{}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if env.orders.orders[ord.ID].Status != domain.StatusPaid {
		t.Errorf("order not marked paid by webhook")
	}
}

func TestStripeWebhookBadSignature(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.webhookErr = fmt.Errorf("verify webhook signature: bad sig")

	rec, resp := env.do(t, http.MethodPost, "/api/v1/webhooks/stripe", map[string]interface{}{}, nil)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "INVALID_SIGNATURE" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestListOrdersRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/orders", nil, nil)
	if rec.Code != http.StatusUnauthorized || resp.Error == nil || resp.Error.Code != "UNAUTHORIZED" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestListOrdersForUser(t *testing.T) {
	env := newTestEnv(t)
	cartID := env.seedCart(t, map[string]int{"prod-a": 1})
	asUser := map[string]string{headerCartID: cartID, headerUserID: "user-1"}

	rec, _ := env.do(t, http.MethodPost, "/api/v1/checkout", validAddressJSON(), asUser)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec, resp := env.do(t, http.MethodGet, "/api/v1/orders", nil, map[string]string{headerUserID: "user-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []domain.Order
	decodeData(t, resp, &list)
	if len(list) != 1 {
		t.Fatalf("orders = %d, want 1", len(list))
	}
	if list[0].UserID == nil || *list[0].UserID != "user-1" {
		t.Errorf("order not attributed to user: %+v", list[0])
	}

	rec, resp = env.do(t, http.MethodGet, "/api/v1/orders", nil, map[string]string{headerUserID: "user-2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	list = nil
	decodeData(t, resp, &list)
	if len(list) != 0 {
		t.Errorf("user-2 sees %d foreign orders", len(list))
	}
}

func TestGetOrderByID(t *testing.T) {
	env := newTestEnv(t)
	ord := createPendingOrder(t, env)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/orders/"+ord.ID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.Order
	decodeData(t, resp, &got)
	if got.ID != ord.ID {
		t.Errorf("order id = %q, want %q", got.ID, ord.ID)
	}

	rec, resp = env.do(t, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil, nil)
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != "ORDER_NOT_FOUND" {
		t.Errorf("missing order: status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestAdminRoutesRequireRole(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/admin/orders", nil, nil)
	if rec.Code != http.StatusForbidden || resp.Error == nil || resp.Error.Code != "FORBIDDEN" {
		t.Errorf("status %d, error %+v", rec.Code, resp.Error)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/admin/orders", nil, map[string]string{headerUserRole: "admin"})
	if rec.Code != http.StatusOK {
		t.Errorf("admin list: status = %d", rec.Code)
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ord := createPendingOrder(t, env)
	admin := map[string]string{headerUserRole: "admin"}

	// pending cannot skip straight to shipped
	rec, resp := env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+ord.ID+"/status",
		map[string]interface{}{"status": "shipped"}, admin)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "INVALID_TRANSITION" {
		t.Fatalf("status %d, error %+v", rec.Code, resp.Error)
	}

	rec, resp = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+ord.ID+"/status",
		map[string]interface{}{"status": "paid"}, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got domain.Order
	decodeData(t, resp, &got)
	if got.Status != domain.StatusPaid {
		t.Errorf("status = %q, want paid", got.Status)
	}

	rec, resp = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+ord.ID+"/status",
		map[string]interface{}{"status": "delivered"}, admin)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "INVALID_STATUS" {
		t.Errorf("unknown status: status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestAdminRefund(t *testing.T) {
	env := newTestEnv(t)
	ord := createPendingOrder(t, env)
	admin := map[string]string{headerUserRole: "admin"}

	// pending orders cannot be refunded
	rec, resp := env.do(t, http.MethodPost, "/api/v1/admin/orders/"+ord.ID+"/refund", nil, admin)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "INVALID_TRANSITION" {
		t.Fatalf("status %d, error %+v", rec.Code, resp.Error)
	}

	env.orders.orders[ord.ID].Status = domain.StatusPaid
	rec, resp = env.do(t, http.MethodPost, "/api/v1/admin/orders/"+ord.ID+"/refund", nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.Order
	decodeData(t, resp, &got)
	if got.Status != domain.StatusRefunded {
		t.Errorf("status = %q, want refunded", got.Status)
	}
}

func TestCancelOrder(t *testing.T) {
	env := newTestEnv(t)
	ord := createPendingOrder(t, env)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/orders/"+ord.ID+"/cancel", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.Order
	decodeData(t, resp, &got)
	if got.Status != domain.StatusCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}

	rec, resp = env.do(t, http.MethodPost, "/api/v1/orders/"+ord.ID+"/cancel", nil, nil)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "INVALID_TRANSITION" {
		t.Errorf("second cancel: status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestAdminCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	admin := map[string]string{headerUserRole: "admin"}

	rec, resp := env.do(t, http.MethodPost, "/api/v1/admin/products", map[string]interface{}{
		"name":        "Ringspun Tee",
		"description": "Fine-knit ringspun cotton",
		"priceCents":  2799,
	}, admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created domain.Product
	decodeData(t, resp, &created)
	if created.ID == "" || created.Name != "Ringspun Tee" || created.PriceCents != 2799 {
		t.Fatalf("unexpected product %+v", created)
	}

	// The new product is immediately visible on the storefront.
	rec, resp = env.do(t, http.MethodGet, "/api/v1/products/"+created.ID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get created product: status = %d", rec.Code)
	}
	var fetched domain.Product
	decodeData(t, resp, &fetched)
	if fetched.Name != "Ringspun Tee" {
		t.Errorf("fetched = %+v", fetched)
	}

	rec, resp = env.do(t, http.MethodPost, "/api/v1/admin/products", map[string]interface{}{
		"name": "No Price Tee",
	}, admin)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("missing price: status %d, error %+v", rec.Code, resp.Error)
	}

	rec, resp = env.do(t, http.MethodPost, "/api/v1/admin/products", map[string]interface{}{
		"name": "  ", "priceCents": 1000,
	}, admin)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("blank name: status %d, error %+v", rec.Code, resp.Error)
	}

	rec, resp = env.do(t, http.MethodPost, "/api/v1/admin/products", map[string]interface{}{
		"name": "Guest Tee", "priceCents": 1000,
	}, nil)
	if rec.Code != http.StatusForbidden || resp.Error == nil || resp.Error.Code != "FORBIDDEN" {
		t.Errorf("non-admin create: status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestAdminUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	admin := map[string]string{headerUserRole: "admin"}

	rec, resp := env.do(t, http.MethodPatch, "/api/v1/admin/products/prod-a", map[string]interface{}{
		"priceCents": 2599,
	}, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated domain.Product
	decodeData(t, resp, &updated)
	if updated.PriceCents != 2599 || updated.Name != "Classic Crew Tee" {
		t.Fatalf("unexpected product %+v", updated)
	}

	// Carts read the new price on their next fetch.
	cartID := env.seedCart(t, map[string]int{"prod-a": 1})
	rec, resp = env.do(t, http.MethodGet, "/api/v1/cart", nil, map[string]string{headerCartID: cartID})
	if rec.Code != http.StatusOK {
		t.Fatalf("get cart: status = %d", rec.Code)
	}
	var cart domain.Cart
	decodeData(t, resp, &cart)
	if len(cart.Lines) != 1 || cart.Lines[0].PriceCents != 2599 {
		t.Errorf("cart line not at updated price: %+v", cart.Lines)
	}

	rec, resp = env.do(t, http.MethodPatch, "/api/v1/admin/products/prod-zzz", map[string]interface{}{
		"priceCents": 1000,
	}, admin)
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != "PRODUCT_NOT_FOUND" {
		t.Errorf("missing product: status %d, error %+v", rec.Code, resp.Error)
	}

	rec, resp = env.do(t, http.MethodPatch, "/api/v1/admin/products/prod-a", map[string]interface{}{}, admin)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("empty patch: status %d, error %+v", rec.Code, resp.Error)
	}

	rec, resp = env.do(t, http.MethodPatch, "/api/v1/admin/products/prod-a", map[string]interface{}{
		"priceCents": 1000,
	}, nil)
	if rec.Code != http.StatusForbidden || resp.Error == nil || resp.Error.Code != "FORBIDDEN" {
		t.Errorf("non-admin update: status %d, error %+v", rec.Code, resp.Error)
	}
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/products", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []domain.Product
	decodeData(t, resp, &list)
	if len(list) != 2 {
		t.Errorf("products = %d, want 2", len(list))
	}

	rec, resp = env.do(t, http.MethodGet, "/api/v1/products/prod-zzz", nil, nil)
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != "PRODUCT_NOT_FOUND" {
		t.Errorf("missing product: status %d, error %+v", rec.Code, resp.Error)
	}
}
