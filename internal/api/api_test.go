package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/mail"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/service"
	"storefront/internal/store/storetest"
	"storefront/internal/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	store   *storetest.Memory
	gateway *payment.Fake
	auth    *service.Auth
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	st := storetest.NewMemory()
	gateway := payment.NewFake()
	guard := service.NewGuard(st)
	auth := service.NewAuth(st, mail.LogMailer{Log: log}, service.AuthOptions{
		Secret:      "api-test-secret",
		BcryptCost:  bcrypt.MinCost,
		FrontendURL: "http://shop.test",
		MailFrom:    "no-reply@shop.test",
	}, log)
	m := metrics.New()

	router, err := NewRouter(Services{
		Auth:     auth,
		Guard:    guard,
		Users:    service.NewUsers(st, guard, log),
		Catalog:  service.NewCatalog(st, guard, utils.NopCache{}, false, log),
		Cart:     service.NewCart(st, log),
		Checkout: service.NewCheckout(st, st, gateway, utils.NewMemoryLocker(), time.Second, m, log),
		Orders:   service.NewOrders(st, guard),
	}, RouterOptions{Metrics: m, Log: log})
	require.NoError(t, err)
	return &testServer{t: t, router: router, store: st, gateway: gateway, auth: auth}
}

// do sends a JSON request, authenticated with a Bearer token when userID is not 0
func (s *testServer) do(method, path string, userID uint, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := s.auth.IssueToken(userID)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

func TestSignupSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/signup", 0, gin.H{"name": "Ada", "email": "ada@shop.test", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	res := w.Result()
	var session *http.Cookie
	for _, ck := range res.Cookies() {
		if ck.Name == middleware.TokenCookie {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, int(utils.SessionTTL.Seconds()), session.MaxAge)

	// The cookie alone identifies the caller
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: session.Value})
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	var body struct {
		User *domain.User `json:"user"`
	}
	decode(t, me, &body)
	require.NotNil(t, body.User)
	assert.Equal(t, "ada@shop.test", body.User.Email)
}

func TestMeAnonymous(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/me", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user": null}`, w.Body.String())
}

func TestSigninErrors(t *testing.T) {
	s := newTestServer(t)
	s.store.AddUser("known@shop.test")

	unknown := s.do(http.MethodPost, "/signin", 0, gin.H{"email": "nobody@shop.test", "password": "password"})
	wrong := s.do(http.MethodPost, "/signin", 0, gin.H{"email": "known@shop.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, "Invalid email or password!", errorOf(t, unknown))
	assert.Equal(t, errorOf(t, unknown), errorOf(t, wrong))

	ok := s.do(http.MethodPost, "/signin", 0, gin.H{"email": "known@shop.test", "password": "password"})
	assert.Equal(t, http.StatusOK, ok.Code)
}

func TestSignout(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/signout", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "GoodBye!"}`, w.Body.String())
	require.NotEmpty(t, w.Result().Cookies())
	assert.Negative(t, w.Result().Cookies()[0].MaxAge)
}

func TestRequestReset(t *testing.T) {
	s := newTestServer(t)
	s.store.AddUser("reset@shop.test")

	w := s.do(http.MethodPost, "/reset/request", 0, gin.H{"email": "reset@shop.test"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Thanks"}`, w.Body.String())

	w = s.do(http.MethodPost, "/reset/request", 0, gin.H{"email": "ghost@shop.test"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemRoutes(t *testing.T) {
	s := newTestServer(t)
	owner := s.store.AddUser("owner@shop.test")
	other := s.store.AddUser("other@shop.test")

	w := s.do(http.MethodPost, "/items", 0, gin.H{"title": "Lamp", "price": 2500})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/items", owner.ID, gin.H{"title": "Lamp", "price": 2500})
	require.Equal(t, http.StatusCreated, w.Code)
	var item domain.Item
	decode(t, w, &item)
	path := "/items/" + strconv.FormatUint(uint64(item.ID), 10)

	// Only allow-listed fields may be updated
	w = s.do(http.MethodPatch, path, owner.ID, gin.H{"user_id": other.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path, other.ID, gin.H{"title": "Mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, path, owner.ID, gin.H{"price": 2000})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &item)
	assert.Equal(t, int64(2000), item.Price)
	assert.Equal(t, "Lamp", item.Title)

	w = s.do(http.MethodGet, "/items", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.ItemPage
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Total)

	w = s.do(http.MethodDelete, path, other.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, path, owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, path, 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/items/abc", 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartAndCheckoutRoutes(t *testing.T) {
	s := newTestServer(t)
	buyer := s.store.AddUser("buyer@shop.test")
	seller := s.store.AddUser("seller@shop.test")
	shoes := s.store.AddItem(seller.ID, "shoes", 500)
	hat := s.store.AddItem(seller.ID, "hat", 300)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/cart", 0, nil).Code)

	for _, id := range []uint{shoes.ID, shoes.ID, hat.ID} {
		w := s.do(http.MethodPost, "/cart/"+strconv.FormatUint(uint64(id), 10), buyer.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := s.do(http.MethodGet, "/cart", buyer.ID, nil)
	var cart struct {
		Items []domain.CartItem `json:"items"`
		Total int64             `json:"total"`
	}
	decode(t, w, &cart)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, int64(1300), cart.Total)

	// Another user cannot remove the buyer's rows
	w = s.do(http.MethodDelete, "/cart/"+strconv.FormatUint(uint64(cart.Items[0].ID), 10), seller.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The body has no amount field; sending one is rejected
	w = s.do(http.MethodPost, "/checkout", buyer.ID, gin.H{"token": "tok_visa", "amount": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/checkout", buyer.ID, gin.H{"token": payment.DeclinedToken})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, 2, s.store.CartRows(buyer.ID))

	w = s.do(http.MethodPost, "/checkout", buyer.ID, gin.H{"token": "tok_visa"})
	require.Equal(t, http.StatusCreated, w.Code)
	var order domain.Order
	decode(t, w, &order)
	assert.Equal(t, int64(1300), order.Total)
	assert.Len(t, order.Items, 2)
	assert.Zero(t, s.store.CartRows(buyer.ID))

	w = s.do(http.MethodPost, "/checkout", buyer.ID, gin.H{"token": "tok_visa"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Your cart is empty!", errorOf(t, w))

	orderPath := "/orders/" + strconv.FormatUint(uint64(order.ID), 10)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, orderPath, buyer.ID, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, orderPath, seller.ID, nil).Code)

	w = s.do(http.MethodGet, "/orders", buyer.ID, nil)
	var orders struct {
		Orders []domain.Order `json:"orders"`
	}
	decode(t, w, &orders)
	assert.Len(t, orders.Orders, 1)
}

func TestCheckoutIdempotencyHeader(t *testing.T) {
	s := newTestServer(t)
	buyer := s.store.AddUser("buyer@shop.test")
	item := s.store.AddItem(buyer.ID, "mug", 900)
	s.store.AddCartRow(buyer.ID, item.ID, 1)

	token, err := s.auth.IssueToken(buyer.ID)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBufferString(`{"token":"tok_visa"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(IdempotencyHeader, "order-attempt-1")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, service.ChargeKey("order-attempt-1", "tok_visa", 900, 0), s.gateway.Charges()[0].IdempotencyKey)
	assert.Equal(t, int64(900), s.gateway.Charges()[0].Amount)
}

func TestUserAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	plain := s.store.AddUser("plain@shop.test")
	admin := s.store.AddUser("admin@shop.test", domain.PermAdmin)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/users", 0, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/users", plain.ID, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users", admin.ID, nil).Code)

	path := "/users/" + strconv.FormatUint(uint64(plain.ID), 10) + "/permissions"
	w := s.do(http.MethodPut, path, admin.ID, gin.H{"permissions": []string{"ITEMCREATE"}})
	require.Equal(t, http.StatusOK, w.Code)
	var user domain.User
	decode(t, w, &user)
	assert.Equal(t, domain.Permissions{domain.PermItemCreate, domain.PermUser}, user.Permissions)

	w = s.do(http.MethodPut, path, admin.ID, gin.H{"permissions": []string{"GOD"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", 0, nil).Code)

	w := s.do(http.MethodGet, "/metrics", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
}
