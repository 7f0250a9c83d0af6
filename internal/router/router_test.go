package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/dto"
	"github.com/c0ex38/Backend-DuaMiss/internal/handlers"
	"github.com/c0ex38/Backend-DuaMiss/internal/hashing"
	"github.com/c0ex38/Backend-DuaMiss/internal/repository"
	"github.com/c0ex38/Backend-DuaMiss/internal/router"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"
	"github.com/c0ex38/Backend-DuaMiss/internal/testutil"
	"github.com/c0ex38/Backend-DuaMiss/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	secret   = "test-secret"
	issuer   = "orders"
	audience = "orders-api"
)

type api struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.New(testutil.SetupTestSQLite(t))
	log := zap.NewNop()
	h := handlers.NewHandler(
		service.NewOrderService(repo, nil, nil, log),
		service.NewCatalogService(repo, log),
		service.NewUserService(repo, hashing.NewBcrypt(bcrypt.MinCost), log),
		repo,
		log,
	)
	verifier := token.NewHSVerifier(secret, issuer, audience)
	return &api{t: t, engine: router.Router(h, verifier, []string{"http://localhost:3000"}, log)}
}

func (a *api) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// register creates a user over HTTP and signs an access token for it.
func (a *api) register(username string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"password": "Abc123!@",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.RegisterResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))

	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   resp.UserID,
		Audience:  []string{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(a.t, err)
	return signed
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerUI(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/swagger/index.html", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOrderFlow(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")

	w := a.do(http.MethodPost, "/api/v1/companies", alice, map[string]string{"name": " Acme "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	company := decode[dto.CompanyResponse](t, w)
	require.Equal(t, "Acme", company.Name)

	w = a.do(http.MethodPost, "/api/v1/products", alice, map[string]any{"name": "Widget", "code": "abc-1", "price": "100.00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[dto.ProductResponse](t, w)
	require.Equal(t, "ABC-1", product.Code)
	require.Equal(t, "100.00", product.Price)

	w = a.do(http.MethodPost, "/api/v1/orders", alice, map[string]any{
		"company":         company.ID,
		"delivery_date":   "2025-03-01",
		"global_discount": 0,
		"vat_rate":        "18",
		"items": []map[string]any{
			{"product": product.ID, "quantity": 2, "unit_price": "100.00", "item_discount": 10},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[dto.OrderResponse](t, w)
	require.Equal(t, "180", order.Subtotal)
	require.Equal(t, "32.4", order.VATAmount)
	require.Equal(t, "212.4", order.Total)
	require.Equal(t, "Acme", order.CompanyName)
	require.Len(t, order.Items, 1)
	require.Equal(t, "ABC-1", order.Items[0].ProductCode)

	w = a.do(http.MethodPatch, "/api/v1/orders/"+order.ID, alice, map[string]any{"vat_rate": "0"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.OrderResponse](t, w)
	require.Equal(t, "180", updated.Total)

	w = a.do(http.MethodGet, "/api/v1/orders/"+order.ID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/api/v1/orders?limit=5", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.OrderListResponse](t, w)
	require.EqualValues(t, 1, list.Total)
	require.Equal(t, 5, list.Limit)

	bob := a.register("bob")
	w = a.do(http.MethodGet, "/api/v1/orders/"+order.ID, bob, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodDelete, "/api/v1/orders/"+order.ID, alice, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/api/v1/orders/"+order.ID, alice, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")

	w := a.do(http.MethodGet, "/api/v1/orders", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "1carol", "password": "abc12345"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	verr := decode[dto.BaseError](t, w)
	require.Equal(t, "validation_error", verr.Code)
	tags := map[string]int{}
	for _, f := range verr.Fields {
		tags[f.Field+"/"+f.Tag]++
	}
	require.Equal(t, 1, tags["username/starts_with_digit"])
	require.Equal(t, 2, tags["password/weak_password"])

	w = a.do(http.MethodPost, "/api/v1/companies", alice, map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code)
	company := decode[dto.CompanyResponse](t, w)

	w = a.do(http.MethodPost, "/api/v1/products", bob, map[string]any{"name": "Bob's Widget", "code": "bw-1", "price": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	foreign := decode[dto.ProductResponse](t, w)

	w = a.do(http.MethodPost, "/api/v1/orders", alice, map[string]any{
		"company":       company.ID,
		"delivery_date": "2025-03-01",
		"items":         []map[string]any{{"product": foreign.ID, "quantity": 1, "unit_price": "5.00"}},
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	ferr := decode[dto.BaseError](t, w)
	require.Equal(t, "forbidden_product", ferr.Details)
	require.Contains(t, ferr.Message, "Bob's Widget")

	w = a.do(http.MethodPost, "/api/v1/orders", alice, map[string]any{
		"company":       "not-a-uuid",
		"delivery_date": "01.03.2025",
		"items":         []map[string]any{},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// неразобранная дата не скрывает остальные ошибки полей
	w = a.do(http.MethodPost, "/api/v1/orders", alice, map[string]any{
		"company":       company.ID,
		"delivery_date": "01.03.2025",
		"vat_rate":      150,
		"items":         []map[string]any{{"product": foreign.ID, "quantity": 1, "unit_price": "5.00"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	verr = decode[dto.BaseError](t, w)
	tags = map[string]int{}
	for _, f := range verr.Fields {
		tags[f.Field+"/"+f.Tag]++
	}
	require.Equal(t, 1, tags["delivery_date/invalid_format"])
	require.Equal(t, 1, tags["vat_rate/above_maximum"])
	require.Zero(t, tags["delivery_date/missing_value"])

	w = a.do(http.MethodPost, "/api/v1/orders", alice, map[string]any{
		"company":       company.ID,
		"delivery_date": "2025-03-01",
		"items":         []map[string]any{{"product": foreign.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	verr = decode[dto.BaseError](t, w)
	require.Equal(t, "items", verr.Fields[0].Field)
	require.Equal(t, "missing_value", verr.Fields[0].Tag)
	require.Contains(t, verr.Fields[0].Message, "unit price is required")

	w = a.do(http.MethodPost, "/api/v1/orders", alice, map[string]any{"company": company.ID, "delivery_date": "2025-03-01"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	verr = decode[dto.BaseError](t, w)
	require.Equal(t, "items", verr.Fields[0].Field)
	require.Equal(t, "empty_order", verr.Fields[0].Tag)

	w = a.do(http.MethodPatch, "/api/v1/orders/not-an-id", alice, map[string]any{})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/v1/companies", alice, "not an object")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
