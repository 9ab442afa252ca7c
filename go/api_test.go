package apiserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderhttpmapper "github.com/Apurer/go-gin-users-orders/internal/domains/orders/adapters/http/mapper"
	ordermemory "github.com/Apurer/go-gin-users-orders/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/go-gin-users-orders/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/go-gin-users-orders/internal/domains/orders/application"
	userhttpmapper "github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/http/mapper"
	usermemory "github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/go-gin-users-orders/internal/domains/users/application"
	"github.com/Apurer/go-gin-users-orders/internal/health"
	"github.com/Apurer/go-gin-users-orders/internal/platform/metrics"
	apierrors "github.com/Apurer/go-gin-users-orders/internal/shared/errors"
	"github.com/Apurer/go-gin-users-orders/internal/shared/references"
)

func newTestRouter(t *testing.T, policy userapp.DeletePolicy) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := usermemory.NewRepository()
	guard := references.NewMemoryGuard()
	orderService := orderapp.NewService(ordermemory.NewRepository(), userRepo, orderapp.WithReferenceGuard(guard))
	userService := userapp.NewService(userRepo,
		userapp.WithOrderReferences(orderService),
		userapp.WithDeletePolicy(policy),
		userapp.WithReferenceGuard(guard),
	)

	registry := health.NewRegistry("test")
	registry.Register("storage", health.MemoryStorage())
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)

	return NewRouter(ApiHandleFunctions{
		UserAPI:   NewUserAPI(userobs.New(userService)),
		OrderAPI:  NewOrderAPI(orderobs.New(orderService)),
		HealthAPI: NewHealthAPI(registry),
		Metrics:   metrics.Handler(reg),
	}, RequestID(), RequestTimeout(5*time.Second), httpMetrics.Middleware())
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createUser(t *testing.T, router http.Handler, name, email string) userhttpmapper.User {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/users", map[string]any{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[userhttpmapper.User](t, rec)
}

func createOrder(t *testing.T, router http.Handler, item string, amount float64, userID int64) orderhttpmapper.Order {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/orders", map[string]any{"item": item, "amount": amount, "user_id": userID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[orderhttpmapper.Order](t, rec)
}

func TestScenario_OrphanedOrderStaysReadable(t *testing.T) {
	router := newTestRouter(t, userapp.DeleteOrphan)

	ann := createUser(t, router, "Ann", "ann@x.com")
	assert.Equal(t, userhttpmapper.User{ID: 1, Name: "Ann", Email: "ann@x.com"}, ann)

	book := createOrder(t, router, "Book", 10, 1)
	assert.Equal(t, orderhttpmapper.Order{ID: 1, Item: "Book", Amount: 10, UserID: 1}, book)

	rec := do(t, router, http.MethodPost, "/orders", map[string]any{"item": "Book", "amount": 10, "user_id": 2})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeBadRequest, decode[apierrors.ProblemDetail](t, rec).Type)

	rec = do(t, router, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]orderhttpmapper.Order](t, rec), 1)

	rec = do(t, router, http.MethodDelete, "/users/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/orders/%d", book.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, book, decode[orderhttpmapper.Order](t, rec))
}

func TestUserAPI_CreateAndGet(t *testing.T) {
	router := newTestRouter(t, userapp.DeleteOrphan)
	ann := createUser(t, router, "Ann", "ann@x.com")

	rec := do(t, router, http.MethodGet, "/users/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ann, decode[userhttpmapper.User](t, rec))

	rec = do(t, router, http.MethodPost, "/users", map[string]any{"name": "Imposter", "email": "ann@x.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, apierrors.TypeBadRequest, decode[apierrors.ProblemDetail](t, rec).Type)

	rec = do(t, router, http.MethodGet, "/users", nil)
	assert.Len(t, decode[[]userhttpmapper.User](t, rec), 1)

	rec = do(t, router, http.MethodGet, "/users/2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeNotFound, decode[apierrors.ProblemDetail](t, rec).Type)
}

func TestUserAPI_ValidationProblems(t *testing.T) {
	router := newTestRouter(t, userapp.DeleteOrphan)

	rec := do(t, router, http.MethodPost, "/users", map[string]any{"name": "Ann", "email": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decode[apierrors.ProblemDetail](t, rec)
	assert.Equal(t, apierrors.TypeValidation, problem.Type)
	fields, ok := problem.Extensions["fields"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.Contains(t, fields, "email")

	rec = do(t, router, http.MethodPost, "/users", map[string]any{"email": "ann@x.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[apierrors.ProblemDetail](t, rec).Extensions["fields"], "name")

	rec = do(t, router, http.MethodPost, "/users", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeValidation, decode[apierrors.ProblemDetail](t, rec).Type)

	rec = do(t, router, http.MethodPost, "/users", map[string]any{"name": "   ", "email": "ann@x.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[apierrors.ProblemDetail](t, rec).Extensions["fields"], "name")

	for _, path := range []string{"/users/abc", "/users/0", "/users/-4"} {
		rec = do(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	rec = do(t, router, http.MethodGet, "/users", nil)
	assert.Empty(t, decode[[]userhttpmapper.User](t, rec))
}

func TestUserAPI_ListOrdersAndPages(t *testing.T) {
	router := newTestRouter(t, userapp.DeleteOrphan)
	for i := 1; i <= 5; i++ {
		createUser(t, router, fmt.Sprintf("user %d", i), fmt.Sprintf("user%d@x.com", i))
	}

	rec := do(t, router, http.MethodGet, "/users?limit=2&offset=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]userhttpmapper.User](t, rec)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(4), page[1].ID)

	rec = do(t, router, http.MethodGet, "/users?email=user5@x.com", nil)
	filtered := decode[[]userhttpmapper.User](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(5), filtered[0].ID)

	rec = do(t, router, http.MethodGet, "/users?name_contains=user&offset=4", nil)
	tail := decode[[]userhttpmapper.User](t, rec)
	require.Len(t, tail, 1)
	assert.Equal(t, int64(5), tail[0].ID)

	for _, query := range []string{"limit=0", "limit=1001", "offset=-1", "limit=ten"} {
		rec = do(t, router, http.MethodGet, "/users?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestUserAPI_ReplaceAndPatch(t *testing.T) {
	router := newTestRouter(t, userapp.DeleteOrphan)
	createUser(t, router, "Ann", "ann@x.com")
	createUser(t, router, "Bob", "bob@x.com")

	rec := do(t, router, http.MethodPut, "/users/1", map[string]any{"name": "Annie", "email": "annie@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userhttpmapper.User{ID: 1, Name: "Annie", Email: "annie@x.com"}, decode[userhttpmapper.User](t, rec))

	rec = do(t, router, http.MethodPut, "/users/1", map[string]any{"name": "Annie"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPut, "/users/1", map[string]any{"name": "Annie", "email": "bob@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPut, "/users/9", map[string]any{"name": "Ghost", "email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPatch, "/users/1", map[string]any{"email": "ann@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userhttpmapper.User{ID: 1, Name: "Annie", Email: "ann@x.com"}, decode[userhttpmapper.User](t, rec))

	rec = do(t, router, http.MethodPatch, "/users/1", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userhttpmapper.User{ID: 1, Name: "Annie", Email: "ann@x.com"}, decode[userhttpmapper.User](t, rec))

	rec = do(t, router, http.MethodPatch, "/users/1", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPatch, "/users/2", map[string]any{"email": "ann@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPatch, "/users/9", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/users/2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodDelete, "/users/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderAPI_Lifecycle(t *testing.T) {
	router := newTestRouter(t, userapp.DeleteOrphan)
	createUser(t, router, "Ann", "ann@x.com")
	createUser(t, router, "Bob", "bob@x.com")

	createOrder(t, router, "Book", 10, 1)
	createOrder(t, router, "Pen", 0, 2)
	createOrder(t, router, "Lamp", 40, 1)

	rec := do(t, router, http.MethodPost, "/orders", map[string]any{"item": "Desk", "user_id": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "amount is required")

	rec = do(t, router, http.MethodGet, "/orders?user_id=1&min_amount=10&max_amount=39.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ranged := decode[[]orderhttpmapper.Order](t, rec)
	require.Len(t, ranged, 1)
	assert.Equal(t, "Book", ranged[0].Item)

	rec = do(t, router, http.MethodGet, "/orders?min_amount=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPatch, "/orders/3", map[string]any{"amount": 35.5, "user_id": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orderhttpmapper.Order{ID: 3, Item: "Lamp", Amount: 35.5, UserID: 1}, decode[orderhttpmapper.Order](t, rec))

	rec = do(t, router, http.MethodPut, "/orders/3", map[string]any{"item": "Lamp", "amount": 30, "user_id": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[orderhttpmapper.Order](t, rec).UserID)

	rec = do(t, router, http.MethodPut, "/orders/3", map[string]any{"item": "Lamp", "amount": 30, "user_id": 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPut, "/orders/30", map[string]any{"item": "Lamp", "amount": 30, "user_id": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/orders/3", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, "/orders/3", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, router, http.MethodPatch, "/orders/3", map[string]any{"item": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderAPI_RejectsNonFiniteAmountBounds(t *testing.T) {
	router := newTestRouter(t, userapp.DeleteOrphan)
	createUser(t, router, "Ann", "ann@x.com")
	createOrder(t, router, "Book", 10, 1)

	cases := map[string]string{
		"/orders?min_amount=NaN":  "min_amount",
		"/orders?max_amount=NaN":  "max_amount",
		"/orders?min_amount=-Inf": "min_amount",
		"/orders?max_amount=Inf":  "max_amount",
	}
	for path, field := range cases {
		rec := do(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		problem := decode[apierrors.ProblemDetail](t, rec)
		assert.Equal(t, apierrors.TypeValidation, problem.Type, path)
		fields, ok := problem.Extensions["fields"].(map[string]any)
		require.True(t, ok, rec.Body.String())
		assert.Equal(t, "must be a finite number", fields[field], path)
	}

	rec := do(t, router, http.MethodGet, "/orders?min_amount=0&max_amount=1e3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]orderhttpmapper.Order](t, rec), 1)
}

func TestDeletePolicies(t *testing.T) {
	t.Run("restrict", func(t *testing.T) {
		router := newTestRouter(t, userapp.DeleteRestrict)
		createUser(t, router, "Ann", "ann@x.com")
		createOrder(t, router, "Book", 10, 1)

		rec := do(t, router, http.MethodDelete, "/users/1", nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, apierrors.TypeConflict, decode[apierrors.ProblemDetail](t, rec).Type)
		assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/users/1", nil).Code)
		assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/orders/1", nil).Code)

		require.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/orders/1", nil).Code)
		assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/users/1", nil).Code)
	})

	t.Run("cascade", func(t *testing.T) {
		router := newTestRouter(t, userapp.DeleteCascade)
		createUser(t, router, "Ann", "ann@x.com")
		createUser(t, router, "Bob", "bob@x.com")
		createOrder(t, router, "Book", 10, 1)
		createOrder(t, router, "Pen", 1, 2)

		require.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/users/1", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/orders/1", nil).Code)
		rest := decode[[]orderhttpmapper.Order](t, do(t, router, http.MethodGet, "/orders", nil))
		require.Len(t, rest, 1)
		assert.Equal(t, int64(2), rest[0].UserID)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t, userapp.DeleteOrphan)

	rec := do(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[health.Response](t, rec)
	assert.Equal(t, health.StatusHealthy, report.Status)
	assert.Contains(t, report.Checks, "storage")
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	createUser(t, router, "Ann", "ann@x.com")
	rec = do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `users_orders_http_requests_total{method="POST",route="/users",status="201"} 1`)

	rec = do(t, router, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeNotFound, decode[apierrors.ProblemDetail](t, rec).Type)
}

func TestHealth_UnhealthyStorageIs503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := health.NewRegistry("test")
	registry.Register("storage", health.GormStorage(nil))
	router := NewRouter(ApiHandleFunctions{HealthAPI: NewHealthAPI(registry)})

	rec := do(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, health.StatusUnhealthy, decode[health.Response](t, rec).Status)
}
