// Package apiserver exposes the users and orders HTTP API on gin.
package apiserver

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	orderdomain "github.com/Apurer/go-gin-users-orders/internal/domains/orders/domain"
	apierrors "github.com/Apurer/go-gin-users-orders/internal/shared/errors"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	UserAPI   UserAPI
	OrderAPI  OrderAPI
	HealthAPI HealthAPI
	// Metrics is served on GET /metrics when set.
	Metrics http.Handler
}

// NewRouter returns a new router with recovery, the given middlewares and every route registered.
func NewRouter(handleFunctions ApiHandleFunctions, middlewares ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(recoverWithProblem))
	router.Use(middlewares...)
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine adds the API routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	registerValidators()
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	if handleFunctions.Metrics != nil {
		router.GET("/metrics", gin.WrapH(handleFunctions.Metrics))
	}
	router.NoRoute(func(c *gin.Context) {
		apierrors.Respond(c, apierrors.ErrNotFound.WithDetail("no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})
	return router
}

// DefaultHandleFunc is used when a route has no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func recoverWithProblem(c *gin.Context, _ any) {
	apierrors.Respond(c, apierrors.ErrInternal.WithDetail("unexpected server error"))
	c.Abort()
}

var validatorsOnce sync.Once

// registerValidatorTagNames makes validation errors report the JSON (or query) field name.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
		_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			switch fl.Field().Kind() {
			case reflect.Float32, reflect.Float64:
				return orderdomain.IsFiniteAmount(fl.Field().Float())
			default:
				return true
			}
		})
	})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"CreateUser", http.MethodPost, "/users", handleFunctions.UserAPI.CreateUser},
		{"ListUsers", http.MethodGet, "/users", handleFunctions.UserAPI.ListUsers},
		{"GetUser", http.MethodGet, "/users/:id", handleFunctions.UserAPI.GetUser},
		{"ReplaceUser", http.MethodPut, "/users/:id", handleFunctions.UserAPI.ReplaceUser},
		{"UpdateUser", http.MethodPatch, "/users/:id", handleFunctions.UserAPI.UpdateUser},
		{"DeleteUser", http.MethodDelete, "/users/:id", handleFunctions.UserAPI.DeleteUser},
		{"CreateOrder", http.MethodPost, "/orders", handleFunctions.OrderAPI.CreateOrder},
		{"ListOrders", http.MethodGet, "/orders", handleFunctions.OrderAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/orders/:id", handleFunctions.OrderAPI.GetOrder},
		{"ReplaceOrder", http.MethodPut, "/orders/:id", handleFunctions.OrderAPI.ReplaceOrder},
		{"UpdateOrder", http.MethodPatch, "/orders/:id", handleFunctions.OrderAPI.UpdateOrder},
		{"DeleteOrder", http.MethodDelete, "/orders/:id", handleFunctions.OrderAPI.DeleteOrder},
		{"Health", http.MethodGet, "/health", handleFunctions.HealthAPI.Health},
	}
}
