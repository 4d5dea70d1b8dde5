// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/Prashantkhobragade/CRUD-ops/internal/handler"
	"github.com/Prashantkhobragade/CRUD-ops/internal/middleware"
	"github.com/Prashantkhobragade/CRUD-ops/internal/model"
	"github.com/Prashantkhobragade/CRUD-ops/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with the global middleware chain and
// every route registered.
//
// Order matters: the request ID must exist before the tracing attributes and
// the request logger are built, the New Relic transaction must exist before
// the context logger reads its trace ids, and rejected requests are still
// logged.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)
	registerEmployeeRoutes(router, h)

	return router
}

func registerEmployeeRoutes(r *echo.Echo, h *handler.Handlers) {
	employees := h.Employee

	r.POST("/create_table/", handler.Handle(employees.Handler, employees.CreateTable, http.StatusOK, &model.EnsureSchemaRequest{}))
	r.POST("/employee/", handler.Handle(employees.Handler, employees.CreateEmployee, http.StatusCreated, &model.CreateEmployeeRequest{}))
	r.GET("/employees/", handler.Handle(employees.Handler, employees.ListEmployees, http.StatusOK, &model.ListEmployeesRequest{}))
}
