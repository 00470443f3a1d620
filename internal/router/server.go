package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/wellywell/printdesk/internal/auth"
	"github.com/wellywell/printdesk/internal/config"
	"github.com/wellywell/printdesk/internal/handlers"
)

const (
	compressLevel = 5
)

type Middleware interface {
	Handle(h http.Handler) http.Handler
}

type Router struct {
	address string
	router  *chi.Mux
}

func NewRouter(conf *config.ServerConfig, h *handlers.HandlerSet, middlewares ...Middleware) *Router {

	r := chi.NewRouter()

	for _, m := range middlewares {
		r.Use(m.Handle)
	}
	r.Use(middleware.Compress(compressLevel))

	r.Get("/", h.HandleIndex)
	r.Post("/api/operator/register", h.HandleRegisterOperator)
	r.Post("/api/operator/login", h.HandleLogin)

	authMiddleware := &auth.AuthenticateMiddleware{Secret: conf.Secret}

	r.Group(func(r chi.Router) {

		r.Use(authMiddleware.Handle)
		r.Get("/api/orders", h.HandleGetOrders)
		r.Post("/api/orders/refresh", h.HandleForceRefresh)
		r.Post("/api/orders/page", h.HandleRequestPage)
		r.Get("/api/orders/{id}", h.HandleGetOrder)
		r.Patch("/api/orders/{id}", h.HandleEditOrder)
		r.Delete("/api/orders/{id}", h.HandleDeleteOrder)
		r.Post("/api/orders/{id}/reprint", h.HandleReprintOrder)
		r.Get("/api/settings/filter", h.HandleGetFilter)
		r.Put("/api/settings/filter", h.HandlePutFilter)
		r.Post("/api/settings/rangedays", h.HandleSetRangeDays)
		r.Post("/api/settings/autorefresh", h.HandleSetAutoRefresh)
		r.Post("/api/surface", h.HandleSurface)
		r.Get("/api/export/text", h.HandleExportText)
		r.Get("/api/export/csv", h.HandleExportCSV)
	})

	return &Router{router: r, address: conf.RunAddress}
}

func (r *Router) ListenAndServe() error {
	err := http.ListenAndServe(r.address, r.router)
	return err
}

// Handler exposes the mux for tests.
func (r *Router) Handler() http.Handler {
	return r.router
}
