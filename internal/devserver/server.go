// Package devserver implements a self-contained development API server that
// speaks the same contract the client library targets: cookie-based JWT
// sessions, {"detail": ...} errors, order CRUD with audit history, company
// management and a WebSocket push channel for new orders.
//
// It exists so the CLI and the test suite have a real endpoint to talk to
// without any external services. Storage goes through GORM, so it runs
// against sqlite out of the box and postgres/mysql/sqlserver when pointed at
// one.
package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/config"
	"github.com/vperfumes/tracker/pkg/cache"
	"github.com/vperfumes/tracker/pkg/event"
	"github.com/vperfumes/tracker/pkg/logger"
	"github.com/vperfumes/tracker/pkg/metrics"
	"github.com/vperfumes/tracker/pkg/middleware"
	"github.com/vperfumes/tracker/pkg/rbac"
	"github.com/vperfumes/tracker/pkg/router"
	"github.com/vperfumes/tracker/pkg/ws"
)

// eventOrderCreated is fired on the server bus after an order is stored.
const eventOrderCreated = "order.created"

// orderCreated is the payload of eventOrderCreated.
type orderCreated struct {
	CompanyID string
	Order     models.Order
}

// Server wires the store, the push rooms, the event bus and the HTTP routes
// together.
type Server struct {
	store  *Store
	rooms  *ws.Rooms
	bus    *event.Bus
	router *router.Router
}

// New builds a Server around the given store and starts the push-room loop.
func New(store *Store) *Server {
	s := &Server{
		store: store,
		rooms: ws.NewRooms(),
		bus:   event.NewBus(),
	}
	go s.rooms.Run()

	// Side effects of a created order hang off the bus, not the handler.
	s.bus.Listen(eventOrderCreated, s.onOrderCreated)

	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router.Handler()
}

// Routes lists the registered named routes.
func (s *Server) Routes() []router.RouteInfo {
	return s.router.Routes()
}

// ListenAndServe connects the cache and runs the server on the configured
// port.
func (s *Server) ListenAndServe() error {
	if err := cache.Connect(); err != nil {
		// The memory driver keeps working; Redis is optional.
		logger.Warn("devserver: cache connect", "error", err)
	}

	addr := ":" + config.AppPort()
	logger.Info("devserver: listening", "addr", addr, "driver", config.DatabaseDriver())
	return http.ListenAndServe(addr, s.Handler())
}

// onOrderCreated pushes the new_order frame to the owning company's room.
func (s *Server) onOrderCreated(payload interface{}) {
	created, ok := payload.(orderCreated)
	if !ok || created.CompanyID == "" {
		return
	}

	frame, err := json.Marshal(models.PushEvent{
		Type:    models.EventNewOrder,
		Message: "You have a new order",
		Order:   &created.Order,
	})
	if err != nil {
		logger.Error("devserver: marshal push frame", "error", err)
		return
	}
	s.rooms.Publish(created.CompanyID, frame)
	metrics.PushEventsTotal.WithLabelValues(models.EventNewOrder).Inc()
}

func (s *Server) routes() {
	r := router.New()
	r.Use(middleware.Recovery, middleware.Logger, middleware.CORS(middleware.DefaultCORSOptions()), metrics.Middleware())

	api := r.Group("/api")
	api.Post("/auth/login", "login", s.handleLogin)
	api.Post("/auth/logout", "logout", s.handleLogout)
	api.Get("/user", "current-user", s.requireUser(s.handleCurrentUser))
	api.Post("/auth/register", "register", s.require(rbac.ManageCompanies, s.handleRegister))
	api.Post("/auth/change-password", "change-password", s.requireUser(s.handleChangePassword))

	api.Get("/orders", "orders-list", s.requireUser(s.handleOrders))
	api.Post("/orders", "orders-create", s.requireUser(s.handleCreateOrder))
	api.Put("/orders/{id}", "orders-update", s.requireUser(s.handleUpdateOrder))
	api.Delete("/orders/{id}", "orders-delete", s.requireUser(s.handleDeleteOrder))
	api.Get("/orders/{id}/history", "orders-history", s.requireUser(s.handleOrderHistory))
	api.Get("/orders/report", "orders-report", s.require(rbac.ExportReports, s.handleReport))
	api.Get("/stats", "stats", s.requireUser(s.handleStats))

	api.Get("/companies", "companies-list", s.require(rbac.ManageCompanies, s.handleCompanies))
	api.Delete("/companies/{id}", "companies-delete", s.require(rbac.ManageCompanies, s.handleDeleteCompany))
	api.Post("/companies/{id}/reset-password", "companies-reset-password", s.require(rbac.ManageCompanies, s.handleResetPassword))

	r.Get("/ws/orders/{id}", "ws-orders", s.handleOrdersSocket)
	r.Get("/metrics", "metrics", metrics.Handler())

	s.router = r
}

// pathParam reads a chi URL parameter.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
