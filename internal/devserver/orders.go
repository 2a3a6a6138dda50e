package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/pkg/bind"
	"github.com/vperfumes/tracker/pkg/cache"
	"github.com/vperfumes/tracker/pkg/logger"
	"github.com/vperfumes/tracker/pkg/response"
	"github.com/vperfumes/tracker/pkg/validate"
	"github.com/vperfumes/tracker/pkg/ws"
)

// statsTTL bounds how stale a cached stats snapshot can get. Mutations
// invalidate eagerly, so the TTL only covers out-of-band writes.
const statsTTL = 30 * time.Second

// scopeFor returns the company id filter for the caller: empty for admins,
// their own id for company accounts.
func scopeFor(u *User) string {
	if u.Role == "admin" {
		return ""
	}
	return u.ID
}

// handleOrders lists the caller's visible orders, newest date first.
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.Orders(scopeFor(currentUser(r)))
	if err != nil {
		response.Internal(w)
		return
	}
	response.OK(w, toWireList(recs))
}

// resolveCompany decides which account a new or updated order belongs to.
// Company callers always own their orders; admins name the target company.
// An unknown label is kept with no account link, since admins may log orders
// for companies whose login was deleted.
func (s *Server) resolveCompany(actor *User, companyName string) (id, name string, errDetail string) {
	if actor.Role == "company" {
		return actor.ID, actor.CompanyName, ""
	}

	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return "", "", "Company name is required"
	}

	companies, err := s.store.Companies()
	if err != nil {
		logger.Error("devserver: list companies", "error", err)
		return "", "", "Internal Server Error"
	}
	for _, c := range companies {
		if c.CompanyName == companyName {
			return c.ID, c.CompanyName, ""
		}
	}
	return "", companyName, ""
}

// invalidateStats drops the cached snapshots affected by a mutation.
func invalidateStats(companyID string) {
	keys := []string{"stats:all"}
	if companyID != "" {
		keys = append(keys, "stats:"+companyID)
	}
	if err := cache.Forget(keys...); err != nil {
		logger.Warn("devserver: invalidate stats cache", "error", err)
	}
}

// handleCreateOrder validates, stores and broadcasts a new order.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(errs) > 0 {
		response.ValidationFailed(w, errs)
		return
	}

	actor := currentUser(r)
	companyID, companyName, detail := s.resolveCompany(actor, in.CompanyName)
	if detail != "" {
		response.Detail(w, http.StatusBadRequest, "%s", detail)
		return
	}

	rec := &OrderRecord{
		OrderNumber:   in.OrderNumber,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		DeliveryArea:  in.DeliveryArea,
		OrderPrice:    in.OrderPrice,
		DeliveryCost:  in.DeliveryCost,
		Status:        in.Status,
		OrderDate:     in.OrderDate,
		Notes:         in.Notes,
		CompanyID:     companyID,
		CompanyName:   companyName,
	}
	if err := s.store.CreateOrder(rec); err != nil {
		response.Internal(w)
		return
	}
	invalidateStats(companyID)

	changes := make(map[string]interface{})
	for field, value := range orderFields(rec) {
		changes[field] = map[string]interface{}{"old": nil, "new": value}
	}
	if err := s.store.AddHistory(rec.ID, "created", changes, actor); err != nil {
		logger.Error("devserver: record history", "error", err, "order", rec.ID)
	}

	// Live subscribers hear about it through the bus. Orders created by the
	// company itself are pushed too; the client handles duplicates by
	// refetching after its own mutations.
	order := toWire(rec)
	s.bus.Fire(eventOrderCreated, orderCreated{CompanyID: companyID, Order: order})

	response.Created(w, order)
}

// orderFields maps an order's mutable fields by wire name, for history diffs.
func orderFields(o *OrderRecord) map[string]interface{} {
	return map[string]interface{}{
		"order_number":   o.OrderNumber,
		"customer_name":  o.CustomerName,
		"customer_phone": o.CustomerPhone,
		"delivery_area":  o.DeliveryArea,
		"order_price":    o.OrderPrice,
		"delivery_cost":  o.DeliveryCost,
		"status":         o.Status,
		"order_date":     o.OrderDate,
		"notes":          o.Notes,
		"company_name":   o.CompanyName,
	}
}

// loadVisibleOrder fetches an order and enforces the caller's scope. Company
// callers get 404 (not 403) for foreign orders so ids do not leak.
func (s *Server) loadVisibleOrder(w http.ResponseWriter, r *http.Request) *OrderRecord {
	rec, err := s.store.OrderByID(pathParam(r, "id"))
	if err != nil {
		response.Internal(w)
		return nil
	}
	actor := currentUser(r)
	if rec == nil || (actor.Role == "company" && rec.CompanyID != actor.ID) {
		response.NotFound(w, "Order")
		return nil
	}
	return rec
}

// handleUpdateOrder replaces the mutable fields and records a field-level
// diff in the history.
func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	rec := s.loadVisibleOrder(w, r)
	if rec == nil {
		return
	}

	var in models.OrderInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(errs) > 0 {
		response.ValidationFailed(w, errs)
		return
	}

	before := orderFields(rec)

	rec.OrderNumber = in.OrderNumber
	rec.CustomerName = in.CustomerName
	rec.CustomerPhone = in.CustomerPhone
	rec.DeliveryArea = in.DeliveryArea
	rec.OrderPrice = in.OrderPrice
	rec.DeliveryCost = in.DeliveryCost
	rec.Status = in.Status
	rec.OrderDate = in.OrderDate
	rec.Notes = in.Notes

	actor := currentUser(r)
	if actor.Role == "admin" && strings.TrimSpace(in.CompanyName) != "" {
		companyID, companyName, detail := s.resolveCompany(actor, in.CompanyName)
		if detail != "" {
			response.Detail(w, http.StatusBadRequest, "%s", detail)
			return
		}
		rec.CompanyID = companyID
		rec.CompanyName = companyName
	}

	if err := s.store.SaveOrder(rec); err != nil {
		response.Internal(w)
		return
	}
	invalidateStats(rec.CompanyID)

	changes := make(map[string]interface{})
	for field, newValue := range orderFields(rec) {
		if before[field] != newValue {
			changes[field] = map[string]interface{}{"old": before[field], "new": newValue}
		}
	}
	if len(changes) > 0 {
		if err := s.store.AddHistory(rec.ID, "updated", changes, actor); err != nil {
			logger.Error("devserver: record history", "error", err, "order", rec.ID)
		}
	}

	response.OK(w, toWire(rec))
}

// handleDeleteOrder removes an order, keeping its audit trail plus a final
// "deleted" entry with the last known field values.
func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	rec := s.loadVisibleOrder(w, r)
	if rec == nil {
		return
	}

	if err := s.store.DeleteOrder(rec.ID); err != nil {
		response.Internal(w)
		return
	}
	invalidateStats(rec.CompanyID)

	changes := map[string]interface{}{"order": orderFields(rec)}
	if err := s.store.AddHistory(rec.ID, "deleted", changes, currentUser(r)); err != nil {
		logger.Error("devserver: record history", "error", err, "order", rec.ID)
	}

	response.Message(w, "Order deleted")
}

// handleOrderHistory returns an order's audit entries, newest first.
func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	rec := s.loadVisibleOrder(w, r)
	if rec == nil {
		return
	}

	entries, err := s.store.History(rec.ID)
	if err != nil {
		response.Internal(w)
		return
	}
	response.OK(w, entries)
}

// handleReport returns all orders of one calendar date. Admin only.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !validate.Date(date) {
		response.Detail(w, http.StatusBadRequest, "A valid date (YYYY-MM-DD) is required")
		return
	}

	recs, err := s.store.OrdersByDate(date)
	if err != nil {
		response.Internal(w)
		return
	}
	response.OK(w, toWireList(recs))
}

// handleStats returns the aggregate snapshot for the caller's scope, cached
// briefly and invalidated on every mutation.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	scope := scopeFor(currentUser(r))
	key := "stats:all"
	if scope != "" {
		key = "stats:" + scope
	}

	var stats models.Stats
	if cache.Get(key, &stats) {
		response.OK(w, stats)
		return
	}

	stats, err := s.store.Stats(scope)
	if err != nil {
		response.Internal(w)
		return
	}
	if err := cache.Set(key, stats, statsTTL); err != nil {
		logger.Warn("devserver: cache stats", "error", err)
	}
	response.OK(w, stats)
}

// handleOrdersSocket upgrades to the push channel. The room key comes from
// the URL, but the subscription is granted only when the session cookie
// belongs to that same account (or to an admin).
func (s *Server) handleOrdersSocket(w http.ResponseWriter, r *http.Request) {
	user := s.authenticate(r)
	if user == nil {
		response.Unauthorized(w)
		return
	}

	roomID := pathParam(r, "id")
	if user.Role != "admin" && user.ID != roomID {
		response.Forbidden(w)
		return
	}

	ws.Upgrade(w, r, s.rooms, roomID)
}
