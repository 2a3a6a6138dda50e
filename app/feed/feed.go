// Package feed keeps a company's order collection current.
//
// On Start the feed fetches the full collection and the stats snapshot, and
// opens one push-channel connection scoped to the company identity. A
// "new_order" frame prepends the embedded order at the front of the
// collection — a local splice; the stats snapshot is NOT refreshed by the
// push path and only catches up on the next Refresh.
//
// The channel is dialled before the initial fetch and events that arrive
// while the fetch is still pending are buffered, then replayed on top of the
// fetched list in arrival order. This serialises the two update paths so an
// early event can never be overwritten by the fetch landing later.
//
// There is no reconnection: a dial or read error logs and leaves the caller
// without live updates until the feed is restarted.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vperfumes/tracker/app/client"
	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/app/view"
	"github.com/vperfumes/tracker/config"
	"github.com/vperfumes/tracker/pkg/logger"
)

// Feed is the live order collection of one company dashboard. It is owned
// by that dashboard's lifetime: Close it on teardown or identity change, and
// never share it across dashboards.
type Feed struct {
	client *client.Client
	userID string

	// OnNewOrder, when set, is invoked for every pushed order after it has
	// been spliced into the collection (the UI's notification hook).
	OnNewOrder func(models.Order)

	mu      sync.Mutex
	orders  []models.Order
	stats   models.Stats
	primed  bool           // initial fetch has been installed
	pending []models.Order // events buffered until primed

	conn      *websocket.Conn
	closeOnce sync.Once
	closed    chan struct{}
}

// New builds a feed for the given company identity.
func New(c *client.Client, identity *models.Identity) *Feed {
	return &Feed{
		client: c,
		userID: identity.ID,
		closed: make(chan struct{}),
	}
}

// Start opens the push channel and performs the initial fetch of orders and
// stats. The channel is dialled first so no event can fall between the fetch
// and the subscription.
func (f *Feed) Start(ctx context.Context) error {
	url := config.WSBaseURL() + "/ws/orders/" + f.userID

	header := http.Header{}
	if cookie := f.client.API().CookieHeader(); cookie != "" {
		// Bind the channel to the session, not just the URL-embedded id.
		header.Set("Cookie", cookie)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return fmt.Errorf("feed: dial %s: %w", url, err)
	}
	f.conn = conn
	go f.readLoop()

	if err := f.Refresh(ctx); err != nil {
		// Prior state stays intact; the channel keeps running.
		return err
	}
	return nil
}

// Refresh re-fetches the order collection and the stats snapshot. Called
// once at start and again after every mutation — the local collection is
// never the record of truth.
func (f *Feed) Refresh(ctx context.Context) error {
	orders, err := f.client.Orders(ctx)
	if err != nil {
		return fmt.Errorf("feed: fetch orders: %w", err)
	}
	stats, err := f.client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("feed: fetch stats: %w", err)
	}

	sorted := view.SortByDateDesc(orders)

	f.mu.Lock()
	f.orders = sorted
	f.stats = *stats
	if !f.primed {
		// Replay buffered events in arrival order; the most recent push
		// ends up at index 0, exactly as if each had arrived after the
		// fetch.
		for _, o := range f.pending {
			f.orders = append([]models.Order{o}, f.orders...)
		}
		f.pending = nil
		f.primed = true
	}
	f.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the in-memory order collection.
func (f *Feed) Snapshot() []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, len(f.orders))
	copy(out, f.orders)
	return out
}

// Stats returns the last fetched stats snapshot.
func (f *Feed) Stats() models.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// Close tears down the push channel. Idempotent; the caller's teardown may
// race the read loop closing on channel failure.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		close(f.closed)
		if f.conn != nil {
			f.conn.Close()
		}
	})
}

// Done is closed when the feed has shut down (teardown or channel failure).
func (f *Feed) Done() <-chan struct{} { return f.closed }

func (f *Feed) readLoop() {
	defer f.Close()

	for {
		var event models.PushEvent
		if err := f.conn.ReadJSON(&event); err != nil {
			select {
			case <-f.closed:
				// Normal teardown.
			default:
				// Log only — no user-facing surfacing, no reconnect.
				logger.Warn("feed: push channel closed", "error", err)
			}
			return
		}

		if event.Type != models.EventNewOrder || event.Order == nil {
			continue
		}
		f.ingest(*event.Order)
	}
}

// ingest splices a pushed order into the collection. A pushed order is
// always visually first regardless of its date; the descending-date order is
// restored by the next Refresh.
func (f *Feed) ingest(order models.Order) {
	f.mu.Lock()
	if !f.primed {
		f.pending = append(f.pending, order)
		f.mu.Unlock()
		return
	}
	f.orders = append([]models.Order{order}, f.orders...)
	f.mu.Unlock()

	if f.OnNewOrder != nil {
		f.OnNewOrder(order)
	}
}
