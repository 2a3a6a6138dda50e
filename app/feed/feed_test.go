package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/app/client"
	"github.com/vperfumes/tracker/app/feed"
	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/config"
	"github.com/vperfumes/tracker/pkg/api"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// feedServer fakes the API surface a feed talks to: the order collection,
// the stats snapshot and the push channel.
type feedServer struct {
	t      *testing.T
	orders atomic.Value // []models.Order
	stats  atomic.Value // models.Stats

	conns      chan *websocket.Conn
	ordersGate chan struct{} // when set, /orders blocks until closed
}

func newFeedServer(t *testing.T, orders []models.Order, stats models.Stats) (*feedServer, *client.Client) {
	t.Helper()

	fs := &feedServer{t: t, conns: make(chan *websocket.Conn, 1)}
	fs.orders.Store(orders)
	fs.stats.Store(stats)

	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if fs.ordersGate != nil {
			<-fs.ordersGate
		}
		json.NewEncoder(w).Encode(fs.orders.Load())
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fs.stats.Load())
	})
	mux.HandleFunc("/ws/orders/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		fs.conns <- conn
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	config.Set("WS_BASE_URL", "ws"+strings.TrimPrefix(srv.URL, "http"))
	t.Cleanup(func() { config.Set("WS_BASE_URL", "") })

	a, err := api.New(api.WithBaseURL(srv.URL), api.WithCookieFile(""))
	require.NoError(t, err)
	return fs, client.New(a)
}

func (fs *feedServer) push(order models.Order) {
	conn := <-fs.conns
	fs.conns <- conn
	err := conn.WriteJSON(models.PushEvent{
		Type:    models.EventNewOrder,
		Message: "You have a new order",
		Order:   &order,
	})
	require.NoError(fs.t, err)
}

func identity() *models.Identity {
	return &models.Identity{ID: "u1", Username: "aroma1", Role: "company", CompanyName: "Aroma Delivery"}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartFetchesAndSorts(t *testing.T) {
	_, c := newFeedServer(t, []models.Order{
		{ID: "old", OrderDate: "2025-03-01"},
		{ID: "new", OrderDate: "2025-03-12"},
	}, models.Stats{Total: 2, Ongoing: 1})

	f := feed.New(c, identity())
	defer f.Close()
	require.NoError(t, f.Start(context.Background()))

	got := f.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, 2, f.Stats().Total)
}

func TestPushPrependsWithoutTouchingStats(t *testing.T) {
	fs, c := newFeedServer(t, []models.Order{
		{ID: "a", OrderDate: "2025-03-12"},
	}, models.Stats{Total: 1})

	f := feed.New(c, identity())
	defer f.Close()

	var notified atomic.Int32
	f.OnNewOrder = func(models.Order) { notified.Add(1) }

	require.NoError(t, f.Start(context.Background()))

	// Older date than everything in the list: it must still land first.
	fs.push(models.Order{ID: "pushed", OrderDate: "2025-01-01"})

	waitFor(t, func() bool { return len(f.Snapshot()) == 2 })
	assert.Equal(t, "pushed", f.Snapshot()[0].ID)
	assert.EqualValues(t, 1, notified.Load())

	// The stats snapshot only changes on Refresh.
	assert.Equal(t, 1, f.Stats().Total)
}

func TestEventBeforeFetchIsBufferedThenReplayed(t *testing.T) {
	fs, c := newFeedServer(t, []models.Order{
		{ID: "fetched", OrderDate: "2025-03-12"},
	}, models.Stats{Total: 1})

	gate := make(chan struct{})
	fs.ordersGate = gate

	f := feed.New(c, identity())
	defer f.Close()

	started := make(chan error, 1)
	go func() { started <- f.Start(context.Background()) }()

	// The channel is up before the fetch completes; push while /orders is
	// still blocked.
	fs.push(models.Order{ID: "early", OrderDate: "2025-03-13"})
	time.Sleep(50 * time.Millisecond) // let the frame reach the read loop
	close(gate)

	require.NoError(t, <-started)

	waitFor(t, func() bool { return len(f.Snapshot()) == 2 })
	got := f.Snapshot()
	assert.Equal(t, "early", got[0].ID, "buffered event replays on top of the fetch")
	assert.Equal(t, "fetched", got[1].ID)
}

func TestRefreshReplacesCollectionAndStats(t *testing.T) {
	fs, c := newFeedServer(t, []models.Order{
		{ID: "a", OrderDate: "2025-03-10"},
	}, models.Stats{Total: 1, Ongoing: 1})

	f := feed.New(c, identity())
	defer f.Close()
	require.NoError(t, f.Start(context.Background()))

	fs.orders.Store([]models.Order{
		{ID: "a", OrderDate: "2025-03-10"},
		{ID: "b", OrderDate: "2025-03-11"},
	})
	fs.stats.Store(models.Stats{Total: 2, Ongoing: 2})

	require.NoError(t, f.Refresh(context.Background()))

	assert.Len(t, f.Snapshot(), 2)
	assert.Equal(t, "b", f.Snapshot()[0].ID)
	assert.Equal(t, 2, f.Stats().Total)
}

func TestCloseShutsDownFeed(t *testing.T) {
	_, c := newFeedServer(t, nil, models.Stats{})

	f := feed.New(c, identity())
	require.NoError(t, f.Start(context.Background()))

	f.Close()
	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Close")
	}

	// Idempotent.
	assert.NotPanics(t, f.Close)
}

func TestConcurrentCloseIsSafe(t *testing.T) {
	_, c := newFeedServer(t, nil, models.Stats{})

	f := feed.New(c, identity())
	require.NoError(t, f.Start(context.Background()))

	// Caller teardown racing the read loop's own Close.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotPanics(t, f.Close)
		}()
	}
	wg.Wait()

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Close")
	}
}

func TestUnknownFrameTypesIgnored(t *testing.T) {
	fs, c := newFeedServer(t, []models.Order{{ID: "a", OrderDate: "2025-03-10"}}, models.Stats{Total: 1})

	f := feed.New(c, identity())
	defer f.Close()
	require.NoError(t, f.Start(context.Background()))

	conn := <-fs.conns
	fs.conns <- conn
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "heartbeat"}))
	fs.push(models.Order{ID: "real", OrderDate: "2025-03-11"})

	waitFor(t, func() bool { return len(f.Snapshot()) == 2 })
	assert.Equal(t, "real", f.Snapshot()[0].ID)
}
