package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vperfumes/tracker/pkg/event"
)

func TestFireInOrder(t *testing.T) {
	bus := event.NewBus()

	var got []string
	bus.Listen("order.created", func(payload interface{}) {
		got = append(got, "first:"+payload.(string))
	})
	bus.Listen("order.created", func(payload interface{}) {
		got = append(got, "second:"+payload.(string))
	})

	bus.Fire("order.created", "o1")
	assert.Equal(t, []string{"first:o1", "second:o1"}, got)
}

func TestFireUnknownEvent(t *testing.T) {
	bus := event.NewBus()
	assert.NotPanics(t, func() { bus.Fire("nobody-listens", nil) })
}

func TestFireAsync(t *testing.T) {
	bus := event.NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	seen := make(chan string, 2)
	for i := 0; i < 2; i++ {
		bus.Listen("ping", func(payload interface{}) {
			defer wg.Done()
			seen <- payload.(string)
		})
	}

	bus.FireAsync("ping", "x")
	wg.Wait()
	assert.Len(t, seen, 2)
}

func TestDefaultBusFlush(t *testing.T) {
	defer event.Flush()

	calls := 0
	event.Listen("e", func(interface{}) { calls++ })
	event.Fire("e", nil)
	event.Flush()
	event.Fire("e", nil)

	assert.Equal(t, 1, calls)
}
