package app

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotifier_DeliversInOrder(t *testing.T) {
	n := newNotifier[int](testLogger())

	var mu sync.Mutex
	var got []int
	n.subscribe(func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	for i := 0; i < 100; i++ {
		n.publish(i)
	}
	n.flush()

	mu.Lock()
	require.Len(t, got, 100)
	for i, v := range got {
		require.Equal(t, i, v)
	}
	mu.Unlock()

	n.close()
}

func TestNotifier_PanickingObserverDoesNotStopDelivery(t *testing.T) {
	n := newNotifier[string](testLogger())

	var got []string
	n.subscribe(func(v string) {
		if v == "boom" {
			panic(v)
		}
	})
	n.subscribe(func(v string) { got = append(got, v) })

	n.publish("boom")
	n.publish("ok")
	n.close()

	require.Equal(t, []string{"boom", "ok"}, got)
}

func TestNotifier_PublishAfterCloseIsIgnored(t *testing.T) {
	n := newNotifier[int](testLogger())
	calls := 0
	n.subscribe(func(int) { calls++ })

	n.close()
	n.publish(1)
	n.flush()
	n.close()

	require.Zero(t, calls)
}
