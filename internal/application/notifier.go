package app

import (
	"log/slog"
	"slices"
	"sync"
)

// notifier доставляет события подписчикам в отдельной горутине строго в порядке публикации.
// publish не блокируется на подписчиках, поэтому его можно вызывать под мьютексом владельца.
type notifier[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []T
	observers []func(T)
	published uint64
	delivered uint64
	closed    bool
	done      chan struct{}
	logger    *slog.Logger
}

func newNotifier[T any](logger *slog.Logger) *notifier[T] {
	n := &notifier[T]{
		done:   make(chan struct{}),
		logger: logger,
	}
	n.cond = sync.NewCond(&n.mu)
	go n.loop()
	return n
}

func (n *notifier[T]) subscribe(fn func(T)) {
	n.mu.Lock()
	n.observers = append(n.observers, fn)
	n.mu.Unlock()
}

func (n *notifier[T]) publish(v T) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.queue = append(n.queue, v)
	n.published++
	n.cond.Broadcast()
}

// flush ждёт, пока все опубликованные события будут доставлены
func (n *notifier[T]) flush() {
	n.mu.Lock()
	defer n.mu.Unlock()

	target := n.published
	for n.delivered < target {
		n.cond.Wait()
	}
}

// close доставляет оставшиеся события и останавливает горутину
func (n *notifier[T]) close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	n.cond.Broadcast()
	n.mu.Unlock()

	<-n.done
}

func (n *notifier[T]) loop() {
	defer close(n.done)

	for {
		n.mu.Lock()
		for len(n.queue) == 0 && !n.closed {
			n.cond.Wait()
		}
		if len(n.queue) == 0 {
			n.mu.Unlock()
			return
		}
		v := n.queue[0]
		n.queue = n.queue[1:]
		observers := slices.Clone(n.observers)
		n.mu.Unlock()

		for _, fn := range observers {
			n.deliver(fn, v)
		}

		n.mu.Lock()
		n.delivered++
		n.cond.Broadcast()
		n.mu.Unlock()
	}
}

func (n *notifier[T]) deliver(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("observer panicked", "panic", r)
		}
	}()
	fn(v)
}
