package telegram

import "sync"

// chatLocks мьютексы по ID чата. Запись удаляется, когда очередь к ней пуста.
type chatLocks struct {
	edit    sync.Mutex
	waiting map[int64]int
	mutexes map[int64]*sync.Mutex
}

func newChatLocks() *chatLocks {
	return &chatLocks{
		waiting: make(map[int64]int),
		mutexes: make(map[int64]*sync.Mutex),
	}
}

func (l *chatLocks) Lock(chatID int64) {
	l.edit.Lock()
	m := l.mutexes[chatID]
	if m == nil {
		m = &sync.Mutex{}
		l.mutexes[chatID] = m
	}
	l.waiting[chatID]++
	l.edit.Unlock()

	m.Lock()
}

func (l *chatLocks) Unlock(chatID int64) {
	l.edit.Lock()
	defer l.edit.Unlock()

	m := l.mutexes[chatID]
	if m == nil {
		return
	}
	m.Unlock()

	l.waiting[chatID]--
	if l.waiting[chatID] == 0 {
		delete(l.mutexes, chatID)
		delete(l.waiting, chatID)
	}
}

func (l *chatLocks) size() int {
	l.edit.Lock()
	defer l.edit.Unlock()
	return len(l.mutexes)
}
