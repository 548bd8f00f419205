// Package keylock provides an in-process mutex keyed by string.
//
// Dispatch code locks the zones it reads deliverer workload from, so two
// concurrent assignments can never both see the same deliverer as under
// capacity.
package keylock

import (
	"slices"
	"strings"
	"sync"
)

// Mutex hands out one lock per key. The zero value is ready to use.
type Mutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New returns an empty keyed mutex.
func New() *Mutex {
	return &Mutex{}
}

// Lock acquires every key and returns the function releasing them.
// Keys are normalised to lower case, de-duplicated and taken in sorted order,
// so callers locking overlapping key sets cannot deadlock each other.
func (m *Mutex) Lock(keys ...string) (unlock func()) {
	normalized := normalize(keys)
	acquired := make([]*entry, 0, len(normalized))

	for _, key := range normalized {
		e := m.acquire(key)
		e.mu.Lock()
		acquired = append(acquired, e)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(acquired) - 1; i >= 0; i-- {
				acquired[i].mu.Unlock()
				m.release(normalized[i])
			}
		})
	}
}

func (m *Mutex) acquire(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locks == nil {
		m.locks = make(map[string]*entry)
	}
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	return e
}

func (m *Mutex) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
