package engines

import (
	"sync"

	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

type recordLock struct {
	readers int
	writer  bool
}

// lockTable tracks the records held by in-flight calls. Writers exclude every
// other holder; readers only exclude writers.
type lockTable struct {
	mu    sync.Mutex
	locks map[state.Pubkey]*recordLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: map[state.Pubkey]*recordLock{}}
}

// accessSets splits the records of a call into writable and read-only sets. A
// record listed both ways is writable.
func accessSets(
	metas []intrinsics.AccountMeta,
) (writes []state.Pubkey, reads []state.Pubkey) {
	writable := map[state.Pubkey]bool{}
	order := []state.Pubkey{}
	for _, meta := range metas {
		prior, seen := writable[meta.Pubkey]
		if !seen {
			order = append(order, meta.Pubkey)
		}
		writable[meta.Pubkey] = prior || meta.IsWritable
	}

	for _, key := range order {
		if writable[key] {
			writes = append(writes, key)
		} else {
			reads = append(reads, key)
		}
	}
	return writes, reads
}

// tryAcquire takes every lock or none. It reports false when another call
// holds a conflicting lock.
func (l *lockTable) tryAcquire(writes, reads []state.Pubkey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range writes {
		if lock, ok := l.locks[key]; ok && (lock.writer || lock.readers > 0) {
			return false
		}
	}
	for _, key := range reads {
		if lock, ok := l.locks[key]; ok && lock.writer {
			return false
		}
	}

	for _, key := range writes {
		l.locks[key] = &recordLock{writer: true}
	}
	for _, key := range reads {
		lock, ok := l.locks[key]
		if !ok {
			lock = &recordLock{}
			l.locks[key] = lock
		}
		lock.readers++
	}

	return true
}

func (l *lockTable) release(writes, reads []state.Pubkey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range writes {
		delete(l.locks, key)
	}
	for _, key := range reads {
		lock, ok := l.locks[key]
		if !ok {
			continue
		}
		lock.readers--
		if lock.readers == 0 && !lock.writer {
			delete(l.locks, key)
		}
	}
}

func (l *lockTable) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
