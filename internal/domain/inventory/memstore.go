package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/materials"
)

// MemStore is an in-memory Store. Transactions are serialized and work on a
// copy that is only kept when fn and the commit hook both succeed.
type MemStore struct {
	mu        sync.Mutex
	stock     map[int64]float64
	events    []consumption.Event
	movements []Movement
	nextID    int64

	// BeforeCommit, when set, can fail a transaction after all writes were staged.
	BeforeCommit func(staged []consumption.Event) error
}

func NewMemStore() *MemStore {
	return &MemStore{stock: make(map[int64]float64)}
}

// SetMaterial creates or overwrites the stock of a material.
func (s *MemStore) SetMaterial(id int64, stock float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[id] = stock
}

func (s *MemStore) Stock(id int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[id]
}

func (s *MemStore) Events() []consumption.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]consumption.Event(nil), s.events...)
}

func (s *MemStore) Movements() []Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Movement(nil), s.movements...)
}

func (s *MemStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		stock:  make(map[int64]float64, len(s.stock)),
		events: append([]consumption.Event(nil), s.events...),
		nextID: s.nextID,
	}
	for k, v := range s.stock {
		tx.stock[k] = v
	}
	tx.movements = append([]Movement(nil), s.movements...)

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.BeforeCommit != nil {
		if err := s.BeforeCommit(tx.events[len(s.events):]); err != nil {
			return err
		}
	}

	s.stock, s.events, s.movements, s.nextID = tx.stock, tx.events, tx.movements, tx.nextID
	return nil
}

type memTx struct {
	stock     map[int64]float64
	events    []consumption.Event
	movements []Movement
	nextID    int64
}

func (t *memTx) LockStock(_ context.Context, materialID int64) (float64, error) {
	v, ok := t.stock[materialID]
	if !ok {
		return 0, materials.ErrNotFound
	}
	return v, nil
}

func (t *memTx) SyncEventExists(_ context.Context, key consumption.SyncKey) (bool, error) {
	for i := range t.events {
		if t.events[i].Origin == consumption.OriginSync && t.events[i].SyncKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertEvent(_ context.Context, ev *consumption.Event) error {
	t.nextID++
	ev.ID = t.nextID
	ev.CreatedAt = time.Now()
	t.events = append(t.events, *ev)
	return nil
}

func (t *memTx) SetStock(_ context.Context, materialID int64, stock float64) error {
	if _, ok := t.stock[materialID]; !ok {
		return materials.ErrNotFound
	}
	t.stock[materialID] = stock
	return nil
}

func (t *memTx) InsertMovement(_ context.Context, mv *Movement) error {
	t.nextID++
	mv.ID = t.nextID
	mv.CreatedAt = time.Now()
	t.movements = append(t.movements, *mv)
	return nil
}
