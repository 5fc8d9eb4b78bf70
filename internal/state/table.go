package state

import (
	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/ledger"
)

// Table is an identifier-keyed collection that remembers first-insertion order.
// Replacing an entity keeps its original position.
type Table[T ledger.Entity] struct {
	byID  map[uuid.UUID]T
	order []uuid.UUID
}

func NewTable[T ledger.Entity]() *Table[T] {
	return &Table[T]{byID: make(map[uuid.UUID]T)}
}

// Put inserts v or replaces the entity with the same id.
func (t *Table[T]) Put(v T) {
	id := v.EntityID()
	if _, ok := t.byID[id]; !ok {
		t.order = append(t.order, id)
	}
	t.byID[id] = v
}

func (t *Table[T]) Get(id uuid.UUID) (T, bool) {
	v, ok := t.byID[id]
	return v, ok
}

func (t *Table[T]) Len() int { return len(t.order) }

// List returns a copy of the entities in insertion order.
func (t *Table[T]) List() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// Merge combines a source list with overlay entries. Overlay entries replace
// source entries with the same id in place; the rest are appended in the
// overlay's insertion order. The result never holds two entities with one id.
func Merge[T ledger.Entity](base []T, over *Table[T]) []T {
	size := len(base)
	if over != nil {
		size += over.Len()
	}
	out := make([]T, 0, size)
	pos := make(map[uuid.UUID]int, size)
	put := func(v T) {
		id := v.EntityID()
		if i, ok := pos[id]; ok {
			out[i] = v
			return
		}
		pos[id] = len(out)
		out = append(out, v)
	}
	for _, v := range base {
		put(v)
	}
	if over != nil {
		for _, id := range over.order {
			put(over.byID[id])
		}
	}
	return out
}
