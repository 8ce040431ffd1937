package services

import (
	"encoding/json"
)

// collection is an ordered, newest-first set of records stored under one
// durable key. It is not safe for concurrent use; RepositoryService guards it.
type collection[T any] struct {
	key   string
	items []T
	idOf  func(*T) string
	clone func(T) T
}

func newCollection[T any](key string, idOf func(*T) string, clone func(T) T) *collection[T] {
	return &collection[T]{
		key:   key,
		items: []T{},
		idOf:  idOf,
		clone: clone,
	}
}

// index returns the position of id, or -1.
func (c *collection[T]) index(id string) int {
	for i := range c.items {
		if c.idOf(&c.items[i]) == id {
			return i
		}
	}
	return -1
}

// prepend inserts item at the front.
func (c *collection[T]) prepend(item T) {
	c.items = append([]T{item}, c.items...)
}

// get returns a deep copy of the record with id.
func (c *collection[T]) get(id string) (T, bool) {
	i := c.index(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return c.clone(c.items[i]), true
}

// remove drops the record with id and reports whether it existed.
func (c *collection[T]) remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// list returns deep copies of every record in presentation order.
func (c *collection[T]) list() []T {
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

func (c *collection[T]) encode() ([]byte, error) {
	return json.Marshal(c.items)
}

func (c *collection[T]) decode(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	return nil
}
