// Package ident is the single source of synthesized identifiers and order
// numbers, so uniqueness and format are enforced in one place.
package ident

import (
	"strconv"
	"sync"
	"time"
)

var (
	mu   sync.Mutex
	last int64
)

// next returns an epoch-millisecond value, bumped past the previous one when
// two calls land on the same millisecond. Every synthesized identifier draws
// from this guard so no two draws share a millisecond.
func next() int64 {
	mu.Lock()
	defer mu.Unlock()

	v := time.Now().UnixMilli()
	if v <= last {
		v = last + 1
	}
	last = v
	return v
}

// NewID returns a fresh epoch-millisecond identifier.
func NewID() int64 {
	return next()
}

// NextOrderNumber synthesizes a fresh order number from the guarded
// millisecond source, so concurrent calls never collide.
func NextOrderNumber() string {
	return OrderNumber(time.UnixMilli(next()))
}

// OrderNumber derives an order number from the given creation time:
// "DD" followed by the last 8 digits of the epoch-millisecond timestamp.
func OrderNumber(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "DD" + ms
}
