package tracker

import "math"

// Exported constants.
const (
	// DefaultHistoryCapacity is the number of chart points retained per run.
	DefaultHistoryCapacity = 240
	// ChartHeadroom stretches the chart's x-axis past the latest point.
	ChartHeadroom = 1.1
)

// HistoryPoint is one poll's percent-complete per class. Every class known at that poll has
// an entry; one missing from the poll repeats its last-known percent.
type HistoryPoint struct {
	ElapsedSeconds float64             `json:"elapsedSeconds"`
	Percent        map[ClassID]float64 `json:"percent"`
}

// HistoryBuffer retains the most recent chart points in elapsed order.
type HistoryBuffer struct {
	ring *ring[HistoryPoint]
}

// NewHistoryBuffer creates a buffer holding at most capacity points.
// A non-positive capacity uses DefaultHistoryCapacity.
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}

	return &HistoryBuffer{ring: newRing[HistoryPoint](capacity)}
}

// Append adds a point, evicting the oldest when full. A point that is not strictly later
// than the newest retained point is dropped and Append returns false.
func (h *HistoryBuffer) Append(elapsedSeconds float64, percent map[ClassID]float64) bool {
	if math.IsNaN(elapsedSeconds) {
		return false
	}

	if latest, ok := h.ring.last(); ok && elapsedSeconds <= latest.ElapsedSeconds {
		return false
	}

	copied := make(map[ClassID]float64, len(percent))
	for id, p := range percent {
		copied[id] = p
	}

	h.ring.add(HistoryPoint{ElapsedSeconds: elapsedSeconds, Percent: copied})

	return true
}

// Capacity returns the retention cap.
func (h *HistoryBuffer) Capacity() int {
	return h.ring.capacity
}

// Latest returns the newest retained point.
func (h *HistoryBuffer) Latest() (HistoryPoint, bool) {
	return h.ring.last()
}

// Len returns the number of retained points.
func (h *HistoryBuffer) Len() int {
	return h.ring.size
}

// Points returns the retained points oldest first. The slice is a copy.
func (h *HistoryBuffer) Points() []HistoryPoint {
	return h.ring.all()
}

// Reset discards every point.
func (h *HistoryBuffer) Reset() {
	h.ring.clear()
}

// ChartMaxX is the chart's x-axis upper bound for the given latest elapsed time and latest
// finish time: ceil(max(both) * ChartHeadroom), at least 1.
func ChartMaxX(latestElapsed, maxFinishElapsed float64) float64 {
	// 10*1.1 is 11.000000000000002 in float64; that must not round up to 12.
	upper := math.Ceil(math.Max(latestElapsed, maxFinishElapsed)*ChartHeadroom - ceilEpsilon)
	if math.IsNaN(upper) || upper < 1 {
		return 1
	}

	return upper
}

const ceilEpsilon = 1e-9

// ring is a fixed-capacity FIFO that overwrites its oldest item when full.
type ring[T any] struct {
	items    []T
	capacity int
	head     int // next write position
	size     int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

func (r *ring[T]) add(item T) {
	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity

	if r.size < r.capacity {
		r.size++
	}
}

// all returns items oldest to newest.
func (r *ring[T]) all() []T {
	if r.size == 0 {
		return nil
	}

	result := make([]T, r.size)

	if r.size < r.capacity {
		copy(result, r.items[:r.size])
	} else {
		// wrapped: head points at the oldest item
		n := copy(result, r.items[r.head:])
		copy(result[n:], r.items[:r.head])
	}

	return result
}

func (r *ring[T]) clear() {
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}

	r.head = 0
	r.size = 0
}

func (r *ring[T]) last() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}

	return r.items[(r.head-1+r.capacity)%r.capacity], true
}
