// SPDX-License-Identifier: MIT
package analysis

// History is a fixed-capacity ring of the most recent samples seen, oldest
// first. Appending to a full History evicts the oldest sample for every new
// one, so the capacity is never exceeded and no allocation happens after
// construction.
type History struct {
	buf  []float32
	head int // next write position
	n    int // occupancy, 0..len(buf)
}

// NewHistory allocates a History holding at most capacity samples.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		panic("history capacity must be positive")
	}
	return &History{buf: make([]float32, capacity)}
}

// Append pushes samples in order, evicting the oldest sample once full.
func (h *History) Append(samples []float32) {
	size := len(h.buf)
	for _, s := range samples {
		h.buf[h.head] = s
		h.head++
		if h.head == size {
			h.head = 0
		}
		if h.n < size {
			h.n++
		}
	}
}

// Len returns the number of samples currently held.
func (h *History) Len() int {
	return h.n
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return len(h.buf)
}

// Full reports whether the History holds Cap() samples.
func (h *History) Full() bool {
	return h.n == len(h.buf)
}

// At returns the i-th oldest sample. It panics if i is outside [0, Len()).
func (h *History) At(i int) float32 {
	if i < 0 || i >= h.n {
		panic("history index out of range")
	}
	return h.buf[h.physical(i)]
}

// CopyTo writes the held samples into dst oldest-first and returns the
// number written, which is min(len(dst), Len()).
func (h *History) CopyTo(dst []float32) int {
	n := min(len(dst), h.n)
	start := h.physical(0)
	first := copy(dst[:n], h.buf[start:])
	copy(dst[first:n], h.buf)
	return n
}

// physical maps a logical oldest-first index to a position in buf.
func (h *History) physical(i int) int {
	start := h.head - h.n
	if start < 0 {
		start += len(h.buf)
	}
	p := start + i
	if p >= len(h.buf) {
		p -= len(h.buf)
	}
	return p
}
