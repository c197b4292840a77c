package facet

import "math"

// ValueCounter tracks how many values a facet asks for. It only grows through
// Increase, saturating at math.MaxInt, and goes back to a baseline through Reset.
type ValueCounter struct {
	value int
}

func NewValueCounter(base int) ValueCounter {
	if base < 0 {
		base = 0
	}
	return ValueCounter{value: base}
}

func (c *ValueCounter) Increase(n int) {
	if n <= 0 {
		return
	}
	if n > math.MaxInt-c.value {
		c.value = math.MaxInt
		return
	}
	c.value += n
}

// Reset returns to the given baseline.
func (c *ValueCounter) Reset(base int) {
	*c = NewValueCounter(base)
}

func (c ValueCounter) Value() int {
	return c.value
}
