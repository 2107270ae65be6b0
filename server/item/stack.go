package item

import (
	"fmt"
)

// Stack represents a stack of items. The stack shares the same network ID
// and metadata value for all items in it. The zero Stack is an empty stack.
type Stack struct {
	id    int32
	meta  int16
	count int
}

// NewStack returns a new stack of count items with the network ID and
// metadata value passed. A count of 0 or lower or a network ID of 0 results
// in an empty stack.
func NewStack(id int32, meta int16, count int) Stack {
	if count <= 0 || id == 0 {
		return Stack{}
	}
	return Stack{id: id, meta: meta, count: count}
}

// NetworkID returns the network ID of the items in the stack.
func (s Stack) NetworkID() int32 {
	return s.id
}

// Meta returns the metadata value of the items in the stack.
func (s Stack) Meta() int16 {
	return s.meta
}

// Count returns the amount of items present in the stack.
func (s Stack) Count() int {
	return s.count
}

// Empty checks if the stack is empty (has a count of 0).
func (s Stack) Empty() bool {
	return s.count == 0
}

// Grow grows the Stack's count by n, returning the resulting Stack. If a
// negative number is passed, the stack shrinks. The stack becomes empty if
// its count drops to 0 or lower.
func (s Stack) Grow(n int) Stack {
	if s.count += n; s.count <= 0 {
		return Stack{}
	}
	return s
}

// Comparable checks if two stacks hold the same kind of item.
func (s Stack) Comparable(s2 Stack) bool {
	return s.id == s2.id && s.meta == s2.meta
}

// String implements the fmt.Stringer interface.
func (s Stack) String() string {
	if s.Empty() {
		return "Stack<empty>"
	}
	return fmt.Sprintf("Stack<%d:%d>(%d)", s.id, s.meta, s.count)
}
