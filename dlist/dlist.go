/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package dlist

// Node is an element of a List. It carries a value and links to its neighbors.
// A node that is not in any list has both links cleared.
type Node[T any] struct {
	prev, next *Node[T]

	// Value is the payload stored in this node.
	Value T
}

// Next returns the next list node or nil if n is the last one or detached.
func (n *Node[T]) Next() *Node[T] { return n.next }

// Prev returns the previous list node or nil if n is the first one or detached.
func (n *Node[T]) Prev() *Node[T] { return n.prev }

// List represents a doubly linked list ordered from front to back.
// The zero value is an empty list ready to use.
//
// List is not safe for concurrent use. Callers that share a list between
// goroutines must serialize access to it.
//
// Methods that take a *Node (Remove, MoveToFront, MoveToBack) require the node
// to be an element of this exact list; passing a node of another list or an
// already removed node corrupts both lists.
type List[T any] struct {
	front *Node[T]
	back  *Node[T]
	len   int
}

// New creates a new empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// Init reinitializes the list to be empty and returns it.
// Nodes that were in the list keep their mutual links and must not be reused.
func (l *List[T]) Init() *List[T] {
	l.front = nil
	l.back = nil
	l.len = 0
	return l
}

// Len returns the number of nodes in the list.
func (l *List[T]) Len() int { return l.len }

// Front returns the first node of the list or nil if the list is empty.
func (l *List[T]) Front() *Node[T] { return l.front }

// Back returns the last node of the list or nil if the list is empty.
func (l *List[T]) Back() *Node[T] { return l.back }

// PushFront inserts a new node with the given value at the front of the list
// and returns the inserted node.
func (l *List[T]) PushFront(v T) *Node[T] {
	n := &Node[T]{Value: v}
	l.attachFront(n)
	return n
}

// PushBack inserts a new node with the given value at the back of the list
// and returns the inserted node.
func (l *List[T]) PushBack(v T) *Node[T] {
	n := &Node[T]{Value: v}
	l.attachBack(n)
	return n
}

// Remove removes the node from the list and returns its value.
// The removed node's links are cleared, so iteration that reached it stops.
func (l *List[T]) Remove(n *Node[T]) T {
	l.detach(n)
	return n.Value
}

// MoveToFront moves the node to the front of the list.
// It's a no-op if the node is already at the front.
func (l *List[T]) MoveToFront(n *Node[T]) {
	if l.front == n {
		return
	}
	l.detach(n)
	l.attachFront(n)
}

// MoveToBack moves the node to the back of the list.
// It's a no-op if the node is already at the back.
func (l *List[T]) MoveToBack(n *Node[T]) {
	if l.back == n {
		return
	}
	l.detach(n)
	l.attachBack(n)
}

func (l *List[T]) attachFront(n *Node[T]) {
	n.prev = nil
	n.next = l.front
	if l.front != nil {
		l.front.prev = n
	} else {
		l.back = n
	}
	l.front = n
	l.len++
}

func (l *List[T]) attachBack(n *Node[T]) {
	n.next = nil
	n.prev = l.back
	if l.back != nil {
		l.back.next = n
	} else {
		l.front = n
	}
	l.back = n
	l.len++
}

func (l *List[T]) detach(n *Node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.front = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.back = n.prev
	}
	n.prev = nil
	n.next = nil
	l.len--
}
