/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package dlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func listValues[T any](l *List[T]) []T {
	var vals []T
	for n := l.Front(); n != nil; n = n.Next() {
		vals = append(vals, n.Value)
	}
	return vals
}

func listValuesBackward[T any](l *List[T]) []T {
	var vals []T
	for n := l.Back(); n != nil; n = n.Prev() {
		vals = append(vals, n.Value)
	}
	return vals
}

func requireList(t *testing.T, l *List[int], want []int) {
	t.Helper()
	require.Equal(t, len(want), l.Len())
	require.Equal(t, want, listValues(l))
	var wantReversed []int
	for i := len(want) - 1; i >= 0; i-- {
		wantReversed = append(wantReversed, want[i])
	}
	require.Equal(t, wantReversed, listValuesBackward(l))
	if len(want) == 0 {
		require.Nil(t, l.Front())
		require.Nil(t, l.Back())
	} else {
		require.Equal(t, want[0], l.Front().Value)
		require.Equal(t, want[len(want)-1], l.Back().Value)
		require.Nil(t, l.Front().Prev())
		require.Nil(t, l.Back().Next())
	}
}

func TestListZeroValue(t *testing.T) {
	var l List[int]
	require.Equal(t, 0, l.Len())
	require.Nil(t, l.Front())
	require.Nil(t, l.Back())

	l.PushFront(1)
	requireList(t, &l, []int{1})
}

func TestListPushFront(t *testing.T) {
	l := New[int]()
	for i := 1; i <= 3; i++ {
		n := l.PushFront(i)
		require.Same(t, n, l.Front())
		require.Equal(t, i, n.Value)
	}
	requireList(t, l, []int{3, 2, 1})
}

func TestListPushBack(t *testing.T) {
	l := New[int]()
	for i := 1; i <= 3; i++ {
		n := l.PushBack(i)
		require.Same(t, n, l.Back())
		require.Equal(t, i, n.Value)
	}
	requireList(t, l, []int{1, 2, 3})
}

func TestListPushMixed(t *testing.T) {
	l := New[int]()
	l.PushBack(2)
	l.PushFront(1)
	l.PushBack(3)
	requireList(t, l, []int{1, 2, 3})
}

func TestListRemove(t *testing.T) {
	build := func() (*List[int], []*Node[int]) {
		l := New[int]()
		nodes := make([]*Node[int], 0, 4)
		for i := 1; i <= 4; i++ {
			nodes = append(nodes, l.PushBack(i))
		}
		return l, nodes
	}

	t.Run("front", func(t *testing.T) {
		l, nodes := build()
		require.Equal(t, 1, l.Remove(nodes[0]))
		requireList(t, l, []int{2, 3, 4})
		require.Nil(t, nodes[0].Prev())
		require.Nil(t, nodes[0].Next())
	})

	t.Run("middle", func(t *testing.T) {
		l, nodes := build()
		require.Equal(t, 3, l.Remove(nodes[2]))
		requireList(t, l, []int{1, 2, 4})
		require.Nil(t, nodes[2].Prev())
		require.Nil(t, nodes[2].Next())
	})

	t.Run("back", func(t *testing.T) {
		l, nodes := build()
		require.Equal(t, 4, l.Remove(nodes[3]))
		requireList(t, l, []int{1, 2, 3})
		require.Nil(t, nodes[3].Prev())
		require.Nil(t, nodes[3].Next())
	})

	t.Run("only node", func(t *testing.T) {
		l := New[int]()
		n := l.PushBack(42)
		require.Equal(t, 42, l.Remove(n))
		requireList(t, l, nil)
		require.Nil(t, n.Prev())
		require.Nil(t, n.Next())
	})

	t.Run("all one by one", func(t *testing.T) {
		l, nodes := build()
		for i, n := range nodes {
			require.Equal(t, i+1, l.Remove(n))
			require.Equal(t, len(nodes)-i-1, l.Len())
		}
		requireList(t, l, nil)
	})
}

func TestListMoveToFront(t *testing.T) {
	t.Run("already at front", func(t *testing.T) {
		l := New[int]()
		n1 := l.PushBack(1)
		l.PushBack(2)
		l.MoveToFront(n1)
		requireList(t, l, []int{1, 2})
	})

	t.Run("from middle", func(t *testing.T) {
		l := New[int]()
		l.PushBack(1)
		n2 := l.PushBack(2)
		l.PushBack(3)
		l.MoveToFront(n2)
		requireList(t, l, []int{2, 1, 3})
	})

	t.Run("from back", func(t *testing.T) {
		l := New[int]()
		l.PushBack(1)
		l.PushBack(2)
		n3 := l.PushBack(3)
		l.MoveToFront(n3)
		requireList(t, l, []int{3, 1, 2})
	})

	t.Run("single node", func(t *testing.T) {
		l := New[int]()
		n := l.PushBack(1)
		l.MoveToFront(n)
		requireList(t, l, []int{1})
	})
}

func TestListMoveToBack(t *testing.T) {
	t.Run("already at back", func(t *testing.T) {
		l := New[int]()
		l.PushBack(1)
		n2 := l.PushBack(2)
		l.MoveToBack(n2)
		requireList(t, l, []int{1, 2})
	})

	t.Run("from middle", func(t *testing.T) {
		l := New[int]()
		l.PushBack(1)
		n2 := l.PushBack(2)
		l.PushBack(3)
		l.MoveToBack(n2)
		requireList(t, l, []int{1, 3, 2})
	})

	t.Run("from front", func(t *testing.T) {
		l := New[int]()
		n1 := l.PushBack(1)
		l.PushBack(2)
		l.PushBack(3)
		l.MoveToBack(n1)
		requireList(t, l, []int{2, 3, 1})
	})
}

func TestListInit(t *testing.T) {
	l := New[int]()
	l.PushBack(1)
	l.PushBack(2)
	require.Same(t, l, l.Init())
	requireList(t, l, nil)

	l.PushBack(3)
	requireList(t, l, []int{3})
}

func TestListStructValues(t *testing.T) {
	type entry struct {
		key string
		val int
	}
	l := New[entry]()
	n := l.PushFront(entry{key: "a", val: 1})
	l.PushBack(entry{key: "b", val: 2})
	require.Equal(t, "a", l.Front().Value.key)
	n.Value.val = 10
	require.Equal(t, 10, l.Front().Value.val)
}

func BenchmarkListPushFront(b *testing.B) {
	l := New[int]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.PushFront(i)
	}
}

func BenchmarkListMoveToFront(b *testing.B) {
	l := New[int]()
	nodes := make([]*Node[int], 1000)
	for i := range nodes {
		nodes[i] = l.PushBack(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.MoveToFront(nodes[i%len(nodes)])
	}
}
